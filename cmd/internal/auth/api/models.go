package authapi

import "quest2go/cmd/account"

type signupRequest struct {
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword *string `json:"confirmPassword"`
	UserType        string  `json:"userType"`

	// Educator.
	Institution string `json:"institution"`
	YearLevel   string `json:"yearLevel"`
	Course      string `json:"course"`

	// Researcher.
	Organization string `json:"organization"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupResponse struct {
	Message string          `json:"message"`
	Token   string          `json:"token"`
	User    account.Summary `json:"user"`
}

// loginUser is the summary plus the role profile fields. Pointer fields are
// present only for the matching role.
type loginUser struct {
	account.Summary

	Institution  *string `json:"institution,omitempty"`
	YearLevel    *string `json:"yearLevel,omitempty"`
	Course       *string `json:"course,omitempty"`
	Organization *string `json:"organization,omitempty"`
}

type loginResponse struct {
	Message string    `json:"message"`
	User    loginUser `json:"user"`
}

type userResponse struct {
	User account.Summary `json:"user"`
}

func toLoginUser(a account.Account, p account.Profile) loginUser {
	u := loginUser{Summary: a.Summary()}
	switch v := p.(type) {
	case account.EducatorProfile:
		u.Institution = &v.Institution
		u.YearLevel = &v.YearLevel
		u.Course = &v.Course
	case account.ResearcherProfile:
		u.Organization = &v.Organization
	case nil:
	}
	return u
}
