package account

import (
	"context"
	"strings"
	"time"
)

// Role tags an account as Educator or Researcher.
type Role string

const (
	RoleEducator   Role = "Educator"
	RoleResearcher Role = "Researcher"
)

// ParseRole accepts the exact wire values "Educator" and "Researcher".
func ParseRole(s string) (Role, bool) {
	switch Role(strings.TrimSpace(s)) {
	case RoleEducator:
		return RoleEducator, true
	case RoleResearcher:
		return RoleResearcher, true
	default:
		return "", false
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Account is a registered identity.
// PasswordHash is an encoded credential hash and must not be serialized to clients.
type Account struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Summary is the reduced, client-safe projection of an Account.
type Summary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"userType"`
}

// Summary returns the client-safe projection of a.
func (a Account) Summary() Summary {
	return Summary{
		ID:        a.ID,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      a.Role,
	}
}

// CreateAccountInput describes a new account row.
type CreateAccountInput struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	Now          time.Time
}

// RegisterInput describes a signup: the account plus its role profile.
// Profile.AccountID is ignored; the store fills it with the generated id.
type RegisterInput struct {
	Account CreateAccountInput
	Profile Profile
}

// Store is the account persistence boundary.
type Store interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindAccountByID(ctx context.Context, id string) (Account, error)

	// CreateAccount inserts an account row. A duplicate email is reported as
	// ConflictError{Field: "email"} even when callers pre-checked FindByEmail.
	CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error)

	CreateEducatorProfile(ctx context.Context, accountID, institution, yearLevel, course string) (EducatorProfile, error)
	CreateResearcherProfile(ctx context.Context, accountID, organization string) (ResearcherProfile, error)

	FindEducatorProfile(ctx context.Context, accountID string) (EducatorProfile, error)
	FindResearcherProfile(ctx context.Context, accountID string) (ResearcherProfile, error)

	// Register creates the account and its role profile as one atomic unit:
	// if the profile cannot be stored, the account is not stored either.
	Register(ctx context.Context, in RegisterInput) (Account, Profile, error)
}

// FindProfile loads the profile variant matching a.Role.
func FindProfile(ctx context.Context, s Store, a Account) (Profile, error) {
	switch a.Role {
	case RoleEducator:
		return s.FindEducatorProfile(ctx, a.ID)
	case RoleResearcher:
		return s.FindResearcherProfile(ctx, a.ID)
	default:
		return nil, OpError{Op: "account.FindProfile", Kind: ErrInvalidInput, Msg: "unknown role"}
	}
}

func validateCreate(op string, in CreateAccountInput) (CreateAccountInput, error) {
	in.Email = NormalizeEmail(in.Email)
	in.FirstName = NormalizeName(in.FirstName)
	in.LastName = NormalizeName(in.LastName)

	if in.Email == "" {
		return in, invalid(op, "email is required")
	}
	if strings.TrimSpace(in.PasswordHash) == "" {
		return in, invalid(op, "password hash is required")
	}
	role, ok := ParseRole(string(in.Role))
	if !ok {
		return in, invalid(op, "unknown role")
	}
	in.Role = role
	if in.Now.IsZero() {
		in.Now = time.Now().UTC()
	}
	return in, nil
}

func validateRegister(op string, in RegisterInput) (RegisterInput, error) {
	acc, err := validateCreate(op, in.Account)
	if err != nil {
		return in, err
	}
	in.Account = acc
	if in.Profile == nil {
		return in, invalid(op, "profile is required")
	}
	if in.Profile.Role() != in.Account.Role {
		return in, invalid(op, "profile does not match role")
	}
	return in, nil
}
