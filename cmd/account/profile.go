package account

// Profile is the role-specific extension of an account.
// The set of variants is closed: EducatorProfile and ResearcherProfile.
type Profile interface {
	Role() Role
	profile()
}

// EducatorProfile exists iff the account role is Educator.
type EducatorProfile struct {
	AccountID   string
	Institution string
	YearLevel   string
	Course      string
}

func (EducatorProfile) Role() Role { return RoleEducator }
func (EducatorProfile) profile()   {}

// ResearcherProfile exists iff the account role is Researcher.
type ResearcherProfile struct {
	AccountID    string
	Organization string
}

func (ResearcherProfile) Role() Role { return RoleResearcher }
func (ResearcherProfile) profile()   {}

// withAccountID returns p bound to accountID.
func withAccountID(p Profile, accountID string) Profile {
	switch v := p.(type) {
	case EducatorProfile:
		v.AccountID = accountID
		return v
	case ResearcherProfile:
		v.AccountID = accountID
		return v
	default:
		return p
	}
}
