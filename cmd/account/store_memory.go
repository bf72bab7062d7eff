package account

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is the in-process Store used when no database is configured.
// A single mutex serializes writes, which gives Register the same
// all-or-nothing behavior as the Postgres transaction.
type MemoryStore struct {
	mu          sync.RWMutex
	accounts    map[string]Account // id -> account
	byEmail     map[string]string  // email -> id
	educators   map[string]EducatorProfile
	researchers map[string]ResearcherProfile
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:    make(map[string]Account),
		byEmail:     make(map[string]string),
		educators:   make(map[string]EducatorProfile),
		researchers: make(map[string]ResearcherProfile),
	}
}

// Len returns the number of stored accounts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (Account, error) {
	const op = "account.FindByEmail"
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	email = NormalizeEmail(email)
	if email == "" {
		return Account{}, invalid(op, "email is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return Account{}, NotFoundError{Op: op, Resource: "account"}
	}
	return s.accounts[id], nil
}

func (s *MemoryStore) FindAccountByID(ctx context.Context, id string) (Account, error) {
	const op = "account.FindAccountByID"
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[strings.TrimSpace(id)]
	if !ok {
		return Account{}, NotFoundError{Op: op, Resource: "account"}
	}
	return a, nil
}

func (s *MemoryStore) CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error) {
	const op = "account.CreateAccount"
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	in, err := validateCreate(op, in)
	if err != nil {
		return Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertAccountLocked(op, in)
}

func (s *MemoryStore) insertAccountLocked(op string, in CreateAccountInput) (Account, error) {
	if _, exists := s.byEmail[in.Email]; exists {
		return Account{}, ConflictError{Op: op, Field: "email"}
	}
	id, err := NewID(in.Now)
	if err != nil {
		return Account{}, err
	}
	a := Account{
		ID:           id,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: in.PasswordHash,
		Role:         in.Role,
		CreatedAt:    in.Now,
	}
	s.accounts[id] = a
	s.byEmail[a.Email] = id
	return a, nil
}

func (s *MemoryStore) CreateEducatorProfile(ctx context.Context, accountID, institution, yearLevel, course string) (EducatorProfile, error) {
	if err := ctx.Err(); err != nil {
		return EducatorProfile{}, err
	}
	p := EducatorProfile{
		AccountID:   strings.TrimSpace(accountID),
		Institution: strings.TrimSpace(institution),
		YearLevel:   strings.TrimSpace(yearLevel),
		Course:      strings.TrimSpace(course),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.insertProfileLocked("account.CreateEducatorProfile", p); err != nil {
		return EducatorProfile{}, err
	}
	return p, nil
}

func (s *MemoryStore) CreateResearcherProfile(ctx context.Context, accountID, organization string) (ResearcherProfile, error) {
	if err := ctx.Err(); err != nil {
		return ResearcherProfile{}, err
	}
	p := ResearcherProfile{
		AccountID:    strings.TrimSpace(accountID),
		Organization: strings.TrimSpace(organization),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.insertProfileLocked("account.CreateResearcherProfile", p); err != nil {
		return ResearcherProfile{}, err
	}
	return p, nil
}

func (s *MemoryStore) insertProfileLocked(op string, p Profile) error {
	switch v := p.(type) {
	case EducatorProfile:
		if _, ok := s.accounts[v.AccountID]; !ok {
			return NotFoundError{Op: op, Resource: "account"}
		}
		if _, dup := s.educators[v.AccountID]; dup {
			return ConflictError{Op: op, Field: "profile"}
		}
		s.educators[v.AccountID] = v
	case ResearcherProfile:
		if _, ok := s.accounts[v.AccountID]; !ok {
			return NotFoundError{Op: op, Resource: "account"}
		}
		if _, dup := s.researchers[v.AccountID]; dup {
			return ConflictError{Op: op, Field: "profile"}
		}
		s.researchers[v.AccountID] = v
	default:
		return invalid(op, "unknown profile")
	}
	return nil
}

func (s *MemoryStore) FindEducatorProfile(ctx context.Context, accountID string) (EducatorProfile, error) {
	if err := ctx.Err(); err != nil {
		return EducatorProfile{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.educators[accountID]
	if !ok {
		return EducatorProfile{}, NotFoundError{Op: "account.FindEducatorProfile", Resource: "educator"}
	}
	return p, nil
}

func (s *MemoryStore) FindResearcherProfile(ctx context.Context, accountID string) (ResearcherProfile, error) {
	if err := ctx.Err(); err != nil {
		return ResearcherProfile{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.researchers[accountID]
	if !ok {
		return ResearcherProfile{}, NotFoundError{Op: "account.FindResearcherProfile", Resource: "researcher"}
	}
	return p, nil
}

func (s *MemoryStore) Register(ctx context.Context, in RegisterInput) (Account, Profile, error) {
	const op = "account.Register"
	if err := ctx.Err(); err != nil {
		return Account{}, nil, err
	}
	in, err := validateRegister(op, in)
	if err != nil {
		return Account{}, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.insertAccountLocked(op, in.Account)
	if err != nil {
		return Account{}, nil, err
	}
	prof := withAccountID(in.Profile, acc.ID)
	if err := s.insertProfileLocked(op, prof); err != nil {
		delete(s.accounts, acc.ID)
		delete(s.byEmail, acc.Email)
		return Account{}, nil, err
	}
	return acc, prof, nil
}
