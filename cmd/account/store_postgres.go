package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over PostgreSQL.
//
// The pgx pool is owned by the caller; this store must NOT close it.
// Schema/table identifiers are quoted via pgx.Identifier.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema (default "quest2go").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("account: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("account: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "quest2go",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("account: nil pool")
	}
	return st, nil
}

// pgConn is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresStore) table(name string) string {
	return pgx.Identifier{s.schema, name}.Sanitize()
}

func (s *PostgresStore) ready(ctx context.Context, op string) error {
	if s == nil || s.pool == nil {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	return ctx.Err()
}

// FindByEmail looks up an account by its exact email.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (Account, error) {
	const op = "account.FindByEmail"
	if err := s.ready(ctx, op); err != nil {
		return Account{}, err
	}
	email = NormalizeEmail(email)
	if email == "" {
		return Account{}, invalid(op, "email is required")
	}
	return s.scanAccount(ctx, op, `WHERE email = $1`, email)
}

// FindAccountByID looks up an account by id.
func (s *PostgresStore) FindAccountByID(ctx context.Context, id string) (Account, error) {
	const op = "account.FindAccountByID"
	if err := s.ready(ctx, op); err != nil {
		return Account{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Account{}, invalid(op, "id is required")
	}
	return s.scanAccount(ctx, op, `WHERE id = $1`, id)
}

func (s *PostgresStore) scanAccount(ctx context.Context, op, where string, arg string) (Account, error) {
	var (
		a    Account
		role string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, first_name, last_name, password_hash, user_type, created_at
		   FROM `+s.table("accounts")+` `+where,
		arg,
	).Scan(&a.ID, &a.Email, &a.FirstName, &a.LastName, &a.PasswordHash, &role, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, NotFoundError{Op: op, Resource: "account"}
		}
		return Account{}, err
	}
	a.Role = Role(role)
	return a, nil
}

// CreateAccount inserts a single account row.
func (s *PostgresStore) CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error) {
	const op = "account.CreateAccount"
	if err := s.ready(ctx, op); err != nil {
		return Account{}, err
	}
	in, err := validateCreate(op, in)
	if err != nil {
		return Account{}, err
	}
	return s.insertAccount(ctx, s.pool, op, in)
}

func (s *PostgresStore) insertAccount(ctx context.Context, db pgConn, op string, in CreateAccountInput) (Account, error) {
	id, err := NewID(in.Now)
	if err != nil {
		return Account{}, err
	}

	_, err = db.Exec(ctx,
		`INSERT INTO `+s.table("accounts")+` (
		     id, email, first_name, last_name, password_hash, user_type, created_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, in.Email, in.FirstName, in.LastName, in.PasswordHash, string(in.Role), in.Now,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return Account{}, ConflictError{Op: op, Field: field}
		}
		return Account{}, err
	}

	return Account{
		ID:           id,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: in.PasswordHash,
		Role:         in.Role,
		CreatedAt:    in.Now,
	}, nil
}

// CreateEducatorProfile inserts the educator extension for accountID.
func (s *PostgresStore) CreateEducatorProfile(ctx context.Context, accountID, institution, yearLevel, course string) (EducatorProfile, error) {
	const op = "account.CreateEducatorProfile"
	if err := s.ready(ctx, op); err != nil {
		return EducatorProfile{}, err
	}
	p := EducatorProfile{
		AccountID:   strings.TrimSpace(accountID),
		Institution: strings.TrimSpace(institution),
		YearLevel:   strings.TrimSpace(yearLevel),
		Course:      strings.TrimSpace(course),
	}
	if p.AccountID == "" {
		return EducatorProfile{}, invalid(op, "account id is required")
	}
	if err := s.insertProfile(ctx, s.pool, op, p); err != nil {
		return EducatorProfile{}, err
	}
	return p, nil
}

// CreateResearcherProfile inserts the researcher extension for accountID.
func (s *PostgresStore) CreateResearcherProfile(ctx context.Context, accountID, organization string) (ResearcherProfile, error) {
	const op = "account.CreateResearcherProfile"
	if err := s.ready(ctx, op); err != nil {
		return ResearcherProfile{}, err
	}
	p := ResearcherProfile{
		AccountID:    strings.TrimSpace(accountID),
		Organization: strings.TrimSpace(organization),
	}
	if p.AccountID == "" {
		return ResearcherProfile{}, invalid(op, "account id is required")
	}
	if err := s.insertProfile(ctx, s.pool, op, p); err != nil {
		return ResearcherProfile{}, err
	}
	return p, nil
}

func (s *PostgresStore) insertProfile(ctx context.Context, db pgConn, op string, p Profile) error {
	var err error
	switch v := p.(type) {
	case EducatorProfile:
		_, err = db.Exec(ctx,
			`INSERT INTO `+s.table("educators")+` (account_id, institution_name, year_level, course_type)
			 VALUES ($1, $2, $3, $4)`,
			v.AccountID, v.Institution, v.YearLevel, v.Course,
		)
	case ResearcherProfile:
		_, err = db.Exec(ctx,
			`INSERT INTO `+s.table("researchers")+` (account_id, organization_name)
			 VALUES ($1, $2)`,
			v.AccountID, v.Organization,
		)
	default:
		return invalid(op, "unknown profile")
	}
	if err != nil {
		if pgIsForeignKeyViolation(err) {
			return NotFoundError{Op: op, Resource: "account"}
		}
		if _, ok := pgClassifyUniqueViolation(err); ok {
			return ConflictError{Op: op, Field: "profile"}
		}
		return err
	}
	return nil
}

// FindEducatorProfile loads the educator extension for accountID.
func (s *PostgresStore) FindEducatorProfile(ctx context.Context, accountID string) (EducatorProfile, error) {
	const op = "account.FindEducatorProfile"
	if err := s.ready(ctx, op); err != nil {
		return EducatorProfile{}, err
	}
	p := EducatorProfile{AccountID: accountID}
	err := s.pool.QueryRow(ctx,
		`SELECT institution_name, year_level, course_type
		   FROM `+s.table("educators")+`
		  WHERE account_id = $1`,
		accountID,
	).Scan(&p.Institution, &p.YearLevel, &p.Course)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return EducatorProfile{}, NotFoundError{Op: op, Resource: "educator"}
		}
		return EducatorProfile{}, err
	}
	return p, nil
}

// FindResearcherProfile loads the researcher extension for accountID.
func (s *PostgresStore) FindResearcherProfile(ctx context.Context, accountID string) (ResearcherProfile, error) {
	const op = "account.FindResearcherProfile"
	if err := s.ready(ctx, op); err != nil {
		return ResearcherProfile{}, err
	}
	p := ResearcherProfile{AccountID: accountID}
	err := s.pool.QueryRow(ctx,
		`SELECT organization_name
		   FROM `+s.table("researchers")+`
		  WHERE account_id = $1`,
		accountID,
	).Scan(&p.Organization)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ResearcherProfile{}, NotFoundError{Op: op, Resource: "researcher"}
		}
		return ResearcherProfile{}, err
	}
	return p, nil
}

// Register inserts the account and its profile in one transaction.
func (s *PostgresStore) Register(ctx context.Context, in RegisterInput) (Account, Profile, error) {
	const op = "account.Register"
	if err := s.ready(ctx, op); err != nil {
		return Account{}, nil, err
	}
	in, err := validateRegister(op, in)
	if err != nil {
		return Account{}, nil, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return Account{}, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	acc, err := s.insertAccount(ctx, tx, op, in.Account)
	if err != nil {
		return Account{}, nil, err
	}

	prof := withAccountID(in.Profile, acc.ID)
	if err := s.insertProfile(ctx, tx, op, prof); err != nil {
		return Account{}, nil, fmt.Errorf("%s: profile: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Account{}, nil, err
	}
	return acc, prof, nil
}

func pgIsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23503" // foreign_key_violation
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))
	switch {
	case c == "uq_accounts_email", strings.Contains(c, "email"):
		return "email", true
	case strings.HasPrefix(c, "educators"), strings.HasPrefix(c, "researchers"):
		return "profile", true
	default:
		return "unique", true
	}
}
