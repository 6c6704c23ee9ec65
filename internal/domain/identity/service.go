package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pdalabel/pdalabel/internal/platform/auth"
)

// ErrInvalidCredentials is returned on login with an unknown email or
// a wrong password. Both cases map to the same error so the endpoint
// does not leak which accounts exist.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AdminMatcher reports whether an email belongs to the configured
// administrator allowlist.
type AdminMatcher func(email string) bool

// Service implements account management and login.
type Service struct {
	repo    Repository
	issuer  *auth.Issuer
	isAdmin AdminMatcher
}

func NewService(repo Repository, issuer *auth.Issuer, isAdmin AdminMatcher) *Service {
	return &Service{repo: repo, issuer: issuer, isAdmin: isAdmin}
}

// Session is the result of a successful login.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
	Role  string `json:"role"`
}

// Login verifies the credentials and issues a bearer token. The role
// claim is computed from the admin allowlist at this point, never
// read from the database.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.VerifyPassword(password, u.HashedPassword) {
		return nil, ErrInvalidCredentials
	}

	role := auth.RoleOperator
	if s.isAdmin(u.Email) {
		role = auth.RoleAdmin
	}
	token, err := s.issuer.Sign(u.ID.String(), u.Email, role)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: token, User: u, Role: role}, nil
}

func (s *Service) validate(u *User, password string, requirePassword bool) error {
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	if requirePassword && password == "" {
		return fmt.Errorf("password is required")
	}
	if password != "" && len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// Create registers a new account with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, u *User, password string) error {
	if err := s.validate(u, password, true); err != nil {
		return err
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.HashedPassword = hashed
	return s.repo.Create(ctx, u)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Update changes the account's name and email, and its password when
// a non-empty one is given.
func (s *Service) Update(ctx context.Context, u *User, password string) error {
	if err := s.validate(u, password, false); err != nil {
		return err
	}
	current, err := s.repo.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	u.HashedPassword = current.HashedPassword
	if password != "" {
		hashed, err := auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u.HashedPassword = hashed
	}
	return s.repo.Update(ctx, u)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, offset)
}
