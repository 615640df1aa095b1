package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/saludgo/platform/internal/session"
	"github.com/saludgo/platform/pkg/logging"
)

// Service implements registration, authentication and role management.
type Service struct {
	repo       Repository
	jwtSecret  []byte
	sessionTTL time.Duration
	logger     *logging.Logger
	clock      func() time.Time
}

// NewService creates the account service.
func NewService(repo Repository, jwtSecret string, sessionTTL time.Duration, logger *logging.Logger) *Service {
	if repo == nil {
		panic("accounts: repository required")
	}
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:       repo,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
		logger:     logger,
		clock:      time.Now,
	}
}

// WithClock overrides the time source for tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// Register creates a new user account with a hashed password.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Account, error) {
	req.normalize()
	if req.Username == "" {
		return nil, fmt.Errorf("accounts: username required: %w", ErrInvalidCredentials)
	}
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("accounts: hash password: %w", err)
	}
	acct, err := s.repo.Create(ctx, &Account{
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         RoleUser,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("account registered", "account_id", acct.ID, "username", acct.Username)
	return acct, nil
}

// Authenticate verifies credentials and issues a signed session token.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Account, string, error) {
	acct, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.issueToken(acct)
	if err != nil {
		return nil, "", err
	}
	return acct, token, nil
}

type sessionClaims struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Service) issueToken(acct *Account) (string, error) {
	now := s.clock()
	claims := sessionClaims{
		Username: acct.Username,
		Email:    acct.Email,
		Role:     acct.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("accounts: sign session token: %w", err)
	}
	return token, nil
}

// ParseToken validates a session token and returns the principal it
// carries.
func (s *Service) ParseToken(tokenString string) (session.Principal, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("accounts: unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.clock))
	if err != nil || !token.Valid {
		return session.Principal{}, ErrInvalidCredentials
	}
	return session.Principal{
		AccountID: claims.Subject,
		Username:  claims.Username,
		Email:     claims.Email,
		Role:      claims.Role,
	}, nil
}

// GetByID returns the account for id.
func (s *Service) GetByID(ctx context.Context, id string) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail returns the account registered under email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return s.repo.GetByEmail(ctx, email)
}

// List returns all accounts, for the administrative surface.
func (s *Service) List(ctx context.Context) ([]*Account, error) {
	return s.repo.List(ctx)
}

// UpdateRole changes an account's role.
func (s *Service) UpdateRole(ctx context.Context, id, role string) error {
	if role != RoleUser && role != RoleAdmin {
		return ErrInvalidRole
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return err
	}
	s.logger.Info("account role updated", "account_id", id, "role", role)
	return nil
}

// UpdateContact changes the account's email and phone.
func (s *Service) UpdateContact(ctx context.Context, id, email, phone string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)
	return s.repo.UpdateContact(ctx, id, email, phone)
}

// Delete removes an account. An administrator cannot delete their own
// account.
func (s *Service) Delete(ctx context.Context, id, requestedBy string) error {
	if id == requestedBy {
		return ErrSelfDelete
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("account deleted", "account_id", id, "by", requestedBy)
	return nil
}

// SetPassword replaces the account's password with a fresh hash.
func (s *Service) SetPassword(ctx context.Context, id, password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("accounts: hash password: %w", err)
	}
	return s.repo.UpdatePasswordHash(ctx, id, string(hash))
}
