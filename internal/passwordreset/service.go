// Package passwordreset implements single-use, short-lived reset
// tokens stored in Redis.
package passwordreset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/saludgo/platform/internal/accounts"
	"github.com/saludgo/platform/internal/notify"
	"github.com/saludgo/platform/pkg/logging"
)

// ErrInvalidToken is returned when a token is unknown, expired or
// already used.
var ErrInvalidToken = errors.New("invalid or expired reset token")

const keyPrefix = "pwreset:"

// Directory resolves reset requests to accounts.
type Directory interface {
	GetByEmail(ctx context.Context, email string) (*accounts.Account, error)
}

// PasswordSetter rotates the account password.
type PasswordSetter interface {
	SetPassword(ctx context.Context, id, password string) error
}

// Service issues and redeems reset tokens. Tokens live in Redis with a
// TTL and are consumed atomically on first use.
type Service struct {
	rdb       *redis.Client
	directory Directory
	passwords PasswordSetter
	email     notify.EmailSender
	baseURL   string
	ttl       time.Duration
	logger    *logging.Logger
}

// NewService creates the reset service.
func NewService(rdb *redis.Client, directory Directory, passwords PasswordSetter, email notify.EmailSender, baseURL string, ttl time.Duration, logger *logging.Logger) *Service {
	if rdb == nil {
		panic("passwordreset: redis client required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		rdb:       rdb,
		directory: directory,
		passwords: passwords,
		email:     email,
		baseURL:   baseURL,
		ttl:       ttl,
		logger:    logger,
	}
}

// Request issues a token for the account behind email, if one exists.
// The caller's response must not reveal whether the account was found.
func (s *Service) Request(ctx context.Context, email string) error {
	acct, err := s.directory.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			s.logger.Debug("reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("passwordreset: lookup: %w", err)
	}

	token := uuid.NewString()
	if err := s.rdb.Set(ctx, keyPrefix+token, acct.ID, s.ttl).Err(); err != nil {
		return fmt.Errorf("passwordreset: store token: %w", err)
	}

	if s.email != nil {
		msg := notify.EmailMessage{
			To:      acct.Email,
			ToName:  acct.Username,
			Subject: "Password reset",
			Body: fmt.Sprintf(`Hello %s,

A password reset was requested for your account. Use this link within
%d minutes:

%s/auth/reset/%s

If you did not request this, ignore this message.

— SaludGo`, acct.Username, int(s.ttl.Minutes()), s.baseURL, token),
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("reset email failed", "error", err, "account_id", acct.ID)
			return fmt.Errorf("passwordreset: send email: %w", err)
		}
	}
	s.logger.Info("reset token issued", "account_id", acct.ID)
	return nil
}

// Confirm redeems a token and sets the new password. The token is
// deleted before the password changes, so it can never be replayed.
func (s *Service) Confirm(ctx context.Context, token, newPassword string) error {
	accountID, err := s.rdb.GetDel(ctx, keyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidToken
		}
		return fmt.Errorf("passwordreset: redeem token: %w", err)
	}
	if err := s.passwords.SetPassword(ctx, accountID, newPassword); err != nil {
		return err
	}
	s.logger.Info("password reset completed", "account_id", accountID)
	return nil
}
