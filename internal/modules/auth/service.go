// Package auth registers store owners and issues the tokens that carry their
// tenant identity.
package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/nota-backend/internal/apperr"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
)

const (
	maxLoginFailures = 5
	lockoutWindow    = 15 * time.Minute
)

var passwordChars = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,}$`)

// strongPassword needs a lower and upper case letter, a digit and one of
// @$!%*?&, drawn only from those classes.
func strongPassword(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	return passwordChars.MatchString(p) &&
		strings.ContainsAny(p, "abcdefghijklmnopqrstuvwxyz") &&
		strings.ContainsAny(p, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") &&
		strings.ContainsAny(p, "0123456789") &&
		strings.ContainsAny(p, "@$!%*?&")
}

var errBadCredentials = apperr.Unauthorized("invalid username or password")

// Service defines account business logic.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Session, error)
	// Login also provisions the tenant namespace, idempotently. key scopes
	// the failed-attempt lockout, usually the client address.
	Login(ctx context.Context, req LoginRequest, key string) (*Session, error)
	ChangePassword(ctx context.Context, id tenant.Identity, req ChangePasswordRequest) (*Session, error)
}

type service struct {
	repo     Repository
	tokens   *Tokens
	resolver *tenant.Resolver
	validate *validator.Validate
	attempts *attempts
	log      logrus.FieldLogger
	cost     int
}

// NewService builds the account service. cost is the bcrypt cost; zero
// means bcrypt.DefaultCost.
func NewService(repo Repository, tokens *Tokens, resolver *tenant.Resolver, log logrus.FieldLogger, cost int) Service {
	v := validator.New()
	_ = v.RegisterValidation("password", strongPassword)
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &service{
		repo:     repo,
		tokens:   tokens,
		resolver: resolver,
		validate: v,
		attempts: newAttempts(maxLoginFailures, lockoutWindow),
		log:      log,
		cost:     cost,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.FromValidation(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, apperr.Storage("failed to hash password", err)
	}
	acc := &Account{
		TenantID:     "user_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(acc); err != nil {
		return nil, err
	}

	id := identityOf(acc)
	if _, err := s.resolver.ForIdentity(id); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"tenant": acc.TenantID, "username": acc.Username}).Info("account registered")
	return s.session(id)
}

func (s *service) Login(ctx context.Context, req LoginRequest, key string) (*Session, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.FromValidation(err)
	}
	now := time.Now()
	if err := s.attempts.check(key, now); err != nil {
		return nil, err
	}

	acc, err := s.repo.FindByUsername(strings.TrimSpace(req.Username))
	if errors.Is(err, apperr.ErrNotFound) {
		s.attempts.fail(key, now)
		s.log.WithField("username", req.Username).Warn("login failed: unknown user")
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)) != nil {
		s.attempts.fail(key, now)
		s.log.WithField("tenant", acc.TenantID).Warn("login failed: wrong password")
		return nil, errBadCredentials
	}
	s.attempts.reset(key)

	id := identityOf(acc)
	if _, err := s.resolver.ForIdentity(id); err != nil {
		return nil, err
	}
	s.log.WithField("tenant", acc.TenantID).Info("login succeeded")
	return s.session(id)
}

func (s *service) ChangePassword(ctx context.Context, id tenant.Identity, req ChangePasswordRequest) (*Session, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.FromValidation(err)
	}
	acc, err := s.repo.Get(id.TenantID)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return nil, apperr.Unauthorized("current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cost)
	if err != nil {
		return nil, apperr.Storage("failed to hash password", err)
	}
	if err := s.repo.SetPasswordHash(acc.TenantID, string(hash)); err != nil {
		return nil, err
	}
	s.log.WithField("tenant", acc.TenantID).Info("password changed")
	return s.session(identityOf(acc))
}

func (s *service) session(id tenant.Identity) (*Session, error) {
	token, err := s.tokens.Issue(id)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, UserID: id.TenantID, Username: id.Username, Role: id.Role}, nil
}

func identityOf(acc *Account) tenant.Identity {
	return tenant.Identity{TenantID: acc.TenantID, Username: acc.Username, Role: acc.Role}
}
