// Package service implements storefront login, registration and logout.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/auth/models"
	jwttoken "storefront/internal/jwt_token"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	GenerateAccessToken(subject jwttoken.Subject, expiresIn time.Duration) (string, error)
}

// RevocationList records logged-out token ids.
type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
}

// Metrics is the subset of platform metrics the service records.
type Metrics interface {
	IncUsersCreated()
	IncLoginFailures()
}

type Service struct {
	users      UserStore
	tokens     TokenIssuer
	revocation RevocationList
	logger     *slog.Logger
	metrics    Metrics
	tokenTTL   time.Duration
	bcryptCost int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func New(users UserStore, tokens TokenIssuer, revocation RevocationList, tokenTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		users:      users,
		tokens:     tokens,
		revocation: revocation,
		logger:     slog.Default(),
		tokenTTL:   tokenTTL,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a shopper account and signs it in.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	user, err := s.createUser(ctx, req.Email, req.Password, req.FullName, id.RoleUser)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return s.issue(user)
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password return the same error.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.loginFailed(ctx, "unknown email")
			return nil, invalidCredentials()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
		s.loginFailed(ctx, "password mismatch")
		return nil, invalidCredentials()
	}
	s.logger.InfoContext(ctx, "user logged in",
		"user_id", user.ID.String(),
		"role", user.Role.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return s.issue(user)
}

// Logout revokes the token id for the rest of its lifetime. A token that is
// already expired needs no entry.
func (s *Service) Logout(ctx context.Context, jti string, remaining time.Duration) error {
	if jti == "" || remaining <= 0 || s.revocation == nil {
		return nil
	}
	if err := s.revocation.RevokeToken(ctx, jti, remaining); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	return nil
}

// Profile returns the public view of a user.
func (s *Service) Profile(ctx context.Context, userID id.UserID) (*models.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	p := user.Profile()
	return &p, nil
}

// SeedAdmin creates the admin account if the email is not registered yet.
func (s *Service) SeedAdmin(ctx context.Context, email, password, fullName string) error {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	if fullName == "" {
		fullName = "Store Admin"
	}
	_, err := s.createUser(ctx, email, password, fullName, id.RoleAdmin)
	if dErrors.HasCode(err, dErrors.CodeConflict) {
		return nil
	}
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "admin user seeded", "email", email)
	return nil
}

func (s *Service) createUser(ctx context.Context, email, password, fullName string, role id.Role) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	user := &models.User{
		ID:           id.NewUserID(),
		Email:        email,
		FullName:     fullName,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	if s.metrics != nil {
		s.metrics.IncUsersCreated()
	}
	return user, nil
}

func (s *Service) issue(user *models.User) (*models.AuthResult, error) {
	token, err := s.tokens.GenerateAccessToken(jwttoken.Subject{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
	}, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return &models.AuthResult{
		User:        user.Profile(),
		AccessToken: token,
		ExpiresIn:   s.tokenTTL,
	}, nil
}

func (s *Service) loginFailed(ctx context.Context, reason string) {
	s.logger.WarnContext(ctx, "login failed",
		"reason", reason,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncLoginFailures()
	}
}

func invalidCredentials() error {
	return dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
}
