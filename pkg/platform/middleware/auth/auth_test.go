package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	id "storefront/pkg/domain"
	"storefront/pkg/requestcontext"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (v stubValidator) ValidateToken(string) (*JWTClaims, error) { return v.claims, v.err }

type stubRevocation struct {
	revoked bool
	err     error
}

func (c stubRevocation) IsRevoked(context.Context, string) (bool, error) { return c.revoked, c.err }

type AuthMiddlewareSuite struct {
	suite.Suite
	logger *slog.Logger
	claims *JWTClaims
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}

func (s *AuthMiddlewareSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.claims = &JWTClaims{
		UserID:    id.NewUserID(),
		Role:      id.RoleUser,
		JTI:       "jti-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func (s *AuthMiddlewareSuite) serve(mw func(http.Handler) http.Handler, header string) (*httptest.ResponseRecorder, context.Context) {
	var seen context.Context
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Context()
		w.WriteHeader(http.StatusOK)
	}))
	r := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w, seen
}

func (s *AuthMiddlewareSuite) TestRequireAuth() {
	s.Run("missing header is unauthorized", func() {
		w, _ := s.serve(RequireAuth(stubValidator{claims: s.claims}, nil, s.logger), "")
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("non-bearer scheme is unauthorized", func() {
		w, _ := s.serve(RequireAuth(stubValidator{claims: s.claims}, nil, s.logger), "Basic abc")
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("invalid token is unauthorized", func() {
		w, _ := s.serve(RequireAuth(stubValidator{err: errors.New("bad")}, nil, s.logger), "Bearer x")
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("valid token injects identity", func() {
		w, ctx := s.serve(RequireAuth(stubValidator{claims: s.claims}, stubRevocation{}, s.logger), "Bearer good")
		s.Equal(http.StatusOK, w.Code)
		s.Equal(s.claims.UserID, requestcontext.UserID(ctx))
		s.Equal(id.RoleUser, requestcontext.Role(ctx))
		s.Equal("jti-1", requestcontext.TokenID(ctx))
	})

	s.Run("revoked token is unauthorized", func() {
		w, _ := s.serve(RequireAuth(stubValidator{claims: s.claims}, stubRevocation{revoked: true}, s.logger), "Bearer good")
		s.Equal(http.StatusUnauthorized, w.Code)
		s.Contains(w.Body.String(), "revoked")
	})

	s.Run("revocation lookup failure is internal", func() {
		w, _ := s.serve(RequireAuth(stubValidator{claims: s.claims}, stubRevocation{err: errors.New("redis down")}, s.logger), "Bearer good")
		s.Equal(http.StatusInternalServerError, w.Code)
	})
}

func (s *AuthMiddlewareSuite) TestRequireRole() {
	chain := func(next http.Handler) http.Handler {
		return RequireAuth(stubValidator{claims: s.claims}, nil, s.logger)(RequireRole(id.RoleAdmin, s.logger)(next))
	}
	w, _ := s.serve(chain, "Bearer good")
	s.Equal(http.StatusForbidden, w.Code)

	s.claims.Role = id.RoleAdmin
	w, _ = s.serve(chain, "Bearer good")
	assert.Equal(s.T(), http.StatusOK, w.Code)
}
