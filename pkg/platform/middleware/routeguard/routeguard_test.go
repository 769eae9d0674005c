package routeguard

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwttoken "storefront/internal/jwt_token"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/middleware/auth"
	"storefront/pkg/requestcontext"

	"github.com/stretchr/testify/suite"
)

type RouteGuardSuite struct {
	suite.Suite
	jwt       *jwttoken.JWTService
	decisions []Decision
	reached   bool
	seenRole  id.Role
	handler   http.Handler
}

func TestRouteGuardSuite(t *testing.T) {
	suite.Run(t, new(RouteGuardSuite))
}

func (s *RouteGuardSuite) SetupTest() {
	s.jwt = jwttoken.NewJWTService("guard-secret", "storefront")
	s.decisions = nil
	s.reached = false
	s.seenRole = ""
	s.handler = New(Config{
		Validator:  jwttoken.NewJWTServiceAdapter(s.jwt),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		OnDecision: func(d Decision) { s.decisions = append(s.decisions, d) },
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.reached = true
		s.seenRole = requestcontext.Role(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func (s *RouteGuardSuite) token(role id.Role, ttl time.Duration) string {
	tok, err := s.jwt.GenerateAccessToken(jwttoken.Subject{
		UserID:   id.NewUserID(),
		Email:    "shopper@example.com",
		FullName: "Shopper",
		Role:     role,
	}, ttl)
	s.Require().NoError(err)
	return tok
}

func (s *RouteGuardSuite) get(path, cookie string) *httptest.ResponseRecorder {
	s.reached = false
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

func (s *RouteGuardSuite) TestUnprotectedPathsPassThrough() {
	for _, path := range []string{"/", "/login", "/account", "/account/administrator", "/api/cart"} {
		w := s.get(path, "")
		s.Equal(http.StatusOK, w.Code, path)
		s.True(s.reached, path)
	}
}

func (s *RouteGuardSuite) TestNoCookieRedirectsToLogin() {
	w := s.get("/account/user/orders", "")
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/login", w.Header().Get("Location"))
	s.False(s.reached)
	s.Empty(w.Result().Cookies())
	s.Equal([]Decision{DecisionNoToken}, s.decisions)
}

func (s *RouteGuardSuite) TestInvalidTokenRedirectsAndPurgesCookie() {
	cases := map[string]string{
		"garbage": "not-a-jwt",
		"expired": s.token(id.RoleUser, -time.Minute),
	}
	for name, tok := range cases {
		s.Run(name, func() {
			w := s.get("/account/admin", tok)
			s.Equal(http.StatusFound, w.Code)
			s.Equal("/login", w.Header().Get("Location"))
			s.False(s.reached)

			cookies := w.Result().Cookies()
			s.Require().Len(cookies, 1)
			s.Equal(DefaultCookieName, cookies[0].Name)
			s.Equal(-1, cookies[0].MaxAge)
			s.Empty(cookies[0].Value)
		})
	}
}

func (s *RouteGuardSuite) TestUserOnAdminAreaRedirectsToUserHome() {
	w := s.get("/account/admin/reports", s.token(id.RoleUser, time.Hour))
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/account/user", w.Header().Get("Location"))
	s.False(s.reached)
}

func (s *RouteGuardSuite) TestAdminOnUserAreaRedirectsToAdminHome() {
	w := s.get("/account/user", s.token(id.RoleAdmin, time.Hour))
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/account/admin", w.Header().Get("Location"))
}

func (s *RouteGuardSuite) TestMatchingRolePassesWithClaims() {
	w := s.get("/account/admin/reports", s.token(id.RoleAdmin, time.Hour))
	s.Equal(http.StatusOK, w.Code)
	s.True(s.reached)
	s.Equal(id.RoleAdmin, s.seenRole)

	w = s.get("/account/user/profile", s.token(id.RoleUser, time.Hour))
	s.Equal(http.StatusOK, w.Code)
	s.Equal(id.RoleUser, s.seenRole)
	s.Equal([]Decision{DecisionAllow, DecisionAllow}, s.decisions)
}

type panickingValidator struct{}

func (panickingValidator) ValidateToken(string) (*auth.JWTClaims, error) { panic("boom") }

func (s *RouteGuardSuite) TestValidatorPanicIsTreatedAsInvalid() {
	h := New(Config{Validator: panickingValidator{}})(http.NotFoundHandler())
	r := httptest.NewRequest(http.MethodGet, "/account/user", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "x"})
	w := httptest.NewRecorder()

	s.NotPanics(func() { h.ServeHTTP(w, r) })
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/login", w.Header().Get("Location"))
}
