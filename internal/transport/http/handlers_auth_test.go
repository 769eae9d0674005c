package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	authModel "storefront/internal/auth/models"
	"storefront/internal/transport/http/mocks"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/requestcontext"
	"storefront/pkg/testutil"
)

//go:generate mockgen -source=handlers_auth.go -destination=mocks/auth-mocks.go -package=mocks AuthService
type AuthHandlerSuite struct {
	suite.Suite
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) newHandler(t *testing.T) (*mocks.MockAuthService, *chi.Mux) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockService := mocks.NewMockAuthService(ctrl)
	handler := NewAuthHandler(mockService, logger, CookieConfig{Name: "token"})
	r := chi.NewRouter()
	handler.Register(r)
	handler.RegisterAuthenticated(r)
	return mockService, r
}

func sessionCookie(rr interface{ Result() *http.Response }) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	return nil
}

func (s *AuthHandlerSuite) TestHandler_Login() {
	validRequest := authModel.LoginRequest{Email: "ada@example.com", Password: "correct-horse"}

	s.T().Run("success sets session cookie - 200", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Login(gomock.Any(), validRequest).Return(&authModel.AuthResult{
			User:        authModel.Profile{ID: "u-1", Email: validRequest.Email, Role: "user"},
			AccessToken: "signed-token",
			ExpiresIn:   time.Hour,
		}, nil)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", validRequest))

		testutil.AssertStatus(t, rr, http.StatusOK)
		cookie := sessionCookie(rr)
		if assert.NotNil(t, cookie) {
			assert.Equal(t, "signed-token", cookie.Value)
			assert.True(t, cookie.HttpOnly)
			assert.Equal(t, 3600, cookie.MaxAge)
		}
		got := testutil.UnmarshalResponse[authModel.AuthResult](t, rr)
		assert.Equal(t, "signed-token", got.AccessToken)
		assert.Equal(t, "user", got.User.Role)
	})

	s.T().Run("returns 400 when request body is invalid json", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Login(gomock.Any(), gomock.Any()).Times(0)

		req := testutil.NewRequest(t, http.MethodPost, "/api/auth/login")
		req.Body = io.NopCloser(strings.NewReader("{bad-json"))
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.T().Run("bad credentials - 401 without cookie", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Login(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password"))

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", validRequest))

		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
		assert.Nil(t, sessionCookie(rr))
	})

	s.T().Run("unexpected failure - 500 hides details", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Login(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", validRequest))

		testutil.AssertStatus(t, rr, http.StatusInternalServerError)
		assert.NotContains(t, rr.Body.String(), "boom")
	})
}

func (s *AuthHandlerSuite) TestHandler_Register() {
	req := authModel.RegisterRequest{Email: "new@example.com", Password: "correct-horse", FullName: "New Shopper"}

	s.T().Run("success - 201 with cookie", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Register(gomock.Any(), req).Return(&authModel.AuthResult{
			User:        authModel.Profile{ID: "u-2", Email: req.Email, Role: "user"},
			AccessToken: "fresh-token",
			ExpiresIn:   time.Hour,
		}, nil)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/register", req))

		testutil.AssertStatus(t, rr, http.StatusCreated)
		assert.NotNil(t, sessionCookie(rr))
	})

	s.T().Run("email taken - 409", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Register(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "email already registered"))

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/register", req))

		testutil.AssertStatusAndError(t, rr, http.StatusConflict, string(dErrors.CodeConflict))
	})
}

func (s *AuthHandlerSuite) TestHandler_Logout() {
	s.T().Run("revokes token id and expires cookie - 204", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Logout(gomock.Any(), "jti-1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, remaining time.Duration) error {
				assert.InDelta(t, time.Hour.Seconds(), remaining.Seconds(), 5)
				return nil
			})

		req := testutil.NewRequest(t, http.MethodPost, "/api/auth/logout")
		req = req.WithContext(requestcontext.WithToken(req.Context(), "jti-1", time.Now().Add(time.Hour)))
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusNoContent)
		cookie := sessionCookie(rr)
		if assert.NotNil(t, cookie) {
			assert.Equal(t, -1, cookie.MaxAge)
		}
	})
}
