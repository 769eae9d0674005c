package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	accountModel "storefront/internal/account/models"
	accountService "storefront/internal/account/service"
	accountStore "storefront/internal/account/store"
	authService "storefront/internal/auth/service"
	"storefront/internal/auth/store/revocation"
	userStore "storefront/internal/auth/store/user"
	"storefront/internal/catalog"
	jwttoken "storefront/internal/jwt_token"
	httptransport "storefront/internal/transport/http"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
)

// ClientSuite runs the client against a real in-memory API server.
type ClientSuite struct {
	suite.Suite
	server *httptest.Server
	client *Client
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cat := catalog.NewInMemory()
	s.Require().NoError(cat.LoadDefault())
	jwt := jwttoken.NewJWTService("client-test-secret", "storefront-test")
	trl := revocation.NewInMemoryTRL(time.Now)
	auth := authService.New(userStore.NewInMemoryUserStore(), jwt, trl, time.Hour,
		authService.WithLogger(logger), authService.WithBcryptCost(bcrypt.MinCost))

	s.server = httptest.NewServer(httptransport.NewRouter(httptransport.Deps{
		Logger:     logger,
		Auth:       auth,
		Account:    accountService.New(accountStore.NewInMemory(), cat, logger, nil),
		Catalog:    cat,
		Validator:  jwttoken.NewJWTServiceAdapter(jwt),
		Revocation: trl,
		Cookie:     httptransport.CookieConfig{Name: "token"},
	}))
	s.T().Cleanup(s.server.Close)

	var err error
	s.client, err = New(s.server.URL)
	s.Require().NoError(err)
}

func (s *ClientSuite) signUp() string {
	res, err := s.client.Register(context.Background(), "client@example.com", "correct-horse", "Client Shopper")
	s.Require().NoError(err)
	s.Require().NotEmpty(res.AccessToken)
	return res.AccessToken
}

func (s *ClientSuite) TestLoginAfterRegister() {
	ctx := context.Background()
	s.signUp()

	res, err := s.client.Login(ctx, "CLIENT@example.com", "correct-horse")
	s.Require().NoError(err)
	s.Equal("client@example.com", res.User.Email)
	s.Equal("user", res.User.Role)

	_, err = s.client.Login(ctx, "client@example.com", "wrong-password")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ClientSuite) TestWishlistRoundTrip() {
	ctx := context.Background()
	token := s.signUp()
	req := accountModel.AddToWishlistRequest{ProductID: "linen-wrap-dress", VariantKey: "olive-m"}

	created, err := s.client.AddToWishlist(ctx, token, req)
	s.Require().NoError(err)
	s.True(created)

	created, err = s.client.AddToWishlist(ctx, token, req)
	s.Require().NoError(err)
	s.False(created)

	items, err := s.client.FetchWishlist(ctx, token)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(id.Variant("olive-m"), items[0].VariantKey)

	s.Require().NoError(s.client.RemoveFromWishlist(ctx, token, "linen-wrap-dress", id.Variant("olive-m")))
	items, err = s.client.FetchWishlist(ctx, token)
	s.Require().NoError(err)
	s.Empty(items)
	s.NotNil(items)
}

func (s *ClientSuite) TestCartRoundTrip() {
	ctx := context.Background()
	token := s.signUp()

	_, err := s.client.AddToCart(ctx, token, accountModel.AddToCartRequest{ProductID: "signet-ring", VariantKey: "size-7", Quantity: 1})
	s.Require().NoError(err)
	line, err := s.client.AddToCart(ctx, token, accountModel.AddToCartRequest{ProductID: "signet-ring", VariantKey: "size-7", Quantity: 2})
	s.Require().NoError(err)
	s.Equal(3, line.Quantity)

	cart, err := s.client.FetchCart(ctx, token)
	s.Require().NoError(err)
	s.Equal(3, cart.TotalItems)

	s.Require().NoError(s.client.ClearCart(ctx, token))
	cart, err = s.client.FetchCart(ctx, token)
	s.Require().NoError(err)
	s.Empty(cart.Lines)
}

func (s *ClientSuite) TestLogoutRevokesToken() {
	ctx := context.Background()
	token := s.signUp()

	s.Require().NoError(s.client.Logout(ctx, token))

	_, err := s.client.FetchCart(ctx, token)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ClientSuite) TestProductLookup() {
	p, err := s.client.Product(context.Background(), "gold-hoop-earrings")
	s.Require().NoError(err)
	s.EqualValues(12500, p.Price)

	_, err = s.client.Product(context.Background(), "no-such-product")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   dErrors.Code
	}{
		{"conflict from older server counts as present", http.StatusConflict, `{"error":"conflict"}`, ""},
		{"server error is unavailable", http.StatusBadGateway, `upstream down`, dErrors.CodeUnavailable},
		{"envelope code wins when consistent", http.StatusBadRequest, `{"error":"invalid_input","error_description":"unknown variant"}`, dErrors.CodeInvalidInput},
		{"unauthorized", http.StatusUnauthorized, `{}`, dErrors.CodeUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()
			c, err := New(srv.URL)
			require.NoError(t, err)

			_, err = c.AddToWishlist(context.Background(), "tok", accountModel.AddToWishlistRequest{ProductID: "p"})
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, dErrors.HasCode(err, tt.want), "got %v", err)
		})
	}
}

func TestClient_UnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)
	_, err = c.FetchCart(context.Background(), "tok")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("not a url")
	assert.Error(t, err)
}
