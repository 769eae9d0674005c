// Package client talks to the storefront account API on behalf of the
// shopper: login, product lookup, and the signed-in cart and wishlist.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	accountModel "storefront/internal/account/models"
	authModel "storefront/internal/auth/models"
	"storefront/internal/catalog"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithTracer(t trace.Tracer) Option {
	return func(cl *Client) { cl.tracer = t }
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid storefront api url %q", baseURL)
	}
	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tracer:     otel.Tracer("storefront/client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*authModel.AuthResult, error) {
	var res authModel.AuthResult
	err := c.call(ctx, "login", http.MethodPost, "/api/auth/login", "",
		authModel.LoginRequest{Email: email, Password: password}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, email, password, fullName string) (*authModel.AuthResult, error) {
	var res authModel.AuthResult
	err := c.call(ctx, "register", http.MethodPost, "/api/auth/register", "",
		authModel.RegisterRequest{Email: email, Password: password, FullName: fullName}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Logout revokes token on the server.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.call(ctx, "logout", http.MethodPost, "/api/auth/logout", token, nil, nil)
}

func (c *Client) Product(ctx context.Context, productID id.ProductID) (catalog.Product, error) {
	var p catalog.Product
	err := c.call(ctx, "product", http.MethodGet, "/api/products/"+url.PathEscape(productID.String()), "", nil, &p)
	return p, err
}

// AddToWishlist reports whether a new entry was created. An entry that was
// already present is not an error, including a 409 from older servers.
func (c *Client) AddToWishlist(ctx context.Context, token string, req accountModel.AddToWishlistRequest) (bool, error) {
	var res accountModel.AddToWishlistResult
	err := c.call(ctx, "wishlist.add", http.MethodPost, "/api/wishlist", token, req, &res)
	if dErrors.HasCode(err, dErrors.CodeConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return res.Created, nil
}

func (c *Client) FetchWishlist(ctx context.Context, token string) ([]accountModel.WishlistEntry, error) {
	var res accountModel.WishlistResponse
	if err := c.call(ctx, "wishlist.get", http.MethodGet, "/api/wishlist", token, nil, &res); err != nil {
		return nil, err
	}
	if res.Items == nil {
		res.Items = []accountModel.WishlistEntry{}
	}
	return res.Items, nil
}

func (c *Client) RemoveFromWishlist(ctx context.Context, token string, productID id.ProductID, variant id.VariantKey) error {
	path := "/api/wishlist/" + url.PathEscape(productID.String())
	if key, ok := variant.Key(); ok {
		path += "?variantKey=" + url.QueryEscape(key)
	}
	return c.call(ctx, "wishlist.remove", http.MethodDelete, path, token, nil, nil)
}

func (c *Client) AddToCart(ctx context.Context, token string, req accountModel.AddToCartRequest) (accountModel.CartLine, error) {
	var line accountModel.CartLine
	err := c.call(ctx, "cart.add", http.MethodPost, "/api/cart", token, req, &line)
	return line, err
}

func (c *Client) FetchCart(ctx context.Context, token string) (accountModel.Cart, error) {
	var cart accountModel.Cart
	if err := c.call(ctx, "cart.get", http.MethodGet, "/api/cart", token, nil, &cart); err != nil {
		return accountModel.Cart{}, err
	}
	if cart.Lines == nil {
		cart.Lines = []accountModel.CartLine{}
	}
	return cart, nil
}

func (c *Client) ClearCart(ctx context.Context, token string) error {
	return c.call(ctx, "cart.clear", http.MethodDelete, "/api/cart", token, nil, nil)
}

func (c *Client) call(ctx context.Context, op, method, path, token string, body, result any) (err error) {
	ctx, span := c.tracer.Start(ctx, "storefront."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, op+" failed")
		}
		span.End()
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "storefront api unreachable")
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return parseError(resp.StatusCode, data)
	}
	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// parseError turns an error response into a domain error, preferring the
// code the server put in the envelope.
func parseError(status int, data []byte) error {
	var body errorBody
	_ = json.Unmarshal(data, &body)

	code := codeForStatus(status)
	if c := dErrors.Code(body.Error); c != "" && dErrors.ToHTTPStatus(c) == status {
		code = c
	}
	msg := body.ErrorDescription
	if msg == "" {
		msg = fmt.Sprintf("storefront api returned %d", status)
	}
	return dErrors.New(code, msg)
}

func codeForStatus(status int) dErrors.Code {
	switch {
	case status == http.StatusUnauthorized:
		return dErrors.CodeUnauthorized
	case status == http.StatusForbidden:
		return dErrors.CodeForbidden
	case status == http.StatusNotFound:
		return dErrors.CodeNotFound
	case status == http.StatusConflict:
		return dErrors.CodeConflict
	case status >= 500:
		return dErrors.CodeUnavailable
	default:
		return dErrors.CodeBadRequest
	}
}
