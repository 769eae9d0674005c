package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	accountService "storefront/internal/account/service"
	accountStore "storefront/internal/account/store"
	authService "storefront/internal/auth/service"
	"storefront/internal/auth/store/revocation"
	userStore "storefront/internal/auth/store/user"
	"storefront/internal/catalog"
	jwttoken "storefront/internal/jwt_token"
	"storefront/internal/platform/logger"
	httptransport "storefront/internal/transport/http"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := logger.Discard()
	cat := catalog.NewInMemory()
	require.NoError(t, cat.LoadDefault())
	jwt := jwttoken.NewJWTService("shopctl-test-secret", "storefront-test")
	trl := revocation.NewInMemoryTRL(time.Now)
	auth := authService.New(userStore.NewInMemoryUserStore(), jwt, trl, time.Hour,
		authService.WithLogger(log), authService.WithBcryptCost(bcrypt.MinCost))
	srv := httptest.NewServer(httptransport.NewRouter(httptransport.Deps{
		Logger:     log,
		Auth:       auth,
		Account:    accountService.New(accountStore.NewInMemory(), cat, log, nil),
		Catalog:    cat,
		Validator:  jwttoken.NewJWTServiceAdapter(jwt),
		Revocation: trl,
		Cookie:     httptransport.CookieConfig{Name: "token"},
	}))
	t.Cleanup(srv.Close)
	return srv
}

type cli struct {
	t        *testing.T
	apiURL   string
	stateDir string
}

func (c cli) run(args ...string) (string, error) {
	c.t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--api-url", c.apiURL, "--state-dir", c.stateDir}, args...))
	err := root.Execute()
	return out.String(), err
}

func (c cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "shopctl %v", args)
	return out
}

func TestShopctl_AnonymousThenRegisterMerges(t *testing.T) {
	srv := newTestServer(t)
	c := cli{t: t, apiURL: srv.URL, stateDir: t.TempDir()}

	out := c.mustRun("cart", "add", "signet-ring", "--variant", "size-7", "--qty", "2")
	assert.Contains(t, out, "signet-ring")
	assert.Contains(t, out, "178.00")

	out = c.mustRun("wishlist", "add", "pearl-drop-necklace")
	assert.Contains(t, out, "189.00")

	assert.Equal(t, "anonymous\n", c.mustRun("whoami"))

	t.Setenv(passwordEnv, "correct-horse")
	out = c.mustRun("register", "--email", "cli@example.com", "--name", "Cli Shopper")
	assert.Contains(t, out, "signed in as cli@example.com (user)")
	assert.Contains(t, out, "merge merged: wishlist 1 added, 0 failed; cart 1 added, 0 failed")

	raw, err := os.ReadFile(filepath.Join(c.stateDir, "storefront_wishlist.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	out = c.mustRun("cart", "show")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "178.00")

	assert.Contains(t, c.mustRun("whoami"), "Cli Shopper <cli@example.com> role=user")

	assert.Equal(t, "signed out\n", c.mustRun("logout"))
	assert.Equal(t, "cart is empty\n", c.mustRun("cart", "show"))
}

func TestShopctl_MetricsFileRecordsMerge(t *testing.T) {
	srv := newTestServer(t)
	c := cli{t: t, apiURL: srv.URL, stateDir: t.TempDir()}
	metricsFile := filepath.Join(t.TempDir(), "shopctl.prom")

	c.mustRun("cart", "add", "signet-ring", "--variant", "size-7")
	t.Setenv(passwordEnv, "correct-horse")
	c.mustRun("--metrics-file", metricsFile, "register", "--email", "metrics@example.com")

	raw, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `storefront_merge_runs_total{outcome="merged"} 1`)
	assert.Contains(t, string(raw), `storefront_merge_items_total{kind="cart",result="ok"} 1`)
	assert.NotContains(t, string(raw), "storefront_users_created_total")
}

func TestShopctl_UpdateToZeroRemovesLine(t *testing.T) {
	srv := newTestServer(t)
	c := cli{t: t, apiURL: srv.URL, stateDir: t.TempDir()}

	c.mustRun("cart", "add", "gold-hoop-earrings")
	out := c.mustRun("cart", "update", "gold-hoop-earrings", "0")
	assert.Equal(t, "cart is empty\n", out)
}

func TestShopctl_Errors(t *testing.T) {
	srv := newTestServer(t)
	c := cli{t: t, apiURL: srv.URL, stateDir: t.TempDir()}

	_, err := c.run("cart", "add", "signet-ring", "--variant", "size-99")
	assert.Error(t, err)

	t.Setenv(passwordEnv, "")
	_, err = c.run("login", "--email", "nobody@example.com")
	assert.ErrorContains(t, err, "password required")

	_, err = c.run("login", "--email", "nobody@example.com", "--password", "wrong-password")
	assert.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0.05", formatMoney(5))
	assert.Equal(t, "125.00", formatMoney(12500))
	assert.Equal(t, "-1.50", formatMoney(-150))
}
