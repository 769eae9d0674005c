package admin

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireAdminToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	t.Run("matching token passes", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		r.Header.Set(HeaderAdminToken, "s3cret")
		w := httptest.NewRecorder()
		RequireAdminToken("s3cret", logger)(ok).ServeHTTP(w, r)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("wrong token rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		r.Header.Set(HeaderAdminToken, "nope")
		w := httptest.NewRecorder()
		RequireAdminToken("s3cret", logger)(ok).ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"unauthorized","error_description":"admin token required"}`, w.Body.String())
	})

	t.Run("empty expected token disables check", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireAdminToken("", logger)(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
