// Package device tags each request with a stable anonymous device id and a
// human-readable device label.
package device

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"storefront/pkg/requestcontext"
)

const (
	CookieName   = "device_id"
	cookieMaxAge = 365 * 24 * time.Hour
)

// Config controls the device cookie.
type Config struct {
	CookieName string
	Secure     bool
}

// Middleware reads the device cookie, issuing one when missing or malformed.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	name := cfg.CookieName
	if name == "" {
		name = CookieName
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deviceID := ""
			if c, err := r.Cookie(name); err == nil {
				if _, perr := uuid.Parse(c.Value); perr == nil {
					deviceID = c.Value
				}
			}
			if deviceID == "" {
				deviceID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     name,
					Value:    deviceID,
					Path:     "/",
					MaxAge:   int(cookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := requestcontext.WithDeviceID(r.Context(), deviceID)
			ctx = requestcontext.WithDeviceLabel(ctx, ParseUserAgent(r.Header.Get("User-Agent")))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetDeviceID retrieves the device identifier (cookie value) from the context.
func GetDeviceID(ctx context.Context) string {
	return requestcontext.DeviceID(ctx)
}

// ParseUserAgent renders "<Browser> on <OS>", or "Unknown Device" for an
// empty header.
func ParseUserAgent(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "Unknown Device"
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	browser = strings.TrimSpace(browser)
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := strings.TrimSpace(ua.OS())
	if os == "" {
		os = strings.TrimSpace(ua.Platform())
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.Join(strings.Fields(fmt.Sprintf("%s on %s", browser, os)), " ")
}
