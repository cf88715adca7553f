package security

import (
	"fmt"
	"net/http"
	"strings"
)

// HeadersConfig describes the headers sent with every dashboard response.
type HeadersConfig struct {
	// ScriptSources are origins allowed in script-src besides 'self'.
	ScriptSources []string
	// HSTSMaxAge is sent as Strict-Transport-Security over TLS only. Zero
	// disables it.
	HSTSMaxAge int
	// CrossOriginEmbedder is left empty by default: the htmx script is
	// loaded from unpkg without a CORP header.
	CrossOriginEmbedder string
}

// DefaultHeadersConfig allows htmx from unpkg and a one year HSTS.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		ScriptSources: []string{"https://unpkg.com"},
		HSTSMaxAge:    31536000,
	}
}

// contentSecurityPolicy allows the page, its htmx partials and inline SVG
// charts. htmx injects its indicator styles inline.
func (c HeadersConfig) contentSecurityPolicy() string {
	scripts := append([]string{"'self'"}, c.ScriptSources...)
	directives := []string{
		"default-src 'self'",
		"script-src " + strings.Join(scripts, " "),
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
		"connect-src 'self'",
		"object-src 'none'",
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}
	return strings.Join(directives, "; ")
}

// HeadersMiddleware applies security headers to responses
type HeadersMiddleware struct {
	headers http.Header
	hsts    string
}

// NewHeadersMiddleware builds the header set once.
func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	h := http.Header{}
	h.Set("Content-Security-Policy", config.contentSecurityPolicy())
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Referrer-Policy", "same-origin")
	h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
	h.Set("Cross-Origin-Opener-Policy", "same-origin")
	h.Set("Cross-Origin-Resource-Policy", "same-origin")
	if config.CrossOriginEmbedder != "" {
		h.Set("Cross-Origin-Embedder-Policy", config.CrossOriginEmbedder)
	}
	// Pages and partials carry one browser's transactions.
	h.Set("Cache-Control", "no-store")

	m := &HeadersMiddleware{headers: h}
	if config.HSTSMaxAge > 0 {
		m.hsts = fmt.Sprintf("max-age=%d; includeSubDomains", config.HSTSMaxAge)
	}
	return m
}

// Middleware returns the HTTP middleware function
func (m *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dst := w.Header()
		for k := range m.headers {
			dst.Set(k, m.headers.Get(k))
		}
		if r.TLS != nil && m.hsts != "" {
			dst.Set("Strict-Transport-Security", m.hsts)
		}
		next.ServeHTTP(w, r)
	})
}

// StaticAssetMiddleware replaces the no-store default with a public cache
// lifetime for embedded assets.
func StaticAssetMiddleware(maxAge int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxAge > 0 {
				w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
			}
			next.ServeHTTP(w, r)
		})
	}
}
