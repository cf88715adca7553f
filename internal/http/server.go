package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	applog "spendwise/internal/log"
	"spendwise/internal/middleware/ratelimit"
	"spendwise/internal/middleware/security"
	"spendwise/internal/middleware/trace"
	"spendwise/internal/services"
	"spendwise/internal/session"
	appweb "spendwise/web"
)

// Config holds the HTTP server settings.
type Config struct {
	Addr               string
	RateLimitPerMinute int
}

// Server serves the dashboard page, its HTMX partials and the JSON report.
type Server struct {
	http.Server
	templates *template.Template
	sessions  *session.Manager
	ledger    *services.Ledger
	logger    *applog.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	appMetrics   *appMetrics
	shutdownOnce sync.Once
}

// appMetrics tracks application-level counters
type appMetrics struct {
	transactions       int64
	budgetUpdates      int64
	validationFailures int64
	uptime             time.Time
}

// NewServer parses the embedded templates and wires routes and middleware.
func NewServer(cfg Config, sessions *session.Manager, ledger *services.Ledger, logger *applog.Logger) (*Server, error) {
	if sessions == nil || ledger == nil {
		return nil, fmt.Errorf("http: sessions and ledger are required")
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	limitConfig := ratelimit.DefaultConfig()
	if cfg.RateLimitPerMinute > 0 {
		limitConfig.RequestsPerMinute = cfg.RateLimitPerMinute
	}

	get := []string{http.MethodGet}
	post := []string{http.MethodPost}
	mux := http.NewServeMux()
	s := &Server{
		templates:   t,
		sessions:    sessions,
		ledger:      ledger,
		logger:      logger,
		rateLimiter: ratelimit.NewLimiter(limitConfig),
		appMetrics:  &appMetrics{uptime: time.Now()},
	}

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}

	routes := []struct {
		security.Route
		handler http.Handler
	}{
		{security.Route{Path: "/", Methods: get}, http.HandlerFunc(s.handleIndex)},
		{security.Route{Path: "/transactions", Methods: post}, http.HandlerFunc(s.handleCreateTransaction)},
		{security.Route{Path: "/budgets", Methods: post}, http.HandlerFunc(s.handleSetBudget)},
		{security.Route{Path: "/ui/dashboard", Methods: get}, http.HandlerFunc(s.handleDashboard)},
		{security.Route{Path: "/api/report", Methods: get}, http.HandlerFunc(s.handleReport)},
		{security.Route{Path: "/healthz", Methods: get}, http.HandlerFunc(s.handleHealth)},
		{security.Route{Path: "/readyz", Methods: get}, http.HandlerFunc(s.handleReady)},
		{security.Route{Path: "/metrics", Methods: get}, http.HandlerFunc(s.handleMetrics)},
		{security.Route{Path: "/static/", Methods: get, Prefix: true}, security.StaticAssetMiddleware(3600)(
			http.StripPrefix("/static/", http.FileServer(http.FS(static))))},
	}
	known := make([]security.Route, 0, len(routes))
	for _, rt := range routes {
		mux.Handle(rt.Path, rt.handler)
		known = append(known, rt.Route)
	}

	detector := security.NewDetector(known...)
	s.securityDetector = detector
	s.traceMiddleware = trace.NewMiddleware(detector.ExtractClientIP, logger)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(detector.ExtractClientIP, s.handleRateLimited)(handler)
	handler = detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path,
		applog.FieldComponent, applog.ComponentRateLimit)
	ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again later.").
		TriggerErrorNotification("Too many requests. Please try again later.").
		Write(w)
}

// Shutdown stops background routines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
