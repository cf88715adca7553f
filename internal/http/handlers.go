package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"spendwise/internal/core"
	applog "spendwise/internal/log"
	"spendwise/internal/session"
)

// render executes a named template into a buffer so a failing template
// never leaves a half written response.
func (s *Server) render(r *http.Request, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err,
			"template", name,
			applog.FieldComponent, applog.ComponentTemplate,
			applog.FieldOperation, applog.OpRender)
		return nil, err
	}
	return buf.Bytes(), nil
}

// acquire locks the request's session. On failure the error response is
// already written and ok is false.
func (s *Server) acquire(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Acquire(w, r)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to acquire session",
			applog.FieldError, err,
			applog.FieldComponent, applog.ComponentSession)
		InternalServerError("Session unavailable").Write(w)
		return nil, false
	}
	return sess, true
}

// parseError maps a body parse failure to its response.
func parseError(err error) *HTMXResponseBuilder {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return ErrorResponse(http.StatusRequestEntityTooLarge, "Request body too large").
			TriggerErrorNotification("Request body too large")
	}
	return BadRequestError("Invalid request format")
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	sess, ok := s.acquire(w, r)
	if !ok {
		return
	}
	defer sess.Unlock()

	snap, err := sess.Snapshot(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load session state", applog.FieldError, err)
		InternalServerError("Error loading data").Write(w)
		return
	}

	page := pageView{
		Form:      newFormView(core.Draft{}, ""),
		Budgets:   newBudgetRows(snap.Budgets),
		Dashboard: newDashboardView(snap.Report, snap.Transactions),
	}
	body, err := s.render(r, "index.html", page)
	if err != nil {
		InternalServerError("Error rendering page").Write(w)
		return
	}
	NewHTMXResponse().BodyHTMLBytes(body).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(w, r)
	if err := parser.Parse(); err != nil {
		parseError(err).Write(w)
		return
	}
	draft := ParseDraft(parser)

	sess, ok := s.acquire(w, r)
	if !ok {
		return
	}
	defer sess.Unlock()

	tx, err := s.ledger.RecordTransaction(r.Context(), sess.Stores, draft)
	if err != nil {
		if !isValidationError(err) {
			s.logger.ErrorContext(r.Context(), "Failed to record transaction",
				applog.FieldError, err,
				applog.FieldOperation, applog.OpCreate)
			InternalServerError("Error saving transaction").Write(w)
			return
		}

		atomic.AddInt64(&s.appMetrics.validationFailures, 1)
		s.logger.InfoContext(r.Context(), "Transaction rejected",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpValidate)

		body, rerr := s.render(r, "transaction-form", newFormView(draft, err.Error()))
		if rerr != nil {
			InternalServerError("Error rendering form").Write(w)
			return
		}
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			TriggerErrorNotification(err.Error()).
			BodyHTMLBytes(body).
			Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.transactions, 1)

	body, err := s.render(r, "transaction-form", newFormView(core.Draft{}, ""))
	if err != nil {
		InternalServerError("Error rendering form").Write(w)
		return
	}
	NewHTMXResponse().
		TriggerTransactionCreated(tx.ID).
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Added %s: %s", formatRupees(tx.Amount.Cents), tx.Description)).
		BodyHTMLBytes(body).
		Write(w)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(w, r)
	if err := parser.Parse(); err != nil {
		parseError(err).Write(w)
		return
	}
	input := ParseBudgetInput(parser)

	c, err := core.ParseCategory(input.Category)
	if err != nil {
		atomic.AddInt64(&s.appMetrics.validationFailures, 1)
		UnprocessableEntityError(err.Error()).
			TriggerErrorNotification(err.Error()).
			Write(w)
		return
	}

	sess, ok := s.acquire(w, r)
	if !ok {
		return
	}
	defer sess.Unlock()

	entry, err := s.ledger.SetBudget(r.Context(), sess.Stores, c, input.Amount)
	if err != nil {
		if !isValidationError(err) {
			s.logger.ErrorContext(r.Context(), "Failed to set budget",
				applog.FieldError, err,
				applog.FieldCategory, c.String(),
				applog.FieldOperation, applog.OpUpsert)
			InternalServerError("Error saving budget").Write(w)
			return
		}

		atomic.AddInt64(&s.appMetrics.validationFailures, 1)
		row := budgetRowView{Category: c.String(), Text: input.Amount, Error: err.Error()}
		body, rerr := s.render(r, "budget-row", row)
		if rerr != nil {
			InternalServerError("Error rendering budget").Write(w)
			return
		}
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			TriggerErrorNotification(fmt.Sprintf("%s: %s", c, err)).
			BodyHTMLBytes(body).
			Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.budgetUpdates, 1)

	body, err := s.render(r, "budget-row", budgetRowView{Category: c.String(), Text: entry.Text})
	if err != nil {
		InternalServerError("Error rendering budget").Write(w)
		return
	}
	NewHTMXResponse().
		TriggerBudgetUpdated(c.String()).
		BodyHTMLBytes(body).
		Write(w)
}

// handleDashboard renders the cards, charts, insights and list partial.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	sess, ok := s.acquire(w, r)
	if !ok {
		return
	}
	defer sess.Unlock()

	snap, err := sess.Snapshot(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load session state", applog.FieldError, err)
		InternalServerError("Error loading dashboard").Write(w)
		return
	}

	body, err := s.render(r, "dashboard", newDashboardView(snap.Report, snap.Transactions))
	if err != nil {
		InternalServerError("Error rendering dashboard").Write(w)
		return
	}
	NewHTMXResponse().BodyHTMLBytes(body).Write(w)
}

// handleReport returns the session's report as JSON.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	sess, ok := s.acquire(w, r)
	if !ok {
		return
	}
	snap, err := sess.Snapshot(r.Context())
	sess.Unlock()
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load session state", applog.FieldError, err)
		http.Error(w, "error loading report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(newReportJSON(snap.Report, snap.Transactions))
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	})
}

// handleReady reports whether the server can take traffic.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	checks["sessions"] = map[string]any{
		"active": s.sessions.Active(),
		"status": "ok",
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()

	counters := []struct {
		name, help, kind string
		value            int64
	}{
		{"http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests},
		{"http_response_time_avg_microseconds", "Average response time", "gauge", traceMetrics.AverageResponseTime},
		{"transactions_total", "Total number of transactions recorded", "counter", atomic.LoadInt64(&s.appMetrics.transactions)},
		{"budget_updates_total", "Total number of budget updates", "counter", atomic.LoadInt64(&s.appMetrics.budgetUpdates)},
		{"validation_failures_total", "Total number of rejected submissions", "counter", atomic.LoadInt64(&s.appMetrics.validationFailures)},
		{"active_sessions", "Currently live sessions", "gauge", int64(s.sessions.Active())},
		{"rate_limit_hits_total", "Total rate limit hits", "counter", rateLimitMetrics.TotalHits},
		{"active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", rateLimitMetrics.ClientCount},
		{"suspicious_requests_total", "Total suspicious requests detected", "counter", securityMetrics.SuspiciousRequests},
		{"uptime_seconds", "Application uptime in seconds", "gauge", int64(time.Since(s.appMetrics.uptime).Seconds())},
	}

	w.WriteHeader(http.StatusOK)
	for _, c := range counters {
		fmt.Fprintf(w, "# HELP %s %s\n", c.name, c.help)
		fmt.Fprintf(w, "# TYPE %s %s\n", c.name, c.kind)
		fmt.Fprintf(w, "%s %d\n\n", c.name, c.value)
	}

	fmt.Fprintf(w, "# HELP suspicious_requests_by_reason_total Suspicious requests by detection reason\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_by_reason_total counter\n")
	for _, reason := range securityMetrics.Reasons() {
		fmt.Fprintf(w, "suspicious_requests_by_reason_total{reason=%q} %d\n", reason, securityMetrics.ByReason[reason])
	}
}
