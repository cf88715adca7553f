package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"spendwise/internal/core"
)

func newParser(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return p
}

func TestRequestBodyParser_JSON(t *testing.T) {
	p := newParser(t, "application/json", `{"description": "Lunch", "amount": 42.5, "category": "Food"}`)

	if !p.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}
	if got := p.Get("description"); got != "Lunch" {
		t.Errorf("Get('description') = %q, want 'Lunch'", got)
	}
	if got := p.Get("amount"); got != "42.5" {
		t.Errorf("Get('amount') = %q, want '42.5'", got)
	}
	if got := p.Get("missing"); got != "" {
		t.Errorf("Get('missing') = %q, want empty", got)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	p := newParser(t, "application/x-www-form-urlencoded", "description=%20Bus+ticket%07&amount=12")

	if p.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}
	if got := p.Get("description"); got != "Bus ticket" {
		t.Errorf("Get('description') = %q, want sanitized 'Bus ticket'", got)
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"amount":`))
	req.Header.Set("Content-Type", "application/json")
	if err := NewRequestBodyParser(httptest.NewRecorder(), req).Parse(); err == nil {
		t.Error("Parse() expected error for truncated JSON")
	}
}

func TestRequestBodyParser_OversizedBody(t *testing.T) {
	body := "amount=100&description=" + strings.Repeat("a", maxBodyBytes) + "&category=Food"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tooLarge *http.MaxBytesError
	if err := NewRequestBodyParser(httptest.NewRecorder(), req).Parse(); !errors.As(err, &tooLarge) {
		t.Fatalf("Parse() error = %v, want *http.MaxBytesError", err)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	p := newParser(t, "", "")
	if val := p.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestParseDraft(t *testing.T) {
	p := newParser(t, "application/x-www-form-urlencoded",
		"amount=100&date=2024-01-15&description=Lunch&category=")

	got := ParseDraft(p)
	want := core.Draft{Amount: "100", Date: "2024-01-15", Description: "Lunch", Category: ""}
	if got != want {
		t.Errorf("ParseDraft() = %+v, want %+v", got, want)
	}
	if got.IsComplete() {
		t.Error("draft with empty category should be incomplete")
	}
}

func TestParseBudgetInput(t *testing.T) {
	p := newParser(t, "application/x-www-form-urlencoded", "category=Rent&amount=+900+")
	got := ParseBudgetInput(p)
	if got.Category != "Rent" || got.Amount != "900" {
		t.Errorf("ParseBudgetInput() = %+v", got)
	}
}

func TestRequireMethod(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		allowed []string
		wantErr bool
	}{
		{"POST allowed", http.MethodPost, []string{http.MethodPost}, false},
		{"HEAD allowed with multiple", http.MethodHead, []string{http.MethodGet, http.MethodHead}, false},
		{"GET not allowed", http.MethodGet, []string{http.MethodPost}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			result := RequireMethod(req, tt.allowed...)

			if tt.wantErr && result == nil {
				t.Error("Expected error response but got nil")
			}
			if !tt.wantErr && result != nil {
				t.Error("Expected nil but got error response")
			}
		})
	}
}

func TestFormatRupees(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "₹0.00"},
		{5, "₹0.05"},
		{10000, "₹100.00"},
		{123456, "₹1234.56"},
		{-5000, "-₹50.00"},
	}
	for _, tt := range tests {
		if got := formatRupees(tt.cents); got != tt.want {
			t.Errorf("formatRupees(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
