package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"finboard/internal/core"
)

func TestParsePeriod(t *testing.T) {
	today := core.NewDate(2024, 3, 15)
	tests := []struct {
		name    string
		query   url.Values
		want    core.Period
		wantErr error
	}{
		{"defaults to today", url.Values{}, core.Period{Year: 2024, Month: time.March}, nil},
		{"explicit", url.Values{"year": {"2023"}, "month": {"12"}}, core.Period{Year: 2023, Month: time.December}, nil},
		{"only month", url.Values{"month": {"1"}}, core.Period{Year: 2024, Month: time.January}, nil},
		{"month out of range", url.Values{"month": {"13"}}, core.Period{}, core.ErrInvalidMonth},
		{"month zero", url.Values{"month": {"0"}}, core.Period{}, core.ErrInvalidMonth},
		{"not a number", url.Values{"year": {"abc"}}, core.Period{}, errBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePeriod(tt.query, today)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("parsePeriod() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePeriod() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parsePeriod() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestQueryInt(t *testing.T) {
	q := url.Values{"page": {"3"}, "bad": {"x"}, "neg": {"-1"}}
	if n, err := queryInt(q, "page", 1); err != nil || n != 3 {
		t.Errorf("page = %d, %v", n, err)
	}
	if n, err := queryInt(q, "missing", 20); err != nil || n != 20 {
		t.Errorf("missing = %d, %v", n, err)
	}
	for _, key := range []string{"bad", "neg"} {
		if _, err := queryInt(q, key, 0); !errors.Is(err, errBadRequest) {
			t.Errorf("%s: error = %v, want bad request", key, err)
		}
	}
}

func TestQueryIntMax(t *testing.T) {
	q := url.Values{"months": {"1200"}, "huge": {"1201"}, "overflow": {"153722867280912930"}}
	if n, err := queryIntMax(q, "months", 12, 1200); err != nil || n != 1200 {
		t.Errorf("months = %d, %v", n, err)
	}
	if n, err := queryIntMax(q, "missing", 12, 1200); err != nil || n != 12 {
		t.Errorf("missing = %d, %v", n, err)
	}
	for _, key := range []string{"huge", "overflow"} {
		if _, err := queryIntMax(q, key, 12, 1200); !errors.Is(err, errBadRequest) {
			t.Errorf("%s: error = %v, want bad request", key, err)
		}
	}
}

func TestPathID(t *testing.T) {
	for raw, wantErr := range map[string]bool{"42": false, "0": true, "-3": true, "abc": true} {
		t.Run(raw, func(t *testing.T) {
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", raw)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			id, err := pathID(req)
			if wantErr {
				if !errors.Is(err, errBadRequest) {
					t.Errorf("pathID(%q) error = %v", raw, err)
				}
				return
			}
			if err != nil || id != 42 {
				t.Errorf("pathID(%q) = %d, %v", raw, id, err)
			}
		})
	}
}

func TestDecodeJSON_KeepsExistingFields(t *testing.T) {
	a := core.Account{ID: 7, Name: "Main", Type: core.Checking, Currency: "USD"}
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"name":"Everyday"}`))
	if err := decodeJSON(httptest.NewRecorder(), req, &a); err != nil {
		t.Fatal(err)
	}
	if a.Name != "Everyday" || a.Type != core.Checking || a.ID != 7 {
		t.Errorf("decoded = %+v", a)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount": "abc"}`))
	var tx core.Transaction
	if err := decodeJSON(httptest.NewRecorder(), req, &tx); !errors.Is(err, errBadRequest) {
		t.Errorf("error = %v, want bad request", err)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: x", errBadRequest), http.StatusBadRequest},
		{core.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{fmt.Errorf("get account 3: %w", core.ErrNotFound), http.StatusNotFound},
		{core.ErrImmutableCategory, http.StatusForbidden},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  exp\x00ense\x07 "); got != "expense" {
		t.Errorf("sanitizeInput() = %q", got)
	}
}
