package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"finboard/internal/core"
)

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, raw)
	}
	return id, nil
}

// queryInt reads a positive integer query parameter, returning def when absent.
func queryInt(query url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, key, v)
	}
	return n, nil
}

// queryIntMax is queryInt with an inclusive upper bound.
func queryIntMax(query url.Values, key string, def, max int) (int, error) {
	n, err := queryInt(query, key, def)
	if err != nil {
		return 0, err
	}
	if n > max {
		return 0, fmt.Errorf("%w: %s must be at most %d", errBadRequest, key, max)
	}
	return n, nil
}

// queryID reads an optional id filter; 0 means "any".
func queryID(query url.Values, key string) (int64, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, key, v)
	}
	return id, nil
}

// parsePeriod extracts year and month from the query, defaulting to the
// month of today.
func parsePeriod(query url.Values, today core.Date) (core.Period, error) {
	p := core.PeriodOf(today)
	year, err := queryInt(query, "year", p.Year)
	if err != nil {
		return core.Period{}, err
	}
	month, err := queryInt(query, "month", int(p.Month))
	if err != nil {
		return core.Period{}, err
	}
	p = core.Period{Year: year, Month: time.Month(month)}
	if err := p.Validate(); err != nil {
		return core.Period{}, err
	}
	return p, nil
}

// decodeJSON reads a bounded JSON body into v. Fields absent from the body
// keep the values v already holds, which lets updates start from the
// stored entity.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", errBadRequest, err)
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
