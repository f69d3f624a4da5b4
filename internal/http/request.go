package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"registro/internal/core"
)

const maxBodyBytes = 1 << 20

// entryRequest is the wire form of a draft. Amount is kept raw so clients
// may send either a JSON number or a numeric string; the draft carries it
// as text and core validation parses it.
type entryRequest struct {
	Date          string          `json:"date"`
	Event         string          `json:"event"`
	Kind          string          `json:"kind"`
	Category      string          `json:"category"`
	Amount        json.RawMessage `json:"amount"`
	Description   string          `json:"description"`
	PaymentMethod string          `json:"paymentMethod"`
	Responsible   string          `json:"responsible"`
	Note          string          `json:"note"`
}

func decodeEntryRequest(r *http.Request) (core.Draft, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return core.Draft{}, fmt.Errorf("read body: %w", err)
	}
	var req entryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return core.Draft{}, fmt.Errorf("decode body: %w", err)
	}
	return core.Draft{
		Date:          sanitizeInput(req.Date),
		Event:         sanitizeInput(req.Event),
		Kind:          sanitizeInput(req.Kind),
		Category:      sanitizeInput(req.Category),
		Amount:        rawAmount(req.Amount),
		Description:   sanitizeInput(req.Description),
		PaymentMethod: sanitizeInput(req.PaymentMethod),
		Responsible:   sanitizeInput(req.Responsible),
		Note:          sanitizeInput(req.Note),
	}, nil
}

// rawAmount normalizes the amount token to plain text, stripping quotes
// from string-typed amounts.
func rawAmount(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return s
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

// parseFilter builds a filter from the from/to/text/kind query parameters.
func parseFilter(r *http.Request) (core.Filter, error) {
	q := r.URL.Query()
	var f core.Filter

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Filter{}, fmt.Errorf("invalid from date %q", v)
		}
		f.From = d
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Filter{}, fmt.Errorf("invalid to date %q", v)
		}
		f.To = d
	}
	f.Text = strings.TrimSpace(q.Get("text"))
	if v := strings.TrimSpace(q.Get("kind")); v != "" {
		k, ok := core.ParseKind(v)
		if !ok {
			return core.Filter{}, fmt.Errorf("invalid kind %q", v)
		}
		f.Kind = k
	}
	return f, nil
}
