package jsonbin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"registro/internal/core"
)

func TestLoadLatest(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Access-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"record":{"entries":[]}}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "key123")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	raw, err := c.Load(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if gotPath != "/b/abc123/latest" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "key123" {
		t.Fatalf("access key not sent, got %q", gotKey)
	}
	if string(raw) != `{"record":{"entries":[]}}` {
		t.Fatalf("unexpected body %s", raw)
	}
}

func TestLoadMissingBin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, "key")
	raw, err := c.Load(context.Background(), "nope")
	if err != nil {
		t.Fatalf("missing bin should not error: %v", err)
	}
	if raw != nil {
		t.Fatalf("missing bin should yield nil, got %s", raw)
	}
}

func TestLoadUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, "key")
	if _, err := c.Load(context.Background(), "abc"); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestSavePutsDocument(t *testing.T) {
	var gotMethod, gotPath, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"metadata":{}}`))
	}))
	defer srv.Close()

	l := core.NewLedger()
	if _, err := l.Add(core.Draft{Date: "2024-03-01", Event: "Culto", Kind: "income", Category: "Diezmos", Amount: "150.50"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	doc := l.ToDocument("Iglesia Central", time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))

	c, _ := New(srv.URL, "key")
	if err := c.Save(context.Background(), "abc123", doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/b/abc123" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	if gotType != "application/json" {
		t.Fatalf("unexpected content type %q", gotType)
	}
	var round core.Document
	if err := json.Unmarshal(gotBody, &round); err != nil {
		t.Fatalf("payload not valid json: %v", err)
	}
	if len(round.Entries) != 1 || round.Meta.Organization != "Iglesia Central" {
		t.Fatalf("unexpected payload %s", gotBody)
	}
}

func TestSaveUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, "key")
	if err := c.Save(context.Background(), "abc", core.Document{}); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New("", "  "); err == nil {
		t.Fatal("expected error for blank key")
	}
}
