package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/cliphost/cliphost/config"
)

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, config.AppConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %s", body["status"])
	}
	if body["timestamp"] == "" {
		t.Error("expected a timestamp")
	}
}

func TestServeNotFound(t *testing.T) {
	r, _ := newTestRouter(t, config.AppConfig{})

	req := httptest.NewRequest(http.MethodGet, "/uploads/2099-01-01/nonexistent.png", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec.Body.String() != `{"error":"File not found"}` {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestServeRejectsTraversal(t *testing.T) {
	r, _ := newTestRouter(t, config.AppConfig{})

	req := httptest.NewRequest(http.MethodGet, "/uploads/2025-01-01/%2e%2e%2fsecret", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for traversal attempt, got %d", rec.Code)
	}
}

func TestLegacyRedirect(t *testing.T) {
	r, store := newTestRouter(t, config.AppConfig{})

	name := "ab9c2b65-a053-412c-b1d1-b1c241c14591.webp"
	if err := os.MkdirAll(filepath.Join(store.Root, "2025-10-16"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(store.Root, "2025-10-16", name), []byte("webp"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/uploads/"+name, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("expected 301, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/uploads/2025-10-16/"+name {
		t.Errorf("unexpected redirect target: %s", loc)
	}
}

func TestLegacyMiss(t *testing.T) {
	r, _ := newTestRouter(t, config.AppConfig{})

	req := httptest.NewRequest(http.MethodGet, "/uploads/11111111-2222-3333-4444-555555555555.png", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing legacy file, got %d", rec.Code)
	}

	// A first path segment that is neither a date folder nor a uuid filename.
	req = httptest.NewRequest(http.MethodGet, "/uploads/randomname.png", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for non-uuid name, got %d", rec.Code)
	}
}
