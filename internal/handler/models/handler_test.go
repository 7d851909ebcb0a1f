package models

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/marcus/good-drawer/internal/service/engine"
)

type fakeLister struct {
	models []engine.Model
	err    error
}

func (f *fakeLister) ListModels(ctx context.Context) ([]engine.Model, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.models, nil
}

func setupRouter(lister Lister) *chi.Mux {
	r := chi.NewRouter()
	New(lister).RegisterRoutes(r)
	return r
}

func TestListModels(t *testing.T) {
	lister := &fakeLister{models: []engine.Model{
		{Name: "gpt-oss:20b", ParameterSize: "20.9B", Quantization: "MXFP4", Default: true},
		{Name: "llama3.2:3b", ParameterSize: "3.2B", Quantization: "Q4_K_M"},
	}}
	r := setupRouter(lister)

	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var got []engine.Model
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 models, got %d", len(got))
	}
	if !got[0].Default || got[1].Default {
		t.Fatalf("expected only the first model flagged default, got %+v", got)
	}
}

func TestListModelsEngineUnreachable(t *testing.T) {
	lister := &fakeLister{err: &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}}
	r := setupRouter(lister)

	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if body["error"] != "drawing engine unreachable" {
		t.Fatalf("unexpected error body %q", body["error"])
	}
}

func TestListModelsOtherFailure(t *testing.T) {
	lister := &fakeLister{err: errors.New("tag parse failure")}
	r := setupRouter(lister)

	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}
