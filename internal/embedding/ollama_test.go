package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOllamaEngineAppliesDefaults(t *testing.T) {
	engine, err := NewOllamaEngine("", "")
	if err != nil {
		t.Fatalf("NewOllamaEngine: %v", err)
	}
	if engine.endpoint != "http://localhost:11434" {
		t.Errorf("endpoint = %q, want default", engine.endpoint)
	}
	if engine.model != "embeddinggemma" {
		t.Errorf("model = %q, want embeddinggemma", engine.model)
	}
}

func TestOllamaEngineNameAndDimensions(t *testing.T) {
	engine, err := NewOllamaEngine("http://example.invalid", "custom-model")
	if err != nil {
		t.Fatalf("NewOllamaEngine: %v", err)
	}
	if engine.Name() != "ollama:custom-model" {
		t.Errorf("Name() = %q, want ollama:custom-model", engine.Name())
	}
	if engine.Dimensions() != 768 {
		t.Errorf("Dimensions() = %d, want 768", engine.Dimensions())
	}
	if engine.ModelInfo().Identifier != "custom-model" {
		t.Errorf("ModelInfo().Identifier = %q, want custom-model", engine.ModelInfo().Identifier)
	}
}

func TestOllamaEngineEmbedParsesServerResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("server: decode request: %v", err)
		}
		if req.Prompt != "hello" {
			t.Errorf("server received prompt = %q, want hello", req.Prompt)
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	engine, err := NewOllamaEngine(srv.URL, "embeddinggemma")
	if err != nil {
		t.Fatalf("NewOllamaEngine: %v", err)
	}

	vec, err := engine.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("Embed returned %d-dim vector, want 3", len(vec))
	}
}

func TestOllamaEngineEmbedPropagatesNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	engine, err := NewOllamaEngine(srv.URL, "embeddinggemma")
	if err != nil {
		t.Fatalf("NewOllamaEngine: %v", err)
	}
	if _, err := engine.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for non-OK status")
	}
}

func TestOllamaEngineEmbedBatchSequencesCalls(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{float32(calls)}})
	}))
	defer srv.Close()

	engine, err := NewOllamaEngine(srv.URL, "embeddinggemma")
	if err != nil {
		t.Fatalf("NewOllamaEngine: %v", err)
	}

	out, err := engine.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(out) != 3 || calls != 3 {
		t.Fatalf("EmbedBatch made %d calls and returned %d vectors, want 3 and 3", calls, len(out))
	}
}

func TestOllamaEngineEmbedBatchEmptyInputReturnsNil(t *testing.T) {
	engine, err := NewOllamaEngine("http://example.invalid", "embeddinggemma")
	if err != nil {
		t.Fatalf("NewOllamaEngine: %v", err)
	}
	out, err := engine.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if out != nil {
		t.Errorf("EmbedBatch(nil) = %v, want nil", out)
	}
}

func TestOllamaEngineHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	engine, err := NewOllamaEngine(srv.URL, "embeddinggemma")
	if err != nil {
		t.Fatalf("NewOllamaEngine: %v", err)
	}
	if err := engine.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}
}

func TestOllamaEngineHealthCheckFailsOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	engine, err := NewOllamaEngine(srv.URL, "embeddinggemma")
	if err != nil {
		t.Fatalf("NewOllamaEngine: %v", err)
	}
	if err := engine.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected HealthCheck to fail on non-OK status")
	}
}
