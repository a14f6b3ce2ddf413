package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
)

// NewOllamaServer serves Ollama's /api/embed endpoint from embedder, so code
// built from config can run against a predictable embedding model.
func NewOllamaServer(embedder *MockEmbedder) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		vectors, err := embedder.EmbedBatch(r.Context(), req.Input)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":      req.Model,
			"embeddings": vectors,
		})
	}))
}
