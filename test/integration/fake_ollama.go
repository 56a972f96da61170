package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/doodlesbykumbi/ctrack/pkg/advisor"
)

// FakeOllama answers /api/chat like an Ollama server and records prompts
type FakeOllama struct {
	*httptest.Server

	mu      sync.Mutex
	prompts []string
	failing bool
}

func NewFakeOllama() *FakeOllama {
	f := &FakeOllama{}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handleChat))
	return f
}

func (f *FakeOllama) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req struct {
		Model    string            `json:"model"`
		Messages []advisor.Message `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	for _, m := range req.Messages {
		f.prompts = append(f.prompts, m.Content)
	}
	failing := f.failing
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failing {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "model is loading"})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"model": req.Model,
		"message": advisor.Message{
			Role:    advisor.RoleAssistant,
			Content: fmt.Sprintf("Sufficient for %s.", req.Model),
		},
		"done": true,
	})
}

// Prompts returns every prompt received since the last Reset
func (f *FakeOllama) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// SetFailing makes every chat request fail with 503
func (f *FakeOllama) SetFailing(failing bool) {
	f.mu.Lock()
	f.failing = failing
	f.mu.Unlock()
}

func (f *FakeOllama) Reset() {
	f.mu.Lock()
	f.prompts = nil
	f.failing = false
	f.mu.Unlock()
}
