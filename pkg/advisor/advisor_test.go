package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/genai"

	"github.com/doodlesbykumbi/ctrack/pkg/config"
	"github.com/doodlesbykumbi/ctrack/pkg/model"
	"github.com/doodlesbykumbi/ctrack/pkg/server/store"
)

func TestMain(m *testing.M) {
	// genai pulls in opencensus, whose view worker starts at package init
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// MockAssessmentsStore implements store.AssessmentsStore for testing using testify/mock
type MockAssessmentsStore struct {
	mock.Mock
}

func (m *MockAssessmentsStore) Submit(input store.AssessmentInput) error {
	args := m.Called(input)
	return args.Error(0)
}

func (m *MockAssessmentsStore) Find(refID string, auditYear int) (*model.Assessment, error) {
	args := m.Called(refID, auditYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Assessment), args.Error(1)
}

func (m *MockAssessmentsStore) ListAll() ([]model.Assessment, error) {
	args := m.Called()
	return args.Get(0).([]model.Assessment), args.Error(1)
}

// stubClient records calls and returns a fixed answer
type stubClient struct {
	answer   string
	err      error
	calls    int
	messages []Message
}

func (c *stubClient) Chat(_ context.Context, messages []Message) (string, error) {
	c.calls++
	c.messages = messages
	return c.answer, c.err
}

func (c *stubClient) Name() string { return "stub" }

func savedAssessment(statement string) *model.Assessment {
	return &model.Assessment{AuditYear: 2026, RefID: "AC-2", ImplementationStatement: statement}
}

func TestAnalyzeWithoutSavedStatementSkipsModel(t *testing.T) {
	assessments := new(MockAssessmentsStore)
	assessments.On("Find", "AC-2", 2026).Return(nil, store.ErrAssessmentNotFound)
	client := &stubClient{answer: "unused"}

	answer, err := NewService(assessments, client).Analyze(context.Background(), "AC-2", 2026)
	require.NoError(t, err)
	assert.Equal(t, MissingStatementMessage, answer)
	assert.Zero(t, client.calls)
	assessments.AssertExpectations(t)
}

func TestAnalyzeSendsPromptAndReturnsAnswerVerbatim(t *testing.T) {
	assessments := new(MockAssessmentsStore)
	assessments.On("Find", "AC-2", 2026).Return(savedAssessment("Accounts are reviewed quarterly."), nil)
	client := &stubClient{answer: "  The statement is adequate.\nConsider automation.  "}

	answer, err := NewService(assessments, client).Analyze(context.Background(), "AC-2", 2026)
	require.NoError(t, err)
	assert.Equal(t, "  The statement is adequate.\nConsider automation.  ", answer)

	require.Len(t, client.messages, 1)
	assert.Equal(t, RoleUser, client.messages[0].Role)
	assert.Equal(t,
		"As a NIST auditor, review the following for AC-2: 'Accounts are reviewed quarterly.'. Is this sufficient? Give a concise 2-sentence expert opinion.",
		client.messages[0].Content)
}

func TestAnalyzeFoldsModelErrorsIntoAnswer(t *testing.T) {
	assessments := new(MockAssessmentsStore)
	assessments.On("Find", "AC-2", 2026).Return(savedAssessment("x"), nil)
	client := &stubClient{err: errors.New("connection refused")}

	answer, err := NewService(assessments, client).Analyze(context.Background(), "AC-2", 2026)
	require.NoError(t, err)
	assert.Equal(t, "AI Engine Error: Ensure Ollama is running. (connection refused)", answer)
}

func TestAnalyzeReturnsStorageErrors(t *testing.T) {
	boom := errors.New("disk I/O error")
	assessments := new(MockAssessmentsStore)
	assessments.On("Find", "AC-2", 2026).Return(nil, boom)
	client := &stubClient{}

	_, err := NewService(assessments, client).Analyze(context.Background(), "AC-2", 2026)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, client.calls)
}

func newModelServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaClientChat(t *testing.T) {
	var got ollamaChatRequest
	srv := newModelServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":   got.Model,
			"message": map[string]string{"role": "assistant", "content": "Looks sufficient."},
			"done":    true,
		})
	})

	client := NewOllamaClient(srv.URL+"/", "")
	answer, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hello"}})
	require.NoError(t, err)
	assert.Equal(t, "Looks sufficient.", answer)

	assert.Equal(t, DefaultOllamaModel, got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, []Message{{Role: RoleUser, Content: "hello"}}, got.Messages)
	assert.Equal(t, "ollama:mistral-nemo", client.Name())
}

func TestOllamaClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "model not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"model \"mistral-nemo\" not found, try pulling it first"}`))
			},
			want: `ollama returned status 404: model "mistral-nemo" not found`,
		},
		{
			name: "plain text failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream exploded", http.StatusBadGateway)
			},
			want: "ollama returned status 502: upstream exploded",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			want: "failed to decode response",
		},
		{
			name: "error field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"error":"out of memory"}`))
			},
			want: "ollama error: out of memory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newModelServer(t, tt.handler)
			_, err := NewOllamaClient(srv.URL, "mistral-nemo").Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEmptyAnswerIsReturnedAsIs(t *testing.T) {
	srv := newModelServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":""},"done":true}`))
	})

	answer, err := NewOllamaClient(srv.URL, "").Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	require.NoError(t, err)
	assert.Empty(t, answer)

	assessments := new(MockAssessmentsStore)
	assessments.On("Find", "AC-2", 2026).Return(savedAssessment("Reviewed."), nil)

	answer, err = NewService(assessments, NewOllamaClient(srv.URL, "")).Analyze(context.Background(), "AC-2", 2026)
	require.NoError(t, err)
	assert.Equal(t, "", answer)
}

func TestGenAIClientChat(t *testing.T) {
	var got struct {
		Contents []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	var path string
	srv := newModelServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Looks sufficient."}]},"finishReason":"STOP"}]}`))
	})

	client, err := newGenAIClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-api-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
		HTTPClient:  srv.Client(),
	}, "")
	require.NoError(t, err)

	answer, err := client.Chat(context.Background(), []Message{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Looks sufficient.", answer)
	assert.Contains(t, path, DefaultGenAIModel+":generateContent")
	require.Len(t, got.Contents, 2)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "hello", got.Contents[0].Parts[0].Text)
	assert.Equal(t, "model", got.Contents[1].Role)
	assert.Equal(t, "genai:"+DefaultGenAIModel, client.Name())
}

func TestOllamaClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	_, err := NewOllamaClient(endpoint, "").Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "ollama request failed"), err.Error())
}

func TestServiceTimeoutAgainstSlowOllama(t *testing.T) {
	release := make(chan struct{})
	var hits atomic.Int32
	srv := newModelServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	t.Cleanup(func() { close(release) })

	assessments := new(MockAssessmentsStore)
	assessments.On("Find", "AC-2", 2026).Return(savedAssessment("x"), nil)

	service := NewService(assessments, NewOllamaClient(srv.URL, ""), WithTimeout(50*time.Millisecond))
	answer, err := service.Analyze(context.Background(), "AC-2", 2026)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(answer, "AI Engine Error: Ensure Ollama is running. ("), answer)
	assert.Contains(t, answer, context.DeadlineExceeded.Error())
	assert.Equal(t, int32(1), hits.Load())
}

func TestEndToEndAgainstOllama(t *testing.T) {
	srv := newModelServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		answer := "Insufficient."
		if strings.Contains(req.Messages[0].Content, "for SC-7: 'Firewalls'") {
			answer = "Sufficient for " + req.Model + "."
		}
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{Message: Message{Role: RoleAssistant, Content: answer}, Done: true})
	})

	assessments := new(MockAssessmentsStore)
	assessments.On("Find", "SC-7", 2025).Return(&model.Assessment{RefID: "SC-7", AuditYear: 2025, ImplementationStatement: "Firewalls"}, nil)

	answer, err := NewService(assessments, NewOllamaClient(srv.URL, "llama3")).Analyze(context.Background(), "SC-7", 2025)
	require.NoError(t, err)
	assert.Equal(t, "Sufficient for llama3.", answer)
}

func TestNewClient(t *testing.T) {
	t.Setenv("CTRACK_CONFIG_PATH", t.TempDir())
	t.Setenv("CTRACK_ADVISOR_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "")
	cfg, err := config.Load()
	require.NoError(t, err)

	client, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &OllamaClient{}, client)

	cfg.AdvisorProvider = "genai"
	cfg.GenAIAPIKey = ""
	_, err = NewClient(context.Background(), cfg)
	assert.Error(t, err)

	cfg.AdvisorProvider = "carrier-pigeon"
	_, err = NewClient(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown advisor provider")
}
