package advisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/ctrack/pkg/config"
	"github.com/doodlesbykumbi/ctrack/pkg/server/store"
)

const (
	// MissingStatementMessage is returned when there is nothing to review
	MissingStatementMessage = "Please save your implementation statement first before asking for AI analysis."

	// PromptTemplate is filled with the ref_id and the saved statement
	PromptTemplate = "As a NIST auditor, review the following for %s: '%s'. Is this sufficient? Give a concise 2-sentence expert opinion."

	errorMessageFormat = "AI Engine Error: Ensure Ollama is running. (%s)"
)

// Chat roles understood by both backends
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat exchange
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client sends a chat to a text-generation backend and returns its reply
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Name() string
}

// Service answers advisory lookups for saved assessments
type Service struct {
	assessments store.AssessmentsStore
	client      Client
	timeout     time.Duration
	logger      *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithTimeout bounds each model call. Zero means no bound.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.timeout = timeout
	}
}

// WithLogger sets the logger for model call failures
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a Service
func NewService(assessments store.AssessmentsStore, client Client, opts ...Option) *Service {
	s := &Service{
		assessments: assessments,
		client:      client,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prompt builds the review request for a control's statement
func Prompt(refID, statement string) string {
	return fmt.Sprintf(PromptTemplate, refID, statement)
}

// Analyze asks the model whether the statement saved for (refID, year) is
// sufficient. Model failures are reported in the returned text; the error
// is only set when the assessment lookup itself fails.
func (s *Service) Analyze(ctx context.Context, refID string, year int) (string, error) {
	assessment, err := s.assessments.Find(refID, year)
	if err != nil {
		if errors.Is(err, store.ErrAssessmentNotFound) {
			return MissingStatementMessage, nil
		}
		return "", fmt.Errorf("failed to load assessment %s/%d: %w", refID, year, err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	answer, err := s.client.Chat(ctx, []Message{{
		Role:    RoleUser,
		Content: Prompt(refID, assessment.ImplementationStatement),
	}})
	if err != nil {
		s.logger.Warn("advisory call failed",
			zap.String("backend", s.client.Name()),
			zap.String("ref_id", refID),
			zap.Int("audit_year", year),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return fmt.Sprintf(errorMessageFormat, err), nil
	}

	s.logger.Debug("advisory call completed",
		zap.String("backend", s.client.Name()),
		zap.String("ref_id", refID),
		zap.Duration("elapsed", time.Since(start)),
	)
	return answer, nil
}

// NewClient builds the Client selected by cfg.AdvisorProvider
func NewClient(ctx context.Context, cfg *config.Config) (Client, error) {
	switch cfg.AdvisorProvider {
	case "", "ollama":
		return NewOllamaClient(cfg.AdvisorEndpoint, cfg.AdvisorModel), nil
	case "genai":
		model := cfg.AdvisorModel
		if cfg.Source("advisor_model") == "default" {
			model = DefaultGenAIModel
		}
		return NewGenAIClient(ctx, cfg.GenAIAPIKey, model)
	default:
		return nil, fmt.Errorf("unknown advisor provider %q", cfg.AdvisorProvider)
	}
}
