package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/ctrack/pkg/server"
	"github.com/doodlesbykumbi/ctrack/pkg/server/store"
)

const maxSubmissionBytes = 1 << 20

// AssessmentRequest is the body of POST /submit-assessment/. Pointer fields
// distinguish an absent value from a zero value.
type AssessmentRequest struct {
	AuditYear               *int    `json:"audit_year"`
	RefID                   *string `json:"ref_id"`
	Score                   *int    `json:"score"`
	ImplementationStatement *string `json:"implementation_statement"`
	RemediationPlan         *string `json:"remediation_plan"`
	Category                *string `json:"category"`
}

// Validate checks that every required field is present
func (r AssessmentRequest) Validate() error {
	var missing []string
	if r.AuditYear == nil {
		missing = append(missing, "audit_year")
	}
	if r.RefID == nil {
		missing = append(missing, "ref_id")
	}
	if r.Score == nil {
		missing = append(missing, "score")
	}
	if r.ImplementationStatement == nil {
		missing = append(missing, "implementation_statement")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required field(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

// Input converts a validated request into a store.AssessmentInput
func (r AssessmentRequest) Input() store.AssessmentInput {
	input := store.AssessmentInput{
		AuditYear:               *r.AuditYear,
		RefID:                   *r.RefID,
		Score:                   *r.Score,
		ImplementationStatement: *r.ImplementationStatement,
		RemediationPlan:         r.RemediationPlan,
	}
	if r.Category != nil {
		input.Category = *r.Category
	}
	return input
}

// StatusResponse acknowledges a write
type StatusResponse struct {
	Status string `json:"status"`
}

func RegisterAssessmentsEndpoints(s *server.Server) {
	assessmentsStore := s.AssessmentsStore
	logger := s.Logger

	submit := handleSubmitAssessment(assessmentsStore, logger)
	history := handleHistoryAll(assessmentsStore, logger)

	// POST /submit-assessment/ - Create or update the assessment for (ref_id, audit_year)
	s.Router.HandleFunc("/submit-assessment/", submit).Methods("POST")
	s.Router.HandleFunc("/submit-assessment", submit).Methods("POST")

	// GET /history-all/ - All assessments, newest audit year first
	s.Router.HandleFunc("/history-all/", history).Methods("GET")
	s.Router.HandleFunc("/history-all", history).Methods("GET")
}

// decodeAssessmentRequest rejects malformed JSON, unknown fields and
// trailing data
func decodeAssessmentRequest(body io.Reader) (AssessmentRequest, error) {
	var req AssessmentRequest
	decoder := json.NewDecoder(io.LimitReader(body, maxSubmissionBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	if decoder.More() {
		return req, errors.New("invalid request body: unexpected data after JSON object")
	}
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

func handleSubmitAssessment(assessmentsStore store.AssessmentsStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeAssessmentRequest(r.Body)
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		input := req.Input()
		if err := assessmentsStore.Submit(input); err != nil {
			logger.Error("failed to submit assessment",
				zap.String("ref_id", input.RefID),
				zap.Int("audit_year", input.AuditYear),
				zap.Error(err),
			)
			respondWithError(w, http.StatusInternalServerError, "failed to save assessment")
			return
		}

		respondWithJSON(w, http.StatusOK, StatusResponse{Status: "success"})
	}
}

func handleHistoryAll(assessmentsStore store.AssessmentsStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assessments, err := assessmentsStore.ListAll()
		if err != nil {
			logger.Error("failed to list assessments", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "failed to list assessments")
			return
		}

		respondWithJSON(w, http.StatusOK, assessments)
	}
}
