package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/ctrack/pkg/server"
)

// AnalysisResponse carries the advisory text
type AnalysisResponse struct {
	AIAnalysis string `json:"ai_analysis"`
}

func RegisterAnalysisEndpoints(s *server.Server) {
	// GET /analyze-compliance/{ref_id}?year= - Model opinion on the saved statement
	s.Router.HandleFunc(
		"/analyze-compliance/{ref_id}",
		handleAnalyzeCompliance(s.Advisor, s.Config.DefaultAuditYear, s.Logger),
	).Methods("GET")
}

func handleAnalyzeCompliance(advisor server.Advisor, defaultYear int, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refID := mux.Vars(r)["ref_id"]

		year := defaultYear
		if raw := r.URL.Query().Get("year"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				respondWithError(w, http.StatusUnprocessableEntity, "year must be an integer")
				return
			}
			year = parsed
		}

		answer, err := advisor.Analyze(r.Context(), refID, year)
		if err != nil {
			logger.Error("failed to analyze assessment",
				zap.String("ref_id", refID),
				zap.Int("audit_year", year),
				zap.Error(err),
			)
			respondWithError(w, http.StatusInternalServerError, "failed to load assessment")
			return
		}

		respondWithJSON(w, http.StatusOK, AnalysisResponse{AIAnalysis: answer})
	}
}
