package endpoints

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/ctrack/pkg/server"
)

func analyze(t *testing.T, advisor server.Advisor, refID, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", "/analyze-compliance/"+refID+query, nil)
	req = mux.SetURLVars(req, map[string]string{"ref_id": refID})
	w := httptest.NewRecorder()
	handleAnalyzeCompliance(advisor, 2026, zap.NewNop())(w, req)
	return w
}

func TestHandleAnalyzeCompliance(t *testing.T) {
	t.Run("default year", func(t *testing.T) {
		advisor := &MockAdvisor{}
		advisor.On("Analyze", mock.Anything, "AC-2", 2026).Return("Looks sufficient.", nil)

		w := analyze(t, advisor, "AC-2", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ai_analysis":"Looks sufficient."}`, w.Body.String())
		advisor.AssertExpectations(t)
	})

	t.Run("explicit year", func(t *testing.T) {
		advisor := &MockAdvisor{}
		advisor.On("Analyze", mock.Anything, "SC-7", 2024).Return("Please save your implementation statement first before asking for AI analysis.", nil)

		w := analyze(t, advisor, "SC-7", "?year=2024")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ai_analysis":"Please save your implementation statement first before asking for AI analysis."}`, w.Body.String())
		advisor.AssertExpectations(t)
	})

	t.Run("model failure is still a 200", func(t *testing.T) {
		advisor := &MockAdvisor{}
		advisor.On("Analyze", mock.Anything, "AC-2", 2026).Return("AI Engine Error: Ensure Ollama is running. (connection refused)", nil)

		w := analyze(t, advisor, "AC-2", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"ai_analysis":"AI Engine Error: Ensure Ollama is running.`)
	})

	t.Run("non-integer year", func(t *testing.T) {
		advisor := &MockAdvisor{}

		w := analyze(t, advisor, "AC-2", "?year=last")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.JSONEq(t, `{"error":"year must be an integer"}`, w.Body.String())
		advisor.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage failure", func(t *testing.T) {
		advisor := &MockAdvisor{}
		advisor.On("Analyze", mock.Anything, "AC-2", 2026).Return("", errors.New("database is locked"))

		w := analyze(t, advisor, "AC-2", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
