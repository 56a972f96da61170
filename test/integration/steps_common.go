package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cucumber/godog"

	"github.com/doodlesbykumbi/ctrack/pkg/model"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.ResetData()
	})

	// Background steps
	sc.Step(`^a ctrack server is running$`, s.aCtrackServerIsRunning)
	sc.Step(`^the advisor is unavailable$`, s.theAdvisorIsUnavailable)

	// Assessment steps
	sc.Step(`^I submit an assessment for "([^"]*)" in (\d+) with score (\d+) and statement "([^"]*)"$`, s.iSubmitAnAssessment)
	sc.Step(`^I submit the following assessment:$`, s.iSubmitTheFollowingAssessment)
	sc.Step(`^I request the assessment history$`, s.iRequestTheAssessmentHistory)
	sc.Step(`^the history should contain (\d+) assessments?$`, s.theHistoryShouldContain)
	sc.Step(`^the history years should be "([^"]*)"$`, s.theHistoryYearsShouldBe)
	sc.Step(`^the history entry for "([^"]*)" in (\d+) should have score (\d+) and statement "([^"]*)"$`, s.theHistoryEntryShouldHave)
	sc.Step(`^the history entry for "([^"]*)" in (\d+) should have category "([^"]*)" and framework "([^"]*)"$`, s.theHistoryEntryShouldHaveCategory)

	// Library steps
	sc.Step(`^I search the library for "([^"]*)"$`, s.iSearchTheLibraryFor)
	sc.Step(`^the search results should be "([^"]*)"$`, s.theSearchResultsShouldBe)
	sc.Step(`^I look up control "([^"]*)"$`, s.iLookUpControl)

	// Analysis steps
	sc.Step(`^I analyze "([^"]*)" for (\d+)$`, s.iAnalyzeFor)
	sc.Step(`^I analyze "([^"]*)" without a year$`, s.iAnalyzeWithoutAYear)
	sc.Step(`^I analyze "([^"]*)" for year "([^"]*)"$`, s.iAnalyzeForYear)
	sc.Step(`^the advisor should have been asked about "([^"]*)"$`, s.theAdvisorShouldHaveBeenAskedAbout)
	sc.Step(`^the advisor should not have been called$`, s.theAdvisorShouldNotHaveBeenCalled)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, s.theResponseFieldShouldBe)
	sc.Step(`^the response field "([^"]*)" should contain "([^"]*)"$`, s.theResponseFieldShouldContain)
}

// Background steps

func (s *StepsContext) aCtrackServerIsRunning() error {
	// Server is already running via TestContext
	return nil
}

func (s *StepsContext) theAdvisorIsUnavailable() error {
	s.tc.Ollama.SetFailing(true)
	return nil
}

// Assessment steps

func (s *StepsContext) iSubmitAnAssessment(refID string, year, score int, statement string) error {
	body, err := json.Marshal(map[string]interface{}{
		"audit_year":               year,
		"ref_id":                   refID,
		"score":                    score,
		"implementation_statement": statement,
	})
	if err != nil {
		return err
	}
	return s.do(http.MethodPost, "/submit-assessment/", body)
}

func (s *StepsContext) iSubmitTheFollowingAssessment(doc *godog.DocString) error {
	return s.do(http.MethodPost, "/submit-assessment/", []byte(doc.Content))
}

func (s *StepsContext) iRequestTheAssessmentHistory() error {
	return s.do(http.MethodGet, "/history-all/", nil)
}

func (s *StepsContext) history() ([]model.Assessment, error) {
	var assessments []model.Assessment
	if err := json.Unmarshal(s.responseBody, &assessments); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w (body: %s)", err, s.responseBody)
	}
	return assessments, nil
}

func (s *StepsContext) findAssessment(refID string, year int) (*model.Assessment, error) {
	assessments, err := s.history()
	if err != nil {
		return nil, err
	}
	for i := range assessments {
		if assessments[i].RefID == refID && assessments[i].AuditYear == year {
			return &assessments[i], nil
		}
	}
	return nil, fmt.Errorf("no assessment for %s in %d", refID, year)
}

func (s *StepsContext) theHistoryShouldContain(count int) error {
	assessments, err := s.history()
	if err != nil {
		return err
	}
	if len(assessments) != count {
		return fmt.Errorf("expected %d assessments, got %d", count, len(assessments))
	}
	return nil
}

func (s *StepsContext) theHistoryYearsShouldBe(expected string) error {
	assessments, err := s.history()
	if err != nil {
		return err
	}
	years := make([]string, 0, len(assessments))
	for _, a := range assessments {
		years = append(years, fmt.Sprint(a.AuditYear))
	}
	if got := strings.Join(years, ","); got != expected {
		return fmt.Errorf("expected years %q, got %q", expected, got)
	}
	return nil
}

func (s *StepsContext) theHistoryEntryShouldHave(refID string, year, score int, statement string) error {
	a, err := s.findAssessment(refID, year)
	if err != nil {
		return err
	}
	if a.Score != score {
		return fmt.Errorf("expected score %d, got %d", score, a.Score)
	}
	if a.ImplementationStatement != statement {
		return fmt.Errorf("expected statement %q, got %q", statement, a.ImplementationStatement)
	}
	return nil
}

func (s *StepsContext) theHistoryEntryShouldHaveCategory(refID string, year int, category, framework string) error {
	a, err := s.findAssessment(refID, year)
	if err != nil {
		return err
	}
	if a.Category != category {
		return fmt.Errorf("expected category %q, got %q", category, a.Category)
	}
	if a.Framework != framework {
		return fmt.Errorf("expected framework %q, got %q", framework, a.Framework)
	}
	return nil
}

// Library steps

func (s *StepsContext) iSearchTheLibraryFor(query string) error {
	return s.do(http.MethodGet, "/library/search?q="+url.QueryEscape(query), nil)
}

func (s *StepsContext) theSearchResultsShouldBe(expected string) error {
	var controls []model.ControlReference
	if err := json.Unmarshal(s.responseBody, &controls); err != nil {
		return fmt.Errorf("failed to parse search results: %w (body: %s)", err, s.responseBody)
	}
	identifiers := make([]string, 0, len(controls))
	for _, c := range controls {
		identifiers = append(identifiers, c.Identifier)
	}
	if got := strings.Join(identifiers, ","); got != expected {
		return fmt.Errorf("expected results %q, got %q", expected, got)
	}
	return nil
}

func (s *StepsContext) iLookUpControl(refID string) error {
	return s.do(http.MethodGet, "/library/get/"+url.PathEscape(refID), nil)
}

// Analysis steps

func (s *StepsContext) iAnalyzeFor(refID string, year int) error {
	return s.iAnalyzeForYear(refID, fmt.Sprint(year))
}

func (s *StepsContext) iAnalyzeForYear(refID, year string) error {
	return s.do(http.MethodGet, "/analyze-compliance/"+url.PathEscape(refID)+"?year="+url.QueryEscape(year), nil)
}

func (s *StepsContext) iAnalyzeWithoutAYear(refID string) error {
	return s.do(http.MethodGet, "/analyze-compliance/"+url.PathEscape(refID), nil)
}

func (s *StepsContext) theAdvisorShouldHaveBeenAskedAbout(text string) error {
	prompts := s.tc.Ollama.Prompts()
	for _, p := range prompts {
		if strings.Contains(p, text) {
			return nil
		}
	}
	return fmt.Errorf("no prompt mentioned %q (prompts: %q)", text, prompts)
}

func (s *StepsContext) theAdvisorShouldNotHaveBeenCalled() error {
	if prompts := s.tc.Ollama.Prompts(); len(prompts) > 0 {
		return fmt.Errorf("expected no advisor calls, got %d", len(prompts))
	}
	return nil
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response == nil {
		return fmt.Errorf("no response received")
	}
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) field(name string) (string, error) {
	var body map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return "", fmt.Errorf("failed to parse response: %w (body: %s)", err, s.responseBody)
	}
	value, ok := body[name]
	if !ok {
		return "", fmt.Errorf("response has no field %q: %s", name, s.responseBody)
	}
	return fmt.Sprint(value), nil
}

func (s *StepsContext) theResponseFieldShouldBe(name, expected string) error {
	got, err := s.field(name)
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("expected %s %q, got %q", name, expected, got)
	}
	return nil
}

func (s *StepsContext) theResponseFieldShouldContain(name, expected string) error {
	got, err := s.field(name)
	if err != nil {
		return err
	}
	if !strings.Contains(got, expected) {
		return fmt.Errorf("expected %s to contain %q, got %q", name, expected, got)
	}
	return nil
}

func (s *StepsContext) do(method, path string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, s.tc.ServerURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}
