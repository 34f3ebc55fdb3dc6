package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/babdulhakim2/webpulse/internal/domain"
	"github.com/babdulhakim2/webpulse/internal/engine"
	"github.com/babdulhakim2/webpulse/internal/ratelimit"
	"github.com/babdulhakim2/webpulse/internal/report"
	"github.com/babdulhakim2/webpulse/internal/temporal/querier"
	"github.com/babdulhakim2/webpulse/internal/temporal/versioning"
	"github.com/babdulhakim2/webpulse/internal/temporal/workflows"
	"github.com/babdulhakim2/webpulse/internal/uischema"
)

// analyzeBody is the JSON body of POST /analyses and POST /workflows.
type analyzeBody struct {
	URL                    string   `json:"url"`
	Regions                []string `json:"regions,omitempty"`
	EnableVisualComparison *bool    `json:"enableVisualComparison,omitempty"`
	EnableIssueDetection   *bool    `json:"enableIssueDetection,omitempty"`
	KVOptimized            bool     `json:"kvOptimized,omitempty"`
	Width                  int      `json:"width,omitempty"`
	Height                 int      `json:"height,omitempty"`
	FullPage               bool     `json:"fullPage,omitempty"`
	Timeout                int      `json:"timeout,omitempty"`
}

func (b analyzeBody) request() engine.AnalyzeRequest {
	return engine.AnalyzeRequest{
		URL:                    b.URL,
		Regions:                b.Regions,
		EnableVisualComparison: b.EnableVisualComparison,
		EnableIssueDetection:   b.EnableIssueDetection,
		KVOptimized:            b.KVOptimized,
		Width:                  b.Width,
		Height:                 b.Height,
		FullPage:               b.FullPage,
		Timeout:                time.Duration(b.Timeout) * time.Millisecond,
	}
}

type issuesBody struct {
	URL            string   `json:"url"`
	Regions        []string `json:"regions,omitempty"`
	IssueTypes     []string `json:"issueTypes,omitempty"`
	SeverityFilter string   `json:"severityFilter,omitempty"`
	Timeout        int      `json:"timeout,omitempty"`
}

type compareBody struct {
	URL                     string   `json:"url"`
	Regions                 []string `json:"regions"`
	IncludeNetworkAnalysis  bool     `json:"includeNetworkAnalysis,omitempty"`
	GenerateRecommendations *bool    `json:"generateRecommendations,omitempty"`
	Timeout                 int      `json:"timeout,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRegions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"regions": s.engine.Regions().All()})
}

// handleAnalyze runs a full analysis. ?format=markdown returns the
// human-readable rendering instead of JSON.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body analyzeBody
	if !decodeBody(w, r, &body) {
		return
	}
	req := body.request()
	if err := s.engine.ValidateAnalyze(req); err != nil {
		s.writeEngineError(w, err)
		return
	}
	if !s.takeBudget(w, r, "analyze") {
		return
	}
	res, err := s.engine.Analyze(r.Context(), req)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "markdown" {
		writeMarkdown(w, &res.Report)
		return
	}
	writeJSON(w, http.StatusOK, res.Value())
}

func (s *Server) handleIssues(w http.ResponseWriter, r *http.Request) {
	var body issuesBody
	if !decodeBody(w, r, &body) {
		return
	}
	req := engine.IssuesRequest{
		URL:            body.URL,
		Regions:        body.Regions,
		IssueTypes:     body.IssueTypes,
		SeverityFilter: body.SeverityFilter,
		Timeout:        time.Duration(body.Timeout) * time.Millisecond,
	}
	if err := s.engine.ValidateIssues(req); err != nil {
		s.writeEngineError(w, err)
		return
	}
	if !s.takeBudget(w, r, "issues") {
		return
	}
	res, err := s.engine.AnalyzeIssues(r.Context(), req)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var body compareBody
	if !decodeBody(w, r, &body) {
		return
	}
	req := engine.CompareRequest{
		URL:                     body.URL,
		Regions:                 body.Regions,
		IncludeNetworkAnalysis:  body.IncludeNetworkAnalysis,
		GenerateRecommendations: body.GenerateRecommendations,
		Timeout:                 time.Duration(body.Timeout) * time.Millisecond,
	}
	if err := s.engine.ValidateCompare(req); err != nil {
		s.writeEngineError(w, err)
		return
	}
	if !s.takeBudget(w, r, "compare") {
		return
	}
	res, err := s.engine.ComparePerformance(r.Context(), req)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleStartWorkflow validates the request synchronously and starts a
// durable run; progress is read from the workflow routes.
func (s *Server) handleStartWorkflow(w http.ResponseWriter, r *http.Request) {
	var body analyzeBody
	if !decodeBody(w, r, &body) {
		return
	}
	plan, err := s.engine.Plan(body.request())
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if !s.takeBudget(w, r, "workflow") {
		return
	}
	started, err := s.querier.StartAnalysis(r.Context(),
		workflows.InputFromRequest(plan.ID, plan.Capture, plan.Regions, plan.Options))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, started)
}

func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	opts := querier.ListOptions{
		TaskQueue: versioning.QueueAnalysis,
	}
	if status := r.URL.Query().Get("status"); status != "" {
		opts.StatusFilter = status
	}

	wfs, err := s.querier.ListWorkflows(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, wfs)
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	result, ok := s.workflowState(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleWorkflowReport(w http.ResponseWriter, r *http.Request) {
	result, ok := s.workflowState(w, r)
	if !ok {
		return
	}
	if !result.Done() || result.Report == nil {
		writeError(w, http.StatusConflict, "analysis still running")
		return
	}
	writeMarkdown(w, result.Report)
}

// handleWorkflowUI returns the component schema the frontend renders for a run.
func (s *Server) handleWorkflowUI(w http.ResponseWriter, r *http.Request) {
	result, ok := s.workflowState(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, uischema.Build(result, "/api/v1/workflows/"+r.PathValue("id")))
}

func (s *Server) workflowState(w http.ResponseWriter, r *http.Request) (*workflows.WorkflowResult, bool) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "workflow id required")
		return nil, false
	}
	result, err := s.querier.GetWorkflowState(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, querier.ErrNotReadable) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return nil, false
	}
	return result, true
}

func (s *Server) takeBudget(w http.ResponseWriter, r *http.Request, operation string) bool {
	if err := s.budget.Take(callerID(r), operation); err != nil {
		writeError(w, http.StatusTooManyRequests, err.Error())
		return false
	}
	return true
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidationError(err):
		s.logger.Info("rejected request", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ratelimit.ErrBudgetExceeded):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		s.logger.Error("analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeMarkdown(w http.ResponseWriter, r *domain.AnalysisReport) {
	var buf bytes.Buffer
	if _, err := report.NewMarkdownWriter(&buf).Write(r); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
