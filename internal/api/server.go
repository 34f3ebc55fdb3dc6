// Package api serves the analysis engine and durable runs over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/babdulhakim2/webpulse/internal/agui"
	"github.com/babdulhakim2/webpulse/internal/engine"
	"github.com/babdulhakim2/webpulse/internal/observability"
	"github.com/babdulhakim2/webpulse/internal/ratelimit"
	"github.com/babdulhakim2/webpulse/internal/temporal/querier"
)

// Options configures a Server.
type Options struct {
	CORSOrigins []string
	OIDC        OIDCConfig
	// Budget limits analyses per caller; nil disables it.
	Budget *ratelimit.AnalysisBudget
	Stream agui.StreamConfig
	Logger *slog.Logger
}

// Server is the HTTP API server. The querier may be nil, in which case the
// durable workflow routes answer 503.
type Server struct {
	engine  *engine.Engine
	querier querier.WorkflowQuerier
	budget  *ratelimit.AnalysisBudget
	stream  agui.StreamConfig
	logger  *slog.Logger
	mux     *http.ServeMux
	handler http.Handler
}

// New creates a Server. When OIDC is enabled the issuer's discovery document
// is fetched before New returns.
func New(ctx context.Context, eng *engine.Engine, q querier.WorkflowQuerier, opts Options) (*Server, error) {
	s := &Server{
		engine:  eng,
		querier: q,
		budget:  opts.Budget,
		stream:  opts.Stream,
		logger:  observability.LoggerOrDefault(opts.Logger),
		mux:     http.NewServeMux(),
	}
	if s.stream.PollInterval <= 0 || s.stream.MaxDuration <= 0 {
		s.stream = agui.DefaultConfig()
	}
	s.routes()

	var h http.Handler = s.mux
	if opts.OIDC.Enabled {
		provider, err := oidc.NewProvider(ctx, opts.OIDC.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("api: oidc discovery: %w", err)
		}
		h = oidcAuth(provider, opts.OIDC.Audience)(h)
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	h = requestID(logging(s.logger, cors(origins, h)))
	s.handler = otelhttp.NewHandler(h, "webpulse.api")
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/regions", s.handleListRegions)
	s.mux.HandleFunc("POST /api/v1/analyses", s.handleAnalyze)
	s.mux.HandleFunc("POST /api/v1/issues", s.handleIssues)
	s.mux.HandleFunc("POST /api/v1/comparisons", s.handleCompare)
	s.mux.HandleFunc("POST /api/v1/workflows", s.requireQuerier(s.handleStartWorkflow))
	s.mux.HandleFunc("GET /api/v1/workflows", s.requireQuerier(s.handleListWorkflows))
	s.mux.HandleFunc("GET /api/v1/workflows/{id}", s.requireQuerier(s.handleGetWorkflow))
	s.mux.HandleFunc("GET /api/v1/workflows/{id}/report", s.requireQuerier(s.handleWorkflowReport))
	s.mux.HandleFunc("GET /api/v1/workflows/{id}/ui", s.requireQuerier(s.handleWorkflowUI))
	s.mux.HandleFunc("GET /api/v1/workflows/{id}/stream", s.requireQuerier(func(w http.ResponseWriter, r *http.Request) {
		agui.StreamHandler(s.querier, s.stream)(w, r)
	}))
}

func (s *Server) requireQuerier(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.querier == nil {
			writeError(w, http.StatusServiceUnavailable, "durable analyses are not configured")
			return
		}
		next(w, r)
	}
}
