// Package handlers provides the HTTP handlers of the agentscope API.
package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/agentscope/core/internal/models"
	"github.com/agentscope/core/internal/parser"
)

// AnalysisRecorder counts analysis requests by outcome.
type AnalysisRecorder interface {
	RecordAnalysis(operation string, err error)
}

type nopAnalysisRecorder struct{}

func (nopAnalysisRecorder) RecordAnalysis(string, error) {}

// Handlers serves the analysis endpoints over a shared Analyzer.
type Handlers struct {
	analyzer       *parser.Analyzer
	logger         *zap.Logger
	recorder       AnalysisRecorder
	environmentURL string
	maxBodyBytes   int64
}

// New creates the handler set. A nil logger or recorder disables that output.
// environmentURL is used when a request does not name its environment.
func New(analyzer *parser.Analyzer, logger *zap.Logger, recorder AnalysisRecorder, environmentURL string) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = nopAnalysisRecorder{}
	}
	return &Handlers{
		analyzer:       analyzer,
		logger:         logger,
		recorder:       recorder,
		environmentURL: environmentURL,
		maxBodyBytes:   defaultMaxBodyBytes,
	}
}

// AnalyzeResponse is the body returned by POST /analyze.
type AnalyzeResponse struct {
	Agent *models.Agent       `json:"agent"`
	Graph *models.DialogGraph `json:"graph"`
}

// ClassifyResult reports the label and deciding rule for one component.
type ClassifyResult struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Label parser.Label `json:"label"`
	Rule  string       `json:"rule,omitempty"`
}

func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		h.fail(w, "analyze", "Failed to read body", err)
		return
	}

	req, agent, components, err := decodeAnalyzeRequest(body)
	if err != nil {
		h.fail(w, "analyze", "Invalid request", err)
		return
	}

	envURL := req.EnvironmentURL
	if envURL == "" {
		envURL = h.environmentURL
	}

	model, graph := h.analyzer.Analyze(envURL, *agent, components)
	h.recorder.RecordAnalysis("analyze", nil)
	h.logger.Info("Analyzed agent",
		zap.String("agent", agent.ID),
		zap.Int("components", len(components)),
		zap.Int("topics", len(model.Topics)),
		zap.Int("edges", len(graph.Edges)))

	h.writeJSON(w, r, AnalyzeResponse{Agent: model, Graph: graph})
}

func (h *Handlers) Graph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		h.fail(w, "graph", "Failed to read body", err)
		return
	}

	components, err := decodeComponents(body)
	if err != nil {
		h.fail(w, "graph", "Invalid components", err)
		return
	}

	graph := h.analyzer.BuildDialogGraph(components)
	h.recorder.RecordAnalysis("graph", nil)

	h.writeJSON(w, r, graph)
}

func (h *Handlers) Classify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		h.fail(w, "classify", "Failed to read body", err)
		return
	}

	components, err := decodeComponents(body)
	if err != nil {
		h.fail(w, "classify", "Invalid components", err)
		return
	}

	classifier := h.analyzer.Classifier()
	results := make([]ClassifyResult, 0, len(components))
	for _, c := range components {
		label, rule := classifier.Explain(c)
		results = append(results, ClassifyResult{ID: c.ID, Name: c.Name, Label: label, Rule: rule})
	}
	h.recorder.RecordAnalysis("classify", nil)

	h.writeJSON(w, r, results)
}

func (h *Handlers) fail(w http.ResponseWriter, operation, message string, err error) {
	h.recorder.RecordAnalysis(operation, err)
	h.logger.Warn("Rejected request",
		zap.String("operation", operation),
		zap.Error(err))
	http.Error(w, message+": "+err.Error(), statusFor(err))
}
