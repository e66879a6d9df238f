package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/agentscope/core/internal/models"
	"github.com/agentscope/core/internal/parser"
	"github.com/agentscope/core/internal/validation"
)

const defaultMaxBodyBytes = 32 << 20

// AnalyzeRequest is the body of POST /analyze. Agent and Components accept the
// same shapes as the CLI input files: a bare value or an OData envelope.
type AnalyzeRequest struct {
	EnvironmentURL string          `json:"environmentUrl" validate:"omitempty,url"`
	Agent          json.RawMessage `json:"agent" validate:"required"`
	Components     json.RawMessage `json:"components" validate:"required"`
}

type componentsRequest struct {
	Components json.RawMessage `json:"components"`
}

func (h *Handlers) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}

// statusFor maps a request error to its HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// decodeComponents accepts {"components": ...}, a bare component array or an
// OData envelope.
func decodeComponents(body []byte) ([]models.RawComponent, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var req componentsRequest
		if err := json.Unmarshal(trimmed, &req); err == nil && len(req.Components) > 0 {
			return parser.ParseComponents(req.Components)
		}
	}
	return parser.ParseComponents(trimmed)
}

func decodeAnalyzeRequest(body []byte) (*AnalyzeRequest, *models.AgentRecord, []models.RawComponent, error) {
	var req AnalyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to unmarshal request: %w", err)
	}
	if err := validation.Struct(&req); err != nil {
		return nil, nil, nil, err
	}

	agent, err := parser.ParseAgent(req.Agent)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := validation.Struct(agent); err != nil {
		return nil, nil, nil, err
	}

	components, err := parser.ParseComponents(req.Components)
	if err != nil {
		return nil, nil, nil, err
	}
	return &req, agent, components, nil
}

func (h *Handlers) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")

	encoder := json.NewEncoder(w)
	if r.URL.Query().Get("pretty") == "true" {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(v); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
	}
}
