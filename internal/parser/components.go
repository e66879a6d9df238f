package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/agentscope/core/internal/models"
)

// odataEnvelope is the wrapper the platform's web API puts around row sets.
type odataEnvelope[T any] struct {
	Value []T `json:"value"`
}

// ParseComponents decodes a component list given either as a bare JSON array
// or as an OData envelope.
func ParseComponents(data []byte) ([]models.RawComponent, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty component data")
	}

	if data[0] == '[' {
		var components []models.RawComponent
		if err := json.Unmarshal(data, &components); err != nil {
			return nil, fmt.Errorf("failed to unmarshal components: %w", err)
		}
		return components, nil
	}

	var envelope odataEnvelope[models.RawComponent]
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal components: %w", err)
	}
	if envelope.Value == nil {
		return nil, fmt.Errorf("invalid component data: missing value array")
	}

	return envelope.Value, nil
}

// ParseAgent decodes an agent record given either as an object or as an
// OData envelope holding exactly one row.
func ParseAgent(data []byte) (*models.AgentRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty agent data")
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to unmarshal agent: %w", err)
	}

	var agent models.AgentRecord
	if _, wrapped := probe["value"]; wrapped {
		var envelope odataEnvelope[models.AgentRecord]
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("failed to unmarshal agent: %w", err)
		}
		if len(envelope.Value) != 1 {
			return nil, fmt.Errorf("invalid agent data: expected one row, got %d", len(envelope.Value))
		}
		agent = envelope.Value[0]
	} else if err := json.Unmarshal(data, &agent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal agent: %w", err)
	}

	if agent.ID == "" {
		return nil, fmt.Errorf("invalid agent: missing botid field")
	}

	return &agent, nil
}
