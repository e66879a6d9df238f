package parser

import (
	"encoding/json"
	"strings"

	"github.com/agentscope/core/internal/models"
)

var instructionBlocks = newBlockScanner("instructions")

type instructionSource struct {
	name string
	find func(agent models.AgentRecord, components []models.RawComponent) (string, bool)
}

// instructionSources is tried in order; the first non-empty value wins.
var instructionSources = []instructionSource{
	{name: "metadata", find: fromMetadata},
	{name: "configuration", find: func(agent models.AgentRecord, _ []models.RawComponent) (string, bool) {
		return stringField(decodeObject(agent.Configuration), "instructions", "systemPrompt", "agentInstructions", "description")
	}},
	{name: "manifest", find: func(agent models.AgentRecord, _ []models.RawComponent) (string, bool) {
		return stringField(decodeObject(agent.ApplicationManifestInformation), "instructions")
	}},
	{name: "component-json", find: fromComponentPayload},
	{name: "component-text", find: fromComponentText},
}

// ExtractInstructions returns the agent's natural-language instructions.
func ExtractInstructions(agent models.AgentRecord, components []models.RawComponent) (string, bool) {
	text, _, ok := findInstructions(agent, components)
	return text, ok
}

func findInstructions(agent models.AgentRecord, components []models.RawComponent) (string, string, bool) {
	for _, src := range instructionSources {
		if text, ok := src.find(agent, components); ok {
			return text, src.name, true
		}
	}
	return "", "", false
}

func fromMetadata(agent models.AgentRecord, _ []models.RawComponent) (string, bool) {
	raw := agent.Metadata
	if len(raw) == 0 {
		return "", false
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		return stringField(decodeObject(encoded), "instructions")
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}
	return stringField(obj, "instructions")
}

func fromComponentPayload(_ models.AgentRecord, components []models.RawComponent) (string, bool) {
	for _, c := range components {
		schema := strings.ToLower(c.SchemaName)
		name := strings.ToLower(c.Name)
		if !containsAny(schema, []string{"instruction", "prompt", "copilot"}) &&
			!containsAny(name, []string{"instruction", "prompt"}) {
			continue
		}
		for _, payload := range []string{c.Data, c.Content} {
			if text, ok := stringField(decodeObject(payload), "instructions", "systemPrompt", "prompt"); ok {
				return text, true
			}
		}
	}
	return "", false
}

func fromComponentText(_ models.AgentRecord, components []models.RawComponent) (string, bool) {
	for _, c := range components {
		if c.Data == "" || json.Valid([]byte(c.Data)) {
			continue
		}
		for _, b := range instructionBlocks.scan(c.Data) {
			if text := b.text(); text != "" {
				return text, true
			}
		}
	}
	return "", false
}

// decodeObject parses text as a JSON object, returning nil on any failure.
func decodeObject(text string) map[string]any {
	text = strings.TrimSpace(text)
	if text == "" || text[0] != '{' {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil
	}
	return obj
}

// stringField returns the first of keys holding a non-blank string.
func stringField(obj map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := obj[key].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s, true
			}
		}
	}
	return "", false
}
