package parser

import (
	"strings"

	"go.uber.org/zap"

	"github.com/agentscope/core/internal/models"
)

// usable pairs a dependency with the schema name topics reference it by.
type usable struct {
	schema string
	dep    models.Dependency
}

// BuildAgentModel classifies every component and assembles the agent model.
func (a *Analyzer) BuildAgentModel(environmentURL string, agent models.AgentRecord, components []models.RawComponent) *models.Agent {
	model, _ := a.Analyze(environmentURL, agent, components)
	return model
}

// Analyze returns the agent model together with the dialog graph built over
// the same components, so each topic carries its own outbound edges under the
// ids the graph uses.
func (a *Analyzer) Analyze(environmentURL string, agent models.AgentRecord, components []models.RawComponent) (*models.Agent, *models.DialogGraph) {
	model := &models.Agent{
		ID:             agent.ID,
		Name:           agent.Name,
		EnvironmentURL: environmentURL,
		Topics:         []models.Topic{},
		Knowledge:      []models.Dependency{},
		Actions:        []models.Dependency{},
		Channels:       []models.Dependency{},
		Agents:         []models.Dependency{},
	}

	a.logTypeCensus(components)

	var (
		topicRecords   []models.RawComponent
		channelRecords []models.Dependency
		usables        []usable
	)
	seenTopics := make(map[string]bool)

	for _, c := range components {
		label, rule := a.classifier.Explain(c)
		a.recorder.ComponentClassified(string(label))

		if label == LabelUnknown {
			a.logger.Debug("Unclassified component",
				zap.Int("type", c.ComponentType),
				zap.String("schema", c.SchemaName),
				zap.String("name", c.Name))
			continue
		}
		if label == LabelSkip {
			a.logger.Debug("Skipping agent definition component",
				zap.String("schema", c.SchemaName),
				zap.String("rule", rule))
			continue
		}

		if label == LabelTopic {
			if c.ID != "" && !seenTopics[c.ID] {
				seenTopics[c.ID] = true
				topicRecords = append(topicRecords, c)
			}
			continue
		}

		ref := strings.TrimSpace(c.Name)
		if ref == "" {
			a.logger.Debug("Dropping component without name",
				zap.String("id", c.ID),
				zap.String("label", string(label)))
			continue
		}

		switch label {
		case LabelKnowledge:
			dep := models.Dependency{Kind: models.KindKnowledge, Type: "datasource", Ref: ref}
			if url, ok := ExtractKnowledgeURL(c); ok {
				dep.URL = url
			}
			model.Knowledge = append(model.Knowledge, dep)
			usables = append(usables, usable{schema: c.SchemaName, dep: dep})
		case LabelAction:
			dep := models.Dependency{Kind: models.KindAction, Type: "plugin", Ref: ref}
			model.Actions = append(model.Actions, dep)
			usables = append(usables, usable{schema: c.SchemaName, dep: dep})
		case LabelChannel:
			channelRecords = append(channelRecords, models.Dependency{Kind: models.KindChannel, Type: "component", Ref: ref})
		case LabelAgent:
			model.Agents = append(model.Agents, models.Dependency{Kind: models.KindAgent, Type: "handoff", Ref: ref})
		}
	}

	channels := append(ExtractChannels(agent), channelRecords...)
	model.Channels = append(model.Channels, DedupChannels(channels)...)

	graph := a.BuildDialogGraph(components)
	edgesFrom := make(map[string][]models.DialogEdge)
	for _, e := range graph.Edges {
		edgesFrom[e.From] = append(edgesFrom[e.From], e)
	}

	for _, c := range topicRecords {
		topic := models.Topic{
			ID:        c.ID,
			Name:      displayName(c),
			Triggers:  ExtractTriggers(c),
			Variables: ExtractVariables(c),
			Edges:     []models.DialogEdge{},
			Uses:      topicUses(c, usables),
		}
		topic.Edges = append(topic.Edges, edgesFrom[c.ID]...)
		model.Topics = append(model.Topics, topic)
	}

	if text, source, ok := findInstructions(agent, components); ok {
		model.Instructions = text
		a.logger.Debug("Resolved agent instructions", zap.String("source", source))
	}

	return model, graph
}

// topicUses lists the knowledge and action dependencies whose schema name
// appears in the topic payload.
func topicUses(c models.RawComponent, usables []usable) []models.Dependency {
	uses := []models.Dependency{}
	if c.Data == "" {
		return uses
	}
	data := strings.ToLower(c.Data)
	for _, u := range usables {
		if u.schema != "" && strings.Contains(data, strings.ToLower(u.schema)) {
			uses = append(uses, u.dep)
		}
	}
	return uses
}

// logTypeCensus reports the first schema seen for each component type code,
// which is how environment-specific codes get mapped by operators.
func (a *Analyzer) logTypeCensus(components []models.RawComponent) {
	if !a.logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	seen := make(map[int]bool)
	for _, c := range components {
		if seen[c.ComponentType] {
			continue
		}
		seen[c.ComponentType] = true
		a.logger.Debug("Component type census",
			zap.Int("type", c.ComponentType),
			zap.String("schema", c.SchemaName),
			zap.Bool("has_data", c.Data != ""),
			zap.Bool("has_content", c.Content != ""))
	}
}
