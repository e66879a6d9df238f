package parser

import (
	"regexp"
	"slices"
	"strings"

	"github.com/agentscope/core/internal/models"
)

type Label string

const (
	LabelTopic     Label = "topic"
	LabelKnowledge Label = "knowledge"
	LabelAction    Label = "action"
	LabelChannel   Label = "channel"
	LabelAgent     Label = "agent"
	LabelSkip      Label = "skip"
	LabelUnknown   Label = "unknown"
)

// agentPackageMarker prefixes every component that belongs to the agent
// package definition itself.
const agentPackageMarker = "msdyn_appcopilot"

var (
	selfNamePattern = regexp.MustCompile(`(?i)\b(?:copilot|agent)\b`)

	knowledgeKeywords = []string{"knowledgesource", "datasource", "knowledge.", "sharepoint", "website", "file", "document"}
	actionKeywords    = []string{"action", "plugin", "flow", "connector"}
	channelKeywords   = []string{
		"teams", "webchat", "facebook", "slack", "telegram", "directline", "skype", "sms", "alexa", "cortana",
		"channel", "publish", "deploy",
	}
	agentKeywords = []string{".agent", ".handoff"}
)

// componentView is the lower-cased projection of the fields rules look at.
type componentView struct {
	schema string
	name   string
	code   int
}

type classificationRule struct {
	name  string
	label Label
	match func(v componentView, codes TypeCodes) bool
}

// classificationRules is evaluated top to bottom; the first match wins.
var classificationRules = []classificationRule{
	{
		name:  "agent-definition",
		label: LabelSkip,
		match: func(v componentView, _ TypeCodes) bool {
			return isAgentDefinition(v) || selfNamePattern.MatchString(v.name)
		},
	},
	{
		name:  "topic",
		label: LabelTopic,
		match: func(v componentView, codes TypeCodes) bool {
			return isTopic(v, codes)
		},
	},
	{
		name:  "knowledge-schema",
		label: LabelKnowledge,
		match: func(v componentView, _ TypeCodes) bool {
			return containsAny(v.schema, knowledgeKeywords) && !isAgentDefinition(v)
		},
	},
	{
		name:  "action",
		label: LabelAction,
		match: func(v componentView, codes TypeCodes) bool {
			return containsAny(v.schema, actionKeywords) || (codes.Action != 0 && v.code == codes.Action)
		},
	},
	{
		name:  "channel",
		label: LabelChannel,
		match: func(v componentView, codes TypeCodes) bool {
			return containsAny(v.schema, channelKeywords) ||
				containsAny(v.name, channelKeywords) ||
				slices.Contains(codes.Channel, v.code)
		},
	},
	{
		name:  "agent-reference",
		label: LabelAgent,
		match: func(v componentView, _ TypeCodes) bool {
			return containsAny(v.schema, agentKeywords)
		},
	},
}

func isAgentDefinition(v componentView) bool {
	return strings.Contains(v.schema, agentPackageMarker) ||
		strings.Contains(v.schema, ".agent.") ||
		strings.HasPrefix(v.schema, "bot.")
}

func isTopic(v componentView, codes TypeCodes) bool {
	return strings.Contains(v.schema, ".topic.") || (codes.Topic != 0 && v.code == codes.Topic)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func viewOf(c models.RawComponent) componentView {
	return componentView{
		schema: strings.ToLower(c.SchemaName),
		name:   strings.ToLower(c.Name),
		code:   c.ComponentType,
	}
}

// Classifier assigns a Label to a raw component. It is a pure function of the
// component's schema name, display name and type code.
type Classifier struct {
	codes TypeCodes
}

func NewClassifier(codes TypeCodes) *Classifier {
	return &Classifier{codes: codes}
}

func (c *Classifier) Classify(component models.RawComponent) Label {
	label, _ := c.Explain(component)
	return label
}

// Explain returns the label together with the name of the rule that produced
// it. Unmatched components report an empty rule name.
func (c *Classifier) Explain(component models.RawComponent) (Label, string) {
	v := viewOf(component)
	for _, rule := range classificationRules {
		if rule.match(v, c.codes) {
			return rule.label, rule.name
		}
	}
	return LabelUnknown, ""
}

// IsDialog reports whether the component is a topic or dialog, using the topic
// rule alone. Agent definition markers do not exclude a dialog.
func (c *Classifier) IsDialog(component models.RawComponent) bool {
	return isTopic(viewOf(component), c.codes)
}
