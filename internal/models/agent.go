package models

type DependencyKind string

const (
	KindKnowledge DependencyKind = "knowledge"
	KindAction    DependencyKind = "action"
	KindChannel   DependencyKind = "channel"
	KindAgent     DependencyKind = "agent"
)

// Agent is the typed model of one agent and everything it depends on.
type Agent struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	EnvironmentURL string       `json:"environmentUrl"`
	Topics         []Topic      `json:"topics"`
	Knowledge      []Dependency `json:"knowledge"`
	Actions        []Dependency `json:"actions"`
	Channels       []Dependency `json:"channels"`
	Agents         []Dependency `json:"agents"`
	Instructions   string       `json:"instructions,omitempty"`
}

type Topic struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Triggers  []string     `json:"triggers"`
	Variables []string     `json:"variables"`
	Edges     []DialogEdge `json:"edges"`
	Uses      []Dependency `json:"uses"`
}

// Dependency is a resource an agent relies on. Ref is always non-empty.
// Details carries enrichment gathered after the entry was created, such as a
// Teams app id read from the manifest.
type Dependency struct {
	Kind    DependencyKind    `json:"kind"`
	Type    string            `json:"type"`
	Ref     string            `json:"ref"`
	URL     string            `json:"url,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}
