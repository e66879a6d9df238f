package models

type NodeKind string

const (
	NodeTopic  NodeKind = "topic"
	NodeDialog NodeKind = "dialog"
)

type EdgeKind string

const (
	EdgeCall     EdgeKind = "call"
	EdgeRedirect EdgeKind = "redirect"
	EdgeHandoff  EdgeKind = "handoff"
)

type DialogGraph struct {
	Nodes []DialogNode `json:"nodes"`
	Edges []DialogEdge `json:"edges"`
	Stats *Stats       `json:"stats,omitempty"`
}

type DialogNode struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Kind     NodeKind `json:"kind"`
	Triggers []string `json:"triggers"`
}

type DialogEdge struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Kind  EdgeKind `json:"kind"`
	Label string   `json:"label,omitempty"`
}

type Stats struct {
	TotalNodes  int              `json:"totalNodes"`
	TotalEdges  int              `json:"totalEdges"`
	EdgesByKind map[EdgeKind]int `json:"edgesByKind,omitempty"`
}
