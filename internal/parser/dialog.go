package parser

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/agentscope/core/internal/models"
)

type referencePattern struct {
	name string
	kind models.EdgeKind
	re   *regexp.Regexp
}

// referencePatterns find outbound references in a dialog payload. The row
// decides the kind of edge a match produces.
var referencePatterns = []referencePattern{
	{"begin-dialog-yaml", models.EdgeCall, regexp.MustCompile(`(?i)kind:\s*BeginDialog[\s\S]*?dialog:\s*(\S+)`)},
	{"begin-dialog-json", models.EdgeCall, regexp.MustCompile(`(?i)"BeginDialog"[\s\S]*?"dialog"\s*:\s*"([^"]+)"`)},
	{"begin-dialog-loose", models.EdgeCall, regexp.MustCompile(`(?i)beginDialog[\s\S]*?dialog[:\s]*([^\s"']+)`)},
	{"begin-dialog-phrase", models.EdgeCall, regexp.MustCompile(`(?i)begin.*dialog[\s\S]*?dialog[:\s]*([^\s"']+)`)},
	{"go-to-topic", models.EdgeRedirect, regexp.MustCompile(`(?i)goToTopic[\s\S]*?topic[:\s]*([^\s"']+)`)},
	{"redirect-to-topic", models.EdgeRedirect, regexp.MustCompile(`(?i)redirectToTopic[\s\S]*?topic[:\s]*([^\s"']+)`)},
	{"hand-off", models.EdgeHandoff, regexp.MustCompile(`(?i)kind:\s*(?:HandOff|TransferConversation\w*|InvokeConnectedAgent\w*)[\s\S]*?(?:agent|dialog|target):\s*["']?([^\s"']+)`)},
}

var quoteStripper = strings.NewReplacer(`"`, "", `'`, "")

var edgeLabels = map[models.EdgeKind]string{
	models.EdgeCall:     "calls",
	models.EdgeRedirect: "redirects to",
	models.EdgeHandoff:  "hands off to",
}

// minFuzzyTarget is the shortest reference the substring strategies will try
// to resolve. Shorter tokens only resolve by exact name or schema segment.
const minFuzzyTarget = 3

type dialogRef struct {
	id       string
	name     string
	schema   string
	segments []string
	record   models.RawComponent
}

type resolveStrategy struct {
	name  string
	fuzzy bool
	match func(target string, d dialogRef) bool
}

var resolveStrategies = []resolveStrategy{
	{name: "exact-name", match: func(target string, d dialogRef) bool {
		return d.name != "" && d.name == target
	}},
	{name: "name-substring", fuzzy: true, match: func(target string, d dialogRef) bool {
		return d.name != "" && (strings.Contains(d.name, target) || strings.Contains(target, d.name))
	}},
	{name: "schema-substring", fuzzy: true, match: func(target string, d dialogRef) bool {
		return strings.Contains(d.schema, strings.ToLower(target))
	}},
	{name: "schema-segment", match: func(target string, d dialogRef) bool {
		lower := strings.ToLower(target)
		for _, seg := range d.segments {
			if seg == lower {
				return true
			}
		}
		return false
	}},
}

// resolve picks the dialog a textual reference points at. The first strategy
// with exactly one candidate wins. When every strategy is ambiguous, the first
// ambiguous strategy wins and the lowest id breaks the tie.
func resolve(target string, dialogs []dialogRef) (dialogRef, string, bool) {
	var (
		ambiguous     []dialogRef
		ambiguousName string
	)
	for _, strategy := range resolveStrategies {
		if strategy.fuzzy && len(target) < minFuzzyTarget {
			continue
		}
		var candidates []dialogRef
		for _, d := range dialogs {
			if strategy.match(target, d) {
				candidates = append(candidates, d)
			}
		}
		switch {
		case len(candidates) == 1:
			return candidates[0], strategy.name, true
		case len(candidates) > 1 && ambiguous == nil:
			ambiguous, ambiguousName = candidates, strategy.name
		}
	}
	if ambiguous == nil {
		return dialogRef{}, "", false
	}
	best := ambiguous[0]
	for _, d := range ambiguous[1:] {
		if d.id < best.id {
			best = d
		}
	}
	return best, ambiguousName, true
}

// BuildDialogGraph builds the control-flow graph between the topics and
// dialogs in components. Nodes keep input order; edges never loop back to
// their source.
func (a *Analyzer) BuildDialogGraph(components []models.RawComponent) *models.DialogGraph {
	graph := &models.DialogGraph{
		Nodes: []models.DialogNode{},
		Edges: []models.DialogEdge{},
	}
	nodeMap := make(map[string]bool)
	var dialogs []dialogRef

	for _, c := range components {
		if !a.classifier.IsDialog(c) {
			continue
		}
		if c.ID == "" {
			a.logger.Debug("Skipping dialog without id", zap.String("schema", c.SchemaName))
			continue
		}
		if nodeMap[c.ID] {
			continue
		}
		nodeMap[c.ID] = true

		graph.Nodes = append(graph.Nodes, models.DialogNode{
			ID:       c.ID,
			Name:     displayName(c),
			Kind:     nodeKind(c),
			Triggers: ExtractTriggers(c),
		})
		schema := strings.ToLower(c.SchemaName)
		dialogs = append(dialogs, dialogRef{
			id:       c.ID,
			name:     c.Name,
			schema:   schema,
			segments: strings.Split(schema, "."),
			record:   c,
		})
	}

	for _, source := range dialogs {
		graph.Edges = append(graph.Edges, a.dialogEdges(source, dialogs)...)
	}

	graph.Stats = graphStats(graph)
	a.logger.Debug("Built dialog graph",
		zap.Int("nodes", graph.Stats.TotalNodes),
		zap.Int("edges", graph.Stats.TotalEdges))

	return graph
}

type referenceKey struct {
	offset int
	to     string
	kind   models.EdgeKind
}

func (a *Analyzer) dialogEdges(source dialogRef, dialogs []dialogRef) []models.DialogEdge {
	data := source.record.Data
	if data == "" {
		return nil
	}

	var edges []models.DialogEdge
	seen := make(map[referenceKey]bool)

	for _, pattern := range referencePatterns {
		for _, loc := range pattern.re.FindAllStringSubmatchIndex(data, -1) {
			target := strings.TrimSpace(quoteStripper.Replace(data[loc[2]:loc[3]]))
			if target == "" {
				continue
			}

			dest, strategy, ok := resolve(target, dialogs)
			if !ok {
				a.recorder.ReferenceUnresolved()
				a.logger.Debug("Unresolved dialog reference",
					zap.String("dialog", source.name),
					zap.String("pattern", pattern.name),
					zap.String("target", target))
				continue
			}
			if dest.id == source.id {
				continue
			}

			var key referenceKey
			switch a.dedup {
			case DedupByReference:
				key = referenceKey{offset: loc[2], to: dest.id}
			case DedupByTriple:
				key = referenceKey{offset: -1, to: dest.id, kind: pattern.kind}
			}
			if a.dedup != DedupNone {
				if seen[key] {
					continue
				}
				seen[key] = true
			}

			a.logger.Debug("Resolved dialog reference",
				zap.String("dialog", source.name),
				zap.String("target", target),
				zap.String("resolved", dest.name),
				zap.String("strategy", strategy))
			a.recorder.EdgeEmitted(string(pattern.kind))
			edges = append(edges, models.DialogEdge{
				From:  source.id,
				To:    dest.id,
				Kind:  pattern.kind,
				Label: edgeLabels[pattern.kind],
			})
		}
	}

	return edges
}

func nodeKind(c models.RawComponent) models.NodeKind {
	if strings.Contains(strings.ToLower(c.SchemaName), ".dialog.") {
		return models.NodeDialog
	}
	return models.NodeTopic
}

func graphStats(graph *models.DialogGraph) *models.Stats {
	stats := &models.Stats{
		TotalNodes: len(graph.Nodes),
		TotalEdges: len(graph.Edges),
	}
	if len(graph.Edges) > 0 {
		stats.EdgesByKind = make(map[models.EdgeKind]int)
		for _, e := range graph.Edges {
			stats.EdgesByKind[e.Kind]++
		}
	}
	return stats
}
