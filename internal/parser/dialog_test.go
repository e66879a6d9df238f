package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentscope/core/internal/models"
)

func topic(id, name, data string) models.RawComponent {
	return models.RawComponent{
		ID:            id,
		Name:          name,
		ComponentType: 10,
		SchemaName:    "cr1_bot.topic." + name,
		Data:          data,
	}
}

const callEscalate = "kind: AdaptiveDialog\nactions:\n  - kind: BeginDialog\n    id: call1\n    dialog: cr1_bot.topic.Escalate\n"

func TestBuildDialogGraph_SingleTopic(t *testing.T) {
	components := []models.RawComponent{
		{ID: "t-1", Name: "Greeting", SchemaName: "pkg.topic.greeting", Data: "triggers:\n  - hello\n  - hi there"},
	}

	graph := NewAnalyzer().BuildDialogGraph(components)

	require.Len(t, graph.Nodes, 1)
	assert.Equal(t, "t-1", graph.Nodes[0].ID)
	assert.Equal(t, models.NodeTopic, graph.Nodes[0].Kind)
	assert.Equal(t, []string{"hello", "hi there"}, graph.Nodes[0].Triggers)
	assert.Empty(t, graph.Edges)
	assert.Equal(t, &models.Stats{TotalNodes: 1}, graph.Stats)
}

func TestBuildDialogGraph_CallEdge(t *testing.T) {
	tests := []struct {
		name       string
		components []models.RawComponent
		from, to   string
	}{
		{
			name: "schema qualified target",
			components: []models.RawComponent{
				topic("t-1", "Greeting", callEscalate),
				topic("t-2", "Escalate", "kind: AdaptiveDialog"),
			},
			from: "t-1",
			to:   "t-2",
		},
		{
			name: "target matched by exact name",
			components: []models.RawComponent{
				topic("t-a", "A", "kind: BeginDialog\ndialog: B"),
				topic("t-b", "B", ""),
			},
			from: "t-a",
			to:   "t-b",
		},
		{
			name: "short target matched by schema segment",
			components: []models.RawComponent{
				{ID: "t-1", Name: "Greeting", ComponentType: 10, SchemaName: "cr1_bot.topic.greeting", Data: "kind: BeginDialog\n    dialog: hr"},
				{ID: "t-2", Name: "Human Resources", ComponentType: 10, SchemaName: "cr1_bot.topic.hr"},
			},
			from: "t-1",
			to:   "t-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			graph := NewAnalyzer().BuildDialogGraph(tt.components)

			require.Len(t, graph.Nodes, 2)
			require.Len(t, graph.Edges, 1)
			assert.Equal(t, models.DialogEdge{From: tt.from, To: tt.to, Kind: models.EdgeCall, Label: "calls"}, graph.Edges[0])
			assert.Equal(t, map[models.EdgeKind]int{models.EdgeCall: 1}, graph.Stats.EdgesByKind)
		})
	}
}

func TestBuildDialogGraph_EdgeKinds(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		kind  models.EdgeKind
		label string
	}{
		{
			name:  "json begin dialog",
			data:  `{"kind": "BeginDialog", "dialog": "cr1_bot.topic.Escalate"}`,
			kind:  models.EdgeCall,
			label: "calls",
		},
		{
			name:  "go to topic",
			data:  "kind: GoToTopic\ntopic: cr1_bot.topic.Escalate",
			kind:  models.EdgeRedirect,
			label: "redirects to",
		},
		{
			name:  "redirect to topic",
			data:  "kind: RedirectToTopic\ntopic: Escalate",
			kind:  models.EdgeRedirect,
			label: "redirects to",
		},
		{
			name:  "transfer conversation",
			data:  "kind: TransferConversationV2\ntarget: 'cr1_bot.topic.Escalate'",
			kind:  models.EdgeHandoff,
			label: "hands off to",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			components := []models.RawComponent{
				topic("t-1", "Greeting", tt.data),
				topic("t-2", "Escalate", ""),
			}

			graph := NewAnalyzer().BuildDialogGraph(components)

			require.NotEmpty(t, graph.Edges)
			for _, e := range graph.Edges {
				assert.Equal(t, "t-1", e.From)
				assert.Equal(t, "t-2", e.To)
				assert.Equal(t, tt.kind, e.Kind)
				assert.Equal(t, tt.label, e.Label)
			}
		})
	}
}

func TestBuildDialogGraph_Nodes(t *testing.T) {
	t.Run("duplicate ids collapse to the first record", func(t *testing.T) {
		components := []models.RawComponent{
			topic("t-1", "Greeting", ""),
			topic("t-1", "Greeting copy", ""),
		}

		graph := NewAnalyzer().BuildDialogGraph(components)

		require.Len(t, graph.Nodes, 1)
		assert.Equal(t, "Greeting", graph.Nodes[0].Name)
	})

	t.Run("records without id are not nodes", func(t *testing.T) {
		graph := NewAnalyzer().BuildDialogGraph([]models.RawComponent{topic("", "Greeting", "")})
		assert.Empty(t, graph.Nodes)
	})

	t.Run("dialog schemas", func(t *testing.T) {
		components := []models.RawComponent{
			{ID: "d-1", Name: "Lookup", ComponentType: 10, SchemaName: "cr1_bot.dialog.lookup"},
		}

		graph := NewAnalyzer().BuildDialogGraph(components)

		require.Len(t, graph.Nodes, 1)
		assert.Equal(t, models.NodeDialog, graph.Nodes[0].Kind)
	})

	t.Run("name falls back to schema", func(t *testing.T) {
		components := []models.RawComponent{{ID: "t-9", SchemaName: "cr1_bot.topic.Fallback"}}

		graph := NewAnalyzer().BuildDialogGraph(components)

		require.Len(t, graph.Nodes, 1)
		assert.Equal(t, "Fallback", graph.Nodes[0].Name)
	})

	t.Run("non dialogs are ignored", func(t *testing.T) {
		components := []models.RawComponent{
			{ID: "k-1", Name: "Docs", SchemaName: "cr1_bot.knowledgesource.docs"},
			topic("t-1", "Greeting", ""),
		}

		graph := NewAnalyzer().BuildDialogGraph(components)

		require.Len(t, graph.Nodes, 1)
		assert.Equal(t, "t-1", graph.Nodes[0].ID)
	})

	t.Run("empty input", func(t *testing.T) {
		graph := NewAnalyzer().BuildDialogGraph(nil)
		assert.NotNil(t, graph.Nodes)
		assert.NotNil(t, graph.Edges)
		assert.Equal(t, 0, graph.Stats.TotalNodes)
	})
}

func TestBuildDialogGraph_SelfReference(t *testing.T) {
	data := "kind: AdaptiveDialog\nactions:\n  - kind: BeginDialog\n    dialog: cr1_bot.topic.Greeting\n"
	components := []models.RawComponent{topic("t-1", "Greeting", data)}

	graph := NewAnalyzer().BuildDialogGraph(components)

	assert.Empty(t, graph.Edges)
}

func TestBuildDialogGraph_EdgeDedup(t *testing.T) {
	data := "actions:\n- kind: BeginDialog\n  dialog: cr1_bot.topic.Escalate\n- kind: BeginDialog\n  dialog: cr1_bot.topic.Escalate\n"
	components := []models.RawComponent{
		topic("t-1", "Greeting", data),
		topic("t-2", "Escalate", ""),
	}

	tests := []struct {
		mode EdgeDedup
		want int
	}{
		{mode: DedupByReference, want: 2},
		{mode: DedupByTriple, want: 1},
		{mode: DedupNone, want: 6},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			graph := NewAnalyzer(WithEdgeDedup(tt.mode)).BuildDialogGraph(components)
			assert.Len(t, graph.Edges, tt.want)
			assert.Equal(t, tt.want, graph.Stats.TotalEdges)
		})
	}

	t.Run("reference mode with one call", func(t *testing.T) {
		single := []models.RawComponent{topic("t-1", "Greeting", callEscalate), topic("t-2", "Escalate", "")}
		assert.Len(t, NewAnalyzer(WithEdgeDedup(DedupNone)).BuildDialogGraph(single).Edges, 3)
		assert.Len(t, NewAnalyzer().BuildDialogGraph(single).Edges, 1)
	})
}

func TestBuildDialogGraph_Unresolved(t *testing.T) {
	rec := newFakeRecorder()
	data := "kind: AdaptiveDialog\nactions:\n  - kind: BeginDialog\n    dialog: cr1_bot.topic.Missing\n"
	components := []models.RawComponent{topic("t-1", "Greeting", data)}

	graph := NewAnalyzer(WithRecorder(rec)).BuildDialogGraph(components)

	assert.Empty(t, graph.Edges)
	assert.Positive(t, rec.unresolved)
	assert.Empty(t, rec.edges)
}

func TestBuildDialogGraph_Deterministic(t *testing.T) {
	components := []models.RawComponent{
		topic("t-1", "Greeting", callEscalate+"  - kind: GoToTopic\n    topic: cr1_bot.topic.Goodbye\n"),
		topic("t-2", "Escalate", "kind: TransferConversation\nagent: Goodbye"),
		topic("t-3", "Goodbye", "triggers:\n  - bye"),
	}
	analyzer := NewAnalyzer()

	first := analyzer.BuildDialogGraph(components)
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, analyzer.BuildDialogGraph(components)); diff != "" {
			t.Fatalf("graph changed between runs (-first +next):\n%s", diff)
		}
	}
}

func TestResolve(t *testing.T) {
	dialogs := []dialogRef{
		{id: "t-2", name: "Billing Help", schema: "cr1_bot.topic.billinghelp", segments: []string{"cr1_bot", "topic", "billinghelp"}},
		{id: "t-1", name: "Billing FAQ", schema: "cr1_bot.topic.billingfaq", segments: []string{"cr1_bot", "topic", "billingfaq"}},
		{id: "t-3", name: "Bo", schema: "cr1_bot.topic.bo", segments: []string{"cr1_bot", "topic", "bo"}},
	}

	t.Run("exact name", func(t *testing.T) {
		got, strategy, ok := resolve("Billing Help", dialogs)
		require.True(t, ok)
		assert.Equal(t, "t-2", got.id)
		assert.Equal(t, "exact-name", strategy)
	})

	t.Run("later strategy with a single candidate beats ambiguity", func(t *testing.T) {
		got, strategy, ok := resolve("cr1_bot.topic.BillingFAQ", dialogs)
		require.True(t, ok)
		assert.Equal(t, "t-1", got.id)
		assert.Equal(t, "schema-substring", strategy)
	})

	t.Run("ambiguous everywhere picks the lowest id", func(t *testing.T) {
		got, strategy, ok := resolve("Billing", dialogs)
		require.True(t, ok)
		assert.Equal(t, "t-1", got.id)
		assert.Equal(t, "name-substring", strategy)
	})

	t.Run("short targets skip the substring strategies", func(t *testing.T) {
		_, _, ok := resolve("B", dialogs)
		assert.False(t, ok)

		got, strategy, ok := resolve("Bo", dialogs)
		require.True(t, ok)
		assert.Equal(t, "t-3", got.id)
		assert.Equal(t, "exact-name", strategy)

		got, strategy, ok = resolve("bo", dialogs)
		require.True(t, ok)
		assert.Equal(t, "t-3", got.id)
		assert.Equal(t, "schema-segment", strategy)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, _, ok := resolve("Shipping", dialogs)
		assert.False(t, ok)
	})
}
