package split

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildGraph creates a Graph from node names in one file and "Child->Parent"
// pairs.
func buildGraph(file string, nodes []string, edges [][2]string) Graph {
	key := func(name string) string { return file + ":" + name }
	g := Graph{}
	for _, n := range nodes {
		g.Nodes = append(g.Nodes, key(n))
	}
	for _, e := range edges {
		g.Edges = append(g.Edges, Edge{Child: key(e[0]), Parent: key(e[1])})
	}
	return g
}

func TestHubSpoke_WidgetHierarchy(t *testing.T) {
	// Four base widgets, eleven concrete widgets and an iterator pair.
	file := "widgets.py"
	bases := []string{"Widget", "Focusable", "Scrollable", "Container", "Iterator"}
	concrete := []string{
		"Button", "Checkbox", "ComboBox", "Dialog", "Label", "ListView",
		"Menu", "Panel", "Slider", "TextBox", "TreeView", "RowIterator",
	}

	var edges [][2]string
	for _, name := range concrete[:11] {
		edges = append(edges,
			[2]string{name, "Widget"},
			[2]string{name, "Focusable"},
			[2]string{name, "Container"},
		)
	}
	for _, name := range []string{"ListView", "TreeView", "TextBox", "Panel"} {
		edges = append(edges, [2]string{name, "Scrollable"})
	}
	edges = append(edges, [2]string{"RowIterator", "Iterator"})

	g := buildGraph(file, append(bases, concrete...), edges)
	groups := NewHubAndSpoke(Options{HubThreshold: 3, ChunkSize: 3}).Split(g)

	// 12 spokes / chunk size 3.
	require.Len(t, groups, 4)

	key := func(name string) string { return file + ":" + name }
	for i, grp := range groups {
		for _, hub := range []string{"Widget", "Focusable", "Container", "Scrollable"} {
			assert.Contains(t, grp.HubKeys, key(hub), "group %d missing hub %s", i, hub)
		}
		assert.LessOrEqual(t, len(grp.SpokeKeys), 3)
		assert.NotEmpty(t, grp.SpokeKeys)
	}

	var iterSlide int
	for i, grp := range groups {
		for _, k := range grp.SpokeKeys {
			if k == key("RowIterator") {
				iterSlide = i
			}
		}
	}
	assert.Contains(t, groups[iterSlide].HubKeys, key("Iterator"),
		"Iterator should be on the same slide as RowIterator")

	seen := make(map[string]int)
	for _, grp := range groups {
		for _, k := range grp.SpokeKeys {
			seen[k]++
		}
	}
	assert.Len(t, seen, 12)
	for k, n := range seen {
		assert.Equal(t, 1, n, "spoke %s should appear exactly once", k)
	}
}

func TestHubSpoke_SmallGraph(t *testing.T) {
	g := buildGraph("io.py", []string{"Reader", "Writer", "FileReader", "FileWriter"}, [][2]string{
		{"FileReader", "Reader"},
		{"FileWriter", "Writer"},
	})
	groups := NewHubAndSpoke(Options{HubThreshold: 3, ChunkSize: 3}).Split(g)

	require.Len(t, groups, 1)
	assert.Len(t, groups[0].SpokeKeys, 2)
	assert.Contains(t, groups[0].HubKeys, "io.py:Reader")
	assert.Contains(t, groups[0].HubKeys, "io.py:Writer")
	assert.Equal(t, "FileReader, FileWriter", groups[0].Title)
}

func TestHubSpoke_AllHubs(t *testing.T) {
	g := buildGraph("m.py", []string{"A", "B", "X", "Y", "Z"}, [][2]string{
		{"X", "A"}, {"X", "B"},
		{"Y", "A"}, {"Y", "B"},
		{"Z", "A"}, {"Z", "B"},
	})
	groups := NewHubAndSpoke(Options{HubThreshold: 3, ChunkSize: 3}).Split(g)

	require.Len(t, groups, 1)
	assert.Len(t, groups[0].SpokeKeys, 3)
	hubs := groups[0].HubKeys
	sort.Strings(hubs)
	assert.Equal(t, []string{"m.py:A", "m.py:B"}, hubs)
}

func TestHubSpoke_OrphanBaseGoesToFirstGroup(t *testing.T) {
	// Base is only extended by Middle, which is itself a base.
	g := buildGraph("m.py", []string{"Base", "Middle", "Leaf"}, [][2]string{
		{"Middle", "Base"},
		{"Leaf", "Middle"},
	})
	groups := NewHubAndSpoke(Options{HubThreshold: 5, ChunkSize: 3}).Split(g)

	require.Len(t, groups, 1)
	assert.Equal(t, []string{"m.py:Leaf"}, groups[0].SpokeKeys)
	assert.Equal(t, []string{"m.py:Middle", "m.py:Base"}, groups[0].HubKeys)
}

func TestHubSpoke_Deterministic(t *testing.T) {
	g := buildGraph("m.py", []string{"A", "B", "C", "D", "E", "F", "G"}, [][2]string{
		{"D", "A"}, {"E", "B"}, {"F", "C"}, {"G", "A"},
	})
	s := NewHubAndSpoke(Options{HubThreshold: 10, ChunkSize: 2})
	first := s.Split(g)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, s.Split(g))
	}
}

func TestHubSpoke_OnlyBases(t *testing.T) {
	g := Graph{Nodes: []string{"m.py:A", "m.py:B"}, Edges: []Edge{{Child: "m.py:A", Parent: "m.py:B"}, {Child: "m.py:B", Parent: "m.py:A"}}}
	groups := NewHubAndSpoke(DefaultOptions()).Split(g)

	require.Len(t, groups, 1)
	assert.Empty(t, groups[0].SpokeKeys)
	assert.Equal(t, []string{"m.py:A", "m.py:B"}, groups[0].HubKeys)
}

func TestHubSpoke_Empty(t *testing.T) {
	assert.Nil(t, NewHubAndSpoke(Options{}).Split(Graph{}))
}

func TestNewHubAndSpoke_Defaults(t *testing.T) {
	h := NewHubAndSpoke(Options{})
	assert.Equal(t, DefaultOptions(), h.opts)
}
