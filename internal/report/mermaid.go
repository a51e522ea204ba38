package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olehluchkiv/codesage/internal/report/split"
	"github.com/olehluchkiv/codesage/internal/service"
)

// DiagramOptions controls Mermaid diagram generation.
type DiagramOptions struct {
	MaxMethodsPerBox int  // default 5, 0 means unlimited
	IncludeInit      bool // include %%{init:}%% directive (for standalone .mmd files)
}

// DefaultDiagramOptions returns sensible defaults for diagram generation.
func DefaultDiagramOptions() DiagramOptions {
	return DiagramOptions{MaxMethodsPerBox: 5}
}

const initDirective = "%%{init: {'theme': 'base', 'themeVariables': {'primaryColor': '#ffffff', 'primaryBorderColor': '#cccccc', 'primaryTextColor': '#000000', 'lineColor': '#555555'}}%%\n"

// classNode is one detected class in the diagram.
type classNode struct {
	Key     string // file:Name
	File    string
	Name    string
	Methods []string
}

// classGraph is the inheritance graph across every analyzed file. Only bases
// that resolve to a detected class become edges.
type classGraph struct {
	Nodes []classNode
	Edges []split.Edge
	bases map[string]bool
}

func nodeKey(file, name string) string {
	return file + ":" + name
}

// buildGraph collects classes from analyses. A base name resolves to a class
// in the same file first, then to the first class of that name by key.
func buildGraph(analyses []service.FileAnalysis) classGraph {
	g := classGraph{bases: make(map[string]bool)}
	byName := make(map[string][]string)
	seen := make(map[string]bool)

	for _, fa := range analyses {
		if fa.BasicAnalysis == nil {
			continue
		}
		for _, c := range fa.BasicAnalysis.Classes {
			key := nodeKey(fa.Filename, c.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			g.Nodes = append(g.Nodes, classNode{Key: key, File: fa.Filename, Name: c.Name, Methods: c.Methods})
			byName[c.Name] = append(byName[c.Name], key)
		}
	}
	sort.Slice(g.Nodes, func(i, j int) bool { return g.Nodes[i].Key < g.Nodes[j].Key })
	for _, keys := range byName {
		sort.Strings(keys)
	}

	edgeSeen := make(map[split.Edge]bool)
	for _, fa := range analyses {
		if fa.BasicAnalysis == nil {
			continue
		}
		for _, c := range fa.BasicAnalysis.Classes {
			child := nodeKey(fa.Filename, c.Name)
			for _, base := range c.Bases {
				parent, ok := resolveBase(byName, fa.Filename, baseName(base))
				if !ok || parent == child {
					continue
				}
				e := split.Edge{Child: child, Parent: parent}
				if !edgeSeen[e] {
					edgeSeen[e] = true
					g.Edges = append(g.Edges, e)
					g.bases[parent] = true
				}
			}
		}
	}
	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].Child != g.Edges[j].Child {
			return g.Edges[i].Child < g.Edges[j].Child
		}
		return g.Edges[i].Parent < g.Edges[j].Parent
	})
	return g
}

// baseName strips qualifiers and type arguments: "pkg.Base[T]" -> "Base".
func baseName(base string) string {
	if i := strings.IndexAny(base, "[<("); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimPrefix(strings.TrimSpace(base), "*")
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[i+1:]
	}
	return base
}

func resolveBase(byName map[string][]string, file, name string) (string, bool) {
	keys := byName[name]
	if len(keys) == 0 {
		return "", false
	}
	local := nodeKey(file, name)
	for _, k := range keys {
		if k == local {
			return k, true
		}
	}
	return keys[0], true
}

func (g classGraph) splitGraph() split.Graph {
	sg := split.Graph{Edges: g.Edges}
	for _, n := range g.Nodes {
		sg.Nodes = append(sg.Nodes, n.Key)
	}
	return sg
}

// subGraph keeps only nodes in keys, plus edges between them.
func (g classGraph) subGraph(keys map[string]bool) classGraph {
	sub := classGraph{bases: make(map[string]bool)}
	for _, n := range g.Nodes {
		if keys[n.Key] {
			sub.Nodes = append(sub.Nodes, n)
		}
	}
	for _, e := range g.Edges {
		if keys[e.Child] && keys[e.Parent] {
			sub.Edges = append(sub.Edges, e)
			sub.bases[e.Parent] = true
		}
	}
	return sub
}

// GenerateMermaid produces a Mermaid classDiagram of every detected class.
func GenerateMermaid(analyses []service.FileAnalysis, opts DiagramOptions) string {
	return renderMermaid(buildGraph(analyses), opts, true)
}

func renderMermaid(g classGraph, opts DiagramOptions, withMethods bool) string {
	var b strings.Builder

	if opts.IncludeInit {
		b.WriteString(initDirective)
	}
	b.WriteString("classDiagram")
	if len(g.Nodes) > 0 {
		b.WriteString("\n")
		b.WriteString("    direction LR\n")
		b.WriteString("    classDef baseStyle fill:#2374ab,stroke:#1a5a8a,color:#fff,stroke-width:2px,font-weight:bold\n")
		b.WriteString("    classDef classStyle fill:#4a9c6d,stroke:#357a50,color:#fff,stroke-width:2px")
	}

	for _, n := range g.Nodes {
		b.WriteString("\n")
		writeClassBlock(&b, n, opts, withMethods)
	}

	if len(g.Nodes) > 0 && len(g.Edges) > 0 {
		b.WriteString("\n")
	}
	for _, e := range g.Edges {
		b.WriteString("\n")
		fmt.Fprintf(&b, "    %s --|> %s", NodeID(e.Child), NodeID(e.Parent))
	}

	if len(g.Nodes) > 0 {
		b.WriteString("\n")
		for _, n := range g.Nodes {
			style := "classStyle"
			if g.bases[n.Key] {
				style = "baseStyle"
			}
			fmt.Fprintf(&b, "\n    cssClass \"%s\" %s", NodeID(n.Key), style)
		}
	}

	return b.String()
}

// writeClassBlock writes a Mermaid class block with optional truncation of
// the method list.
func writeClassBlock(b *strings.Builder, n classNode, opts DiagramOptions, withMethods bool) {
	fmt.Fprintf(b, "    class %s {\n", NodeID(n.Key))
	b.WriteString("        %% file: " + n.File + "\n")
	if withMethods {
		limit := len(n.Methods)
		truncated := false
		if opts.MaxMethodsPerBox > 0 && limit > opts.MaxMethodsPerBox {
			limit = opts.MaxMethodsPerBox
			truncated = true
		}
		for _, m := range n.Methods[:limit] {
			fmt.Fprintf(b, "        +%s()\n", SanitizeName(m))
		}
		if truncated {
			b.WriteString("        ...\n")
		}
	}
	b.WriteString("    }")
}

// SanitizeName removes characters that break Mermaid class diagram labels.
// Mermaid treats {}, <>, and ~ as special.
func SanitizeName(s string) string {
	return strings.NewReplacer("{", "", "}", "", "<", "", ">", "", "~", "").Replace(s)
}

// NodeID builds a Mermaid-safe identifier from a file:Name key.
func NodeID(key string) string {
	return strings.NewReplacer("/", "_", ".", "_", "-", "_", ":", "_", " ", "_", "\\", "_").Replace(key)
}
