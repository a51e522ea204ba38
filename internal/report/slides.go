package report

import (
	"github.com/olehluchkiv/codesage/internal/report/split"
	"github.com/olehluchkiv/codesage/internal/service"
)

// Slide is one diagram page of a report.
type Slide struct {
	Title   string
	Mermaid string
}

// SlideOptions controls slide generation.
type SlideOptions struct {
	Threshold int // node count above which slides activate; 0 = always single
}

// DefaultSlideOptions returns sensible defaults.
func DefaultSlideOptions() SlideOptions {
	return SlideOptions{Threshold: 20}
}

// BuildSlides turns the class hierarchy into diagram slides using splitter.
// Splitting activates when the class count or the edge count reaches the
// threshold; otherwise one slide holds the full diagram. Nil means there
// are no classes to draw.
func BuildSlides(analyses []service.FileAnalysis, diagOpts DiagramOptions, splitter split.Splitter, opts SlideOptions) []Slide {
	g := buildGraph(analyses)
	if len(g.Nodes) == 0 {
		return nil
	}
	if opts.Threshold <= 0 || (len(g.Nodes) < opts.Threshold && len(g.Edges) < opts.Threshold) {
		return []Slide{{
			Title:   "Full Diagram",
			Mermaid: renderMermaid(g, diagOpts, true),
		}}
	}

	// Overview: every class and edge, no methods.
	slides := []Slide{{
		Title:   "Overview",
		Mermaid: renderMermaid(g, diagOpts, false),
	}}

	for _, grp := range splitter.Split(g.splitGraph()) {
		keys := make(map[string]bool, len(grp.HubKeys)+len(grp.SpokeKeys))
		for _, k := range grp.HubKeys {
			keys[k] = true
		}
		for _, k := range grp.SpokeKeys {
			keys[k] = true
		}
		slides = append(slides, Slide{
			Title:   grp.Title,
			Mermaid: renderMermaid(g.subGraph(keys), diagOpts, true),
		})
	}
	return slides
}
