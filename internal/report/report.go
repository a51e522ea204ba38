// Package report renders file analyses as JSON, YAML, Markdown or a Mermaid
// class diagram.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olehluchkiv/codesage/internal/report/split"
	"github.com/olehluchkiv/codesage/internal/service"
	"gopkg.in/yaml.v3"
)

// Format names an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatMermaid  Format = "mermaid"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatYAML, FormatMarkdown, FormatMermaid}

// ParseFormat accepts a format name, case-insensitively. "md" and "yml" are
// accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "mermaid":
		return FormatMermaid, nil
	}
	return "", fmt.Errorf("unknown format %q (want json, yaml, markdown or mermaid)", s)
}

// Write renders analyses to w. JSON and YAML emit a single object when
// exactly one file was analyzed and a list otherwise.
func Write(w io.Writer, format Format, analyses []service.FileAnalysis) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(payload(analyses))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(payload(analyses)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(analyses))
		return err
	case FormatMermaid:
		opts := DefaultDiagramOptions()
		opts.IncludeInit = true
		_, err := io.WriteString(w, GenerateMermaid(analyses, opts)+"\n")
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}

func payload(analyses []service.FileAnalysis) any {
	if len(analyses) == 1 {
		return analyses[0]
	}
	if analyses == nil {
		return []service.FileAnalysis{}
	}
	return analyses
}

// Markdown renders a human-readable summary of every file followed by class
// diagram slides.
func Markdown(analyses []service.FileAnalysis) string {
	var b strings.Builder
	b.WriteString("# Code Analysis Report\n\n")

	if len(analyses) == 0 {
		b.WriteString("No files analyzed.\n")
		return b.String()
	}

	b.WriteString("| File | Language | Functions | Classes | Complexity |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, fa := range analyses {
		r := fa.BasicAnalysis
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %.2f |\n",
			escapeCell(fa.Filename), fa.Language, len(r.Functions), len(r.Classes), r.ComplexityScore)
	}

	for _, fa := range analyses {
		writeFileSection(&b, fa)
	}

	slides := BuildSlides(analyses, DefaultDiagramOptions(), split.NewHubAndSpoke(split.DefaultOptions()), DefaultSlideOptions())
	if len(slides) > 0 {
		b.WriteString("\n## Class Diagram\n")
		for _, s := range slides {
			fmt.Fprintf(&b, "\n### %s\n\n```mermaid\n%s\n```\n", s.Title, s.Mermaid)
		}
	}
	return b.String()
}

func writeFileSection(b *strings.Builder, fa service.FileAnalysis) {
	r := fa.BasicAnalysis
	fmt.Fprintf(b, "\n## %s\n\n", fa.Filename)
	fmt.Fprintf(b, "- **Language:** %s\n", fa.Language)
	fmt.Fprintf(b, "- **Summary:** %s\n", r.Summary)
	fmt.Fprintf(b, "- **Complexity:** %.2f / 10\n", r.ComplexityScore)

	if len(r.Functions) > 0 {
		b.WriteString("\n### Functions\n\n")
		for _, fn := range r.Functions {
			fmt.Fprintf(b, "- `%s`%s\n", fn.Name, lines(fn.LineStart, fn.LineEnd))
		}
	}
	if len(r.Classes) > 0 {
		b.WriteString("\n### Classes\n\n")
		for _, c := range r.Classes {
			fmt.Fprintf(b, "- `%s`%s", c.Name, lines(c.LineStart, c.LineEnd))
			if len(c.Bases) > 0 {
				fmt.Fprintf(b, " extends %s", strings.Join(c.Bases, ", "))
			}
			if len(c.Methods) > 0 {
				fmt.Fprintf(b, ": %s", strings.Join(c.Methods, ", "))
			}
			b.WriteString("\n")
		}
	}
	if len(r.Imports) > 0 {
		b.WriteString("\n### Imports\n\n")
		for _, imp := range r.Imports {
			fmt.Fprintf(b, "- `%s`\n", imp)
		}
	}
	if len(r.Suggestions) > 0 {
		b.WriteString("\n### Suggestions\n\n")
		for _, s := range r.Suggestions {
			fmt.Fprintf(b, "- %s\n", s)
		}
	}
	if enh := fa.AIEnhancement; enh != nil {
		b.WriteString("\n### AI Review\n\n")
		if enh.CodeQualityScore != nil {
			fmt.Fprintf(b, "**Quality score:** %.1f / 10\n\n", *enh.CodeQualityScore)
		}
		b.WriteString(strings.TrimSpace(enh.AIInsights) + "\n")
	}
}

// lines formats a line range; unknown positions render as nothing.
func lines(start, end int) string {
	switch {
	case start <= 0:
		return ""
	case end <= start:
		return fmt.Sprintf(" (line %d)", start)
	}
	return fmt.Sprintf(" (lines %d-%d)", start, end)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
