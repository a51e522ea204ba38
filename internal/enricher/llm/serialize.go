package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/olehluchkiv/codesage/internal/analyzer"
)

// maxNamesPerList is the max function or class names included in prompts.
const maxNamesPerList = 10

// SerializeStructure renders the analysis as the short "Code Structure Context"
// block used in review prompts. Long lists are cut to keep prompts small.
func SerializeStructure(result *analyzer.AnalysisResult) string {
	var b strings.Builder

	fnNames := make([]string, 0, len(result.Functions))
	for _, fn := range result.Functions {
		fnNames = append(fnNames, fn.Name)
	}
	clsNames := make([]string, 0, len(result.Classes))
	for _, c := range result.Classes {
		name := c.Name
		if len(c.Methods) > 0 {
			name += " (methods: " + strings.Join(headOf(c.Methods, maxNamesPerList), ", ") + ")"
		}
		clsNames = append(clsNames, name)
	}

	b.WriteString(fmt.Sprintf("- Functions found: %s\n", joinOrNone(fnNames)))
	b.WriteString(fmt.Sprintf("- Classes found: %s\n", joinOrNone(clsNames)))
	b.WriteString(fmt.Sprintf("- Complexity score: %.2f\n", result.ComplexityScore))
	return b.String()
}

// SerializeJSON renders the full analysis as indented JSON for documentation prompts.
func SerializeJSON(result *analyzer.AnalysisResult) string {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "None detected"
	}
	shown := headOf(names, maxNamesPerList)
	out := strings.Join(shown, ", ")
	if len(names) > len(shown) {
		out += fmt.Sprintf(" (%d shown of %d)", len(shown), len(names))
	}
	return out
}

func headOf(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
