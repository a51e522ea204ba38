package analyzer

import (
	"fmt"
	"math"
)

// UnknownName is used when a declaration was detected but its name could not be read.
const UnknownName = "unknown"

// Function describes a detected function or function-like binding.
//
// LineStart and LineEnd are 1-based. Fallback paths that cannot locate a
// declaration report 0/0, which means "position unknown", not line zero.
type Function struct {
	Name       string   `json:"name" yaml:"name"`
	LineStart  int      `json:"line_start" yaml:"line_start"`
	LineEnd    int      `json:"line_end" yaml:"line_end"`
	Parameters []string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Decorators []string `json:"decorators,omitempty" yaml:"decorators,omitempty"`
	Docstring  string   `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	IsAsync    bool     `json:"is_async" yaml:"is_async"`
	Type       string   `json:"type,omitempty" yaml:"type,omitempty"`
}

// Class describes a detected class-like declaration. Methods holds the names of
// methods declared directly in its body, in source order.
type Class struct {
	Name       string   `json:"name" yaml:"name"`
	LineStart  int      `json:"line_start" yaml:"line_start"`
	LineEnd    int      `json:"line_end" yaml:"line_end"`
	Bases      []string `json:"bases,omitempty" yaml:"bases,omitempty"`
	Decorators []string `json:"decorators,omitempty" yaml:"decorators,omitempty"`
	Docstring  string   `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	Methods    []string `json:"methods" yaml:"methods"`
}

// Metrics maps a metric name to its value. JSON encoding sorts the keys.
type Metrics map[string]float64

// AnalysisResult is the language-independent output of every analyzer.
// It is built once per Analyze call and must be treated as read-only afterwards.
type AnalysisResult struct {
	Language        string     `json:"language" yaml:"language"`
	ComplexityScore float64    `json:"complexity_score" yaml:"complexity_score"`
	Functions       []Function `json:"functions" yaml:"functions"`
	Classes         []Class    `json:"classes" yaml:"classes"`
	Imports         []string   `json:"imports" yaml:"imports"`
	Summary         string     `json:"summary" yaml:"summary"`
	Suggestions     []string   `json:"suggestions" yaml:"suggestions"`
	Metrics         Metrics    `json:"metrics" yaml:"metrics"`
}

// ValidationError reports a result that violates the result contract.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid analysis result: %s: %s", e.Field, e.Reason)
}

// NewResult validates r and returns it with nil collections replaced by empty ones.
// The complexity score is checked, never clamped.
func NewResult(r AnalysisResult) (*AnalysisResult, error) {
	if r.Language == "" {
		return nil, &ValidationError{Field: "language", Reason: "required"}
	}
	if r.Summary == "" {
		return nil, &ValidationError{Field: "summary", Reason: "required"}
	}
	if math.IsNaN(r.ComplexityScore) || r.ComplexityScore < 0 || r.ComplexityScore > MaxComplexity {
		return nil, &ValidationError{
			Field:  "complexity_score",
			Reason: fmt.Sprintf("%v is outside [0, %v]", r.ComplexityScore, MaxComplexity),
		}
	}

	for i, fn := range r.Functions {
		if err := checkRecord(fmt.Sprintf("functions[%d]", i), fn.Name, fn.LineStart, fn.LineEnd); err != nil {
			return nil, err
		}
	}
	for i, c := range r.Classes {
		if err := checkRecord(fmt.Sprintf("classes[%d]", i), c.Name, c.LineStart, c.LineEnd); err != nil {
			return nil, err
		}
		if r.Classes[i].Methods == nil {
			r.Classes[i].Methods = []string{}
		}
	}

	if r.Functions == nil {
		r.Functions = []Function{}
	}
	if r.Classes == nil {
		r.Classes = []Class{}
	}
	if r.Imports == nil {
		r.Imports = []string{}
	}
	if r.Suggestions == nil {
		r.Suggestions = []string{}
	}
	if r.Metrics == nil {
		r.Metrics = Metrics{}
	}
	return &r, nil
}

func checkRecord(field, name string, start, end int) error {
	switch {
	case name == "":
		return &ValidationError{Field: field + ".name", Reason: "required"}
	case start < 0 || end < 0:
		return &ValidationError{Field: field, Reason: fmt.Sprintf("negative line range %d-%d", start, end)}
	case (start == 0) != (end == 0):
		return &ValidationError{Field: field, Reason: fmt.Sprintf("partial position %d-%d", start, end)}
	case start > end:
		return &ValidationError{Field: field, Reason: fmt.Sprintf("line_start %d after line_end %d", start, end)}
	}
	return nil
}

// HasPosition reports whether the function carries a real source position.
func (f Function) HasPosition() bool { return f.LineStart > 0 }

// HasPosition reports whether the class carries a real source position.
func (c Class) HasPosition() bool { return c.LineStart > 0 }
