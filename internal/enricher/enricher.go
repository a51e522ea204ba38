package enricher

import (
	"context"

	"github.com/olehluchkiv/codesage/internal/analyzer"
)

// Enricher adds model-generated commentary to a structural analysis.
// Implementations never fail: when the model cannot be reached they return
// placeholder text explaining why.
type Enricher interface {
	// Enhance reviews source and returns insights, suggestions and a score.
	Enhance(ctx context.Context, source, language string, result *analyzer.AnalysisResult) Enhancement
	// Answer responds to a free-form question about code.
	Answer(ctx context.Context, question, code, language string) Answer
	// Document returns Markdown documentation for source.
	Document(ctx context.Context, source, language string, result *analyzer.AnalysisResult) string
	// Available reports whether a model is configured.
	Available() bool
}

// Enhancement is the AI review attached to a file analysis.
type Enhancement struct {
	AIInsights          string   `json:"ai_insights" yaml:"ai_insights"`
	EnhancedSuggestions []string `json:"enhanced_suggestions" yaml:"enhanced_suggestions"`
	// CodeQualityScore is nil when the review carried no recognizable score.
	CodeQualityScore *float64 `json:"code_quality_score" yaml:"code_quality_score"`
}

// Answer is the reply to a code question.
type Answer struct {
	Answer   string `json:"answer" yaml:"answer"`
	Question string `json:"question" yaml:"question"`
	Language string `json:"language" yaml:"language"`
}

// Placeholder texts returned when no model is configured.
const (
	UnavailableInsights = "AI analysis unavailable: no LLM provider configured. Set MISTRAL_API_KEY or llm.provider to enable it."
	UnavailableAnswer   = "AI Q&A is unavailable: no LLM provider configured. Set MISTRAL_API_KEY or llm.provider to enable it."
	UnavailableDocs     = "# Documentation Generation Unavailable\n\nNo LLM provider configured. Set MISTRAL_API_KEY or llm.provider to generate documentation."
)

// Placeholder texts returned when the configured model fails.
const (
	FailedInsights = "AI analysis temporarily unavailable"
	FailedAnswer   = "I apologize, but I'm having trouble processing your question right now. Please try again."
	FailedDocs     = "Documentation generation temporarily unavailable."
)

// DefaultEnricher is used when no model is configured.
type DefaultEnricher struct{}

// NewDefaultEnricher returns the enricher that only reports unavailability.
func NewDefaultEnricher() *DefaultEnricher {
	return &DefaultEnricher{}
}

func (e *DefaultEnricher) Enhance(context.Context, string, string, *analyzer.AnalysisResult) Enhancement {
	return Enhancement{AIInsights: UnavailableInsights, EnhancedSuggestions: []string{}}
}

func (e *DefaultEnricher) Answer(_ context.Context, question, _, language string) Answer {
	return Answer{Answer: UnavailableAnswer, Question: question, Language: language}
}

func (e *DefaultEnricher) Document(context.Context, string, string, *analyzer.AnalysisResult) string {
	return UnavailableDocs
}

func (e *DefaultEnricher) Available() bool { return false }
