package enricher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/olehluchkiv/codesage/internal/analyzer"
	"github.com/olehluchkiv/codesage/internal/enricher/llm"
)

// LLMEnricher asks a language model for reviews, answers and documentation.
// Model failures are logged and replaced by placeholder text.
type LLMEnricher struct {
	client llm.Completer
	logger *slog.Logger
}

// NewLLMEnricher creates an enricher backed by client.
func NewLLMEnricher(client llm.Completer, logger *slog.Logger) *LLMEnricher {
	return &LLMEnricher{
		client: client,
		logger: logger.With("component", "llm-enricher"),
	}
}

func (e *LLMEnricher) Available() bool { return true }

func (e *LLMEnricher) Enhance(ctx context.Context, source, language string, result *analyzer.AnalysisResult) Enhancement {
	prompt := llm.Prompt{
		System:      reviewSystemPrompt,
		User:        fmt.Sprintf(reviewUserPrompt, language, llm.Truncate(source, reviewCodeLimit), llm.SerializeStructure(result)),
		Temperature: 0.3,
		MaxTokens:   4000,
	}

	raw, err := e.client.Complete(ctx, prompt)
	if err != nil {
		e.logger.Warn("LLM review failed", "language", language, "error", err)
		return Enhancement{AIInsights: FailedInsights, EnhancedSuggestions: []string{}}
	}
	if strings.TrimSpace(raw) == "" {
		e.logger.Warn("LLM review returned empty content", "language", language)
		return Enhancement{AIInsights: FailedInsights, EnhancedSuggestions: []string{}}
	}

	return Enhancement{
		AIInsights:          raw,
		EnhancedSuggestions: ExtractSuggestions(raw),
		CodeQualityScore:    ExtractQualityScore(raw),
	}
}

func (e *LLMEnricher) Answer(ctx context.Context, question, code, language string) Answer {
	prompt := llm.Prompt{
		System:      questionSystemPrompt,
		User:        fmt.Sprintf(questionUserPrompt, language, question, llm.Truncate(code, questionCodeLimit)),
		Temperature: 0.5,
		MaxTokens:   1500,
	}

	raw, err := e.client.Complete(ctx, prompt)
	if err != nil {
		e.logger.Warn("LLM question failed", "language", language, "error", err)
		raw = FailedAnswer
	}
	return Answer{Answer: raw, Question: question, Language: language}
}

func (e *LLMEnricher) Document(ctx context.Context, source, language string, result *analyzer.AnalysisResult) string {
	prompt := llm.Prompt{
		System:      docsSystemPrompt,
		User:        fmt.Sprintf(docsUserPrompt, language, llm.Truncate(source, reviewCodeLimit), llm.SerializeJSON(result)),
		Temperature: 0.4,
		MaxTokens:   3000,
	}

	raw, err := e.client.Complete(ctx, prompt)
	if err != nil {
		e.logger.Warn("LLM documentation failed", "language", language, "error", err)
		return FailedDocs
	}
	return raw
}
