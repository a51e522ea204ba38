package enricher_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/olehluchkiv/codesage/internal/analyzer"
	"github.com/olehluchkiv/codesage/internal/enricher"
	"github.com/olehluchkiv/codesage/internal/enricher/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func chatResponse(content string) []byte {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
	data, _ := json.Marshal(resp)
	return data
}

// mockLLMServer answers every request with response and records the last
// user prompt it received.
func mockLLMServer(response string, lastPrompt *string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && lastPrompt != nil && len(req.Messages) == 2 {
			*lastPrompt = req.Messages[1].Content
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(chatResponse(response))
	}))
}

func failingLLMServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad request"))
	}))
}

func newTestClient(serverURL string) *llm.Client {
	return llm.NewClient(llm.Config{
		Endpoint: serverURL,
		APIKey:   "test",
		Model:    "test",
	}, testLogger())
}

func sampleResult() *analyzer.AnalysisResult {
	r, _ := analyzer.NewResult(analyzer.AnalysisResult{
		Language:        "Python",
		ComplexityScore: 2.5,
		Summary:         "Python code with 1 class(es), 1 function(s)",
		Functions:       []analyzer.Function{{Name: "hello", LineStart: 1, LineEnd: 3}},
		Classes:         []analyzer.Class{{Name: "Greeter", LineStart: 5, LineEnd: 8, Methods: []string{"__init__"}}},
	})
	return r
}

const sampleReview = `# Code Quality Assessment

**Overall Score:** 7/10

**Reasoning:** Clean but lacks docs.

# Specific Recommendations

## Code Clarity: Add docstring to hello

**Location:** ` + "`hello()`" + ` at line ~1
**Issue:** Missing docstring.

---

## Error Handling: Validate name in Greeter.__init__

**Location:** ` + "`Greeter.__init__()`" + `
**Issue:** No validation.

---
`

type erroringCompleter struct{}

func (erroringCompleter) Complete(context.Context, llm.Prompt) (string, error) {
	return "", errors.New("boom")
}

func TestDefaultEnricher(t *testing.T) {
	e := enricher.NewDefaultEnricher()
	ctx := context.Background()

	assert.False(t, e.Available())

	enh := e.Enhance(ctx, "x = 1", "Python", sampleResult())
	assert.Equal(t, enricher.UnavailableInsights, enh.AIInsights)
	assert.NotNil(t, enh.EnhancedSuggestions)
	assert.Empty(t, enh.EnhancedSuggestions)
	assert.Nil(t, enh.CodeQualityScore)

	ans := e.Answer(ctx, "what?", "x = 1", "Python")
	assert.Equal(t, enricher.UnavailableAnswer, ans.Answer)
	assert.Equal(t, "what?", ans.Question)
	assert.Equal(t, "Python", ans.Language)

	assert.True(t, strings.HasPrefix(e.Document(ctx, "x", "Python", sampleResult()), "# Documentation Generation Unavailable"))
}

func TestLLMEnricher_Enhance(t *testing.T) {
	var prompt string
	server := mockLLMServer(sampleReview, &prompt)
	defer server.Close()

	e := enricher.NewLLMEnricher(newTestClient(server.URL), testLogger())
	enh := e.Enhance(context.Background(), "def hello(name):\n    return name\n", "Python", sampleResult())

	assert.True(t, e.Available())
	assert.Equal(t, sampleReview, enh.AIInsights)
	require.NotNil(t, enh.CodeQualityScore)
	assert.Equal(t, 7.0, *enh.CodeQualityScore)
	require.Len(t, enh.EnhancedSuggestions, 2)
	assert.True(t, strings.HasPrefix(enh.EnhancedSuggestions[0], "## Code Clarity"))
	assert.False(t, strings.HasSuffix(enh.EnhancedSuggestions[0], "---"))

	assert.Contains(t, prompt, "Analyze the following Python code")
	assert.Contains(t, prompt, "def hello(name):")
	assert.Contains(t, prompt, "- Functions found: hello")
	assert.Contains(t, prompt, "Greeter (methods: __init__)")
}

func TestLLMEnricher_EnhanceTruncatesSource(t *testing.T) {
	var prompt string
	server := mockLLMServer("fine", &prompt)
	defer server.Close()

	source := strings.Repeat("a", 4000) + "TAIL_MARKER"
	e := enricher.NewLLMEnricher(newTestClient(server.URL), testLogger())
	e.Enhance(context.Background(), source, "Python", sampleResult())

	assert.NotContains(t, prompt, "TAIL_MARKER")
}

func TestLLMEnricher_EnhanceFailure(t *testing.T) {
	server := failingLLMServer()
	defer server.Close()

	e := enricher.NewLLMEnricher(newTestClient(server.URL), testLogger())
	enh := e.Enhance(context.Background(), "x", "Python", sampleResult())

	assert.Equal(t, enricher.FailedInsights, enh.AIInsights)
	assert.Empty(t, enh.EnhancedSuggestions)
	assert.Nil(t, enh.CodeQualityScore)
}

func TestLLMEnricher_EnhanceEmptyReply(t *testing.T) {
	server := mockLLMServer("   ", nil)
	defer server.Close()

	e := enricher.NewLLMEnricher(newTestClient(server.URL), testLogger())
	enh := e.Enhance(context.Background(), "x", "Python", sampleResult())
	assert.Equal(t, enricher.FailedInsights, enh.AIInsights)
}

func TestLLMEnricher_Answer(t *testing.T) {
	var prompt string
	server := mockLLMServer("It greets people.", &prompt)
	defer server.Close()

	e := enricher.NewLLMEnricher(newTestClient(server.URL), testLogger())
	ans := e.Answer(context.Background(), "What does hello do?", "def hello(): pass", "Python")

	assert.Equal(t, "It greets people.", ans.Answer)
	assert.Equal(t, "What does hello do?", ans.Question)
	assert.Equal(t, "Python", ans.Language)
	assert.Contains(t, prompt, "Question: What does hello do?")
}

func TestLLMEnricher_AnswerFailure(t *testing.T) {
	e := enricher.NewLLMEnricher(erroringCompleter{}, testLogger())
	ans := e.Answer(context.Background(), "q", "code", "Go")
	assert.Equal(t, enricher.FailedAnswer, ans.Answer)
	assert.Equal(t, "q", ans.Question)
}

func TestLLMEnricher_Document(t *testing.T) {
	var prompt string
	server := mockLLMServer("# Overview\n\nDocs.", &prompt)
	defer server.Close()

	e := enricher.NewLLMEnricher(newTestClient(server.URL), testLogger())
	doc := e.Document(context.Background(), "def hello(): pass", "Python", sampleResult())

	assert.Equal(t, "# Overview\n\nDocs.", doc)
	assert.Contains(t, prompt, `"language": "Python"`)
}

func TestLLMEnricher_DocumentFailure(t *testing.T) {
	e := enricher.NewLLMEnricher(erroringCompleter{}, testLogger())
	assert.Equal(t, enricher.FailedDocs, e.Document(context.Background(), "x", "Go", sampleResult()))
}
