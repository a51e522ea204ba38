package analyzer_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/olehluchkiv/codesage/internal/analyzer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validResult() analyzer.AnalysisResult {
	return analyzer.AnalysisResult{
		Language:        "Python",
		ComplexityScore: 1.5,
		Summary:         "Python code with 1 function(s)",
		Functions:       []analyzer.Function{{Name: "f", LineStart: 1, LineEnd: 3}},
	}
}

func TestNewResult_NormalizesCollections(t *testing.T) {
	r, err := analyzer.NewResult(validResult())
	require.NoError(t, err)

	assert.NotNil(t, r.Classes)
	assert.NotNil(t, r.Imports)
	assert.NotNil(t, r.Suggestions)
	assert.NotNil(t, r.Metrics)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"classes":[]`)
	assert.Contains(t, string(data), `"imports":[]`)
	assert.Contains(t, string(data), `"line_start":1`)
	assert.Contains(t, string(data), `"is_async":false`)
}

func TestNewResult_ClassMethodsNeverNil(t *testing.T) {
	in := validResult()
	in.Classes = []analyzer.Class{{Name: "C", LineStart: 2, LineEnd: 2}}

	r, err := analyzer.NewResult(in)
	require.NoError(t, err)
	assert.Equal(t, []string{}, r.Classes[0].Methods)
}

func TestNewResult_AcceptsSentinelPosition(t *testing.T) {
	in := validResult()
	in.Functions = []analyzer.Function{{Name: "broken"}}

	r, err := analyzer.NewResult(in)
	require.NoError(t, err)
	assert.False(t, r.Functions[0].HasPosition())
}

func TestNewResult_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*analyzer.AnalysisResult)
		field  string
	}{
		{"empty language", func(r *analyzer.AnalysisResult) { r.Language = "" }, "language"},
		{"empty summary", func(r *analyzer.AnalysisResult) { r.Summary = "" }, "summary"},
		{"negative score", func(r *analyzer.AnalysisResult) { r.ComplexityScore = -0.1 }, "complexity_score"},
		{"score above max", func(r *analyzer.AnalysisResult) { r.ComplexityScore = 10.01 }, "complexity_score"},
		{"NaN score", func(r *analyzer.AnalysisResult) { r.ComplexityScore = math.NaN() }, "complexity_score"},
		{"empty name", func(r *analyzer.AnalysisResult) { r.Functions[0].Name = "" }, "functions[0].name"},
		{"start after end", func(r *analyzer.AnalysisResult) { r.Functions[0].LineStart = 5 }, "functions[0]"},
		{"partial position", func(r *analyzer.AnalysisResult) { r.Functions[0].LineStart = 0 }, "functions[0]"},
		{"negative line", func(r *analyzer.AnalysisResult) {
			r.Classes = []analyzer.Class{{Name: "C", LineStart: -1, LineEnd: 2}}
		}, "classes[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validResult()
			tt.mutate(&in)

			r, err := analyzer.NewResult(in)
			require.Error(t, err)
			assert.Nil(t, r)

			var verr *analyzer.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestNewResult_BoundaryScores(t *testing.T) {
	for _, score := range []float64{0, analyzer.MaxComplexity} {
		in := validResult()
		in.ComplexityScore = score
		_, err := analyzer.NewResult(in)
		assert.NoError(t, err, "score %v", score)
	}
}
