package enricher

// Source is cut to these many runes before it is sent to the model.
const (
	reviewCodeLimit   = 4000
	questionCodeLimit = 2000
)

const reviewSystemPrompt = `You are an expert code reviewer and software architect. Your role is to provide SPECIFIC, ACTIONABLE code review feedback.

Rules:
1. Never use vague phrases like "4 functions" or "some methods". Always name the exact functions and classes.
2. Always give the location using real identifiers from the code (e.g. "In ` + "`Parser.parse()`" + ` at line ~110").
3. Always show concrete BEFORE and AFTER code using the real names.
4. Never include empty or generic sections.
5. If a suggestion cannot name the code it applies to, omit it.`

const reviewUserPrompt = `Analyze the following %[1]s code and provide a detailed, actionable code review.

Code to analyze:
` + "```%[1]s" + `
%[2]s
` + "```" + `

Code Structure Context:
%[3]s
Provide your analysis in this format. Only include sections with actual suggestions:

# Code Quality Assessment

**Overall Score:** [X]/10

**Reasoning:** [2-3 sentences explaining the score]

# Specific Recommendations

## [Category]: [Brief Title]

**Location:** [exact function/class/method name and approximate line]
**Issue:** [what is wrong]
**Impact:** [why it matters]
**Solution:**
` + "```%[1]s" + `
// Before:
[existing code]

// After:
[improved code]
` + "```" + `

Do not end the response with horizontal rules or separators.`

const questionSystemPrompt = `You are a helpful coding assistant. Answer questions about code clearly and concisely, providing examples when helpful.`

const questionUserPrompt = `Answer the following question about this %[1]s code:

Question: %[2]s

Code Context:
` + "```%[1]s" + `
%[3]s
` + "```" + `

Provide a clear, detailed answer with examples if helpful.`

const docsSystemPrompt = `You are a technical writer specializing in code documentation. Generate clear, comprehensive documentation in Markdown.`

const docsUserPrompt = `Generate comprehensive documentation for this %[1]s code:

1. Overview: High-level description of what the code does
2. Functions/Methods: Document each function with parameters, return values, and examples
3. Classes: Document classes with their purpose, properties, and methods
4. Usage Examples: Provide usage examples
5. Dependencies: List required dependencies

Code:
` + "```%[1]s" + `
%[2]s
` + "```" + `

Analysis Context:
%[3]s

Generate professional, well-structured documentation.`
