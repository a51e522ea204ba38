package enricher

import (
	"regexp"
	"strconv"
	"strings"
)

// maxSuggestions caps the suggestions taken from one review.
const maxSuggestions = 15

var (
	sectionKeywords = []string{
		"recommendation", "suggestion", "improvement", "issue", "fix",
		"type safety", "error handling", "bug fix", "code clarity",
		"performance", "security", "incomplete",
	}
	bulletKeywords = []string{"suggest", "recommend", "consider", "should", "improve", "fix", "change"}
	bulletPrefixes = []string{"-", "*", "•", "1.", "2.", "3.", "**"}

	trailingRule = regexp.MustCompile(`\s*-{3,}\s*$`)

	scorePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)/10`),
		regexp.MustCompile(`score[:\s]+(\d+)`),
		regexp.MustCompile(`quality[:\s]+(\d+)`),
		regexp.MustCompile(`rate[:\s]+(\d+)`),
	}
)

// ExtractSuggestions splits a Markdown review into recommendation blocks.
//
// A block starts at a "##" heading naming a recommendation-like category and
// runs until the next such heading or a top-level "#" heading. Markdown in
// the block is kept. When no block is found, bullet lines that read like
// advice are used instead. At most maxSuggestions are returned.
func ExtractSuggestions(review string) []string {
	lines := strings.Split(review, "\n")
	var raw []string

	var current []string
	inBlock := false
	flush := func() {
		if s := cleanBlock(strings.Join(current, "\n")); len(s) > 20 {
			raw = append(raw, s)
		}
		current = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "##") && containsKeyword(strings.ToLower(line), sectionKeywords):
			flush()
			current = []string{line}
			inBlock = true
		case inBlock && strings.HasPrefix(trimmed, "#") && !strings.HasPrefix(trimmed, "##"):
			flush()
			inBlock = false
		case inBlock:
			current = append(current, line)
		}
	}
	flush()

	if len(raw) == 0 {
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if !containsKeyword(strings.ToLower(line), bulletKeywords) || !hasAnyPrefix(trimmed, bulletPrefixes) {
				continue
			}
			clean := strings.TrimSpace(strings.TrimLeft(trimmed, "-*•123456789. "))
			if len(clean) > 20 {
				raw = append(raw, clean)
			}
		}
	}

	suggestions := []string{}
	for _, s := range raw {
		if len(suggestions) == maxSuggestions {
			break
		}
		s = strings.TrimSpace(strings.TrimRight(cleanBlock(s), "-"))
		if len(s) > 10 {
			suggestions = append(suggestions, s)
		}
	}
	return suggestions
}

// ExtractQualityScore finds a 0-10 score such as "8/10" or "score: 7".
// Patterns are tried in order and the first match wins. The score is clamped
// to [0, 10]; nil means no score was found.
func ExtractQualityScore(review string) *float64 {
	lower := strings.ToLower(review)
	for _, re := range scorePatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		v = min(max(v, 0), 10)
		return &v
	}
	return nil
}

func cleanBlock(s string) string {
	return strings.TrimSpace(trailingRule.ReplaceAllString(strings.TrimSpace(s), ""))
}

func containsKeyword(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
