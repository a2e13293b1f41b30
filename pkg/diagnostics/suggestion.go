package diagnostics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxColumnDistance bounds how far a header may be from a required column
// to be offered as a "did you mean" candidate.
const maxColumnDistance = 4

// ClosestColumn returns the existing header that most likely was meant to
// be column, or "" when nothing is close. Matching is case-insensitive.
func ClosestColumn(column string, headers []string) string {
	if len(headers) == 0 {
		return ""
	}

	// Headers that contain the column name as a fuzzy subsequence win first.
	ranks := fuzzy.RankFindNormalizedFold(column, headers)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	lower := strings.ToLower(column)
	best, bestDist := "", maxColumnDistance+1
	for _, h := range headers {
		dist := fuzzy.LevenshteinDistance(lower, strings.ToLower(h))
		if dist < bestDist || (dist == bestDist && h < best) {
			best, bestDist = h, dist
		}
	}
	if bestDist > maxColumnDistance {
		return ""
	}
	return best
}

// MissingColumnSuggestion builds the suggestion for a missing required column.
func MissingColumnSuggestion(column, closest string) string {
	if closest != "" {
		return fmt.Sprintf("Rename column '%s' to '%s' or add a '%s' column", closest, column, column)
	}
	return fmt.Sprintf("Add a '%s' column to the data", column)
}

// PlainStringSuggestion offers both remedies for a plain string in a JSON field.
func PlainStringSuggestion(s string) string {
	return fmt.Sprintf(`Convert to JSON format: "%s" or use {"value":"%s"}`, s, s)
}

// BrokenJSONSuggestion derives a corrective hint from the raw text and the
// parser's error message. The checks run in a fixed order and the first
// match wins.
func BrokenJSONSuggestion(raw, parseErr string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "{") && !strings.HasSuffix(s, "}"):
		return "JSON object must end with a closing brace '}'"
	case strings.HasPrefix(s, "[") && !strings.HasSuffix(s, "]"):
		return "JSON array must end with a closing bracket ']'"
	case strings.Contains(s, "'"):
		return `Use double quotes (") instead of single quotes (') for JSON strings`
	case strings.Count(s, "{") != strings.Count(s, "}"):
		return "Mismatched curly braces { } - check opening/closing pairs"
	case strings.Count(s, "[") != strings.Count(s, "]"):
		return "Mismatched square brackets [ ] - check opening/closing pairs"
	}

	msg := strings.ToLower(parseErr)
	switch {
	case strings.Contains(msg, "after object key") ||
		strings.Contains(msg, "after array element") ||
		strings.Contains(msg, "after object key:value pair") ||
		strings.Contains(msg, "looking for beginning of object key"):
		return "Check for missing commas or colons, or remove trailing commas"
	case strings.Contains(msg, "in string") || strings.Contains(msg, "invalid character '\\\\'"):
		return "Check for missing quotes or improper escaping of quotes"
	case strings.Contains(msg, "unexpected end"):
		return "JSON is incomplete - check for missing closing braces or brackets"
	default:
		return "Fix JSON syntax"
	}
}
