package normalize

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Mahi3005/data-alchemist/pkg/dataset"
)

// MaxRangeSpan bounds dashed range expansion ("1-5"). Wider ranges are not
// expanded and the raw token is kept as a rejected element.
const MaxRangeSpan = 1000

var leadingInt = regexp.MustCompile(`^\s*([+-]?\d+)`)

// Numeric coerces a raw cell to a finite number. Null and blank cells
// coerce to 0. It reports false for anything else that is not a plain
// decimal number.
func Numeric(v dataset.Value) (float64, bool) {
	switch v.Kind {
	case dataset.KindNull:
		return 0, true
	case dataset.KindNumber:
		return v.Num, !math.IsNaN(v.Num) && !math.IsInf(v.Num, 0)
	case dataset.KindString:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Integral reports whether a raw cell coerces to a whole number that fits
// in an int without saturating.
func Integral(v dataset.Value) bool {
	f, ok := Numeric(v)
	return ok && f == math.Trunc(f) && f > float64(math.MinInt) && f < float64(math.MaxInt)
}

// Integer converts a raw cell to an integer. Numbers are truncated and
// saturate at the bounds of int. Strings that are not plain numbers fall
// back to base-10 leading-digit parsing. Anything else yields 0.
func Integer(v dataset.Value) int {
	if f, ok := Numeric(v); ok {
		return Saturate(f)
	}
	if v.Kind == dataset.KindString {
		if m := leadingInt.FindStringSubmatch(v.Str); m != nil {
			n, _ := atoi(m[1])
			return n
		}
	}
	return 0
}

// Saturate truncates f toward zero and pins it to [math.MinInt, math.MaxInt].
// NaN yields 0.
func Saturate(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= float64(math.MaxInt):
		return math.MaxInt
	case f <= float64(math.MinInt):
		return math.MinInt
	default:
		return int(math.Trunc(f))
	}
}

// Text converts a raw cell to a plain string field.
func Text(v dataset.Value) string {
	return v.Text()
}

// Strings converts a raw cell to a list of scalar strings.
func Strings(v dataset.Value) dataset.StringList {
	switch v.Kind {
	case dataset.KindNull:
		return dataset.StringList{}
	case dataset.KindArray:
		return stringsFromArray(v.Array)
	case dataset.KindNumber:
		return dataset.StringList{Items: []string{v.Text()}}
	case dataset.KindString:
		s := strings.TrimSpace(v.Str)
		if isBracketed(s, '[', ']') {
			var parsed []any
			if err := json.Unmarshal([]byte(s), &parsed); err == nil {
				return stringsFromArray(dataset.FromAny(parsed).Array)
			}
			s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		}
		return dataset.StringList{Items: splitTokens(s)}
	default:
		return dataset.StringList{Rejected: []dataset.Value{v}}
	}
}

// Ints converts a raw cell to a list of integers.
func Ints(v dataset.Value) dataset.IntList {
	switch v.Kind {
	case dataset.KindNull:
		return dataset.IntList{}
	case dataset.KindArray:
		return intsFromArray(v.Array)
	case dataset.KindNumber:
		if v.IsInteger() {
			return dataset.IntList{Items: []int{Saturate(v.Num)}}
		}
		return dataset.IntList{Rejected: []dataset.Value{v}}
	case dataset.KindString:
		return ParseIntList(v.Str)
	default:
		return dataset.IntList{Rejected: []dataset.Value{v}}
	}
}

// ParseIntList parses a string-encoded list of integers. It accepts a JSON
// array or comma-separated tokens, where each token is a base-10 integer or
// an inclusive dashed range such as "2-4". Tokens that are neither are
// dropped from Items and kept in Rejected.
func ParseIntList(raw string) dataset.IntList {
	s := strings.TrimSpace(raw)
	if isBracketed(s, '[', ']') {
		var parsed []any
		if err := json.Unmarshal([]byte(s), &parsed); err == nil {
			var list dataset.IntList
			for _, item := range parsed {
				tok := dataset.FromAny(item)
				if n, ok := tokenInt(tok); ok {
					list.Items = append(list.Items, n)
				} else {
					list.Rejected = append(list.Rejected, tok)
				}
			}
			return list
		}
		s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	}

	var list dataset.IntList
	for _, tok := range splitTokens(s) {
		if n, ok := atoi(tok); ok {
			list.Items = append(list.Items, n)
			continue
		}
		start, end, ok := parseRange(tok)
		if !ok || end-start >= MaxRangeSpan {
			list.Rejected = append(list.Rejected, dataset.String(tok))
			continue
		}
		for n := start; n <= end; n++ {
			list.Items = append(list.Items, n)
		}
	}
	return list
}

// parseRange recognizes "a-b" with exactly one separating dash, integer
// sides and a <= b.
func parseRange(tok string) (int, int, bool) {
	if strings.Count(tok, "-") != 1 {
		return 0, 0, false
	}
	left, right, _ := strings.Cut(tok, "-")
	start, ok := atoi(left)
	if !ok {
		return 0, 0, false
	}
	end, ok := atoi(right)
	if !ok || start > end {
		return 0, 0, false
	}
	return start, end, true
}

func stringsFromArray(items []dataset.Value) dataset.StringList {
	var list dataset.StringList
	for _, item := range items {
		switch item.Kind {
		case dataset.KindString, dataset.KindNumber:
			list.Items = append(list.Items, item.Text())
		default:
			list.Rejected = append(list.Rejected, item)
		}
	}
	return list
}

func intsFromArray(items []dataset.Value) dataset.IntList {
	var list dataset.IntList
	for _, item := range items {
		if item.IsInteger() {
			list.Items = append(list.Items, Saturate(item.Num))
			continue
		}
		list.Rejected = append(list.Rejected, item)
	}
	return list
}

func tokenInt(v dataset.Value) (int, bool) {
	switch v.Kind {
	case dataset.KindNumber:
		if v.IsInteger() {
			return Saturate(v.Num), true
		}
	case dataset.KindString:
		return atoi(v.Str)
	}
	return 0, false
}

// atoi parses a whole trimmed token as a base-10 integer. Out-of-range
// values saturate at the bounds of int.
func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return n, true
}

func splitTokens(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func isBracketed(s string, open, close byte) bool {
	return len(s) >= 2 && s[0] == open && s[len(s)-1] == close
}
