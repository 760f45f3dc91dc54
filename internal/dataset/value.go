package dataset

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Value is a single table cell: either a number or the original text.
type Value struct {
	text  string
	num   float64
	isNum bool
}

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{num: f, isNum: true, text: strconv.FormatFloat(f, 'f', -1, 64)}
}

// Text returns a textual Value.
func Text(s string) Value {
	return Value{text: s}
}

// IsNumber reports whether the cell holds a number.
func (v Value) IsNumber() bool {
	return v.isNum
}

// Float returns the numeric value and whether the cell is numeric.
func (v Value) Float() (float64, bool) {
	return v.num, v.isNum
}

// String returns the cell as text. Numbers are formatted in their shortest form.
func (v Value) String() string {
	return v.text
}

// leadingFloat matches the longest numeric prefix accepted by a browser float parse.
//
//nolint:gochecknoglobals // Compiled once.
var leadingFloat = regexp.MustCompile(
	`^[+-]?(?:Infinity|(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?)`,
)

// Coerce converts raw cell text into a Value. A cell becomes a number only
// when both a leading-integer parse and a leading-float parse succeed; the
// float result is kept. Anything else stays text, so "12" and "12abc" become
// 12, "3.5" becomes 3.5, while "abc", ".5" and "" remain text.
func Coerce(raw string) Value {
	if !hasLeadingInt(raw) {
		return Text(raw)
	}
	f, ok := parseLeadingFloat(raw)
	if !ok {
		return Text(raw)
	}
	return Value{text: raw, num: f, isNum: true}
}

func trimJSSpace(s string) string {
	return strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

func hasLeadingInt(raw string) bool {
	s := trimJSSpace(raw)
	if s == "" {
		return false
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return isHexDigit(s[2])
	}
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func parseLeadingFloat(raw string) (float64, bool) {
	match := leadingFloat.FindString(trimJSSpace(raw))
	if match == "" {
		return 0, false
	}
	if strings.HasSuffix(match, "Infinity") {
		match = strings.Replace(match, "Infinity", "Inf", 1)
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		// Out-of-range literals still parse to ±Inf, which is a number.
		if errors.Is(err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}
