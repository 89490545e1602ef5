package strutil

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var humanDivisors = [...]struct {
	suffix string
	div    int64
}{
	{"K", 1 << 10},
	{"M", 1 << 20},
	{"G", 1 << 30},
	{"T", 1 << 40},
}

// HumanizeBytes takes a byte-size and returns a human-readable string
func HumanizeBytes(b int64) string {
	var (
		suffix string
		div    int64
	)
	for _, f := range humanDivisors {
		if b > f.div {
			suffix = f.suffix
			div = f.div
		}
	}
	if suffix == "" {
		return strconv.FormatInt(b, 10)
	}

	return fmt.Sprintf("%.1f%s", float64(b)/float64(div), suffix)
}

// JSON is a helper function for creating JSON-encoded strings.
func JSON(v interface{}) string {
	bytes, _ := json.Marshal(v)
	return string(bytes)
}

// WildCardToRegexp converts a shell wildcard into a regular expression. '*'
// matches any run of characters and '?' matches exactly one. Everything else
// is quoted.
func WildCardToRegexp(pattern string) string {
	var result strings.Builder
	for _, r := range pattern {
		switch r {
		case '*':
			result.WriteString(".*")
		case '?':
			result.WriteString(".")
		default:
			result.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return result.String()
}

// MatchFromStartToEnd anchors the given regex to the whole input.
func MatchFromStartToEnd(regex string) string {
	return "^" + regex + "$"
}

// AddNewLineFlag lets '.' match newlines too. Filenames may contain them.
func AddNewLineFlag(regex string) string {
	return "(?s)" + regex
}
