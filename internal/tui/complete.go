package tui

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/msto63/nucmd/foundation/utils/stringx"
)

// Completion is the outcome of completing the input line
type Completion struct {
	// Value replaces the input line
	Value string
	// Candidates are listed when the input is ambiguous
	Candidates []string
}

// Complete completes the command name at the start of input. A single
// prefix match completes fully; several extend the input to their common
// prefix and are listed. Without prefix matches, names are ranked by fuzzy
// score and a lone fuzzy match completes.
func Complete(input string, names []string) Completion {
	if strings.ContainsAny(input, " \t") {
		return Completion{Value: input}
	}

	var matches []string
	for _, name := range names {
		if stringx.HasPrefixIgnoreCase(name, input) {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)

	switch len(matches) {
	case 0:
	case 1:
		return Completion{Value: matches[0] + " "}
	default:
		value := stringx.CommonPrefix(matches, true)
		if len([]rune(value)) < len([]rune(input)) {
			value = input
		}
		return Completion{Value: value, Candidates: matches}
	}

	if input == "" {
		return Completion{Value: input}
	}
	ranked := fuzzy.Find(input, names)
	switch len(ranked) {
	case 0:
		return Completion{Value: input}
	case 1:
		return Completion{Value: ranked[0].Str + " "}
	}
	candidates := make([]string, len(ranked))
	for i, m := range ranked {
		candidates[i] = m.Str
	}
	return Completion{Value: input, Candidates: candidates}
}
