// ============================================================================
// nucmd - Command Registry and Invocation Engine
// ============================================================================
//
// Package:     args
// Description: Tokenizing and classifying command line arguments
// Author:      Mike Stoffels
// Created:     2026-10-15
// License:     MIT
// ============================================================================

// Package args splits command lines into tokens and classifies them into
// unnamed values, named values and flags.
//
// With the default options "-name value" assigns value to name unless value
// itself looks like a name, in which case -name is a flag. With '=' as the
// delimiter names take the form "-name=value" and a bare "-name" is a flag.
// Values wrapped in double quotes have the quotes removed.
package args

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Options controls how tokens are classified
type Options struct {
	// NamePrefix marks a token as a name, '-' by default
	NamePrefix rune
	// Delimiter separates a name from its value: ' ' (separate token) or a
	// character inside the token such as '='
	Delimiter rune
}

// DefaultOptions returns '-' as prefix and a space as delimiter
func DefaultOptions() Options {
	return Options{NamePrefix: '-', Delimiter: ' '}
}

// InlineOptions returns '-' as prefix and '=' as delimiter
func InlineOptions() Options {
	return Options{NamePrefix: '-', Delimiter: '='}
}

// Arguments is the classified form of a token list
type Arguments struct {
	Unnamed []string
	Named   map[string]string
	Flags   []string
}

// HasNamed reports whether any named value is present
func (a Arguments) HasNamed() bool { return len(a.Named) > 0 }

// HasFlag reports whether flag was given
func (a Arguments) HasFlag(flag string) bool {
	for _, f := range a.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Split breaks line into tokens at unquoted whitespace. Double quotes group
// whitespace into a token and are kept in the token; an unterminated quote
// runs to the end of the line.
func Split(line string) []string {
	var (
		tokens  []string
		current strings.Builder
		quoted  bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			current.WriteRune(r)
			started = true
		case unicode.IsSpace(r) && !quoted:
			if started {
				tokens = append(tokens, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if started {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// Clean removes one pair of surrounding double quotes
func Clean(value string) string {
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		return value[1 : len(value)-1]
	}
	return value
}

// CleanAll applies Clean to every token
func CleanAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = Clean(t)
	}
	return out
}

type matcher struct {
	name      *regexp.Regexp
	nameValue *regexp.Regexp
	spaced    bool
}

func newMatcher(opts Options) (*matcher, error) {
	if opts.NamePrefix == 0 {
		opts.NamePrefix = '-'
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ' '
	}
	prefix := regexp.QuoteMeta(string(opts.NamePrefix))
	delim := regexp.QuoteMeta(string(opts.Delimiter))

	name, err := regexp.Compile(`^` + prefix + `(\w+)$`)
	if err != nil {
		return nil, fmt.Errorf("invalid name prefix %q: %w", opts.NamePrefix, err)
	}
	nameValue, err := regexp.Compile(`^` + prefix + `(\w+)` + delim + `(.+)$`)
	if err != nil {
		return nil, fmt.Errorf("invalid delimiter %q: %w", opts.Delimiter, err)
	}
	return &matcher{name: name, nameValue: nameValue, spaced: opts.Delimiter == ' '}, nil
}

// Parse classifies tokens. A later value for the same name replaces an
// earlier one.
func Parse(tokens []string, opts Options) (Arguments, error) {
	m, err := newMatcher(opts)
	if err != nil {
		return Arguments{}, err
	}

	parsed := Arguments{Named: make(map[string]string)}
	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		if match := m.name.FindStringSubmatch(token); match != nil {
			if m.spaced && i < len(tokens)-1 && !m.name.MatchString(tokens[i+1]) {
				parsed.Named[match[1]] = Clean(tokens[i+1])
				i++
			} else {
				parsed.Flags = append(parsed.Flags, match[1])
			}
			continue
		}
		if match := m.nameValue.FindStringSubmatch(token); match != nil {
			parsed.Named[match[1]] = Clean(match[2])
			continue
		}
		parsed.Unnamed = append(parsed.Unnamed, Clean(token))
	}
	return parsed, nil
}

// Line is a parsed command line
type Line struct {
	Command string
	// Raw holds the argument tokens with quotes removed, in input order
	Raw []string
	Arguments
}

// ParseLine splits line, takes the first token as the command name and
// classifies the rest. An empty line yields an empty Command.
func ParseLine(line string, opts Options) (Line, error) {
	tokens := Split(line)
	if len(tokens) == 0 {
		return Line{Arguments: Arguments{Named: map[string]string{}}}, nil
	}
	parsed, err := Parse(tokens[1:], opts)
	if err != nil {
		return Line{}, err
	}
	return Line{
		Command:   Clean(tokens[0]),
		Raw:       CleanAll(tokens[1:]),
		Arguments: parsed,
	}, nil
}

// Stringify renders a decoded JSON or protobuf value as argument text.
// Whole numbers lose their fractional part; nil becomes the empty string.
func Stringify(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}
