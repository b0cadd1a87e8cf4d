package ast

import (
	"strings"
)

const (
	ClassPrefix  = "public class"
	MainPrefix   = "public static void main"
	PrintPrefix  = "System.out.println"
	closingBrace = "}"
)

// LoopKeywords are matched as substrings anywhere in a line.
var LoopKeywords = []string{"for", "while"}

// TypeKeywords start a variable declaration line.
var TypeKeywords = []string{"int", "String", "float", "double"}

// rule turns a matching trimmed line into a node. Rules are evaluated in
// order and the first match wins.
type rule struct {
	name  string
	match func(line string) bool
	build func(line string) (Kind, string)
}

var rules = []rule{
	{
		name:  "class",
		match: func(line string) bool { return strings.HasPrefix(line, ClassPrefix) },
		build: func(line string) (Kind, string) { return KindClass, lastWord(line) },
	},
	{
		name:  "main",
		match: func(line string) bool { return strings.HasPrefix(line, MainPrefix) },
		build: func(string) (Kind, string) { return KindMethod, "main" },
	},
	{
		name:  "loop",
		match: func(line string) bool { return containsAny(line, LoopKeywords) },
		build: func(string) (Kind, string) { return KindLoop, "" },
	},
	{
		name:  "variable",
		match: func(line string) bool { return hasAnyPrefix(line, TypeKeywords) },
		build: func(line string) (Kind, string) { return KindVariable, DeclaredName(line) },
	},
	{
		name:  "print",
		match: func(line string) bool { return strings.HasPrefix(line, PrintPrefix) },
		build: func(string) (Kind, string) { return KindPrint, "" },
	},
}

// Build never fails; degenerate input yields a lone Root.
//
// A trimmed line ending in "}" closes the innermost open container whether
// or not the brace belongs to it. Closing with no open container is a no-op.
func Build(source string) *Tree {
	t := newTree()
	current := RootID
	var ancestors []NodeID

	for i, raw := range SplitLines(source) {
		line := strings.TrimSpace(raw)

		for _, r := range rules {
			if !r.match(line) {
				continue
			}
			kind, name := r.build(line)
			id := t.add(current, kind, name, i+1)
			if kind.Container() {
				ancestors = append(ancestors, current)
				current = id
			}
			break
		}

		if strings.HasSuffix(line, closingBrace) && len(ancestors) > 0 {
			current = ancestors[len(ancestors)-1]
			ancestors = ancestors[:len(ancestors)-1]
		}
	}

	return t
}

// DeclaredName returns the second word of a declaration line with ";" and
// "=" removed, or "" when the line has a single word.
func DeclaredName(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return ""
	}
	name := strings.ReplaceAll(fields[1], ";", "")
	return strings.ReplaceAll(name, "=", "")
}

func lastWord(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
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

// SplitLines splits on \n, \r\n and \r without yielding a trailing empty
// line. Other separators (\v, \f, \x1c-\x1e, U+0085, U+2028, U+2029) stay
// inside their line: sources are newline-delimited.
func SplitLines(source string) []string {
	if source == "" {
		return nil
	}
	normalized := strings.ReplaceAll(source, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(strings.TrimSuffix(normalized, "\n"), "\n")
}
