// Package insight produces prose describing the constructs found in a
// source text together with static improvement hints.
package insight

import (
	"fmt"
	"strings"

	"codelens/internal/engine/ast"
)

const (
	SentenceMain         = "This program contains a main method, which is the entry point of the program."
	SentenceLoops        = "The program uses loops to iterate over data."
	SentenceConditionals = "The program uses conditional statements (e.g., 'if' statements) for decision-making."
	SentencePrints       = "The program contains print statements to display the output."

	SuggestNesting      = "Consider refactoring to reduce excessive nesting."
	SuggestEnhancedFor  = "Consider using enhanced for-loop syntax where possible for better readability."
	SuggestStringConcat = "Avoid using '+' for string concatenation inside loops. Use StringBuilder for better performance."
	SuggestExceptions   = "Add proper exception handling with meaningful error messages."
	SuggestSplitMethods = "Consider breaking large methods into smaller, more manageable ones."
)

// declarationPrefixes differ from ast.TypeKeywords by the trailing space.
var declarationPrefixes = []string{"int ", "String ", "float ", "double "}

type Insight struct {
	Summary     []string
	Suggestions []string
}

// Summarize applies every check independently over the whole source.
func Summarize(source string) Insight {
	return Insight{
		Summary:     summarize(source),
		Suggestions: suggest(source),
	}
}

func summarize(source string) []string {
	summary := make([]string, 0, 7)
	lines := ast.SplitLines(source)

	if name, ok := ClassName(source); ok {
		summary = append(summary, fmt.Sprintf("This code defines a class named '%s'.", name))
	}
	if strings.Contains(source, ast.MainPrefix) {
		summary = append(summary, SentenceMain)
	}
	if methods := MethodNames(lines); len(methods) > 0 {
		summary = append(summary, fmt.Sprintf("The program defines the following methods: %s.", strings.Join(methods, ", ")))
	}
	if vars := VariableNames(lines); len(vars) > 0 {
		summary = append(summary, fmt.Sprintf("The program declares the following variables: %s.", strings.Join(vars, ", ")))
	}
	if strings.Contains(source, "for") || strings.Contains(source, "while") {
		summary = append(summary, SentenceLoops)
	}
	if strings.Contains(source, "if") {
		summary = append(summary, SentenceConditionals)
	}
	if strings.Contains(source, ast.PrintPrefix) {
		summary = append(summary, SentencePrints)
	}
	return summary
}

func suggest(source string) []string {
	suggestions := make([]string, 0, 5)

	for _, line := range ast.SplitLines(source) {
		if strings.Contains(line, "for") && strings.Contains(line, "{") {
			suggestions = append(suggestions, SuggestNesting, SuggestEnhancedFor)
			break
		}
	}
	if strings.Contains(source, "+") && strings.Contains(source, ast.PrintPrefix) {
		suggestions = append(suggestions, SuggestStringConcat)
	}
	if !strings.Contains(source, "try") && !strings.Contains(source, "catch") {
		suggestions = append(suggestions, SuggestExceptions)
	}
	return append(suggestions, SuggestSplitMethods)
}

// ClassName returns the trimmed text after the first "class ", cut at the
// next "class " and then at the next "{". A "class " inside a comment
// therefore yields an empty name.
func ClassName(source string) (string, bool) {
	_, rest, ok := strings.Cut(source, "class ")
	if !ok {
		return "", false
	}
	rest, _, _ = strings.Cut(rest, "class ")
	name, _, _ := strings.Cut(rest, "{")
	return strings.TrimSpace(name), true
}

// MethodNames collects the identifier before the first "(" on every line
// starting with "public" that has both parentheses and no "class".
func MethodNames(lines []string) []string {
	var names []string
	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "public") {
			continue
		}
		if !strings.Contains(line, "(") || !strings.Contains(line, ")") || strings.Contains(line, "class") {
			continue
		}
		head, _, _ := strings.Cut(line, "(")
		fields := strings.Fields(head)
		if len(fields) == 0 {
			continue
		}
		names = append(names, fields[len(fields)-1])
	}
	return names
}

// VariableNames collects declared names from trimmed lines that start with
// a type keyword followed by a space.
func VariableNames(lines []string) []string {
	var names []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		for _, prefix := range declarationPrefixes {
			if strings.HasPrefix(line, prefix) {
				names = append(names, ast.DeclaredName(line))
				break
			}
		}
	}
	return names
}
