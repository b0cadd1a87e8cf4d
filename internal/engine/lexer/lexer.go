// Package lexer splits source text into whitespace-delimited tokens and
// reports token frequencies and tokens outside the accepted vocabulary.
package lexer

import (
	"strings"
	"time"
	"unicode"
)

// symbols is the fixed single-character operator and punctuation set.
// Compound operators such as "==" or "++" are not in the set.
var symbols = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "=": true,
	"(": true, ")": true, "{": true, "}": true, ";": true,
}

type Token struct {
	Text   string
	Symbol bool // exactly one of the fixed operator/punctuation symbols
}

// Valid reports whether the token is alphanumeric or a fixed symbol.
func (t Token) Valid() bool {
	return t.Symbol || IsAlnum(t.Text)
}

// Report is the tokenizer output for one source text.
type Report struct {
	Tokens        []Token
	Frequencies   map[string]int
	InvalidTokens []string
	Elapsed       time.Duration
}

// Total returns the number of tokens in the source.
func (r Report) Total() int {
	return len(r.Tokens)
}

// Tokenize never fails; empty input yields an empty map and list.
func Tokenize(source string) Report {
	start := time.Now()

	fields := strings.Fields(source)
	report := Report{
		Tokens:        make([]Token, 0, len(fields)),
		Frequencies:   make(map[string]int, len(fields)),
		InvalidTokens: make([]string, 0),
	}

	for _, text := range fields {
		tok := Token{Text: text, Symbol: symbols[text]}
		report.Tokens = append(report.Tokens, tok)
		report.Frequencies[text]++
		if !tok.Valid() {
			report.InvalidTokens = append(report.InvalidTokens, text)
		}
	}

	report.Elapsed = time.Since(start)
	return report
}

// IsAlnum reports whether s is non-empty and made only of letters and digits.
func IsAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

// IsSymbol reports whether s is one of the fixed operator/punctuation symbols.
func IsSymbol(s string) bool {
	return symbols[s]
}
