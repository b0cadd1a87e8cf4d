// Package syntax checks bracket balance and the presence of a statement
// terminator over the raw character stream of a source text.
//
// Every character is inspected, including those inside string literals and
// comments; no literal or comment lexing happens here.
package syntax

import (
	"fmt"
	"strings"
	"time"
)

type Verdict string

const (
	Correct   Verdict = "Correct"
	Incorrect Verdict = "Incorrect"
)

type ErrorKind string

const (
	UnmatchedClosing  ErrorKind = "unmatched_closing"
	Mismatched        ErrorKind = "mismatched"
	UnmatchedOpening  ErrorKind = "unmatched_opening"
	MissingTerminator ErrorKind = "missing_terminator"
)

// Terminator is the statement terminator the source must contain somewhere.
const Terminator = ';'

// StructureError describes one structural problem. Position is a 0-based
// character offset; it is -1 for MissingTerminator.
type StructureError struct {
	Kind     ErrorKind
	Opened   rune
	Closed   rune
	Position int
}

func (e StructureError) Error() string {
	switch e.Kind {
	case UnmatchedClosing:
		return fmt.Sprintf("Unmatched closing '%c' at position %d", e.Closed, e.Position)
	case Mismatched:
		return fmt.Sprintf("Mismatched '%c' and '%c' at position %d", e.Opened, e.Closed, e.Position)
	case UnmatchedOpening:
		return fmt.Sprintf("Unmatched opening '%c' at position %d", e.Opened, e.Position)
	case MissingTerminator:
		return "Missing semicolon in the code."
	default:
		return fmt.Sprintf("unknown structure error %q", string(e.Kind))
	}
}

// Result is the validator output for one source text.
type Result struct {
	Verdict Verdict
	Errors  []StructureError
	Elapsed time.Duration
}

// Messages renders every error in order.
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Error())
	}
	return out
}

var pairs = map[rune]rune{
	')': '(',
	'}': '{',
	']': '[',
}

type opener struct {
	char rune
	pos  int
}

// Validate always completes; the verdict is Incorrect iff errors were found.
func Validate(source string) Result {
	start := time.Now()

	var (
		stack  []opener
		errs   = make([]StructureError, 0)
		offset int
	)

	for _, ch := range source {
		switch ch {
		case '(', '{', '[':
			stack = append(stack, opener{char: ch, pos: offset})
		case ')', '}', ']':
			if len(stack) == 0 {
				errs = append(errs, StructureError{Kind: UnmatchedClosing, Closed: ch, Position: offset})
				break
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if pairs[ch] != top.char {
				errs = append(errs, StructureError{Kind: Mismatched, Opened: top.char, Closed: ch, Position: offset})
			}
		}
		offset++
	}

	for _, open := range stack {
		errs = append(errs, StructureError{Kind: UnmatchedOpening, Opened: open.char, Position: open.pos})
	}

	if !strings.ContainsRune(source, Terminator) {
		errs = append(errs, StructureError{Kind: MissingTerminator, Position: -1})
	}

	verdict := Correct
	if len(errs) > 0 {
		verdict = Incorrect
	}
	return Result{Verdict: verdict, Errors: errs, Elapsed: time.Since(start)}
}
