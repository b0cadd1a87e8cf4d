// Package complexity maps loop keyword occurrences to a canned asymptotic
// label. Occurrences are raw substring counts, so identifiers such as
// "format" or "forEach" count as loops too.
package complexity

import (
	"fmt"
	"strings"
)

type Class int

const (
	Constant Class = iota
	Linear
	Polynomial
)

// Label is the estimate for one source. Degree is the loop count and is
// only meaningful for Polynomial, where it is at least 2.
type Label struct {
	Class  Class
	Degree int
}

func (l Label) String() string {
	switch l.Class {
	case Constant:
		return "O(1)"
	case Linear:
		return "O(n)"
	default:
		return fmt.Sprintf("O(n^%d) where %d is the number of nested loops", l.Degree, l.Degree)
	}
}

func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Loops counts non-overlapping occurrences of "for" and "while".
func Loops(source string) int {
	return strings.Count(source, "for") + strings.Count(source, "while")
}

func Estimate(source string) Label {
	switch n := Loops(source); n {
	case 0:
		return Label{Class: Constant}
	case 1:
		return Label{Class: Linear, Degree: 1}
	default:
		return Label{Class: Polynomial, Degree: n}
	}
}
