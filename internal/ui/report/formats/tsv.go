package formats

import (
	"fmt"
	"sort"
	"strings"
)

type TSVGenerator struct{}

func NewTSVGenerator() *TSVGenerator {
	return &TSVGenerator{}
}

// GenerateFrequencies emits one Token/Count row per distinct token, highest
// count first and ties broken by token text.
func (t *TSVGenerator) GenerateFrequencies(freq map[string]int) (string, error) {
	tokens := make([]string, 0, len(freq))
	for tok := range freq {
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if freq[tokens[i]] != freq[tokens[j]] {
			return freq[tokens[i]] > freq[tokens[j]]
		}
		return tokens[i] < tokens[j]
	})

	var buf strings.Builder
	buf.WriteString("Token\tCount\n")
	for _, tok := range tokens {
		buf.WriteString(fmt.Sprintf("%s\t%d\n", tsvEscape(tok), freq[tok]))
	}
	return buf.String(), nil
}

// GenerateInvalid emits the invalid tokens in source order.
func (t *TSVGenerator) GenerateInvalid(invalid []string) (string, error) {
	var buf strings.Builder
	buf.WriteString("Index\tToken\n")
	for i, tok := range invalid {
		buf.WriteString(fmt.Sprintf("%d\t%s\n", i, tsvEscape(tok)))
	}
	return buf.String(), nil
}

func tsvEscape(s string) string {
	return strings.NewReplacer("\t", "\\t", "\n", "\\n").Replace(s)
}
