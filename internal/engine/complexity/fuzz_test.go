package complexity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func FuzzEstimate(f *testing.F) {
	f.Add("int x = 5; System.out.println(x);")
	f.Add("if (x > 0) { for (int i = 0; i < 10; i++) { System.out.println(i); } }")
	f.Add("for for while")
	f.Add("")
	f.Fuzz(func(t *testing.T, source string) {
		label := Estimate(source)

		switch n := Loops(source); {
		case n == 0:
			require.Equal(t, Constant, label.Class)
		case n == 1:
			require.Equal(t, Linear, label.Class)
		default:
			require.Equal(t, Polynomial, label.Class)
			require.Equal(t, n, label.Degree)
		}
		require.NotEmpty(t, label.String())
	})
}
