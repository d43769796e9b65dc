package normalizers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLongDescDedents(t *testing.T) {
	got := LongDesc(`
		first line
		  second line

		new paragraph
	`)
	require.Equal(t, "first line\nsecond line\n\nnew paragraph", got)
}

func TestExamplesIndentsEveryLine(t *testing.T) {
	got := Examples(`
		# list
		analyticalctl -g rg -a acct -l
	`)
	require.Equal(t, "  # list\n  analyticalctl -g rg -a acct -l", got)
	require.Empty(t, Examples(""))
}
