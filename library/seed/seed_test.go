package seed

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	t.Parallel()
	isbns := make(map[string]struct{}, len(Catalog))
	for _, b := range Catalog {
		require.NotEmpty(t, b.Title)
		require.NotEmpty(t, b.Author)
		require.LessOrEqual(t, len(b.ISBN), 32)
		require.GreaterOrEqual(t, b.Quantity, 0)
		_, dup := isbns[b.ISBN]
		require.False(t, dup, b.ISBN)
		isbns[b.ISBN] = struct{}{}
	}
}
