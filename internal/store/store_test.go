package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cashflowbot/internal/store"
)

func TestRowIndex(t *testing.T) {
	idx, err := store.RowIndex(2, 3)
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	idx, err = store.RowIndex(4, 3)
	require.NoError(t, err)
	require.Equal(t, 2, idx)
	require.Equal(t, 4, store.RowID(idx))

	_, err = store.RowIndex(5, 3)
	require.ErrorIs(t, err, store.ErrNotFound)

	for _, row := range []int{1, 0, -1} {
		_, err = store.RowIndex(row, 3)
		require.ErrorIs(t, err, store.ErrInvalidRow, "row %d", row)
	}
}
