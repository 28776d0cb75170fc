package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cashflowbot/internal/domain"
	"cashflowbot/internal/store"
	"cashflowbot/internal/store/memory"
)

type slowRepo struct {
	store.Repository
}

func (s slowRepo) ListSales(ctx context.Context) ([]domain.Sale, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWithTimeoutReportsFault(t *testing.T) {
	repo := store.WithTimeout(slowRepo{Repository: memory.New()}, 10*time.Millisecond)

	_, err := repo.ListSales(context.Background())
	require.Error(t, err)
	require.True(t, store.IsFault(err))

	products, err := repo.ListProducts(context.Background())
	require.NoError(t, err)
	require.Empty(t, products)
}

func TestWithTimeoutKeepsBusinessErrors(t *testing.T) {
	repo := store.WithTimeout(memory.New(), time.Second)
	_, err := repo.GetSaleByRow(context.Background(), 5)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.False(t, store.IsFault(err))
}
