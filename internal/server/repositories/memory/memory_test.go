package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/staffolio/staffolio/internal/common"
	"github.com/staffolio/staffolio/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_EmailUniqueness(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewStore().Users()

	_, err := repo.Create(ctx, &models.User{Username: "a", Email: "a@example.com", Role: models.RoleEmployee})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.User{Username: "b", Email: "a@example.com", Role: models.RoleEmployee})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestPortfolioRepository_ConcurrentCreateOneWinner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewStore().Portfolios()

	const attempts = 32

	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, &models.Portfolio{
				EmployeeID: "e1", Name: "Bob", Position: "Dev", Bio: "bio",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, common.ErrorAlreadyExists)
		}
	}
	assert.Equal(t, 1, successes)
}

func TestPortfolioRepository_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewStore().Portfolios()

	created, err := repo.Create(ctx, &models.Portfolio{
		EmployeeID: "e1", Name: "Bob", Position: "Dev", Bio: "bio",
		Skills: []string{"Go", "SQL"},
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)

	// Mutating a returned value must not leak into the store.
	got.Skills[0] = "mutated"
	got.Name = "mutated"

	again, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", again.Name)
	assert.Equal(t, []string{"Go", "SQL"}, again.Skills)
}
