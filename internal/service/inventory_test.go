package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventory_ReserveFailsWhenInsufficient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inventory.Reserve(ctx, f.vip.ID, 4)
	assert.ErrorIs(t, err, ErrInsufficientInventory)
	assert.Equal(t, 3, f.available(t, f.vip.ID))

	tt, err := f.inventory.Reserve(ctx, f.vip.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, tt.Available)

	_, err = f.inventory.Reserve(ctx, f.vip.ID, 1)
	assert.ErrorIs(t, err, ErrInsufficientInventory)
}

func TestInventory_ReleaseClampsToAllotment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inventory.Reserve(ctx, f.general.ID, 4)
	require.NoError(t, err)

	// releasing more than was reserved must not exceed the allotment
	tt, err := f.inventory.Release(ctx, f.general.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, tt.Quantity, tt.Available)
}

func TestInventory_UnknownTicketType(t *testing.T) {
	f := newFixture(t)

	_, err := f.inventory.Reserve(context.Background(), 9999, 1)
	assert.ErrorIs(t, err, ErrTicketTypeNotFound)
}

// Concurrent reserves and releases must keep available within [0, quantity]
// at every step and never over-admit.
func TestInventory_BoundHoldsUnderConcurrency(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 32
	const opsPerWorker = 50

	var mu sync.Mutex
	reserved := 0

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			held := 0
			for i := 0; i < opsPerWorker; i++ {
				qty := 1 + rng.Intn(3)
				if rng.Intn(2) == 0 && held > 0 {
					give := qty
					if give > held {
						give = held
					}
					_, err := f.inventory.Release(ctx, f.general.ID, give)
					if err == nil {
						held -= give
						mu.Lock()
						reserved -= give
						mu.Unlock()
					}
					continue
				}
				if _, err := f.inventory.Reserve(ctx, f.general.ID, qty); err == nil {
					held += qty
					mu.Lock()
					reserved += qty
					mu.Unlock()
				}
			}
			// return everything so the final count is checkable
			if held > 0 {
				_, _ = f.inventory.Release(ctx, f.general.ID, held)
				mu.Lock()
				reserved -= held
				mu.Unlock()
			}
		}(int64(w))
	}
	wg.Wait()

	assert.Equal(t, 0, reserved)

	available := f.available(t, f.general.ID)
	assert.GreaterOrEqual(t, available, 0)
	assert.LessOrEqual(t, available, f.general.Quantity)
	assert.Equal(t, f.general.Quantity, available)
}

// Oversubscribed concurrent reserves: at most quantity units are ever handed
// out, regardless of interleaving.
func TestInventory_ConcurrentReservesNeverOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const buyers = 20 // each wants 1 of 3 VIP seats

	var granted int32
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.inventory.Reserve(ctx, f.vip.ID, 1); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), granted)
	assert.Equal(t, 0, f.available(t, f.vip.ID))
}
