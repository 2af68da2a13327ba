package sequence

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/buildledger/backend/internal/domain/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	counters map[string]int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{counters: make(map[string]int64)}
}

func (r *fakeRepo) Next(ctx context.Context, entityKey string) (int64, error) {
	current, ok := r.counters[entityKey]
	if !ok {
		current = 1
	}
	r.counters[entityKey] = current + 1
	return current, nil
}

func (r *fakeRepo) Peek(ctx context.Context, entityKey string) (int64, error) {
	current, ok := r.counters[entityKey]
	if !ok {
		return 1, nil
	}
	return current, nil
}

func (r *fakeRepo) Set(ctx context.Context, entityKey string, counter int64) error {
	r.counters[entityKey] = counter
	return nil
}

func (r *fakeRepo) List(ctx context.Context) ([]*sequence.NumberSequence, error) {
	keys := make([]string, 0, len(r.counters))
	for key := range r.counters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]*sequence.NumberSequence, len(keys))
	for i, key := range keys {
		out[i] = &sequence.NumberSequence{EntityKey: key, Counter: r.counters[key], UpdatedAt: time.Now()}
	}
	return out, nil
}

func TestSequenceService(t *testing.T) {
	ctx := context.Background()

	t.Run("next consumes and peek does not", func(t *testing.T) {
		service := NewSequenceService(newFakeRepo())

		n, err := service.Next(ctx, "purchase_order")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		peeked, err := service.Peek(ctx, "purchase_order")
		require.NoError(t, err)
		assert.Equal(t, int64(2), peeked.Counter)

		n, err = service.Next(ctx, "purchase_order")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("set overrides the next value", func(t *testing.T) {
		service := NewSequenceService(newFakeRepo())

		resp, err := service.Set(ctx, "payment", 500)
		require.NoError(t, err)
		assert.Equal(t, int64(500), resp.Counter)

		n, err := service.Next(ctx, "payment")
		require.NoError(t, err)
		assert.Equal(t, int64(500), n)
	})

	t.Run("set validates the counter", func(t *testing.T) {
		service := NewSequenceService(newFakeRepo())
		_, err := service.Set(ctx, "payment", 0)
		assert.Error(t, err)
		_, err = service.Set(ctx, "", 1)
		assert.Error(t, err)
	})

	t.Run("list returns ordered counters", func(t *testing.T) {
		service := NewSequenceService(newFakeRepo())
		_, err := service.Next(ctx, "purchase_order")
		require.NoError(t, err)
		_, err = service.Next(ctx, "payment")
		require.NoError(t, err)

		rows, err := service.List(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "payment", rows[0].EntityKey)
		assert.Equal(t, "purchase_order", rows[1].EntityKey)
	})
}
