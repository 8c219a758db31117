package supplier

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/cartcheck/internal/packing"
)

func createRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()

	mredis := miniredis.RunT(t)
	service := NewRedis(RedisConfig{Addr: mredis.Addr()}, zaptest.NewLogger(t))
	t.Cleanup(func() {
		_ = service.Close()
	})
	return mredis, service
}

func TestRedisReadsSeededProblems(t *testing.T) {
	mredis, service := createRedis(t)
	ctx := context.Background()

	_, err := mredis.RPush(problemsKey, "3", "1")
	require.NoError(t, err)
	require.NoError(t, mredis.Set("problem:3:capacity", "8"))
	mredis.HSet("problem:3:items", "1", "3", "2", "4", "3", "5")
	require.NoError(t, mredis.Set("problem:1:capacity", "12.5"))

	ids, err := service.ListProblemIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []packing.ProblemID{3, 1}, ids)

	p, err := service.GetProblem(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, packing.Problem{ID: 3, Capacity: 8, Items: packing.Items{1: 3, 2: 4, 3: 5}}, p)

	empty, err := service.GetProblem(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 12.5, empty.Capacity)
	assert.Empty(t, empty.Items)
}

func TestRedisMissingProblem(t *testing.T) {
	_, service := createRedis(t)

	_, err := service.GetProblem(context.Background(), 42)
	assert.ErrorIs(t, err, ErrProblemNotFound)
}

func TestRedisRejectsCorruptItems(t *testing.T) {
	mredis, service := createRedis(t)

	require.NoError(t, mredis.Set("problem:5:capacity", "8"))
	mredis.HSet("problem:5:items", "one", "3")
	_, err := service.GetProblem(context.Background(), 5)
	assert.ErrorIs(t, err, ErrInvalidProblem)

	mredis.Del("problem:5:items")
	mredis.HSet("problem:5:items", "1", "-3")
	_, err = service.GetProblem(context.Background(), 5)
	assert.ErrorIs(t, err, ErrInvalidProblem)
}

func TestRedisPutRoundTrip(t *testing.T) {
	mredis, service := createRedis(t)
	ctx := context.Background()

	first := packing.Problem{ID: 1, Capacity: 8, Items: packing.Items{1: 3, 2: 4}}
	second := packing.Problem{ID: 2, Capacity: 6, Items: packing.Items{7: 1.5}}
	require.NoError(t, service.Put(ctx, first))
	require.NoError(t, service.Put(ctx, second))

	// Replacing a problem drops its old items and moves its single list entry to the end.
	first.Items = packing.Items{9: 2}
	require.NoError(t, service.Put(ctx, first))

	ids, err := service.ListProblemIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []packing.ProblemID{2, 1}, ids)

	got, err := service.GetProblem(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first, got)
	keys, err := mredis.HKeys("problem:1:items")
	require.NoError(t, err)
	assert.Equal(t, []string{"9"}, keys)
}

func TestRedisConnectionFailure(t *testing.T) {
	mredis, service := createRedis(t)
	mredis.Close()

	_, err := service.ListProblemIDs(context.Background())
	assert.Error(t, err)
}
