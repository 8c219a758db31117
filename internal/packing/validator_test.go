package packing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() Items {
	return Items{1: 3, 2: 4, 3: 5}
}

func TestCheckCapacity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		items     Items
		partition Partition
		capacity  float64
		want      Load
		wantErr   error
	}{
		{
			name:      "ExactCoverWithinCapacity",
			items:     sampleItems(),
			partition: Partition{{1, 2}, {3}},
			capacity:  8,
			want:      Load{WithinCapacity: 2},
		},
		{
			name:      "SingleOverloadedCart",
			items:     sampleItems(),
			partition: Partition{{1, 2, 3}},
			capacity:  8,
			want:      Load{OverCapacity: 1},
		},
		{
			name:      "LoadEqualToCapacityFits",
			items:     sampleItems(),
			partition: Partition{{1, 3}, {2}},
			capacity:  8,
			want:      Load{WithinCapacity: 2},
		},
		{
			name:      "EpsilonOverCapacity",
			items:     Items{1: 4, 2: 4.000001},
			partition: Partition{{1, 2}},
			capacity:  8,
			want:      Load{OverCapacity: 1},
		},
		{
			name:      "EmptyCartFits",
			items:     sampleItems(),
			partition: Partition{{}, {1, 2, 3}},
			capacity:  8,
			want:      Load{WithinCapacity: 1, OverCapacity: 1},
		},
		{
			name:      "EmptyPartition",
			items:     sampleItems(),
			partition: Partition{},
			capacity:  8,
			want:      Load{},
		},
		{
			name:      "UnknownKeyInLastCart",
			items:     sampleItems(),
			partition: Partition{{1}, {2}, {3, 9}},
			capacity:  8,
			wantErr:   ErrUnknownItemKey,
		},
		{
			name:      "UnknownKeyInFirstCartFailsWholeCall",
			items:     sampleItems(),
			partition: Partition{{42}, {1, 2}, {3}},
			capacity:  8,
			wantErr:   ErrUnknownItemKey,
		},
		{
			name:      "NilItems",
			items:     nil,
			partition: Partition{{1}},
			capacity:  8,
			wantErr:   ErrInvalidItemsType,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := CheckCapacity(tc.items, tc.partition, tc.capacity)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, Load{}, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCheckCapacity_ValidCoverCountsEveryCart(t *testing.T) {
	t.Parallel()

	items := Items{}
	partition := Partition{}
	for i := 0; i < 50; i++ {
		a, b := ItemID(2*i), ItemID(2*i+1)
		items[a] = float64(i % 7)
		items[b] = float64(10 - i%7)
		partition = append(partition, Bin{a, b})
	}

	load, err := CheckCapacity(items, partition, 10)
	require.NoError(t, err)
	assert.Equal(t, Load{WithinCapacity: len(partition)}, load)

	coverage := CheckAllPoints(items, partition)
	assert.Equal(t, Coverage{}, coverage)
}

func TestCheckAllPoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		items     Items
		partition Partition
		want      Coverage
	}{
		{
			name:      "ExactCover",
			items:     sampleItems(),
			partition: Partition{{1, 2}, {3}},
			want:      Coverage{},
		},
		{
			name:      "DuplicateAcrossCarts",
			items:     sampleItems(),
			partition: Partition{{1}, {1, 2, 3}},
			want:      Coverage{Duplicate: true, Message: duplicateMessage},
		},
		{
			name:      "DuplicateWithinCart",
			items:     sampleItems(),
			partition: Partition{{1, 1}, {2, 3}},
			want:      Coverage{Duplicate: true, Message: duplicateMessage},
		},
		{
			name:      "MissingItem",
			items:     sampleItems(),
			partition: Partition{{1, 2}},
			want:      Coverage{Missing: true, Message: missingMessage},
		},
		{
			name:      "DuplicateAndMissing",
			items:     sampleItems(),
			partition: Partition{{1}, {1, 2}},
			want:      Coverage{Duplicate: true, Missing: true, Message: duplicateMessage + "  " + missingMessage},
		},
		{
			name:      "EmptyPartitionMissesEverything",
			items:     sampleItems(),
			partition: nil,
			want:      Coverage{Missing: true, Message: missingMessage},
		},
		{
			name:      "EmptyProblemEmptyPartition",
			items:     Items{},
			partition: Partition{},
			want:      Coverage{},
		},
		{
			name:      "UnknownKeysAreCountedNotRejected",
			items:     sampleItems(),
			partition: Partition{{1, 2, 3, 99}},
			want:      Coverage{},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, CheckAllPoints(tc.items, tc.partition))
		})
	}
}

func TestCoverageErr(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Coverage{}.Err())

	err := Coverage{Duplicate: true, Missing: true}.Err()
	assert.True(t, errors.Is(err, ErrDuplicateAssignment))
	assert.True(t, errors.Is(err, ErrMissingAssignment))

	err = Coverage{Missing: true}.Err()
	assert.False(t, errors.Is(err, ErrDuplicateAssignment))
	assert.True(t, errors.Is(err, ErrMissingAssignment))
}

func TestItemsClone(t *testing.T) {
	t.Parallel()

	original := sampleItems()
	clone := original.Clone()
	clone[1] = 100
	delete(clone, 2)

	assert.Equal(t, sampleItems(), original)
	assert.Nil(t, Items(nil).Clone())
}

func BenchmarkCheckCapacity(b *testing.B) {
	items := Items{}
	partition := Partition{}
	for i := 0; i < 1000; i++ {
		items[ItemID(i)] = float64(i%13) + 0.5
		if i%10 == 0 {
			partition = append(partition, Bin{})
		}
		partition[len(partition)-1] = append(partition[len(partition)-1], ItemID(i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := CheckCapacity(items, partition, 60); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}
