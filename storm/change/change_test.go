package change_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/prstorm/storm/change"
)

func seededPicker(seed int64) *change.Picker {
	return change.NewPicker(change.PickerConfig{
		Rand: rand.New(rand.NewSource(seed)),
	})
}

func TestPicker_Kind_distribution(t *testing.T) {
	t.Parallel()

	pk := seededPicker(1)

	const draws = 100000

	counts := map[change.Kind]int{}

	for i := 0; i < draws; i++ {
		counts[pk.Kind()]++
	}

	// 60/30/10 within statistical tolerance.
	assert.InDelta(
		t, 0.60,
		float64(counts[change.KindDocs])/draws,
		0.01,
	)
	assert.InDelta(
		t, 0.30,
		float64(counts[change.KindCode])/draws,
		0.01,
	)
	assert.InDelta(
		t, 0.10,
		float64(counts[change.KindConfig])/draws,
		0.01,
	)
}

func TestPicker_Kind_deterministic(t *testing.T) {
	t.Parallel()

	first := seededPicker(42)
	second := seededPicker(42)

	for i := 0; i < 100; i++ {
		assert.Equal(t, first.Kind(), second.Kind())
	}
}

func TestPicker_Title_from_pool(t *testing.T) {
	t.Parallel()

	pk := seededPicker(7)

	for i := 0; i < 100; i++ {
		assert.Contains(
			t, change.DefaultTitles, pk.Title(),
		)
	}
}

func TestPicker_Body_from_pool(t *testing.T) {
	t.Parallel()

	pk := seededPicker(7)

	for i := 0; i < 100; i++ {
		assert.Contains(
			t, change.DefaultBodies, pk.Body(),
		)
	}
}

func TestPicker_Title_covers_pool(t *testing.T) {
	t.Parallel()

	pk := seededPicker(3)

	seen := map[string]bool{}

	for i := 0; i < 1000; i++ {
		seen[pk.Title()] = true
	}

	// All eight titles should show up over enough
	// draws.
	assert.Len(t, seen, len(change.DefaultTitles))
}

func TestPicker_custom_pools_and_weights(t *testing.T) {
	t.Parallel()

	pk := change.NewPicker(change.PickerConfig{
		Rand: rand.New(rand.NewSource(1)),
		Weights: change.Weights{
			Docs: 1, Code: 0, Config: 0,
		},
		Titles: []string{"only title"},
		Bodies: []string{"only body"},
	})

	for i := 0; i < 50; i++ {
		assert.Equal(t, change.KindDocs, pk.Kind())
		assert.Equal(t, "only title", pk.Title())
		assert.Equal(t, "only body", pk.Body())
	}
}

func TestPicker_Suffix_range(t *testing.T) {
	t.Parallel()

	pk := seededPicker(9)

	for i := 0; i < 1000; i++ {
		sf := pk.Suffix()

		require.GreaterOrEqual(t, sf, 0)
		require.Less(t, sf, 100000)
	}
}

func TestBranchName(t *testing.T) {
	t.Parallel()

	got := change.BranchName(
		"loadtest/", 1700000000, 4711,
		change.KindDocs,
	)

	assert.Equal(
		t, "loadtest/1700000000-4711-docs", got,
	)
}

func TestDefaultPools_sizes(t *testing.T) {
	t.Parallel()

	assert.Len(t, change.DefaultTitles, 8)
	assert.Len(t, change.DefaultBodies, 3)
}
