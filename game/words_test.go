package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWordBank(t *testing.T) {
	t.Parallel()

	bank, err := LoadWordBank()
	require.NoError(t, err)

	for _, tier := range []string{"easy", "medium", "hard"} {
		assert.True(t, bank.ValidDifficulty(tier))
		assert.NotEmpty(t, bank.tiers[tier])
	}
	assert.False(t, bank.ValidDifficulty("impossible"))
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	bank := &WordBank{tiers: map[string][]string{
		"medium": {"cat", "house", "piano", "rocket"},
	}}

	t.Run("Returns The Requested Count Without Repeats", func(t *testing.T) {
		t.Parallel()
		picks := bank.Candidates("medium", 3, nil)
		require.Len(t, picks, 3)

		seen := make(map[string]bool)
		for _, w := range picks {
			assert.False(t, seen[w], "duplicate candidate %q", w)
			seen[w] = true
		}
	})

	t.Run("Prefers Unused Words", func(t *testing.T) {
		t.Parallel()
		used := map[string]bool{"cat": true}
		for i := 0; i < 20; i++ {
			for _, w := range bank.Candidates("medium", 3, used) {
				assert.NotEqual(t, "cat", w)
			}
		}
	})

	t.Run("An Exhausted Tier Allows Repeats Rather Than Coming Up Short", func(t *testing.T) {
		t.Parallel()
		used := map[string]bool{"cat": true, "house": true, "piano": true}
		picks := bank.Candidates("medium", 3, used)
		assert.Len(t, picks, 3)
	})

	t.Run("Unknown Tier Falls Back To Medium", func(t *testing.T) {
		t.Parallel()
		picks := bank.Candidates("nope", 2, nil)
		assert.Len(t, picks, 2)
	})
}

func TestMaskWord(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "_ _ _", MaskWord("cat"))
	assert.Equal(t, "_ _ _   _ _ _ _ _", MaskWord("ice cream"))
	assert.Equal(t, "", MaskWord(""))
}

func TestProgressiveHint(t *testing.T) {
	t.Parallel()

	t.Run("Fully Masked Before The First Interval", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, MaskWord("piano"), ProgressiveHint("piano", 9*time.Second))
	})

	t.Run("Reveals First Then Last Then Middle", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "P _ _ _ _", ProgressiveHint("piano", 10*time.Second))
		assert.Equal(t, "P _ _ _ O", ProgressiveHint("piano", 20*time.Second))
		assert.Equal(t, "P _ A _ O", ProgressiveHint("piano", 30*time.Second))
	})

	t.Run("Never Reveals More Than Three Letters", func(t *testing.T) {
		t.Parallel()
		hint := ProgressiveHint("elephant", time.Hour)
		revealed := 0
		for _, r := range hint {
			if r != '_' && r != ' ' {
				revealed++
			}
		}
		assert.Equal(t, 3, revealed)
	})

	t.Run("Short Words Stay Partly Hidden", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "C _ T", ProgressiveHint("cat", 20*time.Second))
	})

	t.Run("Empty Word Yields Empty Hint", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", ProgressiveHint("", time.Minute))
	})
}
