package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuessScore(t *testing.T) {
	t.Parallel()

	t.Run("Instant First Guess Gets The Maximum", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, MaxGuessScore, GuessScore(MaxGuessScore, 0, 0))
	})

	t.Run("Last Second Guess Gets The Base", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, guessBase, GuessScore(MaxGuessScore, 1, 0))
	})

	t.Run("Never Increases With Elapsed Time", func(t *testing.T) {
		t.Parallel()
		prev := GuessScore(MaxGuessScore, 0, 0)
		for frac := 0.1; frac <= 1.0; frac += 0.1 {
			score := GuessScore(MaxGuessScore, frac, 0)
			assert.LessOrEqual(t, score, prev, "score rose at fraction %.1f", frac)
			prev = score
		}
	})

	t.Run("Never Increases With Rank", func(t *testing.T) {
		t.Parallel()
		prev := GuessScore(MaxGuessScore, 0.5, 0)
		for rank := 1; rank < 8; rank++ {
			score := GuessScore(MaxGuessScore, 0.5, rank)
			assert.LessOrEqual(t, score, prev, "score rose at rank %d", rank)
			prev = score
		}
	})

	t.Run("Correct Guesses Never Score Below The Floor", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, guessFloor, GuessScore(MaxGuessScore, 1, 100))
	})

	t.Run("Out Of Range Inputs Are Clamped", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, MaxGuessScore, GuessScore(MaxGuessScore, -3, -4))
		assert.Equal(t, GuessScore(MaxGuessScore, 1, 0), GuessScore(MaxGuessScore, 2.5, 0))
	})
}

func TestDrawerBonus(t *testing.T) {
	t.Parallel()

	t.Run("Nothing When Nobody Guessed", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, DrawerBonus(0, 3))
	})

	t.Run("Nothing When Nobody Could Guess", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, DrawerBonus(2, 0))
	})

	t.Run("Full Bonus When Everyone Guessed", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, drawerBonusMax, DrawerBonus(3, 3))
	})

	t.Run("Proportional To The Share Of Correct Guessers", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, drawerBonusMax/2, DrawerBonus(1, 2))
		assert.Equal(t, drawerBonusMax, DrawerBonus(5, 3), "correct is capped at eligible")
	})
}
