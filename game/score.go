package game

// Scoring constants. The shape follows the classic party-game curve: a
// flat base for any correct guess plus a bonus that decays with elapsed
// drawing time, minus a small step per earlier correct guesser.
const (
	// MaxGuessScore is the ceiling for a correct guess at t=0.
	MaxGuessScore = 500

	guessBase     = 100
	guessRankStep = 25
	guessFloor    = 50

	drawerBonusMax = 50
)

// GuessScore returns the score delta for a correct guess. baseMax is the
// best possible delta, elapsedFraction is elapsed/window clamped to [0,1],
// and rank is the number of players who guessed correctly before this one.
//
// The delta is non-increasing in both elapsedFraction and rank, and never
// drops below guessFloor for a correct guess.
func GuessScore(baseMax int, elapsedFraction float64, rank int) int {
	if elapsedFraction < 0 {
		elapsedFraction = 0
	}
	if elapsedFraction > 1 {
		elapsedFraction = 1
	}
	if rank < 0 {
		rank = 0
	}

	speed := float64(baseMax-guessBase) * (1 - elapsedFraction)

	delta := guessBase + int(speed) - rank*guessRankStep
	if delta < guessFloor {
		delta = guessFloor
	}

	return delta
}

// DrawerBonus rewards the drawer in proportion to how many of the eligible
// guessers found the word. Zero when nobody guessed or nobody could.
func DrawerBonus(correct, eligible int) int {
	if correct <= 0 || eligible <= 0 {
		return 0
	}
	if correct > eligible {
		correct = eligible
	}

	return drawerBonusMax * correct / eligible
}
