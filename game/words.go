package game

import (
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

//go:embed words/*.json
var wordFiles embed.FS

var difficulties = []string{"easy", "medium", "hard"}

// WordBank holds the tiered word lists. Immutable after load, safe for
// concurrent use by any number of rooms.
type WordBank struct {
	tiers map[string][]string
}

func LoadWordBank() (*WordBank, error) {
	bank := &WordBank{
		tiers: make(map[string][]string, len(difficulties)),
	}

	for _, tier := range difficulties {
		data, err := wordFiles.ReadFile("words/" + tier + ".json")
		if err != nil {
			return nil, fmt.Errorf("word list %q: %w", tier, err)
		}

		var words []string
		if err := json.Unmarshal(data, &words); err != nil {
			return nil, fmt.Errorf("word list %q: %w", tier, err)
		}
		if len(words) == 0 {
			return nil, fmt.Errorf("word list %q is empty", tier)
		}

		bank.tiers[tier] = words
	}

	return bank, nil
}

func (b *WordBank) ValidDifficulty(tier string) bool {
	_, ok := b.tiers[tier]
	return ok
}

// Candidates returns up to n random words from the given tier, preferring
// words absent from used. An exhausted tier degrades to allowing repeats
// rather than coming up short.
func (b *WordBank) Candidates(tier string, n int, used map[string]bool) []string {
	words, ok := b.tiers[tier]
	if !ok {
		words = b.tiers["medium"]
	}

	unused := make([]string, 0, len(words))
	for _, w := range words {
		if !used[strings.ToLower(w)] {
			unused = append(unused, w)
		}
	}
	if len(unused) < n {
		unused = words
	}

	picks := make([]string, 0, n)
	for _, i := range rand.Perm(len(unused)) {
		picks = append(picks, unused[i])
		if len(picks) == n {
			break
		}
	}

	return picks
}

// MaskWord replaces every letter with an underscore, preserving spaces, so
// non-drawers learn only the word's shape.
func MaskWord(word string) string {
	var masked strings.Builder

	for i, r := range word {
		if i > 0 {
			masked.WriteByte(' ')
		}
		if r == ' ' {
			masked.WriteByte(' ')
		} else {
			masked.WriteByte('_')
		}
	}

	return masked.String()
}

// ProgressiveHint reveals up to three letters (first, last, then middle) as
// the drawing window elapses: nothing before 10s, one more letter every
// further 10s.
func ProgressiveHint(word string, elapsed time.Duration) string {
	if word == "" {
		return ""
	}

	reveal := int(elapsed / (10 * time.Second))
	if reveal > 3 {
		reveal = 3
	}
	if reveal == 0 {
		return MaskWord(word)
	}

	letters := make([]int, 0, len(word))
	for i, r := range word {
		if r != ' ' {
			letters = append(letters, i)
		}
	}
	if len(letters) == 0 {
		return MaskWord(word)
	}

	revealed := map[int]bool{letters[0]: true}
	if reveal >= 2 && len(letters) >= 2 {
		revealed[letters[len(letters)-1]] = true
	}
	if reveal >= 3 && len(letters) >= 3 {
		revealed[letters[len(letters)/2]] = true
	}

	var hint strings.Builder
	for i, r := range word {
		if i > 0 {
			hint.WriteByte(' ')
		}
		switch {
		case r == ' ':
			hint.WriteByte(' ')
		case revealed[i]:
			hint.WriteString(strings.ToUpper(string(r)))
		default:
			hint.WriteByte('_')
		}
	}

	return hint.String()
}
