package game

import (
	"fmt"
	"math/rand/v2"
	"unicode"
)

// Hint reveals the length of a word and one of its letters.
type Hint struct {
	Length   int    // number of letters in the word
	Position int    // 1-based position of Letter
	Letter   string // uppercase letter at Position
}

// NewHint picks a uniformly random position in word using intn, which must
// return a value in [0, n). A nil intn uses math/rand/v2.
func NewHint(word string, intn func(n int) int) Hint {
	runes := []rune(word)
	if len(runes) == 0 {
		return Hint{}
	}
	if intn == nil {
		intn = rand.IntN
	}
	pos := intn(len(runes)) + 1
	return Hint{
		Length:   len(runes),
		Position: pos,
		Letter:   string(unicode.ToUpper(runes[pos-1])),
	}
}

// String renders the hint for display.
func (h Hint) String() string {
	if h.Length == 0 {
		return ""
	}
	return fmt.Sprintf("Current word has %d letters\nThe letter at position %d is %s", h.Length, h.Position, h.Letter)
}
