package game

import (
	"strings"

	"github.com/samber/lo"
)

// WordQueue hands out words from a shuffled copy of a vocabulary, front first.
type WordQueue struct {
	vocabulary []string
	words      []string
}

// NewWordQueue returns an empty queue over the given vocabulary.
// Blank entries are dropped.
func NewWordQueue(vocabulary []string) (*WordQueue, error) {
	words := lo.Filter(vocabulary, func(w string, _ int) bool {
		return strings.TrimSpace(w) != ""
	})
	if len(words) == 0 {
		return nil, ErrEmptyVocabulary
	}
	return &WordQueue{vocabulary: words}, nil
}

// Reset discards the remaining words and loads a freshly shuffled vocabulary.
func (q *WordQueue) Reset() {
	q.words = lo.Shuffle(append([]string(nil), q.vocabulary...))
}

// Next pops the front word, refilling the queue first if it is empty.
func (q *WordQueue) Next() string {
	if len(q.words) == 0 {
		q.Reset()
	}
	word := q.words[0]
	q.words = q.words[1:]
	return word
}

// Size returns the vocabulary size.
func (q *WordQueue) Size() int {
	return len(q.vocabulary)
}
