package prompt

import (
	"github.com/pkoukk/tiktoken-go"
)

// tokenCounter estimates prompt sizes for budget checks.
type tokenCounter interface {
	count(text string) int
}

type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// newTokenCounter returns a cl100k_base tiktoken counter, falling back to a
// rough bytes/4 heuristic when the encoding cannot be loaded. An estimate is
// enough here: the budget only decides whether the last scene stays in the
// context.
func newTokenCounter() tokenCounter {
	enc, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
	if err != nil {
		return heuristicCounter{}
	}
	return tiktokenCounter{encoding: enc}
}

func (c tiktokenCounter) count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

type heuristicCounter struct{}

func (heuristicCounter) count(text string) int {
	return len(text) / 4
}
