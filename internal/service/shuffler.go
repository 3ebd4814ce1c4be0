package service

import (
	"math/rand"

	"github.com/lshigami/Margay/internal/model"
)

// shuffleOptions returns a fresh random ordering of options for one
// presentation. The stored order is never touched and the shuffled order is
// never persisted, so every resume shows a new arrangement.
func shuffleOptions(options []model.Option) []model.Option {
	shuffled := make([]model.Option, len(options))
	copy(shuffled, options)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
