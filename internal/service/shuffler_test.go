package service

import (
	"testing"

	"github.com/lshigami/Margay/internal/model"
)

func TestShuffleOptionsKeepsElementsAndInput(t *testing.T) {
	original := []model.Option{
		{ID: 1, Text: "a"}, {ID: 2, Text: "b"}, {ID: 3, Text: "c"}, {ID: 4, Text: "d"},
	}

	shuffled := shuffleOptions(original)

	if len(shuffled) != len(original) {
		t.Fatalf("len = %d, want %d", len(shuffled), len(original))
	}

	seen := make(map[uint]bool, len(shuffled))
	for _, o := range shuffled {
		seen[o.ID] = true
	}
	for _, o := range original {
		if !seen[o.ID] {
			t.Errorf("option %d missing after shuffle", o.ID)
		}
	}

	// The input slice itself stays in stored order.
	for i, o := range original {
		if o.ID != uint(i+1) {
			t.Errorf("input mutated at %d: got option %d", i, o.ID)
		}
	}
}

func TestShuffleOptionsEmpty(t *testing.T) {
	if got := shuffleOptions(nil); len(got) != 0 {
		t.Errorf("shuffleOptions(nil) = %v, want empty", got)
	}
}
