package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateHand_PrefersStructure(t *testing.T) {
	strong := mustCards(t, "3S 4H 5S 6C 7D KS KH KC KD SJ BJ")
	weak := mustCards(t, "3S 5H 7S 9C JD 4S 6H 8C 10D QS KH")

	if EvaluateHand(strong) <= EvaluateHand(weak) {
		t.Fatalf("EvaluateHand(strong) = %.1f, want more than weak %.1f", EvaluateHand(strong), EvaluateHand(weak))
	}
}

func TestEvaluateHand_LoneSinglesCost(t *testing.T) {
	connected := mustCards(t, "3S 4H 5S 6C 7D")
	scattered := mustCards(t, "3S 5H 7S 9C JD")
	assert.Greater(t, EvaluateHand(connected), EvaluateHand(scattered))
}

func TestBidStrength(t *testing.T) {
	tests := []struct {
		name string
		hand string
		want int
	}{
		{"control cards", "SJ BJ 2S 2H AS", 12},
		{"bomb", "3S 3H 3C 3D 5S", 4},
		{"nothing", "3S 4S 5S 6S 7S", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BidStrength(mustCards(t, tt.hand)))
		})
	}
}
