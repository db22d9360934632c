package autopick

import (
	"math/rand"
	"testing"
)

func TestCumulative(t *testing.T) {
	got := Cumulative([]int{50, 30, 20, 10})
	want := []int{50, 80, 100, 110}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Cumulative[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestChooseDegenerateTables(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := Choose(rng, nil); got != -1 {
		t.Errorf("Choose(empty) = %d, want -1", got)
	}
	if got := Choose(rng, []int{0, 0}); got != -1 {
		t.Errorf("Choose(zero weights) = %d, want -1", got)
	}
	for i := 0; i < 100; i++ {
		if got := Choose(rng, []int{7}); got != 0 {
			t.Fatalf("Choose(single weight) = %d, want 0", got)
		}
	}
}

func TestChooseStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	weights := []int{50, 30, 20, 10}
	for i := 0; i < 10000; i++ {
		idx := Choose(rng, weights)
		if idx < 0 || idx >= len(weights) {
			t.Fatalf("Choose returned %d for %d weights", idx, len(weights))
		}
	}
}

func TestChooseFavorsHeavierWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	weights := []int{50, 30, 20, 10}
	counts := make([]int, len(weights))
	const draws = 20000
	for i := 0; i < draws; i++ {
		counts[Choose(rng, weights)]++
	}

	// The top weight should land near half the draws, and every index should
	// be reachable. Loose bounds keep this stable across seeds.
	top := float64(counts[0]) / draws
	if top < 0.40 || top > 0.62 {
		t.Errorf("top-weight frequency = %.3f, want roughly 0.5", top)
	}
	for i, c := range counts {
		if c == 0 {
			t.Errorf("index %d never chosen in %d draws", i, draws)
		}
	}
	if !(counts[0] > counts[1] && counts[1] > counts[2] && counts[2] > counts[3]) {
		t.Errorf("counts not ordered by weight: %v", counts)
	}
}
