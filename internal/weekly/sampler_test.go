package weekly

import (
	"errors"
	"math/rand"
	"testing"
)

func TestSample(t *testing.T) {
	t.Run("ExcludesAndDeduplicates", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		picks, err := Sample(rng,
			[]string{"a", "b", "b", "c", "", "d"},
			map[string]struct{}{"c": {}}, 3)
		if err != nil {
			t.Fatalf("Sample: %v", err)
		}
		if len(picks) != 3 {
			t.Fatalf("got %d picks, want 3", len(picks))
		}
		seen := map[string]bool{}
		for _, p := range picks {
			if p == "c" || p == "" {
				t.Errorf("excluded id %q was picked", p)
			}
			if seen[p] {
				t.Errorf("id %q picked twice", p)
			}
			seen[p] = true
		}
	})

	t.Run("InsufficientCandidates", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		picks, err := Sample(rng, []string{"a", "b"}, map[string]struct{}{"b": {}}, 3)
		if !errors.Is(err, ErrInsufficientCandidates) {
			t.Fatalf("err = %v, want ErrInsufficientCandidates", err)
		}
		if len(picks) != 1 || picks[0] != "a" {
			t.Errorf("partial result = %v, want [a]", picks)
		}
	})

	t.Run("IndependentOfInputOrder", func(t *testing.T) {
		forward := []string{"a", "b", "c", "d", "e"}
		backward := []string{"e", "d", "c", "b", "a"}

		p1, err := Sample(rand.New(rand.NewSource(42)), forward, nil, 3)
		if err != nil {
			t.Fatalf("Sample forward: %v", err)
		}
		p2, err := Sample(rand.New(rand.NewSource(42)), backward, nil, 3)
		if err != nil {
			t.Fatalf("Sample backward: %v", err)
		}
		for i := range p1 {
			if p1[i] != p2[i] {
				t.Fatalf("same seed, different draws: %v vs %v", p1, p2)
			}
		}
	})

	t.Run("DrawsRoughlyUniformly", func(t *testing.T) {
		candidates := []string{"a", "b", "c", "d"}
		rng := rand.New(rand.NewSource(7))

		const trials = 400
		hits := map[string]int{}
		for i := 0; i < trials; i++ {
			picks, err := Sample(rng, candidates, nil, 1)
			if err != nil {
				t.Fatalf("Sample: %v", err)
			}
			hits[picks[0]]++
		}

		// Expected 100 draws each; a wide band keeps the check stable
		// while still catching a skewed or stuck sampler.
		want := trials / len(candidates)
		for _, c := range candidates {
			if hits[c] < want/2 || hits[c] > want*3/2 {
				t.Errorf("candidate %q drawn %d times in %d trials, want within [%d, %d]",
					c, hits[c], trials, want/2, want*3/2)
			}
		}
	})
}
