package weekly

import (
	"math/rand"
	"sort"
)

// Sample draws up to n distinct recipe ids uniformly at random from
// candidateIDs minus exclude. Candidates are sorted before shuffling so
// the draw is independent of catalog iteration or insertion order.
//
// When fewer than n ids are eligible, the eligible ones are returned
// together with ErrInsufficientCandidates; callers treat that as a
// partial result, not a failure.
func Sample(rng *rand.Rand, candidateIDs []string, exclude map[string]struct{}, n int) ([]string, error) {
	eligible := make([]string, 0, len(candidateIDs))
	seen := make(map[string]struct{}, len(candidateIDs))
	for _, id := range candidateIDs {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, excluded := exclude[id]; excluded {
			continue
		}
		eligible = append(eligible, id)
	}

	sort.Strings(eligible)
	rng.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})

	if len(eligible) < n {
		return eligible, ErrInsufficientCandidates
	}
	return eligible[:n], nil
}
