package search

import (
	"math"
	"sort"

	"github.com/cwbudde/mayflywatch/internal/problem"
)

// DefaultArchiveSize bounds the front when no size is configured.
const DefaultArchiveSize = 100

// Archive keeps the non-dominated solutions seen so far, sorted by the
// first objective. When full, the most crowded solution is dropped.
type Archive struct {
	capacity  int
	solutions []problem.Solution
}

// NewArchive creates an archive holding at most capacity solutions.
func NewArchive(capacity int) *Archive {
	if capacity <= 0 {
		capacity = DefaultArchiveSize
	}
	return &Archive{capacity: capacity}
}

// Add inserts a copy of s unless an archived solution dominates it or has
// the same objective vector. Solutions dominated by s are evicted. Add
// reports whether s was inserted. Vectors containing NaN are rejected.
func (a *Archive) Add(s problem.Solution) bool {
	for _, v := range s.Objectives {
		if math.IsNaN(v) {
			return false
		}
	}
	for _, member := range a.solutions {
		if problem.Dominates(member, s) || equalObjectives(member, s) {
			return false
		}
	}

	kept := a.solutions[:0]
	for _, member := range a.solutions {
		if !problem.Dominates(s, member) {
			kept = append(kept, member)
		}
	}
	a.solutions = append(kept, s.Clone())

	sort.SliceStable(a.solutions, func(i, j int) bool {
		return lessObjectives(a.solutions[i].Objectives, a.solutions[j].Objectives)
	})

	if len(a.solutions) > a.capacity {
		a.prune()
	}
	return true
}

// Len returns the number of archived solutions.
func (a *Archive) Len() int { return len(a.solutions) }

// Solutions returns deep copies of the archived solutions, best in the
// first objective first. The result is never nil.
func (a *Archive) Solutions() []problem.Solution {
	out := make([]problem.Solution, len(a.solutions))
	for i, s := range a.solutions {
		out[i] = s.Clone()
	}
	return out
}

// prune removes the solution with the smallest crowding distance.
func (a *Archive) prune() {
	distances := CrowdingDistances(a.solutions)
	worst := 0
	for i := 1; i < len(distances); i++ {
		if distances[i] < distances[worst] {
			worst = i
		}
	}
	a.solutions = append(a.solutions[:worst], a.solutions[worst+1:]...)
}

// CrowdingDistances computes the crowding distance of every solution.
// Boundary solutions of each objective get +Inf.
func CrowdingDistances(solutions []problem.Solution) []float64 {
	n := len(solutions)
	distances := make([]float64, n)
	if n == 0 {
		return distances
	}
	if n <= 2 {
		for i := range distances {
			distances[i] = math.Inf(1)
		}
		return distances
	}

	order := make([]int, n)
	for m := range solutions[0].Objectives {
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			return solutions[order[i]].Objectives[m] < solutions[order[j]].Objectives[m]
		})

		lo := solutions[order[0]].Objectives[m]
		hi := solutions[order[n-1]].Objectives[m]
		distances[order[0]] = math.Inf(1)
		distances[order[n-1]] = math.Inf(1)
		if hi == lo {
			continue
		}
		for k := 1; k < n-1; k++ {
			gap := solutions[order[k+1]].Objectives[m] - solutions[order[k-1]].Objectives[m]
			distances[order[k]] += gap / (hi - lo)
		}
	}
	return distances
}

func lessObjectives(a, b []float64) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func equalObjectives(a, b problem.Solution) bool {
	if len(a.Objectives) != len(b.Objectives) {
		return false
	}
	for i := range a.Objectives {
		if a.Objectives[i] != b.Objectives[i] {
			return false
		}
	}
	return true
}
