package problem

// Solution is a candidate produced by the search loop: the decision
// variables and the objective vector they evaluate to.
type Solution struct {
	Variables  []float64 `json:"variables,omitempty"`
	Objectives []float64 `json:"objectives"`
}

// NewSolution creates a solution owning copies of x and objectives.
func NewSolution(x, objectives []float64) Solution {
	return Solution{
		Variables:  append([]float64(nil), x...),
		Objectives: append([]float64(nil), objectives...),
	}
}

// ObjectiveValues returns the ordered objective vector.
func (s Solution) ObjectiveValues() []float64 {
	return s.Objectives
}

// Clone returns a deep copy that shares no storage with s.
func (s Solution) Clone() Solution {
	return NewSolution(s.Variables, s.Objectives)
}

// Dominates reports whether a Pareto-dominates b under minimization:
// a is no worse in every objective and strictly better in at least one.
func Dominates(a, b Solution) bool {
	if len(a.Objectives) != len(b.Objectives) {
		return false
	}
	better := false
	for i := range a.Objectives {
		if a.Objectives[i] > b.Objectives[i] {
			return false
		}
		if a.Objectives[i] < b.Objectives[i] {
			better = true
		}
	}
	return better
}

// ObjectiveMatrix copies the objective vectors of solutions into a fresh
// row-per-solution matrix.
func ObjectiveMatrix(solutions []Solution) [][]float64 {
	rows := make([][]float64, len(solutions))
	for i, s := range solutions {
		rows[i] = append([]float64(nil), s.Objectives...)
	}
	return rows
}
