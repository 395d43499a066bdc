package problem

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Problem is the optimization problem being solved. Observers only use
// ReferenceFront; the search loop uses the rest.
type Problem interface {
	Name() string
	NumberOfVariables() int
	NumberOfObjectives() int
	// Bounds returns the scalar box shared by every variable.
	Bounds() (lower, upper float64)
	// Evaluate returns the objective vector of x (minimization).
	Evaluate(x []float64) []float64
	// ReferenceFront returns the known optimal front, one row per point.
	ReferenceFront() [][]float64
}

// referenceFrontPoints is the sampling density of analytic fronts.
const referenceFrontPoints = 100

// Sphere is the single-objective f(x) = sum(x_i^2), minimum 0 at the origin.
type Sphere struct {
	Dim int
}

func (p Sphere) Name() string                { return "sphere" }
func (p Sphere) NumberOfVariables() int      { return p.Dim }
func (p Sphere) NumberOfObjectives() int     { return 1 }
func (p Sphere) Bounds() (float64, float64)  { return -5.12, 5.12 }
func (p Sphere) ReferenceFront() [][]float64 { return [][]float64{{0}} }

func (p Sphere) Evaluate(x []float64) []float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return []float64{sum}
}

// Schaffer is Schaffer's study problem N.1 generalized to the mean over
// variables: f1 = x^2, f2 = (x-2)^2.
type Schaffer struct {
	Dim int
}

func (p Schaffer) Name() string               { return "schaffer" }
func (p Schaffer) NumberOfVariables() int     { return p.Dim }
func (p Schaffer) NumberOfObjectives() int    { return 2 }
func (p Schaffer) Bounds() (float64, float64) { return -10, 10 }

func (p Schaffer) Evaluate(x []float64) []float64 {
	var f1, f2 float64
	for _, v := range x {
		f1 += v * v
		f2 += (v - 2) * (v - 2)
	}
	n := float64(len(x))
	return []float64{f1 / n, f2 / n}
}

// ReferenceFront samples the front for x in [0, 2].
func (p Schaffer) ReferenceFront() [][]float64 {
	front := make([][]float64, referenceFrontPoints)
	for i := range front {
		x := 2 * float64(i) / float64(referenceFrontPoints-1)
		front[i] = []float64{x * x, (x - 2) * (x - 2)}
	}
	return front
}

// ZDT1 is the first Zitzler-Deb-Thiele benchmark with a convex front
// f2 = 1 - sqrt(f1).
type ZDT1 struct {
	Dim int
}

func (p ZDT1) Name() string               { return "zdt1" }
func (p ZDT1) NumberOfVariables() int     { return p.Dim }
func (p ZDT1) NumberOfObjectives() int    { return 2 }
func (p ZDT1) Bounds() (float64, float64) { return 0, 1 }

func (p ZDT1) Evaluate(x []float64) []float64 {
	f1 := x[0]
	g := 1.0
	if len(x) > 1 {
		var sum float64
		for _, v := range x[1:] {
			sum += v
		}
		g += 9 * sum / float64(len(x)-1)
	}
	h := 1 - math.Sqrt(f1/g)
	return []float64{f1, g * h}
}

func (p ZDT1) ReferenceFront() [][]float64 {
	front := make([][]float64, referenceFrontPoints)
	for i := range front {
		f1 := float64(i) / float64(referenceFrontPoints-1)
		front[i] = []float64{f1, 1 - math.Sqrt(f1)}
	}
	return front
}

var constructors = map[string]func(dim int) Problem{
	"sphere":   func(dim int) Problem { return Sphere{Dim: dim} },
	"schaffer": func(dim int) Problem { return Schaffer{Dim: dim} },
	"zdt1":     func(dim int) Problem { return ZDT1{Dim: dim} },
}

// Lookup builds the named problem with dim variables.
func Lookup(name string, dim int) (Problem, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("problem %q: dimension must be positive, got %d", name, dim)
	}
	ctor, ok := constructors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown problem: %s (available: %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(dim), nil
}

// Names lists the registered problem names in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
