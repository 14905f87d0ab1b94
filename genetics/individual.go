// Package genetics holds the candidate-solution model and the genetic
// operators used by the island workers. Every operator preserves the
// permutation invariant: a chromosome of length n contains each city index
// 0..n-1 exactly once.
package genetics

import (
	"errors"
	"math/rand"

	"github.com/wildfauve/travelling-salesman/geometry"
)

// Individual is one candidate tour with its derived fitness. Fitness is the
// reciprocal of the closed-tour distance and is only meaningful after
// evaluation; operators that change the chromosome leave it stale on purpose,
// the worker loop re-evaluates the whole population every generation.
type Individual struct {
	Chromosome []int
	Fitness    float64
}

// NewRandomIndividual returns an individual with a uniformly random
// permutation of 0..size-1 and an unevaluated fitness.
func NewRandomIndividual(size int, rng *rand.Rand) Individual {
	chromosome := rng.Perm(size)
	return Individual{Chromosome: chromosome}
}

// ErrZeroDistance guards the fitness reciprocal: a zero-length tour cannot
// occur for two or more distinct cities, so hitting it means the city table
// is degenerate.
var ErrZeroDistance = errors.New("genetics: tour distance is zero, city coordinates are not distinct")

// evaluated returns a copy of the individual with fitness recomputed from the
// city table.
func evaluated(ind Individual, cities []geometry.City) (Individual, error) {
	distance, err := geometry.TourDistance(ind.Chromosome, cities)
	if err != nil {
		return Individual{}, err
	}
	if distance == 0 {
		return Individual{}, ErrZeroDistance
	}
	return Individual{Chromosome: ind.Chromosome, Fitness: 1 / distance}, nil
}

// cloneChromosome copies an individual's chromosome so the copy can be
// mutated without aliasing the original.
func cloneChromosome(ind Individual) []int {
	chromosome := make([]int, len(ind.Chromosome))
	copy(chromosome, ind.Chromosome)
	return chromosome
}
