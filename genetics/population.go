package genetics

import (
	"math/rand"
	"sort"

	"github.com/wildfauve/travelling-salesman/geometry"
)

// NewRandomPopulation builds size individuals of chromosomeLength random
// permutations each, all unevaluated.
func NewRandomPopulation(size, chromosomeLength int, rng *rand.Rand) []Individual {
	population := make([]Individual, size)
	for i := range population {
		population[i] = NewRandomIndividual(chromosomeLength, rng)
	}
	return population
}

// Evaluate recomputes fitness for every member against the city table. It
// returns a new population of the same cardinality and order. A chromosome
// that does not cover the city table is a configuration error.
func Evaluate(population []Individual, cities []geometry.City) ([]Individual, error) {
	evaluatedPop := make([]Individual, len(population))
	for i, ind := range population {
		var err error
		evaluatedPop[i], err = evaluated(ind, cities)
		if err != nil {
			return nil, err
		}
	}
	return evaluatedPop, nil
}

// SortDescending returns a new population ordered by fitness, best first.
// The sort is stable so equally fit individuals keep their relative order,
// which keeps elitism selection deterministic.
func SortDescending(population []Individual) []Individual {
	sorted := make([]Individual, len(population))
	copy(sorted, population)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Fitness > sorted[j].Fitness
	})
	return sorted
}

// Fittest returns the offset-th best individual. Offset must be within the
// population.
func Fittest(population []Individual, offset int) Individual {
	return SortDescending(population)[offset]
}

// MaxFitness returns the highest fitness in the population.
func MaxFitness(population []Individual) float64 {
	max := 0.0
	for _, ind := range population {
		if ind.Fitness > max {
			max = ind.Fitness
		}
	}
	return max
}

// AvgFitness returns the mean fitness. The population must be non-empty.
func AvgFitness(population []Individual) float64 {
	total := 0.0
	for _, ind := range population {
		total += ind.Fitness
	}
	return total / float64(len(population))
}

// Shuffle returns the population in a uniformly random order. The individuals
// themselves are untouched; this is the randomization base for tournament
// selection and for migration culling.
func Shuffle(population []Individual, rng *rand.Rand) []Individual {
	shuffled := make([]Individual, len(population))
	copy(shuffled, population)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
