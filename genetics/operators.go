package genetics

import (
	"math/rand"

	"github.com/wildfauve/travelling-salesman/geometry"
)

// SelectParent performs tournament selection: it shuffles the population,
// takes the first tournamentSize distinct individuals and returns the fittest
// of the sample. Higher tournament sizes increase selection pressure.
func SelectParent(population []Individual, tournamentSize int, rng *rand.Rand) Individual {
	sample := Shuffle(population, rng)[:tournamentSize]
	return Fittest(sample, 0)
}

// Crossover produces one offspring via order-preserving crossover. The
// substring parent1[start..finish] (inclusive) is copied verbatim into the
// same positions of the offspring; the remaining positions are filled with
// parent2's genes in parent2 order, skipping genes the offspring already
// carries. Because parent2 is itself a permutation and duplicates are
// skipped, the offspring is always a permutation too.
func Crossover(parent1, parent2 Individual, start, finish int) Individual {
	size := len(parent1.Chromosome)
	offspring := make([]int, size)
	taken := make([]bool, size)
	filled := make([]bool, size)

	for i := start; i <= finish; i++ {
		gene := parent1.Chromosome[i]
		offspring[i] = gene
		taken[gene] = true
		filled[i] = true
	}

	slot := 0
	for _, gene := range parent2.Chromosome {
		if taken[gene] {
			continue
		}
		for filled[slot] {
			slot++
		}
		offspring[slot] = gene
		filled[slot] = true
	}

	return Individual{Chromosome: offspring}
}

// CrossoverPopulation applies crossover across the commoner part of a
// population. Each commoner is, with probability rate, replaced by the
// offspring of itself and a tournament-selected parent drawn from the
// combined elite+commoner pool, using a uniformly random normalized
// (start, finish) pair; otherwise it passes through unchanged. Elites are
// never replaced here, the worker reassembles them in front of the result.
func CrossoverPopulation(elites, commoners []Individual, rate float64, tournamentSize int, rng *rand.Rand) []Individual {
	pool := make([]Individual, 0, len(elites)+len(commoners))
	pool = append(pool, elites...)
	pool = append(pool, commoners...)

	next := make([]Individual, len(commoners))
	for i, commoner := range commoners {
		if rng.Float64() >= rate {
			next[i] = commoner
			continue
		}

		parent := SelectParent(pool, tournamentSize, rng)
		start := rng.Intn(len(commoner.Chromosome))
		finish := rng.Intn(len(commoner.Chromosome))
		if start > finish {
			start, finish = finish, start
		}
		next[i] = Crossover(commoner, parent, start, finish)
	}
	return next
}

// Mutate returns the individual with, with probability rate, one or more
// random position swaps applied. Once triggered, further swaps continue with
// probability rate, capped at the chromosome length so rate 1.0 still
// terminates. Swapping positions keeps the chromosome a permutation.
func Mutate(ind Individual, rate float64, rng *rand.Rand) Individual {
	if rng.Float64() >= rate {
		return ind
	}

	chromosome := cloneChromosome(ind)
	for swaps := 0; ; swaps++ {
		i := rng.Intn(len(chromosome))
		j := rng.Intn(len(chromosome))
		chromosome[i], chromosome[j] = chromosome[j], chromosome[i]
		if swaps+1 >= len(chromosome) || rng.Float64() >= rate {
			break
		}
	}
	return Individual{Chromosome: chromosome}
}

// MutateAdaptive mutates a population with per-individual rates scaled by
// relative fitness: the probability for an individual with fitness f becomes
// baseRate * (max-f)/(max-avg), so below-average tours mutate more and
// above-average tours mutate less. When every individual is equally fit
// (max == avg) or the individual is the current best (f == max) the ratio is
// clamped to 1 instead of dividing by zero.
func MutateAdaptive(population []Individual, baseRate float64, cities []geometry.City, rng *rand.Rand) ([]Individual, error) {
	evaluatedPop, err := Evaluate(population, cities)
	if err != nil {
		return nil, err
	}

	max := MaxFitness(evaluatedPop)
	avg := AvgFitness(evaluatedPop)

	mutated := make([]Individual, len(evaluatedPop))
	for i, ind := range evaluatedPop {
		ratio := 1.0
		if max != avg && ind.Fitness != max {
			ratio = (max - ind.Fitness) / (max - avg)
		}
		mutated[i] = Mutate(ind, baseRate*ratio, rng)
	}
	return mutated, nil
}
