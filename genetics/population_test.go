package genetics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfauve/travelling-salesman/geometry"
)

func squareCities() []geometry.City {
	return []geometry.City{
		{ID: 0, X: 0, Y: 0},
		{ID: 1, X: 0, Y: 10},
		{ID: 2, X: 10, Y: 10},
		{ID: 3, X: 10, Y: 0},
	}
}

// isPermutation reports whether the chromosome contains each index 0..n-1
// exactly once.
func isPermutation(t *testing.T, chromosome []int) bool {
	t.Helper()
	seen := make([]bool, len(chromosome))
	for _, gene := range chromosome {
		if gene < 0 || gene >= len(chromosome) || seen[gene] {
			return false
		}
		seen[gene] = true
	}
	return true
}

func TestNewRandomIndividual(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 100; i++ {
		ind := NewRandomIndividual(12, rng)
		require.Len(t, ind.Chromosome, 12)
		assert.True(t, isPermutation(t, ind.Chromosome))
		assert.Zero(t, ind.Fitness, "fitness stays unevaluated until Evaluate")
	}
}

func TestNewRandomPopulation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	population := NewRandomPopulation(35, 8, rng)

	require.Len(t, population, 35)
	for _, ind := range population {
		assert.True(t, isPermutation(t, ind.Chromosome))
	}
}

func TestEvaluateSquareTour(t *testing.T) {
	population := []Individual{{Chromosome: []int{0, 1, 2, 3}}}

	evaluated, err := Evaluate(population, squareCities())
	require.NoError(t, err)
	require.Len(t, evaluated, 1)
	// Tour distance 40.0 gives fitness 0.025.
	assert.InDelta(t, 0.025, evaluated[0].Fitness, 1e-12)
}

func TestEvaluatePreservesOrderAndCardinality(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	population := NewRandomPopulation(10, 4, rng)

	evaluated, err := Evaluate(population, squareCities())
	require.NoError(t, err)
	require.Len(t, evaluated, 10)
	for i := range population {
		assert.Equal(t, population[i].Chromosome, evaluated[i].Chromosome)
		assert.Positive(t, evaluated[i].Fitness)
	}
}

func TestEvaluateZeroDistanceGuard(t *testing.T) {
	// Two cities at the same point make every tour zero-length; the
	// fitness reciprocal must be guarded, not become +Inf.
	cities := []geometry.City{{ID: 0, X: 5, Y: 5}, {ID: 1, X: 5, Y: 5}}
	population := []Individual{{Chromosome: []int{0, 1}}}

	_, err := Evaluate(population, cities)
	assert.ErrorIs(t, err, ErrZeroDistance)
}

func TestEvaluateSizeMismatch(t *testing.T) {
	population := []Individual{{Chromosome: []int{0, 1, 2}}}

	_, err := Evaluate(population, squareCities())
	assert.ErrorIs(t, err, geometry.ErrTourSizeMismatch)
}

func TestFitnessMonotonicity(t *testing.T) {
	// Shorter tour must score strictly higher fitness.
	population := []Individual{
		{Chromosome: []int{0, 1, 2, 3}}, // perimeter, distance 40
		{Chromosome: []int{0, 1, 3, 2}}, // diagonal crossing, distance ~48.28
	}

	evaluated, err := Evaluate(population, squareCities())
	require.NoError(t, err)
	assert.Greater(t, evaluated[0].Fitness, evaluated[1].Fitness)
}

func TestSortDescending(t *testing.T) {
	population := []Individual{
		{Chromosome: []int{0}, Fitness: 0.2},
		{Chromosome: []int{1}, Fitness: 0.9},
		{Chromosome: []int{2}, Fitness: 0.5},
	}

	sorted := SortDescending(population)

	assert.Equal(t, []int{1}, sorted[0].Chromosome)
	assert.Equal(t, []int{2}, sorted[1].Chromosome)
	assert.Equal(t, []int{0}, sorted[2].Chromosome)
	// Non-mutating: the input keeps its order.
	assert.Equal(t, []int{0}, population[0].Chromosome)
}

func TestSortDescendingStableOnTies(t *testing.T) {
	population := []Individual{
		{Chromosome: []int{0}, Fitness: 0.5},
		{Chromosome: []int{1}, Fitness: 0.5},
		{Chromosome: []int{2}, Fitness: 0.5},
	}

	sorted := SortDescending(population)
	for i := range population {
		assert.Equal(t, population[i].Chromosome, sorted[i].Chromosome)
	}
}

func TestFittest(t *testing.T) {
	population := []Individual{
		{Chromosome: []int{0}, Fitness: 0.2},
		{Chromosome: []int{1}, Fitness: 0.9},
		{Chromosome: []int{2}, Fitness: 0.5},
	}

	assert.Equal(t, []int{1}, Fittest(population, 0).Chromosome)
	assert.Equal(t, []int{2}, Fittest(population, 1).Chromosome)
	assert.Equal(t, []int{0}, Fittest(population, 2).Chromosome)
}

func TestMaxAndAvgFitness(t *testing.T) {
	population := []Individual{
		{Fitness: 0.2},
		{Fitness: 0.9},
		{Fitness: 0.4},
	}

	assert.Equal(t, 0.9, MaxFitness(population))
	assert.InDelta(t, 0.5, AvgFitness(population), 1e-12)
}

func TestShufflePreservesMembers(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	population := make([]Individual, 20)
	for i := range population {
		population[i] = Individual{Chromosome: []int{i}, Fitness: float64(i)}
	}

	shuffled := Shuffle(population, rng)

	require.Len(t, shuffled, 20)
	seen := make(map[int]bool)
	for _, ind := range shuffled {
		seen[ind.Chromosome[0]] = true
	}
	assert.Len(t, seen, 20, "shuffle must keep every member exactly once")
	// Individuals untouched, only the order changes.
	assert.Equal(t, []int{0}, population[0].Chromosome)
}

func TestRandomPopulationAverageDistance(t *testing.T) {
	// Regression baseline: on the 10x10 square the three distinct closed
	// tours have lengths 40, 20+20*sqrt(2) and 20+20*sqrt(2), so a uniform
	// random tour averages (80+40*sqrt(2))/3 ~ 45.52. Populations of 35
	// random permutations over many trials must converge close to that.
	cities := squareCities()
	reference := (80 + 40*math.Sqrt2) / 3

	rng := rand.New(rand.NewSource(42))
	total := 0.0
	samples := 0
	for trial := 0; trial < 200; trial++ {
		population := NewRandomPopulation(35, len(cities), rng)
		evaluated, err := Evaluate(population, cities)
		require.NoError(t, err)
		for _, ind := range evaluated {
			total += 1 / ind.Fitness
			samples++
		}
	}

	assert.InDelta(t, reference, total/float64(samples), 1.0)
}
