package island

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/wildfauve/travelling-salesman/config"
	"github.com/wildfauve/travelling-salesman/genetics"
	"github.com/wildfauve/travelling-salesman/observability"
)

// workerMailboxCapacity bounds a worker's inbox. At most one setup message
// plus one in-flight elite batch per neighbor direction is ever queued, so a
// small constant is plenty.
const workerMailboxCapacity = 8

// Observer receives per-generation progress. Implementations must not block;
// the evolution loop calls it synchronously.
type Observer interface {
	ObserveGeneration(island, generation int, bestDistance float64)
}

// Worker is one island. It owns its population exclusively and talks to the
// rest of the system only through mailboxes: it blocks once at startup for
// the neighbor setup, and during migration rendezvous for exactly one elite
// batch per ring neighbor.
type Worker struct {
	id     int
	handle *Handle
	cfg    config.Config
	rng    *rand.Rand
	obs    Observer
	log    zerolog.Logger
}

// state is the full loop-carried island state. It is created at setup,
// mutated only by the owning worker's step function and dropped on
// termination.
type state struct {
	population   []genetics.Individual
	neighbors    []*Handle
	master       *Handle
	generation   int
	bestDistance float64
}

// NewWorker builds an island around an existing mailbox handle. The worker's
// RNG stream is derived from the configured seed and the spawn index so
// islands explore independently but reproducibly.
func NewWorker(id int, handle *Handle, cfg config.Config, obs Observer, logger zerolog.Logger) *Worker {
	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Worker{
		id:     id,
		handle: handle,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed + int64(id))),
		obs:    obs,
		log:    logger.With().Int("island", id).Logger(),
	}
}

// Run drives the worker through its lifecycle: await the neighbor setup,
// then evolve generation by generation until the target distance is reached
// or the master cancels the context. Any unexpected message is fatal for
// this worker; there is no supervision and no restart.
func (w *Worker) Run(ctx context.Context) error {
	st, err := w.awaitNeighbors(ctx)
	if err != nil {
		return err
	}

	w.log.Debug().
		Int("neighbors", len(st.neighbors)).
		Float64("best_distance", st.bestDistance).
		Msg("island evolving")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		done, err := w.step(ctx, st)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// awaitNeighbors blocks for the NeighborSetup message, derives the ring
// neighbors from the worker's spawn index and builds the initial evaluated
// population.
func (w *Worker) awaitNeighbors(ctx context.Context) (*state, error) {
	msg, err := w.handle.Receive(ctx)
	if err != nil {
		return nil, err
	}
	setup, ok := msg.(NeighborSetup)
	if !ok {
		return nil, fmt.Errorf("island %d: unexpected %T while awaiting neighbor setup", w.id, msg)
	}

	population := genetics.NewRandomPopulation(w.cfg.PopulationSize, len(w.cfg.Cities), w.rng)
	population, err = genetics.Evaluate(population, w.cfg.Cities)
	if err != nil {
		return nil, fmt.Errorf("island %d: %w", w.id, err)
	}

	return &state{
		population:   population,
		neighbors:    RingNeighbors(setup.Workers, w.id),
		master:       setup.Master,
		bestDistance: 1 / genetics.MaxFitness(population),
	}, nil
}

// step advances the island by one generation. It returns done=true after the
// termination report has been sent; the worker sends nothing further.
func (w *Worker) step(ctx context.Context, st *state) (bool, error) {
	if st.bestDistance <= w.cfg.MinDistance {
		report := TerminationReport{Distance: st.bestDistance, Generation: st.generation}
		if err := st.master.Send(ctx, report); err != nil {
			return false, err
		}
		w.log.Info().
			Float64("distance", st.bestDistance).
			Int("generation", st.generation).
			Msg("target distance reached")
		return true, nil
	}

	sorted := genetics.SortDescending(st.population)
	elites := sorted[:w.cfg.ElitismCount]
	commoners := sorted[w.cfg.ElitismCount:]

	remainder := genetics.CrossoverPopulation(elites, commoners, w.cfg.CrossoverRate, w.cfg.TournamentSize, w.rng)
	remainder, err := genetics.MutateAdaptive(remainder, w.cfg.MutationRate, w.cfg.Cities, w.rng)
	if err != nil {
		return false, fmt.Errorf("island %d: %w", w.id, err)
	}

	if st.generation%w.cfg.MigrationGap == 0 && len(st.neighbors) > 0 {
		remainder, err = w.migrate(ctx, st, elites, remainder)
		if err != nil {
			return false, err
		}
	}

	population := make([]genetics.Individual, 0, w.cfg.PopulationSize)
	population = append(population, elites...)
	population = append(population, remainder...)
	population, err = genetics.Evaluate(population, w.cfg.Cities)
	if err != nil {
		return false, fmt.Errorf("island %d: %w", w.id, err)
	}

	st.population = population
	st.bestDistance = 1 / genetics.MaxFitness(population)
	st.generation++

	observability.RecordGeneration(w.id, st.bestDistance)
	if w.obs != nil {
		w.obs.ObserveGeneration(w.id, st.generation, st.bestDistance)
	}
	return false, nil
}

// migrate performs the synchronous elite-migration handshake: send the
// current elite set to every ring neighbor, then block for exactly one elite
// batch from each neighbor (arrival order is irrelevant, only the count
// matters). Received elites are merged with the remainder, the combined set
// is shuffled and truncated back to the remainder's cardinality, so the
// culling is random rather than fitness-biased. There is no timeout: a
// neighbor that already terminated leaves this worker blocked until the
// master's kill cancels the context.
func (w *Worker) migrate(ctx context.Context, st *state, elites, remainder []genetics.Individual) ([]genetics.Individual, error) {
	batch := EliteBatch{From: w.id, Elites: elites}
	for _, neighbor := range st.neighbors {
		if err := neighbor.Send(ctx, batch); err != nil {
			return nil, err
		}
	}

	merged := make([]genetics.Individual, len(remainder), len(remainder)+len(st.neighbors)*len(elites))
	copy(merged, remainder)
	for range st.neighbors {
		msg, err := w.handle.Receive(ctx)
		if err != nil {
			return nil, err
		}
		incoming, ok := msg.(EliteBatch)
		if !ok {
			return nil, fmt.Errorf("island %d: unexpected %T during migration handshake", w.id, msg)
		}
		merged = append(merged, incoming.Elites...)
	}

	observability.RecordMigration(w.id)
	w.log.Debug().
		Int("generation", st.generation).
		Int("immigrants", len(merged)-len(remainder)).
		Msg("migration complete")

	return genetics.Shuffle(merged, w.rng)[:len(remainder)], nil
}
