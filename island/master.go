package island

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/wildfauve/travelling-salesman/config"
)

// Result is the outcome of a run: the first winning report plus how many
// stray late messages the master discarded afterwards.
type Result struct {
	Distance   float64
	Generation int
	Discarded  int
}

// Master bootstraps the worker ring, blocks for the first termination
// report, forcibly terminates every worker and drains its own mailbox of any
// late duplicate reports. Only the first report is honored.
type Master struct {
	cfg    config.Config
	obs    Observer
	handle *Handle
	log    zerolog.Logger
}

// NewMaster builds the coordinator. The master's mailbox holds one slot per
// island so simultaneous winners never block on reporting.
func NewMaster(cfg config.Config, obs Observer, logger zerolog.Logger) *Master {
	return &Master{
		cfg:    cfg,
		obs:    obs,
		handle: NewHandle(-1, cfg.Islands),
		log:    logger.With().Str("role", "master").Logger(),
	}
}

// SpawnWorkers creates one mailbox handle per island in stable index order
// and launches a goroutine per worker. The returned WaitGroup completes once
// every worker goroutine has exited.
func SpawnWorkers(ctx context.Context, cfg config.Config, obs Observer, logger zerolog.Logger) ([]*Handle, *sync.WaitGroup) {
	handles := make([]*Handle, cfg.Islands)
	for i := range handles {
		handles[i] = NewHandle(i, workerMailboxCapacity)
	}

	wg := &sync.WaitGroup{}
	for i := range handles {
		worker := NewWorker(i, handles[i], cfg, obs, logger)
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			if err := w.Run(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					w.log.Debug().Msg("island terminated")
					return
				}
				w.log.Error().Err(err).Msg("island crashed")
			}
		}(worker)
	}
	return handles, wg
}

// Run executes one full search: spawn the ring, broadcast the neighbor
// setup, block for the first winning report, kill everything, drain.
func (m *Master) Run(ctx context.Context) (Result, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	handles, workers := SpawnWorkers(runCtx, m.cfg, m.obs, m.log)

	setup := NeighborSetup{Workers: handles, Master: m.handle}
	for _, h := range handles {
		if err := h.Send(runCtx, setup); err != nil {
			return Result{}, err
		}
	}
	m.log.Info().Int("islands", len(handles)).Msg("ring started")

	msg, err := m.handle.Receive(ctx)
	if err != nil {
		return Result{}, err
	}
	report, ok := msg.(TerminationReport)
	if !ok {
		return Result{}, fmt.Errorf("master: unexpected %T while awaiting termination report", msg)
	}

	// First report wins. Kill the ring, wait for the goroutines to unwind,
	// then throw away whatever late reports were already buffered.
	cancel()
	workers.Wait()
	discarded := m.handle.Drain()

	m.log.Info().
		Float64("distance", report.Distance).
		Int("generation", report.Generation).
		Int("late_messages", discarded).
		Msg("search finished")

	return Result{
		Distance:   report.Distance,
		Generation: report.Generation,
		Discarded:  discarded,
	}, nil
}
