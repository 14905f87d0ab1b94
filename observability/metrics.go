package observability

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "islandtsp",
			Name:      "generations_total",
			Help:      "Generations evolved per island.",
		},
		[]string{"island"},
	)
	migrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "islandtsp",
			Name:      "migrations_total",
			Help:      "Completed migration handshakes per island.",
		},
		[]string{"island"},
	)
	bestDistance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "islandtsp",
			Name:      "best_distance",
			Help:      "Best tour distance seen so far per island.",
		},
		[]string{"island"},
	)
)

// RegisterMetrics registers the solver metrics with the default registry.
// Safe to call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(generations, migrations, bestDistance)
	})
}

// RecordGeneration counts one evolved generation and tracks the island's
// current best distance.
func RecordGeneration(island int, distance float64) {
	label := strconv.Itoa(island)
	generations.WithLabelValues(label).Inc()
	bestDistance.WithLabelValues(label).Set(distance)
}

// RecordMigration counts one completed migration handshake.
func RecordMigration(island int) {
	migrations.WithLabelValues(strconv.Itoa(island)).Inc()
}
