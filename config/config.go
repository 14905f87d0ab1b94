// Package config loads and validates the immutable run configuration passed
// into the master and every island at construction time.
package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/wildfauve/travelling-salesman/geometry"
)

// Config holds every recognized constant for a run. There is no runtime
// reconfiguration; the struct is built once and shared read-only.
type Config struct {
	// MinDistance is the target tour length. The first island whose best
	// tour is at or below it reports to the master and ends the run.
	MinDistance float64 `toml:"min_distance"`

	PopulationSize int     `toml:"population_size"`
	CrossoverRate  float64 `toml:"crossover_rate"`
	MutationRate   float64 `toml:"mutation_rate"`
	ElitismCount   int     `toml:"elitism_count"`
	TournamentSize int     `toml:"tournament_size"`

	// MigrationGap is the number of generations between elite migrations.
	MigrationGap int `toml:"migration_gap"`

	// Islands is the number of workers in the ring.
	Islands int `toml:"islands"`

	// RandomSeed makes runs reproducible; 0 seeds from the clock.
	RandomSeed int64 `toml:"random_seed"`

	// MonitorAddr enables the WebSocket progress hub when non-empty.
	MonitorAddr string `toml:"monitor_addr"`

	Cities []geometry.City `toml:"cities"`
}

// Default returns the baseline configuration; loaded files override it
// field by field.
func Default() Config {
	return Config{
		PopulationSize: 35,
		CrossoverRate:  0.8,
		MutationRate:   0.1,
		ElitismCount:   3,
		TournamentSize: 5,
		MigrationGap:   10,
		Islands:        4,
	}
}

// Load reads a TOML config file over the defaults and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	// Chromosome genes index the city table by position, so align positions
	// with the declared ids.
	sort.Slice(cfg.Cities, func(i, j int) bool { return cfg.Cities[i].ID < cfg.Cities[j].ID })
	return cfg, nil
}

// Validate enforces the startup preconditions. Violations are fatal; nothing
// here is retried or patched up at runtime.
func (c Config) Validate() error {
	if c.MinDistance <= 0 {
		return fmt.Errorf("min_distance must be positive, got %v", c.MinDistance)
	}
	if c.PopulationSize <= 0 {
		return fmt.Errorf("population_size must be positive, got %d", c.PopulationSize)
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		return fmt.Errorf("crossover_rate must be within [0,1], got %v", c.CrossoverRate)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("mutation_rate must be within [0,1], got %v", c.MutationRate)
	}
	if c.ElitismCount < 0 || c.ElitismCount >= c.PopulationSize {
		return fmt.Errorf("elitism_count must be within [0,%d), got %d", c.PopulationSize, c.ElitismCount)
	}
	if c.TournamentSize < 1 || c.TournamentSize > c.PopulationSize {
		return fmt.Errorf("tournament_size must be within [1,%d], got %d", c.PopulationSize, c.TournamentSize)
	}
	if c.MigrationGap < 1 {
		return fmt.Errorf("migration_gap must be at least 1, got %d", c.MigrationGap)
	}
	if c.Islands < 1 {
		return fmt.Errorf("islands must be at least 1, got %d", c.Islands)
	}
	if len(c.Cities) < 2 {
		return fmt.Errorf("at least 2 cities required, got %d", len(c.Cities))
	}
	seen := make([]bool, len(c.Cities))
	for i, city := range c.Cities {
		if city.ID < 0 || city.ID >= len(c.Cities) {
			return fmt.Errorf("cities[%d] id %d outside 0..%d", i, city.ID, len(c.Cities)-1)
		}
		if seen[city.ID] {
			return fmt.Errorf("duplicate city id %d", city.ID)
		}
		seen[city.ID] = true
	}
	return nil
}
