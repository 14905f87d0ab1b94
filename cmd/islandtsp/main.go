package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wildfauve/travelling-salesman/config"
	"github.com/wildfauve/travelling-salesman/island"
	"github.com/wildfauve/travelling-salesman/monitor"
	"github.com/wildfauve/travelling-salesman/observability"
)

func main() {
	configPath := flag.String("config", "islandtsp.toml", "path to the TOML configuration")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := observability.InitLogger("islandtsp")
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log.Info().
		Str("path", *configPath).
		Int("cities", len(cfg.Cities)).
		Int("islands", cfg.Islands).
		Float64("min_distance", cfg.MinDistance).
		Msg("loaded config")

	var obs island.Observer
	if cfg.MonitorAddr != "" {
		hub := monitor.NewHub(cfg.MonitorAddr, logger)
		hub.Start()
		defer hub.Stop(context.Background())
		obs = hub
	}

	master := island.NewMaster(cfg, obs, logger)
	result, err := master.Run(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("search failed")
	}

	fmt.Printf("shortest tour %.3f found at generation %d (%d late messages discarded)\n",
		result.Distance, result.Generation, result.Discarded)
}
