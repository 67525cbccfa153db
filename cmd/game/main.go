package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Skirmish/internal/config"
	"github.com/Garsondee/Skirmish/internal/game"
	"github.com/Garsondee/Skirmish/internal/logging"
	"github.com/Garsondee/Skirmish/internal/match"
	"github.com/Garsondee/Skirmish/internal/scenario"
)

func main() {
	configPath := flag.String("config", "", "optional config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.New(cfg.Log.Level, os.Stderr)

	var sc *scenario.Scenario
	if cfg.Scenario != "" {
		if sc, err = scenario.Load(cfg.Scenario); err != nil {
			logger.Fatal().Err(err).Str("path", cfg.Scenario).Msg("load scenario")
		}
	}
	settings := match.Settings{
		Width:     cfg.Grid.Width,
		Height:    cfg.Grid.Height,
		Obstacles: cfg.Grid.Obstacles,
		Seed:      cfg.Seed,
		MaxRounds: cfg.Match.MaxRounds,
	}
	if sc != nil && settings.Seed == 0 {
		settings.Seed = sc.Seed
	}
	newMatch := func() *match.Match {
		opts := []match.Option{match.WithLogger(logger)}
		if sc != nil {
			w, err := sc.Build(logger)
			if err != nil {
				logger.Fatal().Err(err).Str("scenario", sc.Name).Msg("build scenario")
			}
			opts = append(opts, match.WithWorld(w))
		}
		return match.New(settings, opts...)
	}

	g := game.New(newMatch, cfg.UI.CellSize, logger)
	ebiten.SetWindowTitle("Skirmish")
	ebiten.SetWindowSize(g.Size())
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
