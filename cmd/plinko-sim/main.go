package main

import (
	"flag"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/playmatatu/plinko/internal/config"
	"github.com/playmatatu/plinko/internal/game"
	"github.com/playmatatu/plinko/internal/sim"
)

func main() {
	drops := flag.Int("drops", 1000, "number of balls to drop")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	width := flag.Float64("width", 1024, "viewport width")
	height := flag.Float64("height", 900, "viewport height")
	bet := flag.String("bet", "300", "wager entered for every drop")
	tuning := flag.String("tuning", "", "optional YAML tuning file")
	flag.Parse()

	// Game settings come from the same environment as the server.
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	config.SetupLogging(cfg)
	if *tuning != "" {
		cfg.TuningFile = *tuning
	}

	rules, err := cfg.Rules()
	if err != nil {
		log.WithError(err).Fatal("Failed to load game rules")
	}

	report := sim.Run(sim.Options{
		Drops:    *drops,
		Seed:     *seed,
		Viewport: game.Viewport{Width: *width, Height: *height},
		Bet:      *bet,
		TickRate: cfg.TickRateHz,
		Rules:    rules,
	})
	log.WithField("seed", *seed).Debug("simulation finished")

	sim.Print(os.Stdout, report)
	if report.ReconcileErr != nil {
		os.Exit(1)
	}
}
