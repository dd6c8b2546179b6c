package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/forcemodel/forcesim-backend-go/internal/fixtures"
	"github.com/forcemodel/forcesim-backend-go/internal/scenario"
)

func main() {
	var (
		scenarioPath = flag.String("scenario", "", "path to a scenario YAML document (default: built-in demo)")
		days         = flag.Int("days", 365, "number of simulation days to run")
		seed         = flag.Int64("seed", 0, "seed override (0 keeps the scenario's seed)")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	var (
		sc  *scenario.Scenario
		err error
	)
	if *scenarioPath != "" {
		sc, err = scenario.LoadFile(*scenarioPath)
	} else {
		sc = fixtures.DefaultScenario()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "load scenario:", err)
		os.Exit(1)
	}
	if *seed != 0 {
		sc.Seed = *seed
	}

	engine, err := sc.Build(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build scenario:", err)
		os.Exit(1)
	}

	if err := engine.Advance(*days); err != nil {
		fmt.Fprintln(os.Stderr, "run:", err)
		os.Exit(1)
	}

	fmt.Printf("scenario %s seed %d: %d days complete (%s)\n",
		sc.Name, sc.Seed, engine.Day(), engine.Date().Format("2006-01-02"))
	fmt.Printf("population %d, retired %d, released %d, faults %d\n",
		engine.Population(), len(engine.Retired()), len(engine.Released()), len(engine.Faults()))

	for _, u := range engine.Units() {
		var fillRate, civPay float64
		if n := len(u.FillRate); n > 0 {
			fillRate = u.FillRate[n-1]
		}
		if n := len(u.CivPay); n > 0 {
			civPay = u.CivPay[n-1]
		}
		fmt.Printf("  %s %-28s roster %d/%d  fill %.2f  civpay %.2f/day  reloc %.2f\n",
			u.UIC, u.Name, len(u.Roster), len(u.TDA), fillRate, civPay, u.RelocationCosts)
	}

	for _, f := range engine.Faults() {
		fmt.Printf("  fault day %d: %s\n", f.Day, f.Message)
	}
}
