// Package main is the entry point for farmplot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/samdwyer/farmplot/internal/game"
	"github.com/samdwyer/farmplot/internal/growth"
	"github.com/samdwyer/farmplot/internal/telemetry"
)

func main() {
	headless := flag.Bool("headless", false, "run the simulation without a terminal UI")
	steps := flag.Int("steps", 900, "number of fixed steps to simulate with -headless")
	flag.Parse()

	// Load .env file for local development
	// This makes HONEYCOMB_FARMPLOT_API_KEY available
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}

	// Set up OTEL environment variables from our .env variables
	setupOTelEnv()

	cfg, err := game.LoadConfig(os.LookupEnv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The terminal UI owns stdout, so logs go to a file.
	if !*headless {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	// Initialize telemetry
	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		log.Printf("Warning: telemetry setup failed: %v", err)
		log.Printf("Farm will run without observability")
		// Continue without telemetry - the simulation still works
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	g, err := game.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize farm: %v", err)
	}

	if *headless {
		if err := g.Simulate(ctx, *steps); err != nil {
			log.Fatalf("Simulation error: %v", err)
		}
		report(g)
		return
	}

	if err := g.Run(ctx); err != nil {
		log.Fatalf("Game error: %v", err)
	}
}

// report prints the end state of a headless run.
func report(g *game.Game) {
	counts := g.Growth().Registry().StageCounts()
	fmt.Printf("simulated %.1fs in %d steps\n", g.Elapsed(), g.Steps())
	for s := growth.StageSeed; s <= growth.StageTomatoLarge; s++ {
		fmt.Printf("  %-14s %d\n", s, counts[s])
	}
	fmt.Printf("  %-14s %d\n", "eaten", g.Forager().Eaten())
}

// setupOTelEnv configures OTEL environment variables from our custom env vars.
func setupOTelEnv() {
	// Always set endpoint to Honeycomb
	os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://api.honeycomb.io")

	apiKey := os.Getenv("HONEYCOMB_FARMPLOT_API_KEY")
	dataset := os.Getenv("HONEYCOMB_FARMPLOT_DATASET")
	if dataset == "" {
		dataset = "farmplot" // default dataset name
	}
	if apiKey != "" {
		os.Setenv("OTEL_EXPORTER_OTLP_HEADERS",
			fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", apiKey, dataset))
	}
}
