package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/havenhealth/ops-engine/internal/logger"
	"github.com/havenhealth/ops-engine/internal/simulator"
	"github.com/havenhealth/ops-engine/pkg/validation"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	port := flag.Int("port", 9000, "simulator server port")
	logLevel := flag.String("log-level", "info", "log level")
	stations := flag.Int("stations", 3, "number of oxygen stations")
	beds := flag.Int("beds", 120, "total bed count")
	flag.Parse()

	if err := validation.ValidateBedCount(*beds); err != nil {
		return err
	}

	logger.Setup(*logLevel, "development")
	logger.Info("Starting hospital telemetry simulator")

	sim := simulator.New(simulator.Config{
		Port: *port,
		Hospital: simulator.HospitalSimConfig{
			Stations:  *stations,
			TotalBeds: *beds,
		},
	})

	if err := sim.Start(); err != nil {
		return fmt.Errorf("failed to start simulator: %w", err)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down simulator")
	return sim.Stop()
}
