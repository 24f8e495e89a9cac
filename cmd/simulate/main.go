package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/upright/internal/simulator"
	"github.com/okian/upright/pkg/logger"
)

func main() {
	url := flag.String("url", "http://localhost:8000", "base URL of the service")
	events := flag.Int("events", 100, "number of events to submit")
	batch := flag.Int("batch", 5, "events per submission")
	interval := flag.Duration("interval", time.Second, "pause between batches")
	timeout := flag.Duration("timeout", 30*time.Second, "HTTP request timeout")
	device := flag.String("device", "simulator", "device id reported with the session")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := simulator.NewRunner(simulator.Config{
		BaseURL:   *url,
		Events:    *events,
		BatchSize: *batch,
		Interval:  *interval,
		Timeout:   *timeout,
		DeviceID:  *device,
	}, simulator.WithLogger(log.Named("simulator")))

	if _, err := runner.Run(ctx); err != nil {
		log.Error(ctx, "simulation failed", logger.Error(err))
		os.Exit(1)
	}
}
