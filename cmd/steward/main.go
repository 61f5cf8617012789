// Command steward runs the external policy steward. It observes a running
// ussim process, triages the economy and proposes at most one catalog
// policy per cycle through the admin API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talgya/usa-sim/internal/config"
	"github.com/talgya/usa-sim/internal/steward"
)

type stewardConfig struct {
	APIURL     string        `env:"USSIM_API_URL" envDefault:"http://localhost:8080"`
	AdminKey   string        `env:"USSIM_ADMIN_KEY,required"`
	Interval   time.Duration `env:"USSIM_STEWARD_INTERVAL" envDefault:"1m"`
	MemoryPath string        `env:"USSIM_STEWARD_MEMORY" envDefault:"steward_memory.json"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var cfg stewardConfig
	if err := config.ParseEnv(&cfg); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("policy steward starting", "api_url", cfg.APIURL, "interval", cfg.Interval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := &steward.Steward{
		Observer: steward.NewObserver(cfg.APIURL),
		Actor:    steward.NewActor(cfg.APIURL, cfg.AdminKey),
		Memory:   steward.LoadMemory(cfg.MemoryPath),
	}

	slog.Info("waiting for simulation API...")
	if !waitForAPI(ctx, s.Observer) {
		slog.Error("simulation API did not become ready")
		os.Exit(1)
	}

	runCycle(ctx, s, cfg.MemoryPath)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			runCycle(ctx, s, cfg.MemoryPath)
		case <-ctx.Done():
			slog.Info("shutting down")
			fmt.Println("Steward stopped.")
			return
		}
	}
}

func runCycle(ctx context.Context, s *steward.Steward, memoryPath string) {
	if _, err := s.RunCycle(ctx); err != nil {
		slog.Error("steward cycle failed", "error", err)
		return
	}
	s.Memory.Save(memoryPath)
}

// waitForAPI polls the snapshot endpoint with exponential backoff until it
// responds. Gives up after 5 minutes.
func waitForAPI(ctx context.Context, o *steward.Observer) bool {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(5 * time.Minute)

	for {
		if o.Ready(ctx) {
			slog.Info("simulation API is ready")
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		slog.Info("simulation not ready, retrying...", "backoff", backoff)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}
