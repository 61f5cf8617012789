// Command ussim runs the US political and economic simulation in real time
// behind an HTTP control plane.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/usa-sim/internal/api"
	"github.com/talgya/usa-sim/internal/catalog"
	"github.com/talgya/usa-sim/internal/config"
	"github.com/talgya/usa-sim/internal/engine"
	"github.com/talgya/usa-sim/internal/metrics"
	"github.com/talgya/usa-sim/internal/persistence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(logger)

	slog.Info("US political simulation starting",
		"store", cfg.StoreDriver,
		"tick", cfg.TickInterval,
		"speed", cfg.Speed,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Save store ────────────────────────────────────────────────────
	if cfg.StoreDriver == persistence.DriverSQLite {
		os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755)
	}
	store, err := persistence.Open(ctx, persistence.Options{
		Driver:     cfg.StoreDriver,
		SQLitePath: cfg.SQLitePath,
		S3: persistence.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Prefix:    cfg.S3Prefix,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		},
	})
	if err != nil {
		slog.Error("failed to open save store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// ── Load or create the simulation ────────────────────────────────
	us := restore(ctx, cfg, store)
	if us == nil {
		if cfg.Unseeded {
			us = engine.NewDefaultUnseeded()
		} else {
			us = engine.NewDefault(cfg.Seed)
		}
		slog.Info("new simulation", "seed", cfg.Seed, "unseeded", cfg.Unseeded)
	}

	var cat *catalog.Catalog
	if cfg.CatalogPath != "" {
		cat, err = catalog.Load(cfg.CatalogPath)
		if err != nil {
			slog.Error("failed to load catalog", "path", cfg.CatalogPath, "error", err)
			os.Exit(1)
		}
		if err := cat.RegisterAll(us.Events); err != nil {
			slog.Error("failed to register catalog", "error", err)
			os.Exit(1)
		}
	}

	collector := metrics.New()
	us.Hooks = collector.Hooks()
	session := engine.NewSession(us)

	// ── Real-time driver ──────────────────────────────────────────────
	eng := engine.NewEngine(session, cfg.TickInterval)
	eng.SetSpeed(cfg.Speed)
	if cfg.AutosaveMonths > 0 {
		eng.OnMonth = func(months uint64) {
			if months%uint64(cfg.AutosaveMonths) == 0 {
				save(ctx, session, store, "autosave")
			}
		}
	}
	eng.OnYear = func(uint64) {
		snap := session.Snapshot(0)
		slog.Info("year complete",
			"date", snap.Time.Label,
			"revenue", "$"+humanize.Commaf(snap.Federal.Budget.Revenue)+"B",
			"spending", "$"+humanize.Commaf(snap.Federal.Budget.Spending)+"B",
		)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("USSIM_ADMIN_KEY not set; admin POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		Session:  session,
		Eng:      eng,
		Store:    store,
		Catalog:  cat,
		Metrics:  collector.Handler(),
		Port:     cfg.APIPort,
		AdminKey: cfg.AdminKey,
		Origins:  cfg.CORSOrigins,
		Limiter:  api.NewRateLimiter(cfg.RateLimit, time.Minute),
	}
	apiServer.Start()

	snap := session.Snapshot(0)
	fmt.Printf("\nSimulation running at %s across %d states.\n", snap.Time.Label, len(snap.States))
	fmt.Printf("API: http://localhost:%d/api/v1/snapshot\n", cfg.APIPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}

	// Final save on shutdown.
	slog.Info("final save...")
	save(shutdownCtx, session, store, "shutdown")
	fmt.Println("Simulation stopped. State saved.")
}

// restore resumes from the newest save when enabled. It returns nil when
// there is nothing usable to resume.
func restore(ctx context.Context, cfg config.Config, store persistence.Store) *engine.UnitedStates {
	if !cfg.Resume {
		return nil
	}
	info, err := store.Latest(ctx)
	if errors.Is(err, persistence.ErrNotFound) {
		slog.Info("no saved state found")
		return nil
	}
	if err != nil {
		slog.Error("failed to find latest save", "error", err)
		return nil
	}
	data, _, err := store.Load(ctx, info.ID)
	if err != nil {
		slog.Error("failed to load save", "id", info.ID, "error", err)
		return nil
	}
	us, err := engine.Unmarshal(data)
	if err != nil {
		slog.Warn("latest save rejected, starting fresh", "id", info.ID, "error", err)
		return nil
	}
	slog.Info("simulation restored",
		"id", info.ID,
		"name", info.Name,
		"date", engine.CalendarLabel(us.Year, us.Month),
		"size", humanize.Bytes(uint64(info.Size)),
	)
	return us
}

func save(ctx context.Context, session *engine.Session, store persistence.Store, name string) {
	rec, err := api.SessionRecord(session, name)
	if err != nil {
		slog.Error("marshal failed", "error", err)
		return
	}
	if _, err := store.Save(ctx, rec); err != nil {
		slog.Error("save failed", "name", name, "error", err)
	}
}
