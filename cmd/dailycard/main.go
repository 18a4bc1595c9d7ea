// Command dailycard is the terminal front end: one card a day, swipe or
// page through today's ordering, save favorites.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/dailycard/internal/app"
	"github.com/abelbrown/dailycard/internal/config"
	"github.com/abelbrown/dailycard/internal/coord"
	"github.com/abelbrown/dailycard/internal/logging"
	"github.com/abelbrown/dailycard/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.dailycard/config.yaml)")
	flag.Parse()

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.Init(cfg.Log.Dir, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer logging.Close()

	svc, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open services: %v", err)
	}
	defer svc.Close()
	logging.Info("pool ready", "source", svc.PoolSource, "items", len(svc.Pool))

	ui.SetTheme(cfg.UI.Theme)
	pager := svc.NewPager()
	model := ui.NewApp(svc.UIDeps(pager))

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	program := tea.NewProgram(model, opts...)

	// Entitlement updates arrive from the config watcher goroutine; the UI
	// reads the snapshot and only needs a nudge.
	svc.Entitlement.Subscribe(func(paying bool) {
		logging.Info("entitlement changed", "paying", paying)
		program.Send(ui.EntitlementChanged{Paying: paying})
	})
	cfg.WatchPremium(svc.Entitlement.Set)

	// Create and start coordinator
	coordinator := coord.NewCoordinator(svc.Anchor, svc.Scheduler)
	coordinator.Start(ctx, program)

	// Run UI (blocks until quit)
	if _, err := program.Run(); err != nil {
		logging.Error("program exited", "error", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
	}

	// Graceful shutdown
	cancel()
	coordinator.Wait()
}
