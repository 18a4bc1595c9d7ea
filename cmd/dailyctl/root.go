package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelbrown/dailycard/internal/app"
	"github.com/abelbrown/dailycard/internal/config"
	"github.com/abelbrown/dailycard/internal/logging"
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	logLevel   string
	date       string
	now        func() time.Time
}

func newRootCmd() *cobra.Command {
	opts := &options{now: time.Now}

	root := &cobra.Command{
		Use:   "dailyctl",
		Short: "Inspect and maintain dailycard's local state.",
		Long: `dailyctl reads the same configuration and store as the dailycard TUI.

Configuration lives in ~/.dailycard/config.yaml; every key can be overridden
with a DAILYCARD_ environment variable, e.g. DAILYCARD_STORE_BACKEND=badger.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.InitWriter(cmd.ErrOrStderr(), opts.logLevel)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is ~/.dailycard/config.yaml)")
	root.PersistentFlags().StringVarP(&opts.logLevel, "loglevel", "l", "warn", "Set log level. Available: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.date, "date", "", "act as if today were this date (YYYY-MM-DD)")

	root.AddCommand(
		newTodayCmd(opts),
		newOrderCmd(opts),
		newQuotaCmd(opts),
		newFavoritesCmd(opts),
		newPoolCmd(opts),
		newPremiumCmd(opts),
		newServeCmd(opts),
	)
	return root
}

// today resolves --date, defaulting to the wall clock.
func (o *options) today() (time.Time, error) {
	if o.date == "" {
		return o.now(), nil
	}
	d, err := time.ParseInLocation("2006-01-02", o.date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: %w", o.date, err)
	}
	return d.Add(12 * time.Hour), nil
}

// open loads config and services on the --date clock. The caller closes
// the services.
func (o *options) open(cmd *cobra.Command) (*app.Services, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	now, err := o.today()
	if err != nil {
		return nil, err
	}
	clock := o.now
	if o.date != "" {
		clock = func() time.Time { return now }
	}
	return app.OpenAt(cmd.Context(), cfg, clock)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
