package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/abelbrown/dailycard/internal/config"
	"github.com/abelbrown/dailycard/internal/model"
)

func newTodayCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Print today's card and refresh the shared copy widgets read.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			now := svc.Now()
			svc.Anchor.Sync(now)
			item, ok := svc.Anchor.Resolve(now)
			if !ok {
				return fmt.Errorf("no card for %s: the pool is empty", now.Format("2006-01-02"))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]string{
					"id":       item.ID,
					"text":     item.Text,
					"author":   item.Author,
					"category": item.CategoryOr(""),
				})
			}
			fmt.Fprintf(out, "“%s”\n  — %s\n", item.Text, item.Author)
			if c := item.CategoryOr(""); c != "" {
				fmt.Fprintf(out, "  [%s]\n", c)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newOrderCmd(opts *options) *cobra.Command {
	var premium, free bool
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Print the day's ordering, anchor first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			if premium && free {
				return fmt.Errorf("--premium and --free are mutually exclusive")
			}
			paying := svc.Entitlement.IsPaying()
			switch {
			case premium:
				paying = true
			case free:
				paying = false
			}
			limits := svc.Config.Limits
			limit := limits.FreeCap
			if paying {
				limit = limits.PremiumCap
			}

			now := svc.Now()
			order := svc.Scheduler.Ordering(now, limit)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  day %d  pool %d (%s)  plan %s\n\n",
				now.Format("2006-01-02"), svc.Scheduler.DaySeed(now), svc.Scheduler.Size(), svc.PoolSource, planName(paying))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "POS\tINDEX\tAUTHOR\tTEXT")
			for pos, idx := range order {
				item, _ := svc.Scheduler.Item(idx)
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", pos, idx, item.Author, clip(item.Text, 60))
			}
			if paying && len(order) >= limits.PremiumCap {
				fmt.Fprintf(w, "%d\t-\t\t(end of collection)\n", len(order))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&premium, "premium", false, "show the premium ordering")
	cmd.Flags().BoolVar(&free, "free", false, "show the free ordering")
	return cmd
}

func newQuotaCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Print views used and left today.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			now := svc.Now()
			paying := svc.Entitlement.IsPaying()
			svc.Gate.ResetIfNeeded(now)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "plan:      %s\n", planName(paying))
			fmt.Fprintf(out, "used:      %d\n", svc.Gate.Count(now))
			fmt.Fprintf(out, "limit:     %d\n", svc.Gate.DailyLimit(paying))
			fmt.Fprintf(out, "remaining: %d\n", svc.Gate.Remaining(now, paying))
			return nil
		},
	}
}

func newFavoritesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List saved cards.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			items := svc.Favorites.Items()
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No favorites yet.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tAUTHOR\tTEXT")
			for _, it := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\n", it.ID, it.Author, clip(it.Text, 60))
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove saved cards by ID.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			for _, id := range args {
				item := model.Item{ID: id}
				if !svc.Favorites.IsFavorite(item) {
					fmt.Fprintf(cmd.ErrOrStderr(), "not saved: %s\n", id)
					continue
				}
				svc.Favorites.Remove(item)
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every saved card.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			items := svc.Favorites.Items()
			for _, it := range items {
				svc.Favorites.Remove(it)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d favorites\n", len(items))
			return nil
		},
	})
	return cmd
}

func newPoolCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Inspect the content pool.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "INDEX\tCATEGORY\tAUTHOR\tTEXT")
			for i, it := range svc.Pool {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, it.CategoryOr("-"), it.Author, clip(it.Text, 60))
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "fetch",
		Short: "Load the day's pool and report which source it came from.",
		Long: `Remote sources are asked once per calendar day. Later runs on the same
day report the cached pool so the day's ordering never changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "source: %s\nitems:  %d\n", svc.PoolSource, len(svc.Pool))
			return nil
		},
	})
	return cmd
}

func newPremiumCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "premium on|off",
		Short:     "Turn the local premium entitlement on or off. A running TUI picks it up.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var on bool
			switch strings.ToLower(args[0]) {
			case "on", "true", "yes":
				on = true
			case "off", "false", "no":
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			created := !exists(cfg.Path())
			cfg.Entitlement.Premium = on
			if err := cfg.Save(); err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", cfg.Path())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "plan: %s\n", planName(on))
			return nil
		},
	}
}

func planName(paying bool) string {
	if paying {
		return "premium"
	}
	return "free"
}

// clip shortens s to n display cells.
func clip(s string, n int) string {
	return runewidth.Truncate(s, n, "…")
}
