package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/dailycard/internal/app"
	"github.com/abelbrown/dailycard/internal/coord"
	"github.com/abelbrown/dailycard/internal/logging"
	"github.com/abelbrown/dailycard/internal/widget"
)

func newServeCmd(opts *options) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve today's card to widgets and keep it current across midnight.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			addr := svc.Config.Widget.Listen
			if listen != "" {
				addr = listen
			}

			server, coordinator := widgetStack(svc)

			g, ctx := errgroup.WithContext(cmd.Context())
			coordinator.Start(ctx, nil)
			g.Go(func() error {
				<-ctx.Done()
				coordinator.Wait()
				return nil
			})
			g.Go(func() error {
				return server.Run(ctx, addr)
			})

			fmt.Fprintf(cmd.OutOrStdout(), "serving today's card on http://%s/today\n", addr)
			if err := g.Wait(); err != nil && err != context.Canceled {
				logging.Error("serve stopped", "error", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from widget.listen)")
	return cmd
}

// widgetStack builds the widget server and the day watcher on the same
// clock, so --date moves both.
func widgetStack(svc *app.Services) (*widget.Server, *coord.Coordinator) {
	server := widget.New(svc.Store, svc.Anchor, svc.Now)
	coordinator := coord.NewCoordinatorWithClock(svc.Anchor, svc.Scheduler, svc.Now, 0)
	return server, coordinator
}
