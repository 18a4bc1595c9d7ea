// Command dailyctl inspects and maintains dailycard's local state and runs
// the widget server.
//
// Usage:
//
//	dailyctl today              Today's card (syncs the shared anchor)
//	dailyctl order              Today's ordering for the current plan
//	dailyctl quota              Views used and left today
//	dailyctl favorites          Saved cards
//	dailyctl pool fetch         Load the day's pool and name its source
//	dailyctl premium on|off     Flip the local entitlement
//	dailyctl serve              Widget server plus day watcher
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
