package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler creates a context that is canceled on SIGINT or
// SIGTERM so the daemon can drain its current sweep and stop the admin
// server. A second signal exits immediately without waiting for graceful
// shutdown.
func SetupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
		<-sigChan
		os.Exit(1)
	}()

	return ctx
}
