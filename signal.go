package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// shutdownContext cancels the context of the running command on the first
// SIGINT/SIGTERM. The Box request in flight sees the cancellation and the
// command returns its error. A second signal exits immediately, which covers
// a local write that is stuck outside the request.
func shutdownContext(parent context.Context, logger *slog.Logger, command string) context.Context {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)

		var sig os.Signal

		select {
		case sig = <-sigCh:
		case <-ctx.Done():
			return
		}

		logger.Info("interrupted, canceling command",
			slog.String("command", command),
			slog.String("signal", sig.String()),
		)
		cancel()

		select {
		case sig = <-sigCh:
			logger.Warn("interrupted again, exiting",
				slog.String("command", command),
				slog.String("signal", sig.String()),
			)
			os.Exit(1)
		case <-parent.Done():
		}
	}()

	return ctx
}
