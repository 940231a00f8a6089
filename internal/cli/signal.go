package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// withInterrupt returns a context canceled on SIGINT or SIGTERM.
// A second signal falls through to the default handler and kills the process.
func withInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}
