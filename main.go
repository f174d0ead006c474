// ./main.go
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sherifabdallah/easyapply/cmd"
)

// main is the entry point for the easyapply CLI.
func main() {
	// An interrupt stops the session after the current step; the flow's
	// cleanup paths still run.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx)
}
