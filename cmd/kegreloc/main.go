package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/crimsonvanitas/brew/internal/cli"
	"github.com/crimsonvanitas/brew/pkg/report"
)

func main() {
	// An interrupt cancels the run; files already being patched still get
	// their permissions restored before the command returns.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := cli.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		report.RenderError(os.Stderr, "auto", err)
		os.Exit(1)
	}
}
