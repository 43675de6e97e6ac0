package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/trebuchet-org/flashops/internal/cli"
	"github.com/trebuchet-org/flashops/internal/cli/render"
	"github.com/trebuchet-org/flashops/internal/config"
)

// Set via -ldflags "-X main.version=... -X main.commit=... -X main.date=..."
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	config.SetBuildFlags(version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		render.RenderError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
