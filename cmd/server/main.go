package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/electrosoft/authd/internal/server"
	"github.com/electrosoft/authd/internal/server/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if slices.Contains(os.Args[1:], "-version") || slices.Contains(os.Args[1:], "--version") {
		printVersion()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	ctx := context.Background()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		return err
	}

	return app.Run(ctx)
}

func printVersion() {
	fmt.Printf("ElectroSoft Auth Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
