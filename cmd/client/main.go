package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	clientapi "github.com/electrosoft/authd/internal/client/api"
	"github.com/electrosoft/authd/internal/client/cli"
	"github.com/electrosoft/authd/internal/client/iocli"
	"github.com/electrosoft/authd/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	flags := flag.NewFlagSet("authctl", flag.ExitOnError)
	serverURL := flags.String("server", "http://localhost:8080", "server URL")
	dbPath := flags.String("db", "authctl.db", "path to local session database")
	showVersion := flags.Bool("version", false, "show version information")

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	if *showVersion {
		printVersion()
		return
	}

	io := iocli.NewStdio()
	apiClient := clientapi.NewClient(*serverURL)

	args := flags.Args()
	if len(args) == 0 {
		cli.New(apiClient, nil, io).PrintUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	sessions, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = sessions.Close()
	}()

	c := cli.New(apiClient, sessions, io)
	if err := c.Run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("ElectroSoft Auth Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
