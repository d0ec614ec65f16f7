package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/mmynk/roomledger/internal/cli"
	"github.com/mmynk/roomledger/internal/config"
	"github.com/mmynk/roomledger/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}

	app := &cli.App{Out: os.Stdout, Err: os.Stderr}
	flag.StringVar(&app.DBPath, "db", cfg.Database.Path, "Path to the ledger database")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn, error")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	app.Register(commander)

	flag.Parse()
	logging.Setup(*logLevel)
	os.Exit(int(commander.Execute(context.Background())))
}
