/*
Command stockwatch runs the watchlist web server and its maintenance tasks.

	stockwatch [serve]        start the HTTP server (default)
	stockwatch migrate        apply database migrations and exit
	stockwatch quote -symbol  fetch one quote with the configured source
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"

	"stockwatch/internal/configs"
	"stockwatch/internal/pkg/logx"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&serveCmd{}, "")
	commander.Register(&migrateCmd{}, "")
	commander.Register(&quoteCmd{}, "")

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

// loadConfig reads the configuration and sets up the global logger.
func loadConfig() (*configs.AppConfig, bool) {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		return nil, false
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	return cfg, true
}
