// cmd/easeld/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	stlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bethropolis/easel/internal/config"
	"github.com/bethropolis/easel/internal/logger"
	"github.com/bethropolis/easel/internal/server"
	"github.com/bethropolis/easel/internal/store"
)

func main() {
	flags := config.NewFlags(flag.CommandLine)
	if _, err := flags.Parse(os.Args[1:]); err != nil {
		stlog.Fatalf("Error parsing flags: %v", err)
	}

	cfg, cfgErr := config.LoadConfig(*flags.ConfigFilePath, flags)

	out := os.Stderr
	if path := cfg.Logger.LogFilePath; path != "" && path != "-" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			stlog.Fatalf("Failed to open log file '%s': %v", path, err)
		}
		defer f.Close()
		out = f
	}
	logger.Init(cfg.Logger, out)
	if cfgErr != nil {
		logger.Warnf("Config: %v (using defaults)", cfgErr)
	}
	config.LogPendingWarnings()

	if err := run(cfg); err != nil {
		logger.Errorf("easeld: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if cfg.Store.Driver == config.DriverRemote {
		return fmt.Errorf("the server cannot use the %s store", config.DriverRemote)
	}
	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path, "")
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof("easeld: serving %s store on %s", cfg.Store.Driver, cfg.Server.Addr)
	return server.New(st).ListenAndServe(ctx, cfg.Server.Addr)
}
