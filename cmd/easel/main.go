// cmd/easel/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	stlog "log" // Standard log for fatal errors before the logger is ready
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bethropolis/easel/internal/app"
	"github.com/bethropolis/easel/internal/config"
	"github.com/bethropolis/easel/internal/logger"
	"github.com/bethropolis/easel/internal/store"
)

const version = "0.1.0"

func main() {
	// --- Argument & Flag Parsing ---
	flags := config.NewFlags(flag.CommandLine)
	projectID := flag.String("project", "", "Project ID to open (default: most recent, or a new project)")
	args, err := flags.Parse(os.Args[1:])
	if err != nil {
		stlog.Fatalf("Error parsing flags: %v", err)
	}
	if *flags.Version {
		fmt.Printf("%s %s\n", config.AppName, version)
		return
	}
	if *projectID == "" && len(args) > 0 {
		*projectID = args[0]
	}

	cfg, cfgErr := config.LoadConfig(*flags.ConfigFilePath, flags)

	// --- Logger Initialization ---
	// The TUI owns the terminal, so logs always go to a file.
	logPath := cfg.Logger.LogFilePath
	if logPath == "" || logPath == "-" {
		logPath = defaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		stlog.Fatalf("Failed to create log directory: %v", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		stlog.Fatalf("Failed to open log file '%s': %v", logPath, err)
	}
	defer logFile.Close()
	logger.Init(cfg.Logger, logFile)

	logger.Infof("Starting %s %s...", config.AppName, version)
	if cfgErr != nil {
		logger.Warnf("Config: %v (using defaults)", cfgErr)
	}
	config.LogPendingWarnings()
	logger.Debugf("Store: %s", cfg.Store.Driver)

	if err := run(cfg, *projectID); err != nil {
		logger.Errorf("Application exited with error: %v", err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
		os.Exit(1)
	}
	logger.Infof("%s finished.", config.AppName)
}

func run(cfg *config.Config, projectID string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path, cfg.Store.URL)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}
	defer st.Close()

	easelApp, err := app.NewApp(ctx, app.Options{Config: cfg, Store: st, ProjectID: projectID})
	if err != nil {
		return err
	}
	return easelApp.Run(ctx)
}

func defaultLogPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return config.DefaultLogFileName
	}
	return filepath.Join(dir, config.AppName, config.DefaultLogFileName)
}
