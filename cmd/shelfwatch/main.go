package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfwatch/shelfwatch/internal/config"
	"github.com/shelfwatch/shelfwatch/internal/fetcher"
	"github.com/shelfwatch/shelfwatch/internal/input"
	"github.com/shelfwatch/shelfwatch/internal/run"
	"github.com/shelfwatch/shelfwatch/internal/snapshot"
)

var (
	cfgFile     string
	verbose     bool
	skuFile     string
	storeFile   string
	outputDir   string
	fetcherType string
	throttle    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shelfwatch",
		Short: "shelfwatch — per-store product snapshot scraper",
		Long: `shelfwatch sweeps a list of SKUs across a list of store locations,
extracts product facts (title, prices, availability) from the JSON payloads
embedded in each product page, and writes one snapshot document per store
per run.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// sweepCmd creates the "sweep" subcommand.
func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Sweep every store × SKU pair and write snapshots",
		RunE:  runSweep,
	}

	cmd.Flags().StringVar(&skuFile, "skus", "", "SKU list file (one per line)")
	cmd.Flags().StringVar(&storeFile, "stores", "", "store list JSON file")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "snapshot output directory")
	cmd.Flags().StringVar(&fetcherType, "fetcher", "", "fetcher type: http or browser")
	cmd.Flags().StringVar(&throttle, "throttle", "", "delay between product fetches (e.g. 1s)")

	return cmd
}

// runSweep executes the sweep command.
func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applyCLIOverrides(cfg); err != nil {
		return err
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(&cfg.Logging)

	// Inputs are validated up front: a malformed store or empty SKU list
	// aborts before the first fetch.
	skus, err := input.LoadSKUs(cfg.Run.SKUFile)
	if err != nil {
		return err
	}
	stores, err := input.LoadStores(cfg.Run.StoreFile)
	if err != nil {
		return err
	}

	logger.Info("starting sweep",
		"stores", len(stores),
		"skus", len(skus),
		"fetcher", cfg.Fetcher.Type,
		"throttle", cfg.Run.Throttle,
		"output", cfg.Storage.OutputDir,
	)

	f, err := fetcher.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer f.Close()

	writer, err := snapshot.New(&cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("create snapshot writer: %w", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("snapshot writer close error", "error", err)
		}
	}()

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down...", "signal", sig)
		cancel()
	}()

	runner := run.New(cfg, f, writer, logger)

	start := time.Now()
	if err := runner.Run(ctx, stores, skus); err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	elapsed := time.Since(start)

	stats := runner.Stats().Snapshot()
	logger.Info("sweep complete",
		"elapsed", elapsed,
		"checks", stats["checks_total"],
		"ok", stats["ok"],
		"out_of_stock", stats["out_of_stock"],
		"not_found", stats["not_found"],
		"blocked", stats["blocked"],
	)

	fmt.Printf("\nSweep complete in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("   Stores:       %v swept\n", stats["stores_swept"])
	fmt.Printf("   Checks:       %v total\n", stats["checks_total"])
	fmt.Printf("   ok:           %v\n", stats["ok"])
	fmt.Printf("   out_of_stock: %v\n", stats["out_of_stock"])
	fmt.Printf("   not_found:    %v\n", stats["not_found"])
	fmt.Printf("   blocked:      %v\n", stats["blocked"])
	fmt.Printf("   Output:       %s\n", cfg.Storage.OutputDir)

	return nil
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("shelfwatch %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Source:\n")
			fmt.Printf("  Product URL:     %s\n", cfg.Source.ProductURLTemplate)
			fmt.Printf("  Store URL:       %s\n", cfg.Source.StoreURLTemplate)
			fmt.Printf("  User Agents:     %d configured\n", len(cfg.Source.UserAgents))
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Type:            %s\n", cfg.Fetcher.Type)
			fmt.Printf("  Request Timeout: %s\n", cfg.Fetcher.RequestTimeout)
			fmt.Printf("  Max Retries:     %d\n", cfg.Fetcher.MaxRetries)
			fmt.Printf("\nExtract:\n")
			fmt.Printf("  Script ID:       %s\n", cfg.Extract.ScriptID)
			fmt.Printf("  State Marker:    %s\n", cfg.Extract.StateMarker)
			fmt.Printf("\nRun:\n")
			fmt.Printf("  SKU File:        %s\n", cfg.Run.SKUFile)
			fmt.Printf("  Store File:      %s\n", cfg.Run.StoreFile)
			fmt.Printf("  Throttle:        %s\n", cfg.Run.Throttle)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Type:            %s\n", cfg.Storage.Type)
			fmt.Printf("  Output Dir:      %s\n", cfg.Storage.OutputDir)
			return nil
		},
	}
}

// setupLogger creates a structured logger from the logging config. The
// --verbose flag overrides the configured level.
func setupLogger(cfg *config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) error {
	if skuFile != "" {
		cfg.Run.SKUFile = skuFile
	}
	if storeFile != "" {
		cfg.Run.StoreFile = storeFile
	}
	if outputDir != "" {
		cfg.Storage.OutputDir = outputDir
	}
	if fetcherType != "" {
		cfg.Fetcher.Type = fetcherType
	}
	if throttle != "" {
		d, err := time.ParseDuration(throttle)
		if err != nil {
			return fmt.Errorf("invalid --throttle value %q: %w", throttle, err)
		}
		cfg.Run.Throttle = d
	}
	return nil
}
