package main

import (
	"testing"
	"time"

	"github.com/shelfwatch/shelfwatch/internal/config"
)

func resetFlags() {
	skuFile, storeFile, outputDir, fetcherType, throttle = "", "", "", "", ""
}

func TestApplyCLIOverrides(t *testing.T) {
	defer resetFlags()
	resetFlags()

	skuFile = "custom/skus.txt"
	outputDir = "out"
	fetcherType = "browser"
	throttle = "250ms"

	cfg := config.DefaultConfig()
	if err := applyCLIOverrides(cfg); err != nil {
		t.Fatalf("applyCLIOverrides: %v", err)
	}
	if cfg.Run.SKUFile != "custom/skus.txt" {
		t.Errorf("sku_file = %q", cfg.Run.SKUFile)
	}
	if cfg.Storage.OutputDir != "out" {
		t.Errorf("output_dir = %q", cfg.Storage.OutputDir)
	}
	if cfg.Fetcher.Type != "browser" {
		t.Errorf("fetcher type = %q", cfg.Fetcher.Type)
	}
	if cfg.Run.Throttle != 250*time.Millisecond {
		t.Errorf("throttle = %v, want 250ms", cfg.Run.Throttle)
	}
	// Unset flags leave the config untouched.
	if cfg.Run.StoreFile != config.DefaultConfig().Run.StoreFile {
		t.Errorf("store_file = %q, want default", cfg.Run.StoreFile)
	}
}

func TestApplyCLIOverridesRejectsBadThrottle(t *testing.T) {
	defer resetFlags()
	resetFlags()

	throttle = "five seconds"

	cfg := config.DefaultConfig()
	if err := applyCLIOverrides(cfg); err == nil {
		t.Fatal("expected an error for an unparseable throttle")
	}
	// The config default must survive a rejected override.
	if cfg.Run.Throttle != config.DefaultConfig().Run.Throttle {
		t.Errorf("throttle = %v, want default", cfg.Run.Throttle)
	}
}
