package cmd

import (
	"fmt"

	"staff-sync/core/cache"
	"staff-sync/core/config"
	"staff-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cacheCmd is the parent command for cache maintenance.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the read-through cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache hit/miss counters and current size",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached entry, in memory and on disk",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	RootCmd.AddCommand(cacheCmd)
}

func openCache() (*cache.Cache, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return store, log, nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, log, err := openCache()
	if err != nil {
		return err
	}
	defer log.Sync()

	stats := store.Stats()
	log.Info("Cache statistics",
		zap.Int64("hits", stats.Hits),
		zap.Int64("misses", stats.Misses),
		zap.Int64("sets", stats.Sets),
		zap.Int64("invalidations", stats.Invalidations),
		zap.Int("entries", stats.Entries),
		zap.Int64("size_bytes", stats.TotalSizeBytes))
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, log, err := openCache()
	if err != nil {
		return err
	}
	defer log.Sync()

	store.Clear()
	log.Info("Cache cleared")
	return nil
}
