// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ontomap/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the response cache",
	Long: `Cache manages the two-tier response cache (in-memory plus on-disk).
Use stats to see hit rates and entry counts, or clear to drop every cached
response.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache configuration and counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		defer logger.Sync()

		cfg := loadConfig()
		store := cache.NewStore(cfg.Cache, logger)
		stats := store.GetStats()

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}

		fmt.Printf("Cache enabled:       %v\n", stats.Enabled)
		fmt.Printf("Persistent tier:     %v (%s)\n", stats.PersistentEnabled, cfg.Cache.Dir)
		fmt.Printf("TTL:                 %s\n", cfg.Cache.TTL)
		fmt.Printf("Memory entries:      %d\n", stats.MemoryEntries)
		fmt.Printf("Hits / misses:       %d / %d (%.1f%% hit rate)\n",
			stats.Hits, stats.Misses, stats.HitRate*100)
		fmt.Printf("Sets / deletes:      %d / %d\n", stats.Sets, stats.Deletes)
		fmt.Printf("Errors:              %d\n", stats.Errors)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached response",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		defer logger.Sync()

		cfg := loadConfig()
		store := cache.NewStore(cfg.Cache, logger)
		n := store.Clear()
		fmt.Printf("Cleared %d cache entries\n", n)
		return nil
	},
}

func init() {
	cacheStatsCmd.Flags().Bool("json", false, "output stats as JSON")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
