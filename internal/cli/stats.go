package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/n0roo/vibespinner/internal/analytics"
	"github.com/n0roo/vibespinner/internal/schema"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Catalog analytics",
	Long:  `Aggregate statistics over the item pool, computed with DuckDB.`,
}

var statsTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Tag usage counts",
	RunE:  runStatsTags,
}

var statsCreatorsCmd = &cobra.Command{
	Use:   "creators",
	Short: "Items per creator",
	RunE:  runStatsCreators,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.AddCommand(statsTagsCmd)
	statsCmd.AddCommand(statsCreatorsCmd)
}

// openAnalytics exports the current item pool and opens DuckDB on it
func openAnalytics() (*analytics.AnalyticsDB, string, *schema.Schema, func(), error) {
	a, stop, err := getApp()
	if err != nil {
		return nil, "", nil, nil, err
	}

	cache := cacheDir()
	itemsPath, err := analytics.ExportItems(cache, a.Items())
	if err != nil {
		stop()
		return nil, "", nil, nil, err
	}

	adb, err := analytics.New(analytics.Config{
		DBPath:    filepath.Join(cache, "analytics.duckdb"),
		CachePath: cache,
	})
	if err != nil {
		stop()
		return nil, "", nil, nil, err
	}

	cleanup := func() {
		adb.Close()
		stop()
	}
	return adb, itemsPath, a.Schema(), cleanup, nil
}

func runStatsTags(cmd *cobra.Command, args []string) error {
	adb, itemsPath, s, cleanup, err := openAnalytics()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	counts, err := adb.TagUsage(ctx, itemsPath, s)
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(counts)
	}

	if len(counts) == 0 {
		fmt.Println("No tagged places yet.")
		return nil
	}
	for _, tc := range counts {
		group := tc.Group
		if group == "" {
			group = "(stale)"
		}
		fmt.Printf("%4d  %-20s %s\n", tc.Count, tc.Tag, group)
	}
	return nil
}

func runStatsCreators(cmd *cobra.Command, args []string) error {
	adb, itemsPath, _, cleanup, err := openAnalytics()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	counts, err := adb.CreatorStats(ctx, itemsPath)
	if err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(counts)
	}

	if len(counts) == 0 {
		fmt.Println("No places yet.")
		return nil
	}
	for _, cc := range counts {
		fmt.Printf("%4d  %s\n", cc.Count, cc.Name)
	}
	return nil
}
