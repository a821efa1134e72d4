// Copyright (c) 2026 dotandev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"

	"github.com/dotandev/gopahole/internal/cache"
	"github.com/spf13/cobra"
)

var cacheForceFlag bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the on-disk fine-grained struct-map cache",
	Long: `Manage the local cache that stores fg_struct_map results for previously
scanned binaries, keyed by (path, size, mtime).

Cache location: configurable via "cache_path" in config.json, or
GODWAT_NO_CACHE=1 to disable caching outright.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache size and file count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager := cache.NewManager(cfg.CachePath, cache.DefaultConfig())

		size, err := manager.GetCacheSize()
		if err != nil {
			return fmt.Errorf("failed to calculate cache size: %w", err)
		}
		files, err := manager.ListCachedFiles()
		if err != nil {
			return fmt.Errorf("failed to list cache files: %w", err)
		}

		fmt.Printf("cache directory: %s\n", cfg.CachePath)
		fmt.Printf("cache size:      %s\n", formatBytes(size))
		fmt.Printf("files cached:    %d\n", len(files))
		return nil
	},
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove old cached entries using an LRU strategy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager := cache.NewManager(cfg.CachePath, cache.DefaultConfig())
		status, err := manager.Clean(cacheForceFlag)
		if err != nil {
			return fmt.Errorf("cache cleanup failed: %w", err)
		}
		if status.FilesDeleted == 0 && status.OriginalSize > 0 {
			fmt.Println("no files needed to be deleted")
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfg.CachePath); os.IsNotExist(err) {
			fmt.Println("cache directory does not exist")
			return nil
		}
		if !cacheForceFlag {
			fmt.Printf("this will delete all cached files in %s\n", cfg.CachePath)
			fmt.Print("continue? (yes/no): ")
			var response string
			if _, err := fmt.Scanln(&response); err != nil {
				return fmt.Errorf("failed to read confirmation: %w", err)
			}
			if response != "yes" && response != "y" {
				fmt.Println("cancelled")
				return nil
			}
		}
		if err := os.RemoveAll(cfg.CachePath); err != nil {
			return fmt.Errorf("failed to clear cache directory: %w", err)
		}
		fmt.Println("cache cleared")
		return nil
	},
}

func formatBytes(bytes int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(bytes)
	unitIndex := 0
	for size >= 1024 && unitIndex < len(units)-1 {
		size /= 1024
		unitIndex++
	}
	if unitIndex == 0 {
		return fmt.Sprintf("%.0f %s", size, units[unitIndex])
	}
	return fmt.Sprintf("%.2f %s", size, units[unitIndex])
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheCleanCmd.Flags().BoolVarP(&cacheForceFlag, "force", "f", false, "skip confirmation prompt")
	cacheClearCmd.Flags().BoolVarP(&cacheForceFlag, "force", "f", false, "skip confirmation prompt")

	rootCmd.AddCommand(cacheCmd)
}
