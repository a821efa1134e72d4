// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/dotandev/gopahole/dwat"
	"github.com/dotandev/gopahole/internal/cache"
	"github.com/dotandev/gopahole/internal/logger"
	"github.com/dotandev/gopahole/internal/structcache"
	"github.com/spf13/cobra"
)

var fastFlag bool

var dumpCmd = &cobra.Command{
	Use:   "dump <DWARF_FILE>",
	Short: "Print every struct layout found in a binary",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().BoolVar(&fastFlag, "fast", false, "skip the persistent struct-layout cache")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	path := args[0]

	verbosity := dwat.Compact
	if verboseFlag {
		verbosity = dwat.Verbose
	}

	useCache := !fastFlag && !cfg.NoCache
	if useCache {
		if rendered, ok := tryDumpFromCache(path); ok {
			fmt.Print(rendered)
			return nil
		}
	}

	sections, err := dwat.LoadMapped(path)
	if err != nil {
		logger.Logger.Error("failed to load binary", "path", path, "error", err)
		os.Exit(2)
	}
	defer sections.Close()

	reader := dwat.NewReader(sections)
	warnOnOldProducer(reader)

	structs, err := dwat.FGStructMap(reader)
	if err != nil {
		logger.Logger.Error("failed to build struct index", "error", err)
		os.Exit(2)
	}

	var out string
	var entries []structcache.Entry
	for key, s := range structs {
		rendered, err := dwat.FormatStruct(s, verbosity)
		if err != nil {
			logger.Logger.Debug("skipping struct that failed to render", "name", key.Name, "error", err)
			continue
		}
		out += rendered
		entries = append(entries, structcache.Entry{
			Name: key.Name, ByteSize: key.ByteSize, Members: key.Members, Rendered: rendered,
		})
	}

	if useCache {
		storeDumpInCache(path, entries)
		if err := cache.CheckAndCleanup(cfg.CachePath); err != nil {
			logger.Logger.Debug("automatic cache cleanup skipped", "error", err)
		}
	}

	fmt.Print(out)
	return nil
}

func tryDumpFromCache(path string) (string, bool) {
	store, err := structcache.Open(cfg.CachePath)
	if err != nil {
		logger.Logger.Debug("struct cache unavailable", "error", err)
		return "", false
	}
	defer store.Close()

	key, err := structcache.KeyForFile(path)
	if err != nil {
		return "", false
	}
	entries, hit, err := store.Get(key)
	if err != nil || !hit {
		return "", false
	}

	var out string
	for _, e := range entries {
		out += e.Rendered
	}
	return out, true
}

func storeDumpInCache(path string, entries []structcache.Entry) {
	store, err := structcache.Open(cfg.CachePath)
	if err != nil {
		logger.Logger.Debug("struct cache unavailable, not persisting", "error", err)
		return
	}
	defer store.Close()

	key, err := structcache.KeyForFile(path)
	if err != nil {
		return
	}
	if err := store.Put(key, entries); err != nil {
		logger.Logger.Debug("failed to persist struct cache", "error", err)
	}
}
