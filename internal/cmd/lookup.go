// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"debug/dwarf"
	"fmt"
	"os"

	"github.com/dotandev/gopahole/dwat"
	cmderrors "github.com/dotandev/gopahole/internal/errors"
	"github.com/dotandev/gopahole/internal/logger"
	"github.com/dotandev/gopahole/internal/updater"
	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <DWARF_FILE> <NAME>",
	Short: "Print one struct/union/enum/typedef's layout by name",
	Args:  cobra.ExactArgs(2),
	RunE:  runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	path, name := args[0], args[1]

	sections, err := dwat.LoadMapped(path)
	if err != nil {
		logger.Logger.Error("failed to load binary", "path", path, "error", err)
		os.Exit(2)
	}
	defer sections.Close()

	reader := dwat.NewReader(sections)
	warnOnOldProducer(reader)

	verbosity := dwat.Compact
	if verboseFlag {
		verbosity = dwat.Verbose
	}

	s, err := dwat.Lookup(reader, tagStructType, dwat.NewStruct, name)
	if err == nil {
		rendered, err := dwat.FormatStruct(s, verbosity)
		if err != nil {
			logger.Logger.Error("failed to render struct", "name", name, "error", err)
			os.Exit(2)
		}
		fmt.Print(rendered)
		return nil
	}

	logger.Logger.Debug("no struct match, trying other tags", "name", name)
	if t, found := lookupOtherTags(reader, name); found {
		fmt.Println(dwat.FormatType(t, name, 0, 0, verbosity, 0))
		return nil
	}

	fmt.Fprintln(os.Stderr, cmderrors.WrapLookupMissed(path, name))
	os.Exit(1)
	return nil
}

// warnOnOldProducer checks every compile unit's producer string against the
// configured baseline and logs a warning for each one that looks stale.
func warnOnOldProducer(r *dwat.Reader) {
	checker := updater.NewChecker(cfg.MinProducerVersion)
	seen := make(map[string]bool)

	_ = r.ForEachDieWithTag(dwarf.TagCompileUnit, func(cu *dwat.CU, entry *dwarf.Entry, ref dwat.TypeRef) (bool, error) {
		producer, ok := entry.Val(dwarf.AttrProducer).(string)
		if !ok || seen[producer] {
			return false, nil
		}
		seen[producer] = true
		if res := checker.Check(producer); !res.OK {
			logger.Logger.Warn(res.Message)
		}
		return false, nil
	})
}
