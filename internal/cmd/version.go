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
	"debug/dwarf"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/dotandev/gopahole/dwat"
	"github.com/dotandev/gopahole/internal/logger"
	"github.com/dotandev/gopahole/internal/updater"
	"github.com/spf13/cobra"
)

var (
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version [DWARF_FILE]",
	Short: "Show build version, and optionally compare a binary's producer version",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goVersion := "unknown"
		if bi, ok := debug.ReadBuildInfo(); ok {
			goVersion = bi.GoVersion
		}
		fmt.Printf("godwat version %s\n", Version)
		fmt.Printf("commit:      %s\n", CommitSHA)
		fmt.Printf("build date:  %s\n", BuildDate)
		fmt.Printf("go version:  %s\n", goVersion)

		if len(args) == 0 {
			return nil
		}

		sections, err := dwat.LoadMapped(args[0])
		if err != nil {
			logger.Logger.Error("failed to load binary", "path", args[0], "error", err)
			os.Exit(2)
		}
		defer sections.Close()

		reader := dwat.NewReader(sections)
		checker := updater.NewChecker(cfg.MinProducerVersion)

		return reader.ForEachDieWithTag(dwarf.TagCompileUnit, func(cu *dwat.CU, entry *dwarf.Entry, ref dwat.TypeRef) (bool, error) {
			producer, ok := entry.Val(dwarf.AttrProducer).(string)
			if !ok {
				return false, nil
			}
			res := checker.Check(producer)
			status := "ok"
			if !res.OK {
				status = "below baseline"
			}
			fmt.Printf("producer: %-60s [%s]\n", producer, status)
			return false, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
