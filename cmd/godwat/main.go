// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/dotandev/gopahole/internal/cmd"
	"github.com/dotandev/gopahole/internal/logger"
)

// Version, CommitSHA and BuildDate are set via -ldflags at build time.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

func main() {
	cmd.Version = Version
	cmd.CommitSHA = CommitSHA
	cmd.BuildDate = BuildDate

	if err := cmd.Execute(); err != nil {
		logger.Logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
