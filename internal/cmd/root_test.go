// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, c := range cases {
		if got := parseLevel(c.in); got != c.want {
			t.Errorf("parseLevel(%q) = %v; want %v", c.in, got, c.want)
		}
	}
}

func TestRootCmd_Metadata(t *testing.T) {
	if rootCmd.Use != "godwat" {
		t.Errorf("rootCmd.Use = %q; want \"godwat\"", rootCmd.Use)
	}
	if !rootCmd.SilenceUsage || !rootCmd.SilenceErrors {
		t.Error("rootCmd should silence usage and errors; cobra's own messages are redundant with our logger")
	}
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	if flag == nil {
		t.Fatal("rootCmd should register a persistent --verbose flag")
	}
	if flag.Shorthand != "v" {
		t.Errorf("verbose flag shorthand = %q; want \"v\"", flag.Shorthand)
	}
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	want := []string{"lookup", "dump", "version", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("rootCmd is missing subcommand %q", name)
		}
	}
}
