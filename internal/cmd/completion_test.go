// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"testing"
)

func TestCompletionCmd_GeneratesScriptPerShell(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			switch shell {
			case "bash":
				if err := rootCmd.GenBashCompletion(&buf); err != nil {
					t.Fatal(err)
				}
			case "zsh":
				if err := rootCmd.GenZshCompletion(&buf); err != nil {
					t.Fatal(err)
				}
			case "fish":
				if err := rootCmd.GenFishCompletion(&buf, true); err != nil {
					t.Fatal(err)
				}
			case "powershell":
				if err := rootCmd.GenPowerShellCompletionWithDesc(&buf); err != nil {
					t.Fatal(err)
				}
			}
			if buf.Len() == 0 {
				t.Errorf("%s completion script was empty", shell)
			}
		})
	}
}

func TestCompletionCmd_RejectsUnknownShell(t *testing.T) {
	if err := completionCmd.ValidateArgs([]string{"tcsh"}); err == nil {
		t.Error("expected an error for an unsupported shell name")
	}
}

func TestCompletionCmd_AcceptsExactlyOneArg(t *testing.T) {
	if err := completionCmd.Args(completionCmd, []string{}); err == nil {
		t.Error("expected an error with no shell argument")
	}
	if err := completionCmd.Args(completionCmd, []string{"bash", "zsh"}); err == nil {
		t.Error("expected an error with more than one shell argument")
	}
}
