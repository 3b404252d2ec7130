// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements argument parsing and the non-TUI command handlers
// for aichat.
package cli

import (
	"os"
	"testing"
)

func parseArgv(t *testing.T, argv ...string) (Command, Args) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"aichat"}, argv...)
	t.Cleanup(func() { os.Args = orig })
	return Parse()
}

func TestParse_DefaultsToTUI(t *testing.T) {
	cmd, _ := parseArgv(t)
	if cmd != CmdTUI {
		t.Errorf("cmd = %v, want CmdTUI", cmd)
	}
}

func TestParse_AskJoinsQuery(t *testing.T) {
	cmd, args := parseArgv(t, "ask", "what", "is", "2+2")
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if args.Query != "what is 2+2" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParse_GlobalFlags(t *testing.T) {
	cmd, args := parseArgv(t, "--model", "gpt-4o", "--web-search", "ask", "hi")
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if args.Model != "gpt-4o" {
		t.Errorf("Model = %q", args.Model)
	}
	if !args.WebSearch {
		t.Error("WebSearch should be set")
	}
}

func TestParse_ModelEqualsForm(t *testing.T) {
	_, args := parseArgv(t, "--model=gpt-4o-mini", "chat")
	if args.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", args.Model)
	}
}

func TestParse_UnknownCommandBecomesQuestion(t *testing.T) {
	cmd, args := parseArgv(t, "what", "time", "is", "it")
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if args.Query != "what time is it" {
		t.Errorf("Query = %q", args.Query)
	}
}

func TestParse_SessionSubcommands(t *testing.T) {
	cmd, args := parseArgv(t, "session")
	if cmd != CmdSession || args.Subcommand != "list" {
		t.Errorf("cmd = %v, Subcommand = %q", cmd, args.Subcommand)
	}

	cmd, args = parseArgv(t, "sessions", "show", "sess_abc")
	if cmd != CmdSession {
		t.Fatalf("cmd = %v, want CmdSession", cmd)
	}
	if args.Subcommand != "show" || len(args.Raw) != 1 || args.Raw[0] != "sess_abc" {
		t.Errorf("Subcommand = %q, Raw = %v", args.Subcommand, args.Raw)
	}
}

func TestParse_VersionAliases(t *testing.T) {
	for _, argv := range [][]string{{"version"}, {"--version"}} {
		if cmd, _ := parseArgv(t, argv...); cmd != CmdVersion {
			t.Errorf("%v: cmd = %v, want CmdVersion", argv, cmd)
		}
	}
}

func TestMaskKey(t *testing.T) {
	if got := maskKey(""); got != "" {
		t.Errorf("maskKey(\"\") = %q", got)
	}
	if got := maskKey("abcd"); got != "****" {
		t.Errorf("maskKey(short) = %q", got)
	}
	if got := maskKey("sk-12345678"); got != "*******5678" {
		t.Errorf("maskKey(long) = %q", got)
	}
}
