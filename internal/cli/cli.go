// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for bloodlink.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdWhoami
	CmdSignupVerify
	CmdResendCode
	CmdRequests
	CmdAccepted
	CmdRespond
	CmdCancel
	CmdHistory
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool

	// Command-specific
	Email      string
	RequestID  string
	Decline    bool
	Limit      int
	ConfigKey  string
	ConfigVal  string
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `bloodlink - donor client for the BloodLink coordination platform

Bloodlink connects blood donors with hospital requests from the terminal.

Usage:
  bloodlink                        Start the dashboard TUI (default)
  bloodlink login                  Log in (email + password, one-time code if required)
  bloodlink logout                 Log out and clear stored credentials
  bloodlink whoami                 Show the logged-in account
  bloodlink verify-email <email>   Confirm a signup verification code
  bloodlink resend-code <email>    Request a fresh verification code
  bloodlink requests               List open blood requests near you
  bloodlink accepted               List your accepted requests and cancel windows
  bloodlink respond <id>           Accept an open request
    --decline                      Decline instead of accepting
  bloodlink cancel <id>            Cancel an accepted request (within 5 minutes)
  bloodlink history                Show your recent donation actions
    --limit N                      Show last N entries (default: 20)
  bloodlink config [show|set K V]  Configuration
  bloodlink version                Show version information

Global Flags:
  -q, --quiet     Minimal output
  -v, --verbose   Debug output
  --json          Output in JSON format

Examples:
  bloodlink login
  bloodlink requests
  bloodlink respond req-42
  bloodlink cancel req-42
  bloodlink config set api_url https://api.bloodlink.example.org
  bloodlink history --limit 50

Configuration lives in ~/.bloodlink/config.toml; credentials in
~/.bloodlink/credentials.json. Set BLOODLINK_STORE_KEY to encrypt the
credential file at rest.

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("bloodlink version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses an explicit argument slice.
func ParseArgs(args []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(args)

	// No command defaults to the TUI.
	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "tui", "dashboard":
		return CmdTUI, parsed

	case "login":
		if len(remaining) > 0 {
			parsed.Email = remaining[0]
		}
		return CmdLogin, parsed

	case "logout":
		return CmdLogout, parsed

	case "whoami", "me":
		return CmdWhoami, parsed

	case "verify-email", "signup-verify":
		if len(remaining) > 0 {
			parsed.Email = remaining[0]
		}
		return CmdSignupVerify, parsed

	case "resend-code", "resend":
		if len(remaining) > 0 {
			parsed.Email = remaining[0]
		}
		return CmdResendCode, parsed

	case "requests", "open":
		return CmdRequests, parsed

	case "accepted":
		return CmdAccepted, parsed

	case "respond", "accept":
		parseRespondArgs(&parsed, remaining)
		return CmdRespond, parsed

	case "cancel":
		if len(remaining) > 0 {
			parsed.RequestID = remaining[0]
		}
		return CmdCancel, parsed

	case "history":
		parseHistoryArgs(&parsed, remaining)
		return CmdHistory, parsed

	case "config":
		parseConfigArgs(&parsed, remaining)
		return CmdConfig, parsed

	case "version", "--version", "-V":
		return CmdVersion, parsed

	case "help", "--help", "-h":
		return CmdHelp, parsed

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, parsed
	}
}

// parseGlobalFlags strips global flags and returns the remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var parsed Args
	var remaining []string

	for _, arg := range args {
		switch arg {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--json":
			parsed.JSON = true
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, parsed
}

func parseRespondArgs(parsed *Args, args []string) {
	for _, arg := range args {
		switch arg {
		case "--decline", "--no":
			parsed.Decline = true
		default:
			if parsed.RequestID == "" && !strings.HasPrefix(arg, "-") {
				parsed.RequestID = arg
			}
		}
	}
}

func parseHistoryArgs(parsed *Args, args []string) {
	parsed.Limit = 20
	for i := 0; i < len(args); i++ {
		if args[i] == "--limit" && i+1 < len(args) {
			fmt.Sscanf(args[i+1], "%d", &parsed.Limit)
			i++
		}
	}
	if parsed.Limit <= 0 {
		parsed.Limit = 20
	}
}

func parseConfigArgs(parsed *Args, args []string) {
	if len(args) == 0 {
		parsed.Subcommand = "show"
		return
	}
	parsed.Subcommand = strings.ToLower(args[0])
	if parsed.Subcommand == "set" {
		if len(args) > 1 {
			parsed.ConfigKey = args[1]
		}
		if len(args) > 2 {
			parsed.ConfigVal = args[2]
		}
	}
}
