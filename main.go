// bloodlink TUI - a terminal client for the BloodLink donation platform.
//
// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bloodlink/bloodlink-tui/internal/cli"
	"github.com/bloodlink/bloodlink-tui/internal/config"
	"github.com/bloodlink/bloodlink-tui/internal/history"
	"github.com/bloodlink/bloodlink-tui/internal/logging"
	"github.com/bloodlink/bloodlink-tui/internal/session"
	"github.com/bloodlink/bloodlink-tui/internal/store"
	"github.com/bloodlink/bloodlink-tui/internal/ui/dashboard"
	"github.com/bloodlink/bloodlink-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd, args := cli.Parse()

	// Help and version need no environment at all.
	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage()
		return 0
	case cli.CmdVersion:
		cli.PrintVersion()
		return 0
	case cli.CmdConfig:
		return cli.HandleConfig(args)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.Default()
	}
	config.SetGlobal(cfg)

	logLevel := cfg.LogLevel
	if args.Verbose {
		logLevel = "debug"
	}
	logging.Init(logging.Options{Level: logLevel})

	st, err := store.Open(cfg.StoreKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open credential store: %v\n", err)
		if cfg.StoreKey == "" {
			fmt.Fprintln(os.Stderr, "If the store is encrypted, set BLOODLINK_STORE_KEY.")
		}
		return 1
	}

	s := session.New(st, cfg.APIURL)
	s.Client().WithTimeout(time.Duration(cfg.TimeoutSecs) * time.Second).
		WithMaxRetries(cfg.MaxRetries)

	log, err := history.Open()
	if err != nil {
		// History is a convenience; every command works without it.
		logger := logging.Get()
		logger.Warn().Err(err).Msg("local history unavailable")
		log = nil
	} else {
		defer log.Close()
	}

	ctx := context.Background()

	switch cmd {
	case cli.CmdLogin:
		return cli.HandleLogin(ctx, s, args)
	case cli.CmdLogout:
		return cli.HandleLogout(s, args)
	case cli.CmdWhoami:
		return cli.HandleWhoami(ctx, s, args)
	case cli.CmdSignupVerify:
		return cli.HandleSignupVerify(ctx, s.Client(), args)
	case cli.CmdResendCode:
		return cli.HandleResendCode(ctx, s.Client(), args)
	case cli.CmdRequests:
		return cli.HandleRequests(ctx, s, args)
	case cli.CmdAccepted:
		return cli.HandleAccepted(ctx, s, args)
	case cli.CmdRespond:
		return cli.HandleRespond(ctx, s, log, args)
	case cli.CmdCancel:
		return cli.HandleCancel(ctx, s, log, args)
	case cli.CmdHistory:
		return cli.HandleHistory(ctx, log, args)
	default:
		return runTUI(ctx, s, log)
	}
}

// runTUI starts the dashboard interface.
func runTUI(ctx context.Context, s *session.Session, log *history.Log) int {
	if !s.IsAuthenticated() {
		fmt.Fprintln(os.Stderr, "Not logged in. Run 'bloodlink login' first.")
		return 1
	}

	// Verify the token before drawing anything: a client that cannot prove
	// its token is valid logs out instead of presenting stale state.
	if !s.VerifyToken(ctx) {
		fmt.Fprintln(os.Stderr, "Your session has expired. Please log in again.")
		return 1
	}

	theme := styles.NewTheme(s.Store().Theme())
	m := dashboard.New(s, log, theme)

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Another bloodlink process logging out invalidates this one too: watch
	// the credential file and quit when the token disappears.
	watcher, err := s.Store().Watch(func() {
		if err := s.Store().Reload(); err != nil {
			return
		}
		if !s.IsAuthenticated() {
			p.Quit()
		}
	})
	if err != nil {
		logger := logging.Get()
		logger.Warn().Err(err).Msg("credential watcher unavailable")
	} else {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running bloodlink: %v\n", err)
		return 1
	}
	return 0
}
