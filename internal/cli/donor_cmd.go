// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// donor_cmd.go - Donor workflow commands: requests, accepted, respond,
// cancel, history.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bloodlink/bloodlink-tui/internal/api"
	"github.com/bloodlink/bloodlink-tui/internal/donor"
	"github.com/bloodlink/bloodlink-tui/internal/history"
	"github.com/bloodlink/bloodlink-tui/internal/session"
	"github.com/bloodlink/bloodlink-tui/internal/util"
)

// requireAuth prints a hint and fails when no session exists.
func requireAuth(s *session.Session) bool {
	if s.IsAuthenticated() {
		return true
	}
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("Not logged in. Run 'bloodlink login' first."))
	return false
}

// HandleRequests lists open blood requests the donor may respond to.
func HandleRequests(ctx context.Context, s *session.Session, args Args) int {
	if !requireAuth(s) {
		return 1
	}

	reqs, err := s.Client().OpenRequests(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(api.Message(err, "Could not load open requests.")))
		return 1
	}

	if args.JSON {
		return printJSON(reqs)
	}
	if len(reqs) == 0 {
		fmt.Println("No open requests right now.")
		return 0
	}

	fmt.Println(TitleStyle.Render("Open blood requests"))
	for _, r := range reqs {
		fmt.Printf("%s  %-4s %2d unit(s)  %-8s  %s (%.1f km)\n",
			DimStyle.Render(r.ID),
			r.BloodGroup,
			r.Units,
			RenderUrgency(r.Urgency),
			util.Truncate(r.HospitalName, 30),
			r.DistanceKm)
	}
	fmt.Println(DimStyle.Render("\nRespond with: bloodlink respond <id>"))
	return 0
}

// HandleAccepted lists accepted requests with their cancellation windows.
func HandleAccepted(ctx context.Context, s *session.Session, args Args) int {
	if !requireAuth(s) {
		return 1
	}

	reqs, err := s.Client().AcceptedRequests(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(api.Message(err, "Could not load accepted requests.")))
		return 1
	}

	if args.JSON {
		return printJSON(reqs)
	}
	if len(reqs) == 0 {
		fmt.Println("No accepted requests.")
		return 0
	}

	now := time.Now()
	fmt.Println(TitleStyle.Render("Accepted requests"))
	for _, r := range reqs {
		window := donor.TimeRemaining(r.AcceptedAt, now)
		styled := DimStyle.Render(window)
		if donor.CanCancel(r.AcceptedAt, now) {
			styled = WarningStyle.Render(window)
		}
		fmt.Printf("%s  %-4s %2d unit(s)  %s  %s\n",
			DimStyle.Render(r.ID),
			r.BloodGroup,
			r.Units,
			util.PadRight(util.Truncate(r.HospitalName, 30), 30),
			styled)
		if r.HospitalPhone != "" {
			fmt.Printf("      %s\n", DimStyle.Render("Contact: "+r.HospitalPhone))
		}
	}
	return 0
}

// HandleRespond accepts or declines an open request and records the action
// locally.
func HandleRespond(ctx context.Context, s *session.Session, log *history.Log, args Args) int {
	if !requireAuth(s) {
		return 1
	}
	if args.RequestID == "" {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Usage: bloodlink respond <id> [--decline]"))
		return 1
	}

	accept := !args.Decline
	if err := s.Client().Respond(ctx, args.RequestID, accept); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(api.Message(err, "Could not submit your response.")))
		return 1
	}

	action := history.ActionAccept
	if !accept {
		action = history.ActionDecline
	}
	recordAction(ctx, log, args.RequestID, action)

	if accept {
		fmt.Println(SuccessStyle.Render("Request accepted. Thank you!"))
		fmt.Println(DimStyle.Render("You can cancel within 5 minutes: bloodlink cancel " + args.RequestID))
	} else {
		fmt.Println("Request declined.")
	}
	return 0
}

// HandleCancel cancels an accepted request. The countdown shown by
// 'accepted' is advisory; the backend enforces the window.
func HandleCancel(ctx context.Context, s *session.Session, log *history.Log, args Args) int {
	if !requireAuth(s) {
		return 1
	}
	if args.RequestID == "" {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Usage: bloodlink cancel <id>"))
		return 1
	}

	if err := s.Client().CancelAccepted(ctx, args.RequestID); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(api.Message(err, "Could not cancel. The 5-minute window may have passed.")))
		return 1
	}

	recordAction(ctx, log, args.RequestID, history.ActionCancel)
	fmt.Println(SuccessStyle.Render("Acceptance cancelled."))
	return 0
}

// HandleHistory shows the local donation action log.
func HandleHistory(ctx context.Context, log *history.Log, args Args) int {
	if log == nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("History is unavailable."))
		return 1
	}

	entries, err := log.Recent(ctx, args.Limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Could not read history: "+err.Error()))
		return 1
	}

	if args.JSON {
		return printJSON(entries)
	}
	if len(entries) == 0 {
		fmt.Println("No recorded actions yet.")
		return 0
	}

	fmt.Println(TitleStyle.Render("Recent actions"))
	for _, e := range entries {
		fmt.Printf("%s  %-7s  %s\n",
			DimStyle.Render(e.CreatedAt.Local().Format("2006-01-02 15:04")),
			e.Action,
			e.RequestID)
	}
	return 0
}

// recordAction appends to the local log. Failures are shown but never fail
// the command: the backend action already succeeded.
func recordAction(ctx context.Context, log *history.Log, requestID, action string) {
	if log == nil {
		return
	}
	if err := log.Record(ctx, history.Entry{RequestID: requestID, Action: action}); err != nil {
		fmt.Fprintln(os.Stderr, DimStyle.Render("(could not record to local history: "+err.Error()+")"))
	}
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Failed to encode JSON: "+err.Error()))
		return 1
	}
	return 0
}
