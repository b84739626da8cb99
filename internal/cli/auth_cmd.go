// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - Authentication commands: login, logout, whoami,
// verify-email, resend-code.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bloodlink/bloodlink-tui/internal/api"
	"github.com/bloodlink/bloodlink-tui/internal/session"
)

// HandleLogin runs the interactive login flow, including the one-time-code
// second factor when the backend demands it. Returns an exit code.
func HandleLogin(ctx context.Context, s *session.Session, args Args) int {
	if err := RequiresTTY("log in"); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
		return 1
	}

	if s.IsAuthenticated() {
		if u := s.User(); u != nil {
			fmt.Printf("Already logged in as %s. Run 'bloodlink logout' first.\n", u.Email)
		} else {
			fmt.Println("Already logged in. Run 'bloodlink logout' first.")
		}
		return 0
	}

	email := args.Email
	if email == "" {
		var err error
		if email, err = promptLine("Email: "); err != nil {
			return abortedExit(err)
		}
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return abortedExit(err)
	}

	res := s.Login(ctx, email, password)
	switch res.Status {
	case session.LoginComplete:
		printLoginSuccess(s, res)
		return 0

	case session.LoginNeedsOTP:
		fmt.Println(DimStyle.Render(res.Message))
		otp, err := promptOTP()
		if err != nil {
			return abortedExit(err)
		}
		res = s.VerifyLoginOTP(ctx, res.Email, otp)
		if res.Status != session.LoginComplete {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render(res.Message))
			return 1
		}
		printLoginSuccess(s, res)
		return 0

	default:
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(res.Message))
		return 1
	}
}

func printLoginSuccess(s *session.Session, res session.LoginResult) {
	if u := s.User(); u != nil && u.Name != "" {
		fmt.Println(SuccessStyle.Render("Logged in as " + u.Name))
	} else {
		fmt.Println(SuccessStyle.Render("Logged in"))
	}
	if res.MustChangePassword {
		fmt.Println(WarningStyle.Render("Your password must be changed. Visit your profile settings."))
	}
}

// HandleLogout ends the session. Safe to run when already logged out.
func HandleLogout(s *session.Session, args Args) int {
	s.Logout()
	if !args.Quiet {
		fmt.Println("Logged out.")
	}
	return 0
}

// HandleWhoami shows the stored account, verifying the token first.
func HandleWhoami(ctx context.Context, s *session.Session, args Args) int {
	if !s.IsAuthenticated() {
		fmt.Println("Not logged in.")
		return 1
	}
	if !s.VerifyToken(ctx) {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Your session has expired. Please log in again."))
		return 1
	}

	u := s.User()
	if u == nil {
		fmt.Println("Logged in (profile unavailable).")
		return 0
	}

	fmt.Println(TitleStyle.Render("BloodLink account"))
	fmt.Printf("%s %s\n", LabelStyle.Render("Name"), ValueStyle.Render(u.Name))
	fmt.Printf("%s %s\n", LabelStyle.Render("Email"), ValueStyle.Render(u.Email))
	fmt.Printf("%s %s\n", LabelStyle.Render("Role"), ValueStyle.Render(u.Role))
	if u.BloodGroup != "" {
		fmt.Printf("%s %s\n", LabelStyle.Render("Blood group"), ValueStyle.Render(u.BloodGroup))
	}
	if u.City != "" {
		fmt.Printf("%s %s\n", LabelStyle.Render("City"), ValueStyle.Render(u.City))
	}
	return 0
}

// HandleSignupVerify confirms a signup verification code for an email.
func HandleSignupVerify(ctx context.Context, client *api.Client, args Args) int {
	if err := RequiresTTY("verify email"); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
		return 1
	}

	email := args.Email
	if email == "" {
		var err error
		if email, err = promptLine("Email: "); err != nil {
			return abortedExit(err)
		}
	}
	otp, err := promptOTP()
	if err != nil {
		return abortedExit(err)
	}

	if err := client.VerifyEmail(ctx, email, otp); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(api.Message(err, "Verification failed. Please try again.")))
		return 1
	}
	fmt.Println(SuccessStyle.Render("Email verified. You can now log in."))
	return 0
}

// HandleResendCode requests a fresh signup verification code.
func HandleResendCode(ctx context.Context, client *api.Client, args Args) int {
	email := args.Email
	if email == "" {
		var err error
		if email, err = promptLine("Email: "); err != nil {
			return abortedExit(err)
		}
	}

	if err := client.ResendVerification(ctx, email); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(api.Message(err, "Could not resend the code. Please try again.")))
		return 1
	}
	fmt.Println(SuccessStyle.Render("A new verification code has been sent."))
	return 0
}

// abortedExit maps a prompt error to an exit code, staying quiet for
// deliberate Ctrl-C aborts.
func abortedExit(err error) int {
	if errors.Is(err, ErrPromptAborted) {
		fmt.Println()
		return 130
	}
	fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
	return 1
}
