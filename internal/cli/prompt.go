// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// prompt.go - Interactive input helpers for the bloodlink CLI.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// ErrPromptAborted is returned when the user cancels a prompt with Ctrl-C.
var ErrPromptAborted = errors.New("prompt aborted")

// promptLine reads one line of input with line-editing support.
func promptLine(prompt string) (string, error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	input, err := line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrPromptAborted
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// promptPassword reads a password without echoing it.
// SECURITY: term.ReadPassword keeps the password off the terminal.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(passBytes), nil
}

// promptOTP reads a 6-digit one-time code.
func promptOTP() (string, error) {
	code, err := promptLine("Verification code: ")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(code), nil
}
