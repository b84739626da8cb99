// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration commands: show, set, path.
package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/bloodlink/bloodlink-tui/internal/config"
)

// HandleConfig shows or modifies the configuration file.
func HandleConfig(args Args) int {
	switch args.Subcommand {
	case "", "show":
		return configShow(args)
	case "set":
		return configSet(args)
	case "path":
		path, err := config.Path()
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
			return 1
		}
		fmt.Println(path)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args.Subcommand)
		fmt.Fprintln(os.Stderr, "Usage: bloodlink config [show|set KEY VALUE|path]")
		return 1
	}
}

func configShow(args Args) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
		return 1
	}

	if args.JSON {
		return printJSON(map[string]any{
			"api_url":      cfg.APIURL,
			"timeout_secs": cfg.TimeoutSecs,
			"max_retries":  cfg.MaxRetries,
			"log_level":    cfg.LogLevel,
		})
	}

	fmt.Println(TitleStyle.Render("bloodlink configuration"))
	fmt.Printf("%s %s\n", LabelStyle.Render("api_url"), ValueStyle.Render(cfg.APIURL))
	fmt.Printf("%s %s\n", LabelStyle.Render("timeout_secs"), ValueStyle.Render(strconv.Itoa(cfg.TimeoutSecs)))
	fmt.Printf("%s %s\n", LabelStyle.Render("max_retries"), ValueStyle.Render(strconv.Itoa(cfg.MaxRetries)))
	fmt.Printf("%s %s\n", LabelStyle.Render("log_level"), ValueStyle.Render(cfg.LogLevel))
	if cfg.StoreKey != "" {
		fmt.Printf("%s %s\n", LabelStyle.Render("store_key"), DimStyle.Render("(set via BLOODLINK_STORE_KEY)"))
	}
	return 0
}

func configSet(args Args) int {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		fmt.Fprintln(os.Stderr, "Usage: bloodlink config set KEY VALUE")
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
		return 1
	}

	switch args.ConfigKey {
	case "api_url":
		cfg.APIURL = args.ConfigVal
	case "timeout_secs":
		v, err := strconv.Atoi(args.ConfigVal)
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("timeout_secs must be a number"))
			return 1
		}
		cfg.TimeoutSecs = v
	case "max_retries":
		v, err := strconv.Atoi(args.ConfigVal)
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("max_retries must be a number"))
			return 1
		}
		cfg.MaxRetries = v
	case "log_level":
		cfg.LogLevel = args.ConfigVal
	default:
		fmt.Fprintf(os.Stderr, "Unknown config key: %s\n", args.ConfigKey)
		fmt.Fprintln(os.Stderr, "Valid keys: api_url, timeout_secs, max_retries, log_level")
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
		return 1
	}
	if err := config.Save(cfg); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
		return 1
	}

	fmt.Println(SuccessStyle.Render(fmt.Sprintf("Set %s = %s", args.ConfigKey, args.ConfigVal)))
	return 0
}
