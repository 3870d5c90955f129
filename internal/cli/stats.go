// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// stats.go - provider request statistics command handler.
//
// Command: stats [--days N]
// Shows per-provider request counts, failure rates, and latency from
// the local telemetry log. Nothing here leaves the machine.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/parley/internal/telemetry"
	"github.com/jeranaias/parley/internal/util"
)

// HandleStats prints aggregated request statistics.
func HandleStats(args *Args, log *telemetry.Log) error {
	days, err := statsDays(args.Raw)
	if err != nil {
		return err
	}

	since := time.Now().AddDate(0, 0, -days)
	summaries, err := log.Summarize(since)
	if err != nil {
		return fmt.Errorf("read telemetry: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Printf("no requests recorded in the last %d day(s)\n", days)
		return nil
	}

	fmt.Printf("Requests in the last %d day(s):\n\n", days)
	fmt.Printf("  %s %8s %8s %10s\n", util.PadWidth("PROVIDER", 10), "COUNT", "FAILED", "AVG")
	for _, s := range summaries {
		fmt.Printf("  %s %8d %8d %10s\n",
			util.PadWidth(s.Provider, 10), s.Requests, s.Failures, formatDurationShort(s.AvgDuration()))
	}
	return nil
}

// statsDays parses the --days flag, defaulting to 7.
func statsDays(raw []string) (int, error) {
	days := 7
	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		var value string
		switch {
		case arg == "--days":
			if i+1 >= len(raw) {
				return 0, fmt.Errorf("--days requires a value")
			}
			i++
			value = raw[i]
		case strings.HasPrefix(arg, "--days="):
			value = strings.TrimPrefix(arg, "--days=")
		default:
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return 0, fmt.Errorf("invalid --days value %q", value)
		}
		days = n
	}
	return days, nil
}

// formatDurationShort formats a short duration string.
func formatDurationShort(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}
