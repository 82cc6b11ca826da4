// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// DefaultStyles returns the log styles used by the CLI.
func DefaultStyles() *log.Styles {
	styles := log.DefaultStyles()

	// https://github.com/charmbracelet/vhs/blob/main/themes.json
	styles.Levels[log.DebugLevel] = styles.Levels[log.DebugLevel].Foreground(lipgloss.AdaptiveColor{
		Light: "#2e7de9", // tokyonight-day blue
		Dark:  "#7aa2f7", // tokyonight blue
	})
	styles.Levels[log.InfoLevel] = styles.Levels[log.InfoLevel].Foreground(lipgloss.AdaptiveColor{
		Light: "#007197", // tokyonight-day cyan
		Dark:  "#7dcfff", // tokyonight cyan
	})
	styles.Levels[log.WarnLevel] = styles.Levels[log.WarnLevel].Foreground(yellow)
	styles.Levels[log.ErrorLevel] = styles.Levels[log.ErrorLevel].Foreground(red)
	styles.Levels[log.FatalLevel] = styles.Levels[log.FatalLevel].Foreground(lipgloss.AdaptiveColor{
		Light: "#9854f1", // tokyonight-day magenta
		Dark:  "#bb9af7", // tokyonight magenta
	})
	styles.Keys["path"] = FaintStyle
	styles.Keys["jobs"] = FaintStyle

	return styles
}

var (
	red = lipgloss.AdaptiveColor{
		Light: "#f52a65", // tokyonight-day red
		Dark:  "#f7768e", // tokyonight red
	}
	yellow = lipgloss.AdaptiveColor{
		Light: "#8c6c3e", // tokyonight-day amber/yellow
		Dark:  "#e0af68", // tokyonight amber/yellow
	}

	FaintStyle = lipgloss.NewStyle().Faint(true)

	Green = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{
		Light: "#587539", // tokyonight-day green
		Dark:  "#9ece6a", // tokyonight green
	})

	Red = lipgloss.NewStyle().Foreground(red)
)

// colorDiff styles the added and removed lines of a unified diff
func colorDiff(diff string) string {
	lines := strings.SplitAfter(diff, "\n")
	var sb strings.Builder
	for i, line := range lines {
		body, nl := strings.CutSuffix(line, "\n")
		if style, ok := diffLineStyle(i, body); ok {
			sb.WriteString(style.Render(body))
		} else {
			sb.WriteString(body)
		}
		if nl {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// diffLineStyle picks the style for line i of a unified diff
//
// File headers only appear on the first two lines, a removed line reading "-- x" is still a removal.
func diffLineStyle(i int, body string) (lipgloss.Style, bool) {
	switch {
	case i == 0 && strings.HasPrefix(body, "--- "), i == 1 && strings.HasPrefix(body, "+++ "):
		return FaintStyle, true
	case strings.HasPrefix(body, "@@"):
		return FaintStyle, true
	case strings.HasPrefix(body, "+"):
		return Green, true
	case strings.HasPrefix(body, "-"):
		return Red, true
	default:
		return lipgloss.Style{}, false
	}
}
