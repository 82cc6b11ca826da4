// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package workflowgen

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// PrintYAML writes a rendered workflow to w, highlighted unless NO_COLOR is set
func PrintYAML(logger *log.Logger, w io.Writer, b []byte) error {
	if termenv.EnvNoColor() {
		_, err := w.Write(b)
		return err
	}

	style := "tokyonight-day"
	if lipgloss.HasDarkBackground() {
		style = "tokyonight-moon"
	}

	var buf strings.Builder
	if err := quick.Highlight(&buf, string(b), "yaml", "terminal256", style); err != nil {
		logger.Debugf("failed to highlight: %v", err)
		_, err := w.Write(b)
		return err
	}

	_, err := fmt.Fprint(w, buf.String())
	return err
}

// RenderMarkdown renders md for the terminal, NO_COLOR returns md untouched
func RenderMarkdown(md string) (string, error) {
	if termenv.EnvNoColor() {
		return md, nil
	}

	style := "light"
	if lipgloss.HasDarkBackground() {
		style = "dark"
	}

	return glamour.Render(md, style)
}
