// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package steps

import (
	"slices"
	"strings"

	"github.com/defenseunicorns/workflowgen/actions"
)

// Toolchain builds a toolchain setup step
//
// The zero value installs nothing, add channels and components with the Add methods.
type Toolchain struct {
	channels   []string
	components []string
}

func (t Toolchain) with(channel, component string) Toolchain {
	next := Toolchain{
		channels:   slices.Clone(t.channels),
		components: slices.Clone(t.components),
	}
	if channel != "" && !slices.Contains(next.channels, channel) {
		next.channels = append(next.channels, channel)
	}
	if component != "" && !slices.Contains(next.components, component) {
		next.components = append(next.components, component)
	}
	return next
}

// AddStable installs the stable channel
func (t Toolchain) AddStable() Toolchain { return t.with("stable", "") }

// AddNightly installs the nightly channel
func (t Toolchain) AddNightly() Toolchain { return t.with("nightly", "") }

// AddClippy installs the clippy linter
func (t Toolchain) AddClippy() Toolchain { return t.with("", "clippy") }

// AddFmt installs rustfmt
func (t Toolchain) AddFmt() Toolchain { return t.with("", "rustfmt") }

// Step renders the toolchain as a step
func (t Toolchain) Step() actions.Step {
	s := actions.Step{
		Name: "Setup Rust Toolchain",
		Kind: actions.StepToolchain,
		Uses: ToolchainAction,
	}
	if len(t.channels) > 0 {
		s = s.WithInput("toolchain", strings.Join(t.channels, ", "))
	}
	if len(t.components) > 0 {
		s = s.WithInput("components", strings.Join(t.components, ", "))
	}
	return s
}
