// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package steps

import (
	"strings"

	"github.com/defenseunicorns/workflowgen/actions"
)

// Cargo builds a step that runs a cargo subcommand
type Cargo struct {
	subcommand string
	name       string
	args       string
	variant    actions.Variant
}

// NewCargo returns a builder for `cargo <subcommand>`
func NewCargo(subcommand string) Cargo {
	return Cargo{subcommand: subcommand}
}

// Name sets the display name
func (c Cargo) Name(name string) Cargo {
	c.name = name
	return c
}

// Args sets the raw argument string, it is passed through untouched
func (c Cargo) Args(args string) Cargo {
	c.args = args
	return c
}

// Nightly runs the subcommand with the nightly toolchain
func (c Cargo) Nightly() Cargo {
	c.variant = actions.Nightly
	return c
}

// Command returns the shell command line
func (c Cargo) Command() string {
	parts := []string{"cargo"}
	if c.variant != actions.Stable {
		parts = append(parts, "+"+string(c.variant))
	}
	parts = append(parts, c.subcommand)
	if args := strings.TrimSpace(c.args); args != "" {
		parts = append(parts, args)
	}
	return strings.Join(parts, " ")
}

// Step renders the builder as a step
func (c Cargo) Step() actions.Step {
	name := c.name
	if name == "" {
		name = "Cargo " + c.subcommand
	}
	return actions.Step{
		Name:    name,
		Kind:    actions.StepShell,
		Run:     []string{c.Command()},
		Variant: c.variant,
	}
}
