// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package steps provides canonical steps for Rust workflows
package steps

import (
	"strings"

	"github.com/defenseunicorns/workflowgen/actions"
)

// Action references used by the generated steps
const (
	CheckoutAction  = "actions/checkout@v4"
	ToolchainAction = "actions-rust-lang/setup-rust-toolchain@v1"
	ReleaseAction   = "release-plz/action@v0.5"
)

// Checkout checks out the repository under $GITHUB_WORKSPACE
func Checkout() actions.Step {
	return actions.Step{
		Name: "Checkout Code",
		Kind: actions.StepCheckout,
		Uses: CheckoutAction,
	}
}

// Run is a free-form scripted step, lines run in order
func Run(name string, lines ...string) actions.Step {
	run := make([]string, 0, len(lines))
	for _, l := range lines {
		run = append(run, strings.TrimSpace(l))
	}
	return actions.Step{
		Name: name,
		Kind: actions.StepShell,
		Run:  run,
	}
}

// ReleaseCommand is the release-plz command to run
type ReleaseCommand string

const (
	// ReleasePR opens or updates the release pull request
	ReleasePR ReleaseCommand = "release-pr"
	// ReleaseCrates publishes unpublished crates and tags them
	ReleaseCrates ReleaseCommand = "release"
)

// Release runs release-plz with the given command
func Release(command ReleaseCommand) actions.Step {
	return actions.Step{
		Name: "Release Plz",
		Kind: actions.StepAction,
		Uses: ReleaseAction,
	}.WithInput("command", string(command))
}
