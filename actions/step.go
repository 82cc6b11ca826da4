// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package actions

import (
	"slices"
)

// StepKind classifies a step
type StepKind string

const (
	// StepCheckout checks out the repository
	StepCheckout StepKind = "checkout"
	// StepToolchain installs a language toolchain
	StepToolchain StepKind = "toolchain-setup"
	// StepShell runs shell commands
	StepShell StepKind = "shell-command"
	// StepAction calls a published action with inputs
	StepAction StepKind = "structured-action"
)

// Variant selects a toolchain channel for a step
type Variant string

const (
	// Stable is the default channel
	Stable Variant = ""
	// Nightly runs the step on the nightly channel
	Nightly Variant = "nightly"
)

// Input is a single key/value passed to an action via `with`
type Input struct {
	Key   string
	Value string
}

// Step is a single unit of work within a job
//
// Steps are either `uses` (Uses + With) or `run` (Run) steps, never both.
type Step struct {
	// Name is displayed by the Actions UI
	Name string
	Kind StepKind
	// Uses is an action reference, e.g. actions/checkout@v4
	Uses string
	// With is the ordered list of action inputs
	With []Input
	// Run is the ordered list of shell lines
	Run     []string
	Variant Variant
	If      Expr
}

// Input returns the value of the input named key
func (s Step) Input(key string) (string, bool) {
	for _, in := range s.With {
		if in.Key == key {
			return in.Value, true
		}
	}
	return "", false
}

// WithInput returns a copy of s with an input appended, or replaced if key is already set
func (s Step) WithInput(key, value string) Step {
	s.With = slices.Clone(s.With)
	for i := range s.With {
		if s.With[i].Key == key {
			s.With[i].Value = value
			return s
		}
	}
	s.With = append(s.With, Input{Key: key, Value: value})
	return s
}

// WithCond returns a copy of s gated by cond
func (s Step) WithCond(cond Expr) Step {
	s.If = cond
	return s
}

func (s Step) clone() Step {
	s.With = slices.Clone(s.With)
	s.Run = slices.Clone(s.Run)
	return s
}
