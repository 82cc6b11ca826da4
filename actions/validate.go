// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package actions

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
)

// JobIDPattern is the pattern every job id must satisfy
var JobIDPattern = regexp.MustCompile("^[_a-zA-Z][a-zA-Z0-9_-]*$")

// EnvVariablePattern is the pattern every environment variable name must satisfy
var EnvVariablePattern = regexp.MustCompile("^[a-zA-Z_]+[a-zA-Z0-9_]*$")

// Validate checks the structural invariants of a workflow
//
// All problems are reported, joined into a single error.
func (wf Workflow) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if wf.Name == "" {
		add(".name must not be empty")
	}

	if len(wf.On.Names()) == 0 {
		add(".on must declare at least one event")
	}

	for key := range wf.Env {
		if !EnvVariablePattern.MatchString(key) {
			add(".env %q does not satisfy %q", key, EnvVariablePattern.String())
		}
	}

	if len(wf.ids) == 0 {
		add(".jobs must not be empty")
	}

	defined := make(map[string]bool, len(wf.ids))

	for _, id := range wf.ids {
		if defined[id] {
			add(".jobs.%s is defined more than once", id)
			continue
		}

		if !JobIDPattern.MatchString(id) {
			add(".jobs id %q does not satisfy %q", id, JobIDPattern.String())
		}

		errs = append(errs, validateJob(id, wf.jobs[id], defined)...)

		defined[id] = true
	}

	return errors.Join(errs...)
}

// validateJob checks a single job, defined holds every job id added before it
func validateJob(id string, job Job, defined map[string]bool) []error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if job.Name == "" {
		add(".jobs.%s.name must not be empty", id)
	}
	if job.RunsOn == "" {
		add(".jobs.%s.runs-on must not be empty", id)
	}
	if len(job.Steps) == 0 {
		add(".jobs.%s.steps must not be empty", id)
	}

	for idx, need := range job.Needs {
		switch {
		case need == id:
			add(".jobs.%s.needs[%d] cannot reference itself", id, idx)
		case !defined[need]:
			add(".jobs.%s.needs[%d] %q is not defined before this job", id, idx, need)
		case slices.Index(job.Needs, need) != idx:
			add(".jobs.%s.needs[%d] %q is listed more than once", id, idx, need)
		}
	}

	for _, scope := range job.Permissions.OrderedScopes() {
		if err := validLevel(job.Permissions[scope]); err != nil {
			add(".jobs.%s.permissions.%s %w", id, scope, err)
		}
	}

	if job.Concurrency != nil && job.Concurrency.Group == "" {
		add(".jobs.%s.concurrency.group must not be empty", id)
	}

	for key := range job.Env {
		if !EnvVariablePattern.MatchString(key) {
			add(".jobs.%s.env %q does not satisfy %q", id, key, EnvVariablePattern.String())
		}
	}

	for idx, step := range job.Steps {
		switch {
		case step.Uses != "" && len(step.Run) > 0:
			add(".jobs.%s.steps[%d] has both run and uses fields set", id, idx)
		case step.Uses == "" && len(step.Run) == 0:
			add(".jobs.%s.steps[%d] must have one of [run, uses] fields set", id, idx)
		case step.Kind == StepShell && step.Uses != "":
			add(".jobs.%s.steps[%d] is a %s step but sets uses", id, idx, step.Kind)
		case step.Kind != StepShell && len(step.Run) > 0:
			add(".jobs.%s.steps[%d] is a %s step but sets run", id, idx, step.Kind)
		}
	}

	return errs
}
