// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package actions

import (
	"maps"
	"slices"
)

// DefaultRunner is the runner label jobs use unless told otherwise
const DefaultRunner = "ubuntu-latest"

// Concurrency limits how many runs sharing Group may execute at once
type Concurrency struct {
	// Group is the concurrency key, usually an interpolated expression
	Group string
	// CancelInProgress cancels the older run instead of queueing the newer one
	CancelInProgress bool
}

// Env is a set of environment variable bindings
type Env map[string]string

// Job is a named, independently schedulable list of steps
//
// Job is a value: every With/Add method returns a new Job and leaves the receiver untouched.
type Job struct {
	Name        string
	RunsOn      string
	Steps       []Step
	Permissions Permissions
	If          Expr
	Concurrency *Concurrency
	// Needs holds the ids of upstream jobs
	Needs []string
	Env   Env
}

// NewJob returns an empty job that runs on DefaultRunner
func NewJob(name string) Job {
	return Job{
		Name:   name,
		RunsOn: DefaultRunner,
	}
}

func (j Job) clone() Job {
	steps := make([]Step, len(j.Steps))
	for i, s := range j.Steps {
		steps[i] = s.clone()
	}
	j.Steps = steps
	j.Permissions = maps.Clone(j.Permissions)
	j.Needs = slices.Clone(j.Needs)
	j.Env = maps.Clone(j.Env)
	if j.Concurrency != nil {
		c := *j.Concurrency
		j.Concurrency = &c
	}
	return j
}

// WithRunsOn returns a copy of j running on the given runner label
func (j Job) WithRunsOn(runner string) Job {
	next := j.clone()
	next.RunsOn = runner
	return next
}

// WithPermissions returns a copy of j with every grant in p added
func (j Job) WithPermissions(p Permissions) Job {
	next := j.clone()
	next.Permissions = next.Permissions.Merge(p)
	return next
}

// Grant returns a copy of j with a single scope granted
func (j Job) Grant(scope Scope, level Level) Job {
	next := j.clone()
	next.Permissions = next.Permissions.Grant(scope, level)
	return next
}

// WithCond returns a copy of j gated by cond
func (j Job) WithCond(cond Expr) Job {
	next := j.clone()
	next.If = cond
	return next
}

// WithConcurrency returns a copy of j using the given concurrency policy
func (j Job) WithConcurrency(c Concurrency) Job {
	next := j.clone()
	next.Concurrency = &c
	return next
}

// AddNeeds returns a copy of j depending on the given job ids
//
// Ids already present are not added twice.
func (j Job) AddNeeds(ids ...string) Job {
	next := j.clone()
	for _, id := range ids {
		if !slices.Contains(next.Needs, id) {
			next.Needs = append(next.Needs, id)
		}
	}
	return next
}

// AddStep returns a copy of j with steps appended in order
func (j Job) AddStep(steps ...Step) Job {
	next := j.clone()
	for _, s := range steps {
		next.Steps = append(next.Steps, s.clone())
	}
	return next
}

// AddEnv returns a copy of j with an environment variable bound
func (j Job) AddEnv(key, value string) Job {
	next := j.clone()
	if next.Env == nil {
		next.Env = Env{}
	}
	next.Env[key] = value
	return next
}

// GitHubTokenEnv is the GITHUB_TOKEN binding to the built-in token
func GitHubTokenEnv() (string, string) {
	return "GITHUB_TOKEN", Interpolate(Secret("GITHUB_TOKEN"))
}

// SecretEnv binds name to the secret of the same name
func SecretEnv(name string) (string, string) {
	return name, Interpolate(Secret(name))
}
