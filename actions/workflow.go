// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package actions

import (
	"maps"
	"slices"
)

// Workflow is a complete workflow document
//
// Jobs keep the order they were added in, which is also the order dependencies are resolved in.
type Workflow struct {
	Name string
	Env  Env
	On   Event
	ids  []string
	jobs map[string]Job
}

// NewWorkflow returns an empty workflow
func NewWorkflow(name string) Workflow {
	return Workflow{Name: name}
}

func (wf Workflow) clone() Workflow {
	wf.Env = maps.Clone(wf.Env)
	wf.ids = slices.Clone(wf.ids)
	jobs := make(map[string]Job, len(wf.jobs))
	for id, job := range wf.jobs {
		jobs[id] = job.clone()
	}
	wf.jobs = jobs
	wf.On = wf.On.clone()
	return wf
}

// AddEnv returns a copy of wf with a global environment binding
func (wf Workflow) AddEnv(key, value string) Workflow {
	next := wf.clone()
	if next.Env == nil {
		next.Env = Env{}
	}
	next.Env[key] = value
	return next
}

// WithOn returns a copy of wf listening on e
func (wf Workflow) WithOn(e Event) Workflow {
	next := wf.clone()
	next.On = e.clone()
	return next
}

// AddJob returns a copy of wf with job registered under id
//
// Adding an id twice keeps its original position and records it twice so
// Validate can report the duplicate.
func (wf Workflow) AddJob(id string, job Job) Workflow {
	next := wf.clone()
	next.ids = append(next.ids, id)
	if _, ok := next.jobs[id]; !ok {
		next.jobs[id] = job.clone()
	}
	return next
}

// Job returns the job registered under id
func (wf Workflow) Job(id string) (Job, bool) {
	job, ok := wf.jobs[id]
	if !ok {
		return Job{}, false
	}
	return job.clone(), true
}

// JobIDs returns job ids in the order they were added
func (wf Workflow) JobIDs() []string {
	seen := make(map[string]bool, len(wf.ids))
	ids := make([]string, 0, len(wf.ids))
	for _, id := range wf.ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of distinct jobs
func (wf Workflow) Len() int {
	return len(wf.jobs)
}
