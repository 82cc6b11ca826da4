// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package workflowgen

import (
	"fmt"
	"strings"

	"github.com/defenseunicorns/workflowgen/actions"
)

// JobPlan is the simulated outcome of one job for a given trigger
type JobPlan struct {
	ID   string
	Name string
	// Runs is true when the job would be scheduled
	Runs bool
	// Reason explains why a job is skipped
	Reason string
}

// Plan simulates which jobs of wf would run for rc
//
// Jobs are visited in dependency order. A job runs when the workflow is triggered,
// every job it needs runs, and its condition passes. The simulation assumes every
// scheduled job succeeds.
func Plan(wf actions.Workflow, rc actions.RunContext) ([]JobPlan, error) {
	ids := wf.JobIDs()
	plans := make([]JobPlan, 0, len(ids))
	runs := make(map[string]bool, len(ids))

	triggered := wf.On.Triggers(rc)

	for _, id := range ids {
		job, _ := wf.Job(id)
		p := JobPlan{ID: id, Name: job.Name}

		switch {
		case !triggered:
			p.Reason = fmt.Sprintf("workflow is not triggered by %s", describe(rc))
		default:
			var skipped []string
			for _, need := range job.Needs {
				if !runs[need] {
					skipped = append(skipped, need)
				}
			}
			if len(skipped) > 0 {
				p.Reason = fmt.Sprintf("needs skipped job(s) %s", strings.Join(skipped, ", "))
				break
			}

			ok, err := actions.Eval(job.If, rc)
			if err != nil {
				return nil, fmt.Errorf(".jobs.%s.if: %w", id, err)
			}
			if !ok {
				p.Reason = fmt.Sprintf("condition %q is false", actions.Render(job.If))
				break
			}
			p.Runs = true
		}

		runs[id] = p.Runs
		plans = append(plans, p)
	}

	return plans, nil
}

func describe(rc actions.RunContext) string {
	parts := []string{rc.EventName}
	if rc.Action != "" {
		parts = append(parts, "("+rc.Action+")")
	}
	if rc.Ref != "" {
		parts = append(parts, "on "+rc.Ref)
	}
	if rc.BaseRef != "" {
		parts = append(parts, "into "+rc.BaseRef)
	}
	return strings.Join(parts, " ")
}
