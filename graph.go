// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package workflowgen

import (
	"fmt"

	"github.com/awalterschulze/gographviz"

	"github.com/defenseunicorns/workflowgen/actions"
)

// Graph renders the job dependency graph of wf in DOT format
//
// Edges point from a job to the jobs that need it, gated jobs are drawn dashed.
// Names and labels are quoted as needed by gographviz.
func Graph(wf actions.Workflow) (string, error) {
	g := gographviz.NewEscape()
	if err := g.SetName("workflow"); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	if err := g.AddAttr("workflow", "label", wf.Name); err != nil {
		return "", err
	}

	for _, id := range wf.JobIDs() {
		job, _ := wf.Job(id)
		attrs := map[string]string{
			"label": job.Name,
			"shape": "box",
		}
		if job.If != nil {
			attrs["style"] = "dashed"
			attrs["tooltip"] = actions.Render(job.If)
		}
		if err := g.AddNode("workflow", id, attrs); err != nil {
			return "", fmt.Errorf("adding job %q: %w", id, err)
		}
	}

	for _, id := range wf.JobIDs() {
		job, _ := wf.Job(id)
		for _, need := range job.Needs {
			if err := g.AddEdge(need, id, true, nil); err != nil {
				return "", fmt.Errorf("adding edge %s -> %s: %w", need, id, err)
			}
		}
	}

	return g.String(), nil
}
