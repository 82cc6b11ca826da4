// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package workflowgen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/defenseunicorns/workflowgen/actions"
)

// Explain describes a workflow as markdown
//
// If ids are given only those jobs are described.
func Explain(wf actions.Workflow, ids ...string) (string, error) {
	for _, id := range ids {
		if _, ok := wf.Job(id); !ok {
			return "", fmt.Errorf("job %q not found", id)
		}
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", wf.Name)

	sb.WriteString("## Triggers\n\n")
	if push := wf.On.Push; push != nil {
		fmt.Fprintf(&sb, "- `push` to %s\n", branches(push.Branches))
	}
	if pr := wf.On.PullRequest; pr != nil {
		types := make([]string, 0, len(pr.Types))
		for _, t := range pr.Types {
			types = append(types, string(t))
		}
		fmt.Fprintf(&sb, "- `pull_request` (%s) targeting %s\n", strings.Join(types, ", "), branches(pr.Branches))
	}

	if len(wf.Env) > 0 {
		sb.WriteString("\n## Environment\n\n")
		keys := make([]string, 0, len(wf.Env))
		for k := range wf.Env {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "- `%s=%s`\n", k, wf.Env[k])
		}
	}

	sb.WriteString("\n## Jobs\n")

	for _, id := range wf.JobIDs() {
		if len(ids) > 0 && !slices.Contains(ids, id) {
			continue
		}
		job, _ := wf.Job(id)
		explainJob(&sb, id, job)
	}

	return sb.String(), nil
}

func explainJob(sb *strings.Builder, id string, job actions.Job) {
	fmt.Fprintf(sb, "\n### `%s`: %s\n\n", id, job.Name)

	if len(job.Needs) > 0 {
		needs := make([]string, 0, len(job.Needs))
		for _, n := range job.Needs {
			needs = append(needs, "`"+n+"`")
		}
		fmt.Fprintf(sb, "- needs: %s\n", strings.Join(needs, ", "))
	}
	if job.If != nil {
		fmt.Fprintf(sb, "- runs if: `%s`\n", actions.Render(job.If))
	}
	if len(job.Permissions) > 0 {
		grants := make([]string, 0, len(job.Permissions))
		for _, scope := range job.Permissions.OrderedScopes() {
			grants = append(grants, fmt.Sprintf("%s: %s", scope, job.Permissions[scope]))
		}
		fmt.Fprintf(sb, "- permissions: %s\n", strings.Join(grants, ", "))
	}
	if c := job.Concurrency; c != nil {
		fmt.Fprintf(sb, "- concurrency: `%s` (cancel in progress: %t)\n", c.Group, c.CancelInProgress)
	}
	if len(job.Env) > 0 {
		keys := make([]string, 0, len(job.Env))
		for k := range job.Env {
			keys = append(keys, "`"+k+"`")
		}
		slices.Sort(keys)
		fmt.Fprintf(sb, "- env: %s\n", strings.Join(keys, ", "))
	}

	sb.WriteString("\n")
	for i, s := range job.Steps {
		fmt.Fprintf(sb, "%d. %s", i+1, s.Name)
		switch {
		case s.Uses != "":
			fmt.Fprintf(sb, " (`%s`)", s.Uses)
		case len(s.Run) == 1:
			fmt.Fprintf(sb, ": `%s`", s.Run[0])
		case len(s.Run) > 1:
			fmt.Fprintf(sb, " (%d commands)", len(s.Run))
		}
		sb.WriteString("\n")
	}
}

func branches(bs []string) string {
	if len(bs) == 0 {
		return "any branch"
	}
	quoted := make([]string, 0, len(bs))
	for _, b := range bs {
		quoted = append(quoted, "`"+b+"`")
	}
	return strings.Join(quoted, ", ")
}
