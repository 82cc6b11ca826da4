// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package schema

import (
	"bytes"
	"fmt"
	"maps"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/defenseunicorns/workflowgen/actions"
)

// Header is written above every generated document
const Header = `# yaml-language-server: $schema=https://json.schemastore.org/github-workflow.json
#
# Code generated by workflowgen. DO NOT EDIT.
#
# Regenerate with "workflowgen generate", and commit the result.

`

// FromWorkflow converts the in-memory model into its document form
func FromWorkflow(wf actions.Workflow) Workflow {
	doc := Workflow{
		Name: wf.Name,
		Env:  env(wf.Env),
		Jobs: make(JobMap, wf.Len()),
	}

	if push := wf.On.Push; push != nil {
		doc.On.Push = &Push{Branches: push.Branches}
	}
	if pr := wf.On.PullRequest; pr != nil {
		types := make([]string, 0, len(pr.Types))
		for _, t := range pr.Types {
			types = append(types, string(t))
		}
		doc.On.PullRequest = &PullRequest{Types: types, Branches: pr.Branches}
	}

	for _, id := range wf.JobIDs() {
		job, _ := wf.Job(id)
		doc.Jobs[id] = fromJob(job)
	}

	return doc
}

func fromJob(job actions.Job) Job {
	out := Job{
		Name:   job.Name,
		RunsOn: job.RunsOn,
		Needs:  job.Needs,
		Env:    env(job.Env),
		Steps:  make([]Step, 0, len(job.Steps)),
	}

	if job.If != nil {
		out.If = actions.Render(job.If)
	}

	if len(job.Permissions) > 0 {
		out.Permissions = make(Permissions, len(job.Permissions))
		for scope, level := range job.Permissions {
			out.Permissions[string(scope)] = string(level)
		}
	}

	if c := job.Concurrency; c != nil {
		out.Concurrency = &Concurrency{
			Group:            c.Group,
			CancelInProgress: c.CancelInProgress,
		}
	}

	for _, s := range job.Steps {
		out.Steps = append(out.Steps, fromStep(s))
	}

	return out
}

func fromStep(s actions.Step) Step {
	out := Step{
		Name: s.Name,
		Uses: s.Uses,
		Run:  strings.Join(s.Run, "\n"),
	}
	if s.If != nil {
		out.If = actions.Render(s.If)
	}
	if len(s.With) > 0 {
		out.With = make(map[string]string, len(s.With))
		for _, in := range s.With {
			out.With[in.Key] = in.Value
		}
	}
	return out
}

func env(e actions.Env) Env {
	if len(e) == 0 {
		return nil
	}
	return Env(maps.Clone(e))
}

// Marshal renders a document as YAML, prefixed with Header
func Marshal(doc Workflow) ([]byte, error) {
	b, err := yaml.MarshalWithOptions(doc,
		yaml.Indent(2),
		yaml.IndentSequence(true),
		yaml.UseLiteralStyleIfMultiline(true),
		yaml.UseSingleQuote(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow %q: %w", doc.Name, err)
	}

	var buf bytes.Buffer
	buf.Grow(len(Header) + len(b))
	buf.WriteString(Header)
	buf.Write(b)

	return buf.Bytes(), nil
}
