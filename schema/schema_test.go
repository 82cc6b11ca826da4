// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package schema

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defenseunicorns/workflowgen/actions"
)

func testWorkflow() actions.Workflow {
	gate := actions.AllOf(actions.GitHubRef().Eq("refs/heads/main"), actions.GitHubEventName().Eq("push"))

	build := actions.NewJob("Build").
		Grant(actions.Contents, actions.Read).
		AddStep(
			actions.Step{Name: "Checkout", Kind: actions.StepCheckout, Uses: "actions/checkout@v4"},
			actions.Step{Name: "Test", Kind: actions.StepShell, Run: []string{"cargo test", "cargo doc"}},
		)

	release := actions.NewJob("Release").
		WithCond(gate).
		AddNeeds("build").
		WithConcurrency(actions.Concurrency{Group: "release-${{ github.ref }}"}).
		AddEnv(actions.GitHubTokenEnv()).
		AddStep(actions.Step{Name: "Release", Kind: actions.StepAction, Uses: "release-plz/action@v0.5"}.WithInput("command", "release"))

	return actions.NewWorkflow("CI").
		AddEnv("RUSTFLAGS", "-Dwarnings").
		WithOn(actions.Event{
			Push:        actions.OnPush("main"),
			PullRequest: actions.OnPullRequest([]actions.PullRequestType{actions.Opened}, "main"),
		}).
		AddJob("build", build).
		AddJob("release", release)
}

func TestFromWorkflow(t *testing.T) {
	doc := FromWorkflow(testWorkflow())

	assert.Equal(t, "CI", doc.Name)
	assert.Equal(t, Env{"RUSTFLAGS": "-Dwarnings"}, doc.Env)
	assert.Equal(t, &Push{Branches: []string{"main"}}, doc.On.Push)
	assert.Equal(t, &PullRequest{Types: []string{"opened"}, Branches: []string{"main"}}, doc.On.PullRequest)

	require.Len(t, doc.Jobs, 2)

	build := doc.Jobs["build"]
	assert.Equal(t, "ubuntu-latest", build.RunsOn)
	assert.Equal(t, Permissions{"contents": "read"}, build.Permissions)
	assert.Empty(t, build.If)
	assert.Nil(t, build.Concurrency)
	assert.Equal(t, []Step{
		{Name: "Checkout", Uses: "actions/checkout@v4"},
		{Name: "Test", Run: "cargo test\ncargo doc"},
	}, build.Steps)

	release := doc.Jobs["release"]
	assert.Equal(t, []string{"build"}, release.Needs)
	assert.Equal(t, "github.ref == 'refs/heads/main' && github.event_name == 'push'", release.If)
	assert.Equal(t, &Concurrency{Group: "release-${{ github.ref }}"}, release.Concurrency)
	assert.Equal(t, Env{"GITHUB_TOKEN": "${{ secrets.GITHUB_TOKEN }}"}, release.Env)
	assert.Equal(t, map[string]string{"command": "release"}, release.Steps[0].With)
}

func TestMarshalRoundTrip(t *testing.T) {
	doc := FromWorkflow(testWorkflow())
	require.NoError(t, Validate(doc))

	b, err := Marshal(doc)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(b), Header))
	assert.Contains(t, string(b), "Code generated by workflowgen. DO NOT EDIT.")
	assert.Contains(t, string(b), "\nname: CI\n")

	again, err := Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, b, again)

	read, err := ReadAndValidate(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, doc, read)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name        string
		mutate      func(*Workflow)
		expectedErr string
	}{
		{
			name: "unknown need",
			mutate: func(wf *Workflow) {
				job := wf.Jobs["release"]
				job.Needs = []string{"deploy"}
				wf.Jobs["release"] = job
			},
			expectedErr: `.jobs.release.needs[0] "deploy" not found`,
		},
		{
			name: "run and uses",
			mutate: func(wf *Workflow) {
				job := wf.Jobs["build"]
				job.Steps = []Step{{Name: "both", Uses: "a@v1", Run: "echo"}}
				wf.Jobs["build"] = job
			},
			expectedErr: "jobs.build.steps.0: Must validate one and only one schema (oneOf)",
		},
		{
			name: "unknown permission level",
			mutate: func(wf *Workflow) {
				job := wf.Jobs["build"]
				job.Permissions = Permissions{"contents": "admin"}
				wf.Jobs["build"] = job
			},
			expectedErr: "jobs.build.permissions.contents",
		},
		{
			name: "no triggers",
			mutate: func(wf *Workflow) {
				wf.On = On{}
			},
			expectedErr: "on: Must have at least 1 properties",
		},
		{
			name: "bad job id",
			mutate: func(wf *Workflow) {
				wf.Jobs["1st"] = wf.Jobs["build"]
			},
			expectedErr: `"1st"`,
		},
		{
			name: "no steps",
			mutate: func(wf *Workflow) {
				job := wf.Jobs["build"]
				job.Steps = []Step{}
				wf.Jobs["build"] = job
			},
			expectedErr: "jobs.build.steps: Array must have at least 1 items",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := FromWorkflow(testWorkflow())
			tc.mutate(&doc)
			err := Validate(doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectedErr)
		})
	}
}

func TestWorkflowSchema(t *testing.T) {
	s := WorkflowSchema()
	assert.Equal(t, SchemaID, string(s.ID))

	jobs, ok := s.Properties.Get("jobs")
	require.True(t, ok)
	require.NotNil(t, jobs.PropertyNames)
	assert.Equal(t, actions.JobIDPattern.String(), jobs.PropertyNames.Pattern)

	b, err := json.Marshal(s)
	require.NoError(t, err)

	current, err := os.ReadFile("workflow.schema.json")
	require.NoError(t, err)

	assert.JSONEq(t, string(current), string(b))
}
