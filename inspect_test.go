// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package workflowgen

import (
	"bytes"
	"testing"

	"github.com/awalterschulze/gographviz"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defenseunicorns/workflowgen/actions"
)

func TestExplain(t *testing.T) {
	wf := Assemble(Config{Name: "CI", AutoRelease: true, AutoFix: true})

	md, err := Explain(wf)
	require.NoError(t, err)

	assert.Contains(t, md, "# CI\n")
	assert.Contains(t, md, "- `push` to `main`\n")
	assert.Contains(t, md, "- `pull_request` (opened, synchronize, reopened) targeting `main`\n")
	assert.Contains(t, md, "- `RUSTFLAGS=-Dwarnings`\n")
	assert.Contains(t, md, "### `build`: Build and Test\n")
	assert.Contains(t, md, "1. Checkout Code (`actions/checkout@v4`)\n")
	assert.Contains(t, md, "3. Cargo Test: `cargo test --all-features --workspace`\n")
	assert.Contains(t, md, "### `release`: Release\n")
	assert.Contains(t, md, "- needs: `build`\n")
	assert.Contains(t, md, "- permissions: contents: write, packages: write, pull-requests: write\n")
	assert.Contains(t, md, "- env: `CARGO_REGISTRY_TOKEN`, `GITHUB_TOKEN`\n")
	assert.Contains(t, md, "- concurrency: `release-${{ github.ref }}` (cancel in progress: false)\n")
	assert.Contains(t, md, "- runs if: `github.event_name == 'pull_request'`\n")
	assert.Contains(t, md, "4. Commit Fixes (5 commands)\n")

	md, err = Explain(wf, ReleasePRJobID)
	require.NoError(t, err)
	assert.Contains(t, md, "### `release-pr`: Release PR\n")
	assert.NotContains(t, md, "### `build`")
	assert.NotContains(t, md, "### `release`:")

	_, err = Explain(wf, "deploy")
	require.EqualError(t, err, `job "deploy" not found`)
}

func TestGraph(t *testing.T) {
	wf := Assemble(Config{Name: "CI", AutoRelease: true, AutoFix: true})

	dot, err := Graph(wf)
	require.NoError(t, err)

	ast, err := gographviz.ParseString(dot)
	require.NoError(t, err)
	g := gographviz.NewGraph()
	require.NoError(t, gographviz.Analyse(ast, g))

	assert.True(t, g.Directed)
	assert.Len(t, g.Nodes.Nodes, 4)

	assert.True(t, g.IsNode("build"))
	assert.True(t, g.IsNode(`"release-pr"`))
	assert.True(t, g.IsNode(`"auto-fix-lint-fmt"`))

	assert.Len(t, g.Edges.Edges, 2)
	assert.Len(t, g.Edges.SrcToDsts["build"], 2)
	assert.Contains(t, g.Edges.SrcToDsts["build"], "release")
	assert.Contains(t, g.Edges.SrcToDsts["build"], `"release-pr"`)
	assert.Empty(t, g.Edges.DstToSrcs["build"])
	assert.Empty(t, g.Edges.DstToSrcs[`"auto-fix-lint-fmt"`])

	assert.Equal(t, "dashed", g.Nodes.Lookup["release"].Attrs["style"])
	assert.Empty(t, g.Nodes.Lookup["build"].Attrs["style"])
}

func TestPlan(t *testing.T) {
	wf := Assemble(Config{Name: "CI", AutoRelease: true, AutoFix: true})

	runs := func(plans []JobPlan) map[string]bool {
		m := make(map[string]bool, len(plans))
		for _, p := range plans {
			m[p.ID] = p.Runs
		}
		return m
	}

	testCases := []struct {
		name     string
		rc       actions.RunContext
		expected map[string]bool
	}{
		{
			name: "push to main",
			rc:   actions.RunContext{EventName: "push", Ref: "refs/heads/main"},
			expected: map[string]bool{
				BuildJobID: true, ReleaseJobID: true, ReleasePRJobID: true, AutoFixJobID: false,
			},
		},
		{
			name: "pull request",
			rc:   actions.RunContext{EventName: "pull_request", Ref: "refs/pull/1/merge", BaseRef: "main", Action: "opened"},
			expected: map[string]bool{
				BuildJobID: true, ReleaseJobID: false, ReleasePRJobID: false, AutoFixJobID: true,
			},
		},
		{
			name: "closed pull request",
			rc:   actions.RunContext{EventName: "pull_request", Ref: "refs/pull/1/merge", BaseRef: "main", Action: "closed"},
			expected: map[string]bool{
				BuildJobID: false, ReleaseJobID: false, ReleasePRJobID: false, AutoFixJobID: false,
			},
		},
		{
			name: "push to a feature branch",
			rc:   actions.RunContext{EventName: "push", Ref: "refs/heads/feature"},
			expected: map[string]bool{
				BuildJobID: false, ReleaseJobID: false, ReleasePRJobID: false, AutoFixJobID: false,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			plans, err := Plan(wf, tc.rc)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, runs(plans))
		})
	}

	plans, err := Plan(wf, actions.RunContext{EventName: "pull_request", Ref: "refs/pull/1/merge", BaseRef: "main", Action: "synchronize"})
	require.NoError(t, err)
	require.Len(t, plans, 4)
	assert.Equal(t, JobPlan{
		ID:     ReleaseJobID,
		Name:   "Release",
		Reason: `condition "github.ref == 'refs/heads/main' && github.event_name == 'push'" is false`,
	}, plans[1])

	plans, err = Plan(wf, actions.RunContext{EventName: "schedule"})
	require.NoError(t, err)
	assert.Equal(t, "workflow is not triggered by schedule", plans[0].Reason)
}

func TestPlanSkipsDependents(t *testing.T) {
	wf := actions.NewWorkflow("CI").
		WithOn(actions.Event{Push: actions.OnPush()}).
		AddJob("build", actions.NewJob("Build").
			WithCond(actions.GitHubRef().Eq("refs/heads/main")).
			AddStep(actions.Step{Name: "Test", Kind: actions.StepShell, Run: []string{"cargo test"}})).
		AddJob("deploy", actions.NewJob("Deploy").
			AddNeeds("build").
			AddStep(actions.Step{Name: "Deploy", Kind: actions.StepShell, Run: []string{"deploy"}}))

	plans, err := Plan(wf, actions.RunContext{EventName: "push", Ref: "refs/heads/dev"})
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.False(t, plans[0].Runs)
	assert.False(t, plans[1].Runs)
	assert.Equal(t, "needs skipped job(s) build", plans[1].Reason)
}

func TestPrintYAML(t *testing.T) {
	b, err := Render(DefaultConfig())
	require.NoError(t, err)

	logger := log.New(&bytes.Buffer{})

	t.Setenv("NO_COLOR", "1")
	var plain bytes.Buffer
	require.NoError(t, PrintYAML(logger, &plain, b))
	assert.Equal(t, string(b), plain.String())

	t.Setenv("NO_COLOR", "")
	var highlighted bytes.Buffer
	require.NoError(t, PrintYAML(logger, &highlighted, b))
	assert.Equal(t, string(b), ansi.Strip(highlighted.String()))
}

func TestRenderMarkdown(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	out, err := RenderMarkdown("# CI\n")
	require.NoError(t, err)
	assert.Equal(t, "# CI\n", out)
}
