// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package workflowgen generates GitHub Actions workflows for Rust projects from a few feature flags.
package workflowgen

import (
	"github.com/defenseunicorns/workflowgen/actions"
	"github.com/defenseunicorns/workflowgen/steps"
)

// DefaultBranch is the branch releases are cut from and triggers are restricted to
const DefaultBranch = "main"

// Job ids in the generated workflow
const (
	BuildJobID     = "build"
	ReleaseJobID   = "release"
	ReleasePRJobID = "release-pr"
	AutoFixJobID   = "auto-fix-lint-fmt"
)

// RegistryTokenSecret is the secret release jobs use to publish crates
const RegistryTokenSecret = "CARGO_REGISTRY_TOKEN"

// Config selects which features the generated workflow has
type Config struct {
	// Name of the workflow
	Name string
	// AutoRelease adds release-plz jobs, CARGO_REGISTRY_TOKEN must be set as a repository secret
	AutoRelease bool
	// Benchmarks runs cargo bench after the other checks
	Benchmarks bool
	// AutoFix commits formatting fixes back to pull requests
	AutoFix bool
}

// DefaultConfig returns a config with only the build job enabled
func DefaultConfig() Config {
	return Config{
		Name: "CI",
	}
}

// Assemble builds the workflow described by cfg
//
// Assemble is pure: the same config always yields an equal workflow.
func Assemble(cfg Config) actions.Workflow {
	event := actions.Event{
		Push: actions.OnPush(DefaultBranch),
		PullRequest: actions.OnPullRequest(
			[]actions.PullRequestType{actions.Opened, actions.Synchronize, actions.Reopened},
			DefaultBranch,
		),
	}

	build := BuildAndTest(cfg)

	wf := actions.NewWorkflow(cfg.Name).
		AddEnv("RUSTFLAGS", "-Dwarnings").
		WithOn(event).
		AddJob(BuildJobID, build)

	if cfg.AutoRelease {
		gate := ReleaseGate()
		permissions := actions.NewPermissions().
			Grant(actions.PullRequests, actions.Write).
			Grant(actions.Packages, actions.Write).
			Grant(actions.Contents, actions.Write)

		wf = wf.
			AddJob(ReleaseJobID, releaseJob(gate, permissions)).
			AddJob(ReleasePRJobID, releasePRJob(gate, permissions))
	}

	if cfg.AutoFix {
		wf = wf.AddJob(AutoFixJobID, autoFixJob())
	}

	return wf
}

// ReleaseGate passes only for pushes to the default branch
func ReleaseGate() actions.Expr {
	return actions.AllOf(
		actions.GitHubRef().Eq("refs/heads/"+DefaultBranch),
		actions.GitHubEventName().Eq("push"),
	)
}

// IsPullRequest passes only for pull_request events
func IsPullRequest() actions.Expr {
	return actions.GitHubEventName().Eq("pull_request")
}

// BuildAndTest is the job every generated workflow has
func BuildAndTest(cfg Config) actions.Job {
	job := actions.NewJob("Build and Test").
		Grant(actions.Contents, actions.Read).
		AddStep(
			steps.Checkout(),
			steps.Toolchain{}.AddStable().AddNightly().AddClippy().AddFmt().Step(),
			steps.NewCargo("test").Args("--all-features --workspace").Name("Cargo Test").Step(),
			steps.NewCargo("fmt").Nightly().Args("--check").Name("Cargo Fmt").Step(),
			steps.NewCargo("clippy").Nightly().Args("--all-features --workspace -- -D warnings").Name("Cargo Clippy").Step(),
		)

	if cfg.Benchmarks {
		job = job.AddStep(steps.NewCargo("bench").Args("--workspace").Name("Cargo Bench").Step())
	}

	return job
}

// releaseEnv binds the tokens release-plz needs
func releaseEnv(job actions.Job) actions.Job {
	return job.
		AddEnv(actions.GitHubTokenEnv()).
		AddEnv(actions.SecretEnv(RegistryTokenSecret))
}

func releaseJob(gate actions.Expr, permissions actions.Permissions) actions.Job {
	job := actions.NewJob("Release").
		WithCond(gate).
		AddNeeds(BuildJobID).
		WithPermissions(permissions)

	return releaseEnv(job).AddStep(
		steps.Checkout(),
		steps.Release(steps.ReleaseCrates),
	)
}

// releasePRJob queues overlapping runs for the same ref, a cancelled run could
// leave the release branch half updated
func releasePRJob(gate actions.Expr, permissions actions.Permissions) actions.Job {
	job := actions.NewJob("Release PR").
		WithCond(gate).
		WithConcurrency(actions.Concurrency{
			Group:            "release-" + actions.Interpolate(actions.GitHubRef()),
			CancelInProgress: false,
		}).
		AddNeeds(BuildJobID).
		WithPermissions(permissions)

	return releaseEnv(job).AddStep(
		steps.Checkout(),
		steps.Release(steps.ReleasePR),
	)
}

func autoFixJob() actions.Job {
	return actions.NewJob("Auto Fix Lint and Fmt").
		WithCond(IsPullRequest()).
		Grant(actions.Contents, actions.Write).
		AddStep(
			steps.Checkout(),
			steps.Toolchain{}.AddStable().AddNightly().AddFmt().Step(),
			steps.NewCargo("fmt").Nightly().Name("Cargo Fmt (Fix)").Step(),
			steps.Run("Commit Fixes",
				`git config user.name "github-actions[bot]"`,
				`git config user.email "github-actions[bot]@users.noreply.github.com"`,
				`git add .`,
				`git commit -m "style: apply automatic formatting fixes"`,
				`git push`,
			),
		)
}
