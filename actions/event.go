// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package actions

import (
	"slices"
	"strings"
)

// PullRequestType is a pull_request activity type
type PullRequestType string

// Pull request activity types used by the generator
const (
	Opened      PullRequestType = "opened"
	Synchronize PullRequestType = "synchronize"
	Reopened    PullRequestType = "reopened"
	Closed      PullRequestType = "closed"
	Edited      PullRequestType = "edited"
)

// Push triggers a workflow on push
type Push struct {
	Branches []string
}

// PullRequest triggers a workflow on pull request activity
type PullRequest struct {
	Types    []PullRequestType
	Branches []string
}

// Event is the set of triggers for a workflow
type Event struct {
	Push        *Push
	PullRequest *PullRequest
}

// OnPush returns a push trigger restricted to branches
func OnPush(branches ...string) *Push {
	return &Push{Branches: slices.Clone(branches)}
}

// OnPullRequest returns a pull_request trigger restricted to branches
func OnPullRequest(types []PullRequestType, branches ...string) *PullRequest {
	return &PullRequest{
		Types:    slices.Clone(types),
		Branches: slices.Clone(branches),
	}
}

func (e Event) clone() Event {
	if e.Push != nil {
		e.Push = OnPush(e.Push.Branches...)
	}
	if e.PullRequest != nil {
		e.PullRequest = OnPullRequest(e.PullRequest.Types, e.PullRequest.Branches...)
	}
	return e
}

// Triggers reports whether rc would start a run of a workflow listening on e
//
// Branch filters are matched literally, glob patterns are not supported.
func (e Event) Triggers(rc RunContext) bool {
	switch rc.EventName {
	case "push":
		if e.Push == nil {
			return false
		}
		branch, ok := strings.CutPrefix(rc.Ref, "refs/heads/")
		if !ok {
			return false
		}
		return len(e.Push.Branches) == 0 || slices.Contains(e.Push.Branches, branch)
	case "pull_request":
		if e.PullRequest == nil {
			return false
		}
		if len(e.PullRequest.Types) > 0 && !slices.Contains(e.PullRequest.Types, PullRequestType(rc.Action)) {
			return false
		}
		return len(e.PullRequest.Branches) == 0 || slices.Contains(e.PullRequest.Branches, rc.BaseRef)
	default:
		return false
	}
}

// Names returns the names of the configured events
func (e Event) Names() []string {
	var names []string
	if e.Push != nil {
		names = append(names, "push")
	}
	if e.PullRequest != nil {
		names = append(names, "pull_request")
	}
	return names
}
