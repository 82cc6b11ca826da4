// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package actions

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// Level is an access level granted to the GITHUB_TOKEN for a scope
type Level string

const (
	// None revokes access to a scope
	None Level = "none"
	// Read grants read access
	Read Level = "read"
	// Write grants read and write access
	Write Level = "write"
)

// Scope is a GITHUB_TOKEN permission scope
type Scope string

// Known permission scopes
const (
	Actions        Scope = "actions"
	Checks         Scope = "checks"
	Contents       Scope = "contents"
	Deployments    Scope = "deployments"
	IDToken        Scope = "id-token"
	Issues         Scope = "issues"
	Packages       Scope = "packages"
	Pages          Scope = "pages"
	PullRequests   Scope = "pull-requests"
	SecurityEvents Scope = "security-events"
	Statuses       Scope = "statuses"
)

// Scopes returns every known scope in alphabetical order
func Scopes() []Scope {
	return []Scope{Actions, Checks, Contents, Deployments, IDToken, Issues, Packages, Pages, PullRequests, SecurityEvents, Statuses}
}

// Levels returns every access level
func Levels() []Level {
	return []Level{None, Read, Write}
}

// Permissions maps scopes to access levels
//
// Treat a Permissions value as immutable, Grant returns a modified copy.
type Permissions map[Scope]Level

// NewPermissions returns an empty permission set
func NewPermissions() Permissions {
	return Permissions{}
}

// Grant returns a copy of p with scope set to level
func (p Permissions) Grant(scope Scope, level Level) Permissions {
	next := make(Permissions, len(p)+1)
	maps.Copy(next, p)
	next[scope] = level
	return next
}

// Merge returns a copy of p with every grant in other applied on top
func (p Permissions) Merge(other Permissions) Permissions {
	next := make(Permissions, len(p)+len(other))
	maps.Copy(next, p)
	maps.Copy(next, other)
	return next
}

// OrderedScopes returns the granted scopes in alphabetical order
func (p Permissions) OrderedScopes() []Scope {
	return slices.SortedFunc(maps.Keys(p), func(a, b Scope) int {
		return cmp.Compare(a, b)
	})
}

func validLevel(level Level) error {
	if !slices.Contains(Levels(), level) {
		return fmt.Errorf("%q is not one of %v", level, Levels())
	}
	return nil
}
