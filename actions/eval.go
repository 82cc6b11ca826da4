// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package actions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
)

// RunContext is the subset of the Actions runtime context needed to evaluate conditions locally
type RunContext struct {
	// EventName is the triggering event, e.g. push or pull_request
	EventName string
	// Ref is the fully formed ref, e.g. refs/heads/main or refs/pull/1/merge
	Ref string
	// BaseRef is the target branch of a pull request
	BaseRef string
	// Action is the activity type of the event, e.g. opened
	Action string
	Secrets map[string]string
}

func (rc RunContext) env() map[string]any {
	secrets := make(map[string]any, len(rc.Secrets))
	for k, v := range rc.Secrets {
		secrets[k] = v
	}
	return map[string]any{
		"github": map[string]any{
			"event_name": rc.EventName,
			"ref":        rc.Ref,
			"base_ref":   rc.BaseRef,
			"event": map[string]any{
				"action": rc.Action,
			},
		},
		"secrets": secrets,
	}
}

// Eval evaluates a condition against a run context using expr as the engine
//
// A nil condition always passes.
func Eval(e Expr, rc RunContext) (bool, error) {
	if e == nil {
		return true, nil
	}

	src := exprSource(e)

	program, err := expr.Compile(src, expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("compiling %q: %w", src, err)
	}

	out, err := expr.Run(program, rc.env())
	if err != nil {
		return false, fmt.Errorf("evaluating %q: %w", src, err)
	}

	return out.(bool), nil // this is safe due to expr.AsBool()
}

// exprSource renders e in expr-lang syntax, which shares operators and precedence
// with Actions expressions but wants Go style string literals
func exprSource(e Expr) string {
	var sb strings.Builder
	write(&sb, e, 0, strconv.Quote)
	return sb.String()
}
