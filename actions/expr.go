// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package actions provides an immutable, in-memory model of a GitHub Actions workflow
package actions

import (
	"strings"
)

// Expr is a boolean (or value) expression evaluated by the Actions runner
//
// Expressions are plain data: building one never evaluates anything.
type Expr interface {
	precedence() int
}

const (
	precOr = iota + 1
	precAnd
	precEquals
	precNot
	precAtom
)

// ContextField references a field of the runtime context, e.g. github.ref
type ContextField struct {
	Path string
}

// Literal is a string literal
type Literal struct {
	Value string
}

// Equals compares two expressions for equality
type Equals struct {
	Left, Right Expr
}

// And is a logical conjunction
type And struct {
	Left, Right Expr
}

// Or is a logical disjunction
type Or struct {
	Left, Right Expr
}

// Not negates its operand
type Not struct {
	Operand Expr
}

func (ContextField) precedence() int { return precAtom }
func (Literal) precedence() int      { return precAtom }
func (Equals) precedence() int       { return precEquals }
func (And) precedence() int          { return precAnd }
func (Or) precedence() int           { return precOr }
func (Not) precedence() int          { return precNot }

// Context returns a reference to a runtime context field
func Context(path ...string) ContextField {
	return ContextField{Path: strings.Join(path, ".")}
}

// GitHubRef is github.ref, the fully formed ref that triggered the run
func GitHubRef() ContextField {
	return Context("github", "ref")
}

// GitHubEventName is github.event_name
func GitHubEventName() ContextField {
	return Context("github", "event_name")
}

// Secret references secrets.<name>
func Secret(name string) ContextField {
	return Context("secrets", name)
}

// Lit returns a string literal
func Lit(value string) Literal {
	return Literal{Value: value}
}

// Eq returns f == 'value'
func (f ContextField) Eq(value string) Equals {
	return Equals{Left: f, Right: Lit(value)}
}

// AllOf folds exprs left to right with &&
//
// A single expression is returned as is; nil is returned for none.
func AllOf(exprs ...Expr) Expr {
	return fold(exprs, func(l, r Expr) Expr { return And{Left: l, Right: r} })
}

// AnyOf folds exprs left to right with ||
func AnyOf(exprs ...Expr) Expr {
	return fold(exprs, func(l, r Expr) Expr { return Or{Left: l, Right: r} })
}

// Negate returns !e
func Negate(e Expr) Not {
	return Not{Operand: e}
}

func fold(exprs []Expr, join func(l, r Expr) Expr) Expr {
	var acc Expr
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if acc == nil {
			acc = e
			continue
		}
		acc = join(acc, e)
	}
	return acc
}

func (f ContextField) String() string { return Render(f) }
func (l Literal) String() string      { return Render(l) }
func (e Equals) String() string       { return Render(e) }
func (a And) String() string          { return Render(a) }
func (o Or) String() string           { return Render(o) }
func (n Not) String() string          { return Render(n) }

// Render renders e in GitHub Actions expression syntax, without the ${{ }} wrapper
func Render(e Expr) string {
	var sb strings.Builder
	write(&sb, e, 0, quoteSingle)
	return sb.String()
}

// Interpolate renders e wrapped in ${{ }}
func Interpolate(e Expr) string {
	return "${{ " + Render(e) + " }}"
}

func quoteSingle(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func write(sb *strings.Builder, e Expr, parent int, quote func(string) string) {
	if e == nil {
		return
	}

	wrap := e.precedence() < parent
	if wrap {
		sb.WriteByte('(')
	}

	switch v := e.(type) {
	case ContextField:
		sb.WriteString(v.Path)
	case Literal:
		sb.WriteString(quote(v.Value))
	case Equals:
		// operands of == bind tighter than ==, compound operands get parens
		write(sb, v.Left, precEquals+1, quote)
		sb.WriteString(" == ")
		write(sb, v.Right, precEquals+1, quote)
	case And:
		write(sb, v.Left, precAnd, quote)
		sb.WriteString(" && ")
		write(sb, v.Right, precAnd+1, quote)
	case Or:
		write(sb, v.Left, precOr, quote)
		sb.WriteString(" || ")
		write(sb, v.Right, precOr+1, quote)
	case Not:
		sb.WriteByte('!')
		write(sb, v.Operand, precNot, quote)
	}

	if wrap {
		sb.WriteByte(')')
	}
}
