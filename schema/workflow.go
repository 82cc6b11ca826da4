// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package schema provides the on-disk representation of a generated workflow and its JSON schema
package schema

import (
	"github.com/invopop/jsonschema"

	"github.com/defenseunicorns/workflowgen/actions"
)

// SchemaID is the published id of the generated document schema
const SchemaID = "https://raw.githubusercontent.com/defenseunicorns/workflowgen/main/schema/workflow.schema.json"

// Workflow represents a ".github/workflows/*.yml" file
type Workflow struct {
	Name string `json:"name"`
	On   On     `json:"on"`
	Env  Env    `json:"env,omitempty"`
	Jobs JobMap `json:"jobs"`
}

// JSONSchemaExtend extends the JSON schema for a workflow
func (Workflow) JSONSchemaExtend(schema *jsonschema.Schema) {
	schema.Description = "A GitHub Actions workflow generated by workflowgen"

	if name, ok := schema.Properties.Get("name"); ok && name != nil {
		name.Description = "Name of the workflow"
		var one uint64 = 1
		name.MinLength = &one
	}
	if env, ok := schema.Properties.Get("env"); ok && env != nil {
		env.Description = "Environment variables available to every job"
	}
	if jobs, ok := schema.Properties.Get("jobs"); ok && jobs != nil {
		jobs.Description = "Map of jobs where the key is the job id"
	}
}

// On holds the workflow triggers
type On struct {
	Push        *Push        `json:"push,omitempty"`
	PullRequest *PullRequest `json:"pull_request,omitempty"`
}

// JSONSchemaExtend requires at least one trigger
func (On) JSONSchemaExtend(schema *jsonschema.Schema) {
	schema.Description = "Events that trigger the workflow"
	var one uint64 = 1
	schema.MinProperties = &one
}

// Push is the push trigger
type Push struct {
	Branches []string `json:"branches,omitempty"`
}

// PullRequest is the pull_request trigger
type PullRequest struct {
	Types    []string `json:"types,omitempty"`
	Branches []string `json:"branches,omitempty"`
}

// Env is a map of environment variable names to values
type Env map[string]string

// JSONSchemaExtend restricts environment variable names
func (Env) JSONSchemaExtend(schema *jsonschema.Schema) {
	schema.PropertyNames = &jsonschema.Schema{
		Pattern: actions.EnvVariablePattern.String(),
	}
}

// JobMap is a map of jobs, where the key is the job id
type JobMap map[string]Job

// JSONSchemaExtend restricts job ids
func (JobMap) JSONSchemaExtend(schema *jsonschema.Schema) {
	var one uint64 = 1
	schema.MinProperties = &one
	schema.PropertyNames = &jsonschema.Schema{
		Pattern: actions.JobIDPattern.String(),
	}
}

// Job is a single job
type Job struct {
	Name        string       `json:"name"`
	RunsOn      string       `json:"runs-on"`
	Needs       []string     `json:"needs,omitempty"`
	If          string       `json:"if,omitempty"`
	Permissions Permissions  `json:"permissions,omitempty"`
	Concurrency *Concurrency `json:"concurrency,omitempty"`
	Env         Env          `json:"env,omitempty"`
	Steps       []Step       `json:"steps"`
}

// JSONSchemaExtend extends the JSON schema for a job
func (Job) JSONSchemaExtend(schema *jsonschema.Schema) {
	schema.Description = "A job, aka a collection of steps run on one runner"

	if needs, ok := schema.Properties.Get("needs"); ok && needs != nil {
		needs.Description = "Ids of jobs that must succeed before this job starts"
		needs.UniqueItems = true
	}
	if cond, ok := schema.Properties.Get("if"); ok && cond != nil {
		cond.Description = "Expression that controls whether the job runs"
	}
	if steps, ok := schema.Properties.Get("steps"); ok && steps != nil {
		var one uint64 = 1
		steps.MinItems = &one
	}
}

// Permissions maps GITHUB_TOKEN scopes to access levels
type Permissions map[string]string

// JSONSchemaExtend restricts scopes and levels to known values
func (Permissions) JSONSchemaExtend(schema *jsonschema.Schema) {
	scopes := make([]any, 0, len(actions.Scopes()))
	for _, s := range actions.Scopes() {
		scopes = append(scopes, string(s))
	}
	levels := make([]any, 0, len(actions.Levels()))
	for _, l := range actions.Levels() {
		levels = append(levels, string(l))
	}

	schema.PropertyNames = &jsonschema.Schema{Enum: scopes}
	schema.AdditionalProperties = &jsonschema.Schema{Type: "string", Enum: levels}
}

// Concurrency is a job concurrency policy
type Concurrency struct {
	Group            string `json:"group"`
	CancelInProgress bool   `json:"cancel-in-progress"`
}

// Step is a single step in a job
//
// Only one of uses or run is set, this is enforced by JSON schema validation.
type Step struct {
	Name string            `json:"name,omitempty"`
	If   string            `json:"if,omitempty"`
	Uses string            `json:"uses,omitempty"`
	With map[string]string `json:"with,omitempty"`
	Run  string            `json:"run,omitempty"`
}

// JSONSchemaExtend makes run and uses mutually exclusive
func (Step) JSONSchemaExtend(schema *jsonschema.Schema) {
	not := &jsonschema.Schema{
		Not: &jsonschema.Schema{},
	}

	runProps := jsonschema.NewProperties()
	runProps.Set("uses", not)
	runProps.Set("with", not)

	usesProps := jsonschema.NewProperties()
	usesProps.Set("run", not)

	schema.OneOf = []*jsonschema.Schema{
		{Required: []string{"run"}, Properties: runProps},
		{Required: []string{"uses"}, Properties: usesProps},
	}
}

// WorkflowSchema returns a JSON schema for a generated workflow
func WorkflowSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	schema := reflector.Reflect(&Workflow{})

	schema.ID = SchemaID

	return schema
}
