// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package config provides the project-level configuration file for workflowgen
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/invopop/jsonschema"
	"github.com/spf13/afero"
	"github.com/xeipuuv/gojsonschema"

	"github.com/defenseunicorns/workflowgen"
	"github.com/defenseunicorns/workflowgen/schema"
)

// DefaultFileName is the default file name for the config file
const DefaultFileName = "workflowgen.yaml"

// SchemaVersion is the current schema version for configs
const SchemaVersion = "v0"

// DefaultOutput is where the workflow is written when no output is configured
const DefaultOutput = ".github/workflows/ci.yml"

// Config is the configuration file for workflowgen
type Config struct {
	SchemaVersion string `json:"schema-version"`
	Name          string `json:"name,omitempty"`
	AutoRelease   bool   `json:"auto-release,omitempty"`
	Benchmarks    bool   `json:"benchmarks,omitempty"`
	AutoFix       bool   `json:"auto-fix,omitempty"`
	Output        string `json:"output,omitempty"`
}

// JSONSchemaExtend extends the JSON schema for a config
func (Config) JSONSchemaExtend(schema *jsonschema.Schema) {
	if schemaVersion, ok := schema.Properties.Get("schema-version"); ok && schemaVersion != nil {
		schemaVersion.Description = "Config schema version"
		schemaVersion.Enum = []any{SchemaVersion}
	}
	if name, ok := schema.Properties.Get("name"); ok && name != nil {
		name.Description = "Name of the generated workflow"
		name.Default = workflowgen.DefaultConfig().Name
	}
	if autoRelease, ok := schema.Properties.Get("auto-release"); ok && autoRelease != nil {
		autoRelease.Description = `Add release and release-pr jobs driven by release-plz

The CARGO_REGISTRY_TOKEN secret must be set on the repository`
	}
	if benchmarks, ok := schema.Properties.Get("benchmarks"); ok && benchmarks != nil {
		benchmarks.Description = "Run cargo bench as the final build step"
	}
	if autoFix, ok := schema.Properties.Get("auto-fix"); ok && autoFix != nil {
		autoFix.Description = "Commit formatting fixes back to pull requests"
	}
	if output, ok := schema.Properties.Get("output"); ok && output != nil {
		output.Description = "Path the workflow is written to, relative to the config file"
		output.Default = DefaultOutput
	}
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	return &Config{
		SchemaVersion: SchemaVersion,
		Name:          workflowgen.DefaultConfig().Name,
		Output:        DefaultOutput,
	}
}

// Workflow returns the generator flags held by c
func (c *Config) Workflow() workflowgen.Config {
	cfg := workflowgen.DefaultConfig()
	if c.Name != "" {
		cfg.Name = c.Name
	}
	cfg.AutoRelease = c.AutoRelease
	cfg.Benchmarks = c.Benchmarks
	cfg.AutoFix = c.AutoFix
	return cfg
}

// OutputPath returns the configured output path, falling back to DefaultOutput
func (c *Config) OutputPath() string {
	if c.Output == "" {
		return DefaultOutput
	}
	return c.Output
}

// LoadConfig loads the configuration at path from fsys
//
// If the file does not exist and allowMissing is set, a default config is returned
func LoadConfig(fsys afero.Fs, path string, allowMissing bool) (*Config, error) {
	f, err := fsys.Open(path)
	if err != nil {
		if os.IsNotExist(err) && allowMissing {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read reads and validates a config
func Read(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var versioned schema.Versioned
	if err := yaml.Unmarshal(data, &versioned); err != nil {
		return nil, err
	}

	switch version := versioned.SchemaVersion; version {
	case SchemaVersion:
		cfg := Default()
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		return cfg, Validate(cfg)
	default:
		return nil, fmt.Errorf("unsupported config schema version: expected %q, got %q", SchemaVersion, version)
	}
}

// Since every validation operation leverages the same schema, only calculate it once
//
// This also prevents any schema changes from occurring at runtime
var schemaOnce = sync.OnceValues(func() (string, error) {
	s := Schema()
	b, err := json.Marshal(s)
	return string(b), err
})

// Validate checks if a config adheres to the JSON schema
func Validate(config *Config) error {
	schema, err := schemaOnce()
	if err != nil {
		return err
	}

	schemaLoader := gojsonschema.NewStringLoader(schema)

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(config))
	if err != nil {
		return err
	}

	if result.Valid() {
		return nil
	}

	var resErr error
	for _, err := range result.Errors() {
		resErr = errors.Join(resErr, errors.New(err.String()))
	}

	return resErr
}

// Schema returns the JSON schema for the Config type
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	schema := reflector.Reflect(&Config{})
	schema.ID = "https://raw.githubusercontent.com/defenseunicorns/workflowgen/main/config/config.schema.json"
	return schema
}
