// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package main provides the entry point for the application.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/defenseunicorns/workflowgen/config"
	"github.com/defenseunicorns/workflowgen/schema"
)

func run(root string) error {
	schemas := map[string]*jsonschema.Schema{
		filepath.Join("config", "config.schema.json"):   config.Schema(),
		filepath.Join("schema", "workflow.schema.json"): schema.WorkflowSchema(),
	}

	for p, s := range schemas {
		b, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}

		if err := os.WriteFile(filepath.Join(root, p), append(b, '\n'), 0644); err != nil {
			return err
		}
	}

	return nil
}

// main is the entry point for the application
func main() {
	// usage: `go run gen/main.go`
	if err := run(""); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
