// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/xeipuuv/gojsonschema"
)

// Read reads a workflow document
func Read(r io.Reader) (Workflow, error) {
	if rs, ok := r.(io.Seeker); ok {
		_, err := rs.Seek(0, io.SeekStart)
		if err != nil {
			return Workflow{}, err
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Workflow{}, err
	}

	var wf Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return Workflow{}, fmt.Errorf("failed to parse workflow: %w", err)
	}
	return wf, nil
}

// Since every validation operation leverages the same schema, only calculate it once
var schemaOnce = sync.OnceValues(func() (string, error) {
	s := WorkflowSchema()
	b, err := json.Marshal(s)
	return string(b), err
})

// Validate checks a document against the workflow JSON schema and its cross references
func Validate(wf Workflow) error {
	for id, job := range wf.Jobs {
		for idx, need := range job.Needs {
			if _, ok := wf.Jobs[need]; !ok {
				return fmt.Errorf(".jobs.%s.needs[%d] %q not found", id, idx, need)
			}
		}
	}

	schema, err := schemaOnce()
	if err != nil {
		return err
	}

	schemaLoader := gojsonschema.NewStringLoader(schema)

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(wf))
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

// ReadAndValidate reads and validates a workflow document
func ReadAndValidate(r io.Reader) (Workflow, error) {
	wf, err := Read(r)
	if err != nil {
		return Workflow{}, err
	}
	return wf, Validate(wf)
}
