// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package workflowgen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/afero"

	"github.com/defenseunicorns/workflowgen/schema"
)

// Render assembles, validates and serializes the workflow described by cfg
func Render(cfg Config) ([]byte, error) {
	wf := Assemble(cfg)
	if err := wf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workflow: %w", err)
	}

	doc := schema.FromWorkflow(wf)
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("generated document does not satisfy schema: %w", err)
	}

	return schema.Marshal(doc)
}

// Generate renders the workflow and writes it to path
//
// The file is replaced atomically, a failed write leaves any previous file in place.
func Generate(ctx context.Context, fsys afero.Fs, cfg Config, path string) error {
	logger := log.FromContext(ctx)
	start := time.Now()

	b, err := Render(cfg)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := atomicWrite(fsys, path, b); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.Debug("generated", "workflow", cfg.Name, "path", path, "bytes", len(b), "duration", time.Since(start))
	return nil
}

func atomicWrite(fsys afero.Fs, p string, b []byte) (err error) {
	if dir := filepath.Dir(p); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp, err := afero.TempFile(fsys, filepath.Dir(p), "."+filepath.Base(p)+".tmp")
	if err != nil {
		return err
	}
	// some filesystems rename the open handle, so hold on to the temp name
	name := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = fsys.Remove(name)
		}
	}()

	if _, err := tmp.Write(b); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := fsys.Chmod(name, 0o644); err != nil {
		return err
	}
	return fsys.Rename(name, p)
}

// DriftError is returned when a committed workflow no longer matches what would be generated
type DriftError struct {
	// Path is where the stale workflow was read from
	Path string
	// Diff is a unified diff from the committed file to the generated one
	Diff string
	// Jobs lists job ids that were added, removed or changed, when the committed file could be parsed
	Jobs []string
	// Missing is set when there is no committed workflow at all
	Missing bool
}

// Error implements the error interface
func (e *DriftError) Error() string {
	if e.Missing {
		return fmt.Sprintf("%s does not exist, run \"workflowgen generate\" to create it", e.Path)
	}
	msg := fmt.Sprintf("%s is out of date, run \"workflowgen generate\" to update it", e.Path)
	if len(e.Jobs) > 0 {
		msg += fmt.Sprintf(" (jobs: %s)", strings.Join(e.Jobs, ", "))
	}
	return msg
}

// Check regenerates the workflow and compares it with the file at path
func Check(ctx context.Context, fsys afero.Fs, cfg Config, path string) error {
	f, err := fsys.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &DriftError{Path: path, Missing: true}
		}
		return err
	}
	defer f.Close()

	return Compare(ctx, cfg, path, f)
}

// Compare regenerates the workflow and compares it with committed, read from name
func Compare(ctx context.Context, cfg Config, name string, committed io.Reader) error {
	logger := log.FromContext(ctx)

	want, err := Render(cfg)
	if err != nil {
		return err
	}

	got, err := io.ReadAll(committed)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	if bytes.Equal(normalize(got), normalize(want)) {
		logger.Debug("up to date", "path", name)
		return nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(got)),
		B:        difflib.SplitLines(string(want)),
		FromFile: name,
		ToFile:   "generated",
		Context:  3,
	})
	if err != nil {
		return err
	}

	return &DriftError{
		Path: name,
		Diff: diff,
		Jobs: changedJobs(got, want),
	}
}

// normalize ignores line ending differences introduced by checkouts on Windows
func normalize(b []byte) []byte {
	return bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
}

// changedJobs compares both documents job by job, nil is returned if either fails to parse
func changedJobs(got, want []byte) []string {
	old, err := schema.Read(bytes.NewReader(got))
	if err != nil {
		return nil
	}
	next, err := schema.Read(bytes.NewReader(want))
	if err != nil {
		return nil
	}

	var ids []string
	for id, job := range next.Jobs {
		prev, ok := old.Jobs[id]
		if !ok {
			ids = append(ids, id)
			continue
		}
		a, errA := schema.Marshal(schema.Workflow{Jobs: schema.JobMap{id: prev}})
		b, errB := schema.Marshal(schema.Workflow{Jobs: schema.JobMap{id: job}})
		if errA != nil || errB != nil || !bytes.Equal(a, b) {
			ids = append(ids, id)
		}
	}
	for id := range old.Jobs {
		if _, ok := next.Jobs[id]; !ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
