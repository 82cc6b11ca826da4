// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/defenseunicorns/workflowgen"
	"github.com/defenseunicorns/workflowgen/actions"
	"github.com/defenseunicorns/workflowgen/config"
	"github.com/defenseunicorns/workflowgen/remote"
	"github.com/defenseunicorns/workflowgen/schema"
)

func generate(cmd *cobra.Command, o *options, dry bool) error {
	ctx := cmd.Context()
	logger := log.FromContext(ctx)
	cfg := o.cfg.Workflow()

	if dry {
		b, err := workflowgen.Render(cfg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		// keep redirected output free of escape codes
		if f, ok := out.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
			_, err := out.Write(b)
			return err
		}
		return workflowgen.PrintYAML(logger, out, b)
	}

	path := o.cfg.OutputPath()
	if err := workflowgen.Generate(ctx, o.fsys, cfg, path); err != nil {
		return err
	}
	logger.Info("wrote", "workflow", cfg.Name, "path", path)
	return nil
}

func newGenerateCmd(o *options) *cobra.Command {
	var dry bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the workflow to the configured output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return generate(cmd, o, dry)
		},
	}

	cmd.Flags().BoolVar(&dry, "dry-run", false, "Print the workflow instead of writing it")

	return cmd
}

func newCheckCmd(o *options) *cobra.Command {
	var (
		against string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Fail if the committed workflow differs from what would be generated",
		Example: `
workflowgen check

workflowgen check --against https://raw.githubusercontent.com/acme/widgets/main/.github/workflows/ci.yml

workflowgen check --against "pkg:gitlab/acme/widgets@main?token-from-env=CI_JOB_TOKEN#.github/workflows/ci.yml"
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)
			cfg := o.cfg.Workflow()

			var err error
			if against == "" {
				err = workflowgen.Check(ctx, o.fsys, cfg, o.cfg.OutputPath())
			} else {
				svc := remote.NewService(
					remote.WithFS(o.fsys),
					remote.WithClient(&http.Client{Timeout: timeout}),
				)

				doc, getErr := svc.Get(ctx, against)
				if getErr != nil {
					return getErr
				}

				err = workflowgen.Compare(ctx, cfg, against, bytes.NewReader(doc.Data))
			}

			var dErr *workflowgen.DriftError
			if errors.As(err, &dErr) && dErr.Diff != "" {
				fmt.Fprint(cmd.OutOrStdout(), colorDiff(dErr.Diff))
			}
			if err != nil {
				return err
			}

			logger.Info("up to date", "workflow", cfg.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&against, "against", "", "Compare with the workflow at this location instead of the output path")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 30*time.Second, "Timeout for fetching a remote workflow")

	return cmd
}

func newExplainCmd(o *options) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "explain [job...]",
		Short: "Describe the jobs of the workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := workflowgen.Explain(workflowgen.Assemble(o.cfg.Workflow()), args...)
			if err != nil {
				return err
			}

			if !raw {
				md, err = workflowgen.RenderMarkdown(md)
				if err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), md)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without rendering it")

	return cmd
}

func newGraphCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the job dependency graph in DOT format",
		Example: `
workflowgen graph | dot -Tsvg > ci.svg
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dot, err := workflowgen.Graph(workflowgen.Assemble(o.cfg.Workflow()))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), dot)
			return nil
		},
	}
}

func newPlanCmd(o *options) *cobra.Command {
	var (
		rc      actions.RunContext
		secrets map[string]string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show which jobs would run for an event",
		Example: `
workflowgen plan

workflowgen plan --event pull_request --action opened --base main
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()

			if rc.EventName == "pull_request" {
				if !flags.Changed("ref") {
					rc.Ref = "refs/pull/1/merge"
				}
				if !flags.Changed("action") {
					rc.Action = string(actions.Synchronize)
				}
			}
			rc.Secrets = secrets

			wf := workflowgen.Assemble(o.cfg.Workflow())
			plans, err := workflowgen.Plan(wf, rc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range plans {
				if p.Runs {
					fmt.Fprintf(out, "%s %s (%s)\n", Green.Render("run "), p.ID, p.Name)
					continue
				}
				fmt.Fprintf(out, "%s %s (%s): %s\n", FaintStyle.Render("skip"), p.ID, p.Name, p.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rc.EventName, "event", "push", "Triggering event (push, pull_request)")
	_ = cmd.RegisterFlagCompletionFunc("event", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"push", "pull_request"}, cobra.ShellCompDirectiveNoFileComp
	})
	cmd.Flags().StringVar(&rc.Ref, "ref", "refs/heads/"+workflowgen.DefaultBranch, "Value of github.ref")
	cmd.Flags().StringVar(&rc.BaseRef, "base", workflowgen.DefaultBranch, "Target branch of a pull request")
	cmd.Flags().StringVar(&rc.Action, "action", "", "Activity type of the event (defaults to synchronize for pull_request)")
	cmd.Flags().StringToStringVar(&secrets, "secret", nil, "Secrets available to conditions as key=value pairs")

	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema [config|workflow]",
		Short:     "Print the JSON schema of the config file or the generated workflow",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"config", "workflow"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var s *jsonschema.Schema
			switch args[0] {
			case "config":
				s = config.Schema()
			case "workflow":
				s = schema.WorkflowSchema()
			}

			b, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}
