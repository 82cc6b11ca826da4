// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package cmd provides the root command for the workflowgen CLI.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/defenseunicorns/workflowgen"
	"github.com/defenseunicorns/workflowgen/config"
)

// ExitDrift is returned when a committed workflow is out of date
const ExitDrift = 2

// options are shared by every subcommand
type options struct {
	level       string
	dir         string
	configPath  string
	set         map[string]string
	name        string
	autoRelease bool
	benchmarks  bool
	autoFix     bool
	output      string

	fsys afero.Fs
	cfg  *config.Config
}

// load resolves the config
//
// default < config file < WORKFLOWGEN_* env < --set < flags
func (o *options) load(ctx context.Context, flags *pflag.FlagSet) error {
	path := o.configPath
	allowMissing := !flags.Changed("config")
	if env := os.Getenv("WORKFLOWGEN_CONFIG"); env != "" && allowMissing {
		path = env
		allowMissing = false
	}

	cfg, err := config.LoadConfig(o.fsys, path, allowMissing)
	if err != nil {
		return err
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}

	if err := cfg.ApplyOverrides(o.set); err != nil {
		return err
	}

	if flags.Changed("name") {
		cfg.Name = o.name
	}
	if flags.Changed("auto-release") {
		cfg.AutoRelease = o.autoRelease
	}
	if flags.Changed("benchmarks") {
		cfg.Benchmarks = o.benchmarks
	}
	if flags.Changed("auto-fix") {
		cfg.AutoFix = o.autoFix
	}

	// the output flag is relative to the working directory, a configured output to the config file
	switch {
	case flags.Changed("output"):
		cfg.Output = o.output
	case !filepath.IsAbs(cfg.OutputPath()):
		cfg.Output = filepath.Join(filepath.Dir(path), cfg.OutputPath())
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	log.FromContext(ctx).Debug("loaded config", "path", path, "name", cfg.Name, "auto-release", cfg.AutoRelease, "benchmarks", cfg.Benchmarks, "auto-fix", cfg.AutoFix, "output", cfg.Output)

	o.cfg = cfg
	return nil
}

// NewRootCmd creates the root command for the workflowgen CLI.
func NewRootCmd() *cobra.Command {
	var (
		ver bool
		dry bool
	)

	o := &options{fsys: afero.NewOsFs()}

	root := &cobra.Command{
		Use:   "workflowgen",
		Short: "Generate a GitHub Actions CI workflow for a Rust project",
		Long: `Generate a GitHub Actions CI workflow for a Rust project.

Running without a subcommand is the same as "workflowgen generate".`,
		Example: `
workflowgen

workflowgen --auto-release --benchmarks --dry-run

workflowgen check --against "pkg:github/acme/widgets@main#.github/workflows/ci.yml"

workflowgen plan --event pull_request --action opened
`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			l, err := log.ParseLevel(o.level)
			if err != nil {
				return err
			}
			log.FromContext(cmd.Context()).SetLevel(l)

			if o.dir != "" {
				if err := os.Chdir(o.dir); err != nil {
					return err
				}
			}

			if ver {
				return nil
			}

			return o.load(cmd.Context(), cmd.Flags())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ver {
				bi, ok := debug.ReadBuildInfo()
				if !ok {
					return fmt.Errorf("version information not available")
				}
				fmt.Fprintln(cmd.OutOrStdout(), bi.Main.Version)
				return nil
			}

			return generate(cmd, o, dry)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.level, "log-level", "l", "info", "Set log level")
	_ = root.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{log.DebugLevel.String(), log.InfoLevel.String(), log.WarnLevel.String(), log.ErrorLevel.String(), log.FatalLevel.String()}, cobra.ShellCompDirectiveNoFileComp
	})
	pf.StringVarP(&o.dir, "directory", "C", "", "Change to directory before doing anything")
	_ = root.MarkPersistentFlagDirname("directory")
	pf.StringVarP(&o.configPath, "config", "c", config.DefaultFileName, "Path to workflowgen config file")
	_ = root.MarkPersistentFlagFilename("config", "yaml", "yml")
	pf.StringToStringVar(&o.set, "set", nil, "Override config values with key=value pairs")
	pf.StringVar(&o.name, "name", workflowgen.DefaultConfig().Name, "Name of the workflow")
	pf.BoolVar(&o.autoRelease, "auto-release", false, "Add release-plz release jobs")
	pf.BoolVar(&o.benchmarks, "benchmarks", false, "Run cargo bench in the build job")
	pf.BoolVar(&o.autoFix, "auto-fix", false, "Commit formatting fixes back to pull requests")
	pf.StringVarP(&o.output, "output", "o", config.DefaultOutput, "Path to write the workflow to")
	_ = root.MarkPersistentFlagFilename("output", "yaml", "yml")

	root.Flags().BoolVarP(&ver, "version", "V", false, "Print version number and exit")
	root.Flags().BoolVar(&dry, "dry-run", false, "Print the workflow instead of writing it")

	root.AddCommand(
		newGenerateCmd(o),
		newCheckCmd(o),
		newExplainCmd(o),
		newGraphCmd(o),
		newPlanCmd(o),
		newSchemaCmd(),
	)

	return root
}

// Main executes the root command for the workflowgen CLI.
//
// It returns 0 on success, 1 on failure, 2 on drift and logs any errors.
func Main() int {
	cli := NewRootCmd()

	ctx := context.Background()

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer cancel()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})

	logger.SetStyles(DefaultStyles())

	ctx = log.WithContext(ctx, logger)
	_, err := cli.ExecuteContextC(ctx)
	if err != nil {
		logger.Error(err)
	}
	return ParseExitCode(err)
}

// ParseExitCode calculates the exit code from a given error
//
// 0 - the error was nil
// 1 - there was some error
// 2 - the committed workflow has drifted from what would be generated
func ParseExitCode(err error) int {
	if err == nil {
		return 0
	}

	var dErr *workflowgen.DriftError
	if errors.As(err, &dErr) {
		return ExitDrift
	}
	return 1
}
