package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/azahnen/dagger-auto/internal/artifact"
	"github.com/azahnen/dagger-auto/internal/binding"
	"github.com/azahnen/dagger-auto/internal/compiler"
	"github.com/azahnen/dagger-auto/internal/resolver"
)

// app is the state shared by all commands of one invocation.
type app struct {
	cfg    *Config
	root   string
	logger *log.Logger
	out    io.Writer
}

func newRootCommand() *cobra.Command {
	var (
		a       = &app{}
		cfgFile string
	)
	defaults := DefaultConfig()

	cmd := &cobra.Command{
		Use:   "dagger-auto [dir...]",
		Short: "Generate Dagger modules from binding declarations",
		Long: `dagger-auto reads binding declarations (*.dagger.yaml, *.dagger.toml)
and generates the Dagger modules wiring them: a @dagger.Module per package, or,
for encapsulated modules, a private module and component behind a public
wrapper module.

Without a subcommand it runs generate.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(cmd.Context(), args)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is the nearest "+ConfigFileName+")")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.StringP("out", "o", defaults.Out, "output root for generated sources")
	flags.Bool("dry-run", false, "print the generated sources as a txtar archive instead of writing them")
	flags.IntP("jobs", "j", defaults.Jobs, "maximum number of concurrent writes")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "generate [dir...]",
			Short: "Discover declarations, compile and write the generated sources",
			Args:  cobra.ArbitraryArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.generate(cmd.Context(), args)
			},
		},
		&cobra.Command{
			Use:   "modules [dir...]",
			Short: "Print the resolved binding modules as YAML",
			Args:  cobra.ArbitraryArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.modules(cmd.Context(), args)
			},
		},
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command, cfgFile string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, root, err := LoadConfig(cfgFile, wd, cmd.Flags())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.root = root
	a.out = cmd.OutOrStdout()
	a.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "dagger-auto"})
	if cfg.Verbose {
		a.logger.SetLevel(log.DebugLevel)
	}
	a.logger.Debug("config", "root", root, "out", outDir(cfg, root), "jobs", cfg.Jobs, "dryRun", cfg.DryRun)
	return nil
}

func (a *app) resolve(ctx context.Context, dirs []string) ([]binding.Module, error) {
	if len(dirs) == 0 {
		dirs = []string{a.root}
	}
	files, err := resolver.NewScanner(a.cfg.ScanOptions(), a.logger).Scan(ctx, dirs...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		a.logger.Warn("no declaration files found", "dirs", dirs)
	}
	modules, err := resolver.New(a.logger).Resolve(files)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	return modules, nil
}

func (a *app) generate(ctx context.Context, dirs []string) error {
	modules, err := a.resolve(ctx, dirs)
	if err != nil {
		return err
	}
	artifacts, err := compiler.New(compiler.WithForeignPolicy(a.cfg.Policy())).Compile(modules)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	if a.cfg.DryRun {
		_, err := a.out.Write(artifact.Archive(artifacts))
		return err
	}

	session := artifact.NewSession(outDir(a.cfg, a.root),
		artifact.WithJobs(a.cfg.Jobs),
		artifact.WithLogger(a.logger))
	report, err := session.Persist(ctx, artifacts)
	if err != nil {
		return err
	}
	a.logger.Info("generated", "modules", len(modules), "artifacts", len(artifacts),
		"written", report.Written, "unchanged", report.Unchanged)
	return nil
}

func (a *app) modules(ctx context.Context, dirs []string) error {
	modules, err := a.resolve(ctx, dirs)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	if err := enc.Encode(modules); err != nil {
		return err
	}
	return enc.Close()
}
