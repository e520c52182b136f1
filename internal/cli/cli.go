// Package cli provides the specoracle command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	oerrors "github.com/AndreyAkinshin/specoracle/internal/errors"
	"github.com/AndreyAkinshin/specoracle/internal/output"
	"github.com/AndreyAkinshin/specoracle/internal/project"
)

// Version is set at build time.
var Version = "dev"

// GlobalOptions holds parsed global flags.
type GlobalOptions struct {
	ConfigPath string
	Quiet      bool
	Verbose    bool
}

// app carries the state shared by all commands of one invocation.
type app struct {
	out    *output.Writer
	in     io.Reader
	opts   GlobalOptions
	logger *slog.Logger
}

// exitCodeError ends the run with a code and no further message.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, args, output.New(), os.Stdin)
}

func run(ctx context.Context, args []string, out *output.Writer, in io.Reader) int {
	a := &app{out: out, in: in}
	root := a.newRootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return oerrors.ExitSuccess
	}

	var exit *exitCodeError
	if errors.As(err, &exit) {
		return exit.code
	}
	out.ErrorPrefix("%v", err)
	if errors.Is(err, context.Canceled) {
		return oerrors.ExitRuntimeError
	}

	var oe *oerrors.Error
	if !errors.As(err, &oe) {
		// Flag and argument errors from cobra are usage errors.
		return oerrors.ExitConfigError
	}
	return oe.ExitCode()
}

func (a *app) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "specoracle",
		Short: "Ingest embedded test specifications and check solver results against them",
		Long: `specoracle collects the test cases embedded in the leading comment block of
source files, groups them into suites, and decides whether an actual solver
run satisfies a case's expected outcomes.

The project configuration (specoracle.json or specoracle.toml) is looked up
from the working directory upwards; defaults apply when there is none.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	cmd.SetOut(a.out.Out())
	cmd.SetErr(a.out.Err())
	cmd.SetIn(a.in)
	cmd.SetVersionTemplate("specoracle {{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.opts.ConfigPath, "config", "c", "", "path to specoracle.json or specoracle.toml")
	flags.BoolVarP(&a.opts.Quiet, "quiet", "q", false, "minimal output (errors and failures only)")
	flags.BoolVarP(&a.opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		a.newListCmd(),
		a.newSnapshotCmd(),
		a.newCheckCmd(),
		a.newWatchCmd(),
		a.newVersionCmd(),
	)
	return cmd
}

// setup validates the global options and applies them to output.
func (a *app) setup() error {
	if err := validateGlobalOptions(&a.opts); err != nil {
		return err
	}
	a.out.SetQuiet(a.opts.Quiet)
	return nil
}

// validateGlobalOptions checks that global options are valid.
func validateGlobalOptions(opts *GlobalOptions) error {
	if opts.Quiet && opts.Verbose {
		return oerrors.Config("--quiet and --verbose are mutually exclusive")
	}
	return nil
}

// loadProject loads the configured project, falling back to defaults in the
// working directory when no config file exists. It also sets up logging at
// the configured level.
func (a *app) loadProject() (*project.Project, error) {
	var (
		p   *project.Project
		err error
	)
	switch {
	case a.opts.ConfigPath != "":
		p, err = project.LoadFile(a.opts.ConfigPath)
	default:
		p, err = project.LoadProject()
		if errors.Is(err, project.ErrNoProjectRoot) {
			p, err = project.Default(".")
		}
	}
	if err != nil {
		if oerrors.IsKind(err, oerrors.KindConfig) {
			return nil, err
		}
		return nil, &oerrors.Error{Kind: oerrors.KindConfig, Cause: err}
	}

	for _, w := range p.Warnings {
		a.out.Warning("%s", w)
	}
	a.logger = newLogger(a.out, a.opts, p.Config.SlogLevel())
	return p, nil
}

// newLogger builds the stderr text logger. --verbose forces debug and
// --quiet limits logging to errors.
func newLogger(out *output.Writer, opts GlobalOptions, level slog.Level) *slog.Logger {
	switch {
	case opts.Verbose:
		level = slog.LevelDebug
	case opts.Quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(out.Err(), &slog.HandlerOptions{Level: level}))
}
