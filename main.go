// jfr-collapse: convert a Java Flight Recorder recording to collapsed stacks.
//
// Usage:
//
//	jfr-collapse [flags] <file>
//
// Input: a .jfr recording; .jfr.gz files are decompressed on the fly.
// Output: one "root;...;leaf count" line per distinct execution-sample stack,
// sorted, ready for flamegraph.pl and compatible tools.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const logLevelEnv = "JFR_COLLAPSE_LOG_LEVEL"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, jfrOpener))
}

// ---------------------------------------------------------------------------
// CLI
// ---------------------------------------------------------------------------

type options struct {
	logLevel string
	verbose  bool
}

func (o *options) level() (zerolog.Level, error) {
	if o.verbose {
		return zerolog.DebugLevel, nil
	}
	return parseLogLevel(o.logLevel)
}

func newRootCmd(stdout, stderr io.Writer, opener func(zerolog.Logger) Opener) *cobra.Command {
	opts := &options{logLevel: "warn"}
	if v := os.Getenv(logLevelEnv); v != "" {
		opts.logLevel = v
	}

	cmd := &cobra.Command{
		Use:   "jfr-collapse [flags] <file>",
		Short: "Convert a JFR recording to collapsed stacks for flame graphs",
		Example: `  jfr-collapse profile.jfr > profile.collapsed
  jfr-collapse profile.jfr.gz | flamegraph.pl > profile.svg`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &UsageError{msg: "expected jfr input file as argument"}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := opts.level()
			if err != nil {
				return &UsageError{msg: err.Error()}
			}
			log := newLogger(stderr, level)

			path := args[0]
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				return &NotFoundError{Path: path}
			}

			lines, err := newCollapser(opener(log), log).run(path)
			if err != nil {
				log.Debug().Err(err).Str("path", path).Msg("collapse failed")
				return err
			}
			if err := writeLines(stdout, lines); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			return nil
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{msg: err.Error()}
	})
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&opts.logLevel, "log-level", opts.logLevel, "log level: debug, info, warn, error (env "+logLevelEnv+")")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "shorthand for --log-level=debug")
	return cmd
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer, opener func(zerolog.Logger) Opener) int {
	cmd := newRootCmd(stdout, stderr, opener)
	if args == nil {
		// cobra falls back to os.Args for nil
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return exitOK
	}

	var usage *UsageError
	var notFound *NotFoundError
	switch {
	case errors.As(err, &usage), errors.As(err, &notFound):
		fmt.Fprintln(stderr, err)
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return exitCode(err)
}
