package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// exitError carries a process exit code out of a command that already
// reported its own failure.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

type app struct {
	stdout    io.Writer
	stderr    io.Writer
	logLevel  string
	logFormat string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "dbexport",
		Short:         "Export SQL databases to Azure blob storage",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "console", "log format: console or json")

	root.AddCommand(newExportCmd(a))
	root.AddCommand(newEnvironmentCmd(a))
	return root
}

func (a *app) logger() (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(a.logLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid --log-level %q", a.logLevel)
	}

	var out io.Writer
	switch a.logFormat {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: a.stderr}
	case "json":
		out = a.stderr
	default:
		return zerolog.Nop(), fmt.Errorf("invalid --log-format %q (expected console or json)", a.logFormat)
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("component", "dbexport").
		Logger(), nil
}
