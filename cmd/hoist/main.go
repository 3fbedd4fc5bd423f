package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/hoistjs/hoist/internal/exitcode"
	"github.com/hoistjs/hoist/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	exitCode := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(exitCode)
}

// Returns the process exit code. Errors have already been printed to stderr
// when this returns.
func run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errAlreadyReported) {
		log := newLog(stderr, logger.StderrOptions{Color: colorFromArgs(args)})
		log.AddMsg(logger.Msg{Kind: logger.Error, Text: err.Error()})
		log.Done()
	}
	return exitcode.Get(err)
}

// Returned once the failure was written to the log with its source location
var errAlreadyReported = errors.New("errors were reported")

func newRootCmd(stdout io.Writer, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "hoist",
		Short:         "Concatenate the modules of a bundle into a single scope",
		Long:          "Hoist merges the already-transformed modules of one bundle into a single program, inlining modules where they are first required and wrapping the ones that must run lazily.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return exitcode.Set(err, exitcode.Usage)
	})
	root.AddCommand(newConcatCmd(stdout, stderr))
	return root
}

// Colors need to be decided before flag parsing succeeds so flag errors are
// printed the way the user asked for
func colorFromArgs(args []string) logger.StderrColor {
	color := logger.ColorIfTerminal
	for _, arg := range args {
		switch arg {
		case "--color=false":
			color = logger.ColorNever
		case "--color=true", "--color":
			color = logger.ColorAlways
		}
	}
	return color
}

// Only real terminals get color escapes unless they are forced on
func newLog(w io.Writer, options logger.StderrOptions) logger.Log {
	terminalInfo := logger.TerminalInfo{}
	if file, ok := w.(*os.File); ok {
		terminalInfo = logger.GetTerminalInfo(file)
	}

	switch options.Color {
	case logger.ColorNever:
		terminalInfo.UseColorEscapes = false
	case logger.ColorAlways:
		terminalInfo.UseColorEscapes = logger.SupportsColorEscapes
	}

	return logger.NewWriterLog(w, terminalInfo, options)
}

func parseColor(text string) (logger.StderrColor, error) {
	switch text {
	case "":
		return logger.ColorIfTerminal, nil
	case "true":
		return logger.ColorAlways, nil
	case "false":
		return logger.ColorNever, nil
	}
	return 0, exitcode.Set(fmt.Errorf("invalid value %q for \"--color\" (expected true or false)", text), exitcode.Usage)
}
