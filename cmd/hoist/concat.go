package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/pprof"
	"runtime/trace"

	"github.com/spf13/cobra"

	"github.com/hoistjs/hoist/internal/config"
	"github.com/hoistjs/hoist/internal/exitcode"
	"github.com/hoistjs/hoist/internal/graph"
	"github.com/hoistjs/hoist/internal/helpers"
	"github.com/hoistjs/hoist/internal/js_printer"
	"github.com/hoistjs/hoist/internal/logger"
	"github.com/hoistjs/hoist/internal/manifest"
	"github.com/hoistjs/hoist/internal/scopehoist"
)

type concatFlags struct {
	outfile          string
	concurrency      int
	requireName      string
	minifyWhitespace bool
	omitProvenance   bool
	logLevel         string
	color            string
	errorLimit       int
	watch            bool
	traceFile        string
	cpuprofileFile   string
}

var validLogLevels = []string{"verbose", "info", "warning", "error", "silent"}

func newConcatCmd(stdout io.Writer, stderr io.Writer) *cobra.Command {
	flags := concatFlags{}

	cmd := &cobra.Command{
		Use:   "concat <manifest>",
		Short: "Concatenate the bundle described by a manifest",
		Long:  "Loads the modules and the dependency graph described by a TOML or YAML manifest and prints the concatenated program.",
		Args: func(cmd *cobra.Command, args []string) error {
			return exitcode.Set(cobra.ExactArgs(1)(cmd, args), exitcode.Usage)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConcatCmd(cmd.Context(), args[0], flags, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.outfile, "outfile", "", "write the output to this file instead of stdout")
	f.IntVar(&flags.concurrency, "concurrency", config.DefaultConcurrency, "maximum number of modules parsed at once (negative means one per CPU)")
	f.StringVar(&flags.requireName, "require-name", config.DefaultRequireName, "name of the function that loads a dependency in the transformed modules")
	f.BoolVar(&flags.minifyWhitespace, "minify-whitespace", false, "remove whitespace from the output")
	f.BoolVar(&flags.omitProvenance, "omit-provenance", false, "don't mark where each module starts in the output")
	f.StringVar(&flags.logLevel, "log-level", "info", "verbose, info, warning, error, or silent")
	f.StringVar(&flags.color, "color", "", "force color escapes on or off (true or false)")
	f.Lookup("color").NoOptDefVal = "true"
	f.IntVar(&flags.errorLimit, "error-limit", 10, "maximum number of errors to print (0 means no limit)")
	f.BoolVar(&flags.watch, "watch", false, "run again whenever the manifest or one of its modules changes")
	f.StringVar(&flags.traceFile, "trace", "", "write an execution trace to this file")
	f.StringVar(&flags.cpuprofileFile, "cpuprofile", "", "write a CPU profile to this file")
	return cmd
}

func runConcatCmd(ctx context.Context, manifestPath string, flags concatFlags, stdout io.Writer, stderr io.Writer) error {
	logLevel, ok := logger.ParseLogLevel(flags.logLevel)
	if !ok {
		text := fmt.Sprintf("invalid value %q for \"--log-level\"", flags.logLevel)
		if suggestion, ok := helpers.MakeTypoDetector(validLogLevels).MaybeCorrectTypo(flags.logLevel); ok {
			text += fmt.Sprintf(" (did you mean %q?)", suggestion)
		}
		return exitcode.Set(errors.New(text), exitcode.Usage)
	}
	color, err := parseColor(flags.color)
	if err != nil {
		return err
	}
	stderrOptions := logger.StderrOptions{
		IncludeSource: true,
		ErrorLimit:    flags.errorLimit,
		Color:         color,
		LogLevel:      logLevel,
	}

	// To view a trace, use "go tool trace [file]"
	if flags.traceFile != "" {
		f, err := os.Create(flags.traceFile)
		if err != nil {
			return fmt.Errorf("Failed to create trace file: %w", err)
		}
		defer f.Close()
		if err := trace.Start(f); err != nil {
			return err
		}
		defer trace.Stop()
	}

	if flags.cpuprofileFile != "" {
		f, err := os.Create(flags.cpuprofileFile)
		if err != nil {
			return fmt.Errorf("Failed to create cpuprofile file: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	build := func() ([]string, bool) {
		log := newLog(stderr, stderrOptions)
		files, ok := concatOnce(ctx, manifestPath, flags, stdout, log)
		log.Done()
		return files, ok
	}

	if flags.watch {
		return watch(ctx, manifestPath, build, newLog(stderr, stderrOptions))
	}
	if _, ok := build(); !ok {
		return errAlreadyReported
	}
	return nil
}

// Returns the files the build read so watch mode knows what to watch. These
// are still returned when the build fails after loading the manifest.
func concatOnce(ctx context.Context, manifestPath string, flags concatFlags, stdout io.Writer, log logger.Log) ([]string, bool) {
	m, err := manifest.LoadFile(manifestPath)
	if err != nil {
		log.AddMsg(logger.Msg{Kind: logger.Error, Text: err.Error()})
		return []string{manifestPath}, false
	}

	dir := filepath.Dir(manifestPath)
	files := make([]string, 0, len(m.Files))
	for _, file := range m.Files {
		files = append(files, filepath.Join(dir, filepath.FromSlash(file)))
	}

	result, err := scopehoist.Concat(ctx, m.Bundle, m.Graph, config.Options{
		Concurrency:    flags.concurrency,
		RequireName:    flags.requireName,
		OmitProvenance: flags.omitProvenance,
		Log:            log,
	})
	if err != nil {
		reportError(log, m.Graph, dir, err)
		return files, false
	}

	js := js_printer.Print(result.Stmts, js_printer.Options{MinifyWhitespace: flags.minifyWhitespace})

	if flags.outfile == "" {
		if _, err := stdout.Write(js); err != nil {
			log.AddMsg(logger.Msg{Kind: logger.Error, Text: fmt.Sprintf("Failed to write to stdout: %s", err.Error())})
			return files, false
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(flags.outfile), 0o755); err != nil {
			log.AddMsg(logger.Msg{Kind: logger.Error, Text: fmt.Sprintf("Failed to create output directory: %s", err.Error())})
			return files, false
		}
		if err := os.WriteFile(flags.outfile, js, 0o644); err != nil {
			log.AddMsg(logger.Msg{Kind: logger.Error, Text: fmt.Sprintf("Failed to write to output file: %s", err.Error())})
			return files, false
		}
	}

	log.AddInfo(fmt.Sprintf("Concatenated %d modules (%d wrapped, %d excluded) from %s",
		len(m.Bundle.Assets()), len(result.Wrapped), len(result.Excluded), manifestPath))
	return files, true
}

// Shows the offending line for errors that carry a location inside a module
func reportError(log logger.Log, g *graph.Graph, dir string, err error) {
	var parseErr *scopehoist.ParseError
	if errors.As(err, &parseErr) {
		for _, msg := range parseErr.Msgs {
			log.AddMsg(msg)
		}
		return
	}

	var located scopehoist.LocatedError
	if errors.As(err, &located) {
		for _, asset := range g.Assets() {
			if asset.FilePath == located.AssetPath() {
				source := logger.Source{
					KeyPath:    asset.FilePath,
					PrettyPath: filepath.Join(dir, filepath.FromSlash(asset.FilePath)),
					Contents:   asset.Code,
				}
				log.AddRangeError(&source, source.RangeOfString(located.Loc()), located.Text())
				return
			}
		}
	}

	log.AddMsg(logger.Msg{Kind: logger.Error, Text: err.Error()})
}
