package config

import (
	"runtime"

	"github.com/hoistjs/hoist/internal/logger"
)

// The number of modules that are parsed and wrapped at the same time unless
// configured otherwise
const DefaultConcurrency = 32

// The callee of the require-shaped calls that earlier stages leave behind in
// place of import statements:
//
//   $hoist$require("<asset id>", "./specifier");
//
const DefaultRequireName = "$hoist$require"

type Options struct {
	// Zero means "DefaultConcurrency". Negative values mean one task per CPU.
	Concurrency int

	// Empty means "DefaultRequireName"
	RequireName string

	// By default the first statement of every module carries a
	// " ASSET: <path>" comment so the output can be traced back to its source
	OmitProvenance bool

	// Used for verbose phase timings and per-asset notes. A zero log discards
	// everything.
	Log logger.Log
}

// Fills in defaults for every unset field
func (options Options) Normalized() Options {
	if options.Concurrency == 0 {
		options.Concurrency = DefaultConcurrency
	} else if options.Concurrency < 0 {
		options.Concurrency = runtime.GOMAXPROCS(0)
	}
	if options.RequireName == "" {
		options.RequireName = DefaultRequireName
	}
	if options.Log.AddMsg == nil {
		options.Log = logger.NewDeferLog()
	}
	return options
}
