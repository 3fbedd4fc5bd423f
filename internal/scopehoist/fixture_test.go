package scopehoist

import (
	"testing"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hoistjs/hoist/internal/graph"
	"github.com/hoistjs/hoist/internal/js_ast"
	"github.com/hoistjs/hoist/internal/js_parser"
	"github.com/hoistjs/hoist/internal/js_printer"
	"github.com/hoistjs/hoist/internal/logger"
	"github.com/hoistjs/hoist/internal/runtime"
	"github.com/hoistjs/hoist/internal/test"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	t *testing.T
	g *graph.Graph
	b *graph.Bundle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	g := graph.New()
	return &fixture{t: t, g: g, b: graph.NewBundle(g, "bundle", "js")}
}

// Adds an asset with side effects to both the graph and the bundle
func (f *fixture) asset(id string, code string, symbols ...graph.Symbol) *graph.Asset {
	f.t.Helper()
	asset := f.outside(id, code, symbols...)
	f.b.AddAsset(asset)
	return asset
}

func (f *fixture) entry(id string, code string, symbols ...graph.Symbol) *graph.Asset {
	f.t.Helper()
	asset := f.asset(id, code, symbols...)
	f.b.AddEntryAsset(asset)
	return asset
}

// Adds an asset that lives in some other bundle
func (f *fixture) outside(id string, code string, symbols ...graph.Symbol) *graph.Asset {
	f.t.Helper()
	asset := &graph.Asset{
		ID:          id,
		FilePath:    id + ".js",
		Type:        "js",
		Code:        dedent.Dedent(code),
		SideEffects: true,
		Symbols:     symbols,
	}
	require.NoError(f.t, f.g.AddAsset(asset))
	return asset
}

// Passing an empty target leaves the edge unresolved
func (f *fixture) dep(from string, specifier string, to string, symbols ...graph.SymbolImport) *graph.Dependency {
	f.t.Helper()
	dep := &graph.Dependency{
		ID:              from + ":" + specifier,
		SourceAssetID:   from,
		ModuleSpecifier: specifier,
		Symbols:         symbols,
	}
	require.NoError(f.t, f.g.AddDependency(dep))
	if to != "" {
		require.NoError(f.t, f.g.ResolveDependency(dep, f.g.Asset(to)))
	}
	return dep
}

func exp(exported string, local string) graph.Symbol {
	return graph.Symbol{Exported: exported, Local: local}
}

func imp(imported string, local string) graph.SymbolImport {
	return graph.SymbolImport{Imported: imported, Local: local}
}

func reexportAll() graph.SymbolImport {
	return graph.SymbolImport{Imported: graph.Star, Local: graph.Star}
}

func parseForTest(t *testing.T, code string) []js_ast.Stmt {
	t.Helper()
	log := logger.NewDeferLog()
	stmts, ok := js_parser.Parse(log, test.SourceForTest(dedent.Dedent(code)))
	require.True(t, ok, test.MsgsText(log))
	return stmts
}

func printForTest(stmts []js_ast.Stmt) string {
	return string(js_printer.Print(stmts, js_printer.Options{}))
}

// Prints the merged modules without the runtime code in front of them
func printMerged(t *testing.T, result *Result, withPrelude bool) string {
	t.Helper()
	skip := len(parseForTest(t, runtime.Helpers))
	if withPrelude {
		skip += len(parseForTest(t, runtime.Prelude))
	}
	require.GreaterOrEqual(t, len(result.Stmts), skip)
	return printForTest(result.Stmts[skip:])
}
