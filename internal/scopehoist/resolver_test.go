package scopehoist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hoistjs/hoist/internal/graph"
)

func expectResolved(t *testing.T, g BundleGraph, asset *graph.Asset, name string, assetID string, exportSymbol string, symbol string) {
	t.Helper()
	resolved := ResolveSymbol(g, asset, name)
	assert.Equal(t, assetID, resolved.Asset.ID)
	assert.Equal(t, exportSymbol, resolved.ExportSymbol)
	assert.Equal(t, symbol, resolved.Symbol)
}

func TestResolveLocalExport(t *testing.T) {
	f := newFixture(t)
	a := f.asset("a", "var x = 1", exp("x", "x"), exp("default", "$a$default"))

	expectResolved(t, f.g, a, "x", "a", "x", "x")
	expectResolved(t, f.g, a, "default", "a", "default", "$a$default")
	expectResolved(t, f.g, a, "missing", "a", "missing", "")
	expectResolved(t, f.g, a, "*", "a", "*", "*")
}

func TestResolveNamedReexportChain(t *testing.T) {
	f := newFixture(t)
	a := f.asset("a", "", exp("x", "$a$import$x"))
	f.asset("b", "", exp("y", "$b$import$z"))
	f.asset("c", "var z", exp("z", "z"))
	f.dep("a", "./b", "b", imp("y", "$a$import$x"))
	f.dep("b", "./c", "c", imp("z", "$b$import$z"))

	expectResolved(t, f.g, a, "x", "c", "z", "z")
}

func TestResolveStopsAtUnresolvedEdge(t *testing.T) {
	f := newFixture(t)
	a := f.asset("a", "", exp("x", "$a$import$x"))
	f.dep("a", "external", "", imp("x", "$a$import$x"))

	expectResolved(t, f.g, a, "x", "a", "x", "$a$import$x")
}

func TestResolveNamedCycleReturnsStart(t *testing.T) {
	f := newFixture(t)
	a := f.asset("a", "", exp("x", "$a$import$x"))
	b := f.asset("b", "", exp("x", "$b$import$x"))
	f.dep("a", "./b", "b", imp("x", "$a$import$x"))
	f.dep("b", "./a", "a", imp("x", "$b$import$x"))

	expectResolved(t, f.g, a, "x", "a", "x", "$a$import$x")
	expectResolved(t, f.g, b, "x", "b", "x", "$b$import$x")
}

func TestResolveThroughReexportAll(t *testing.T) {
	f := newFixture(t)
	a := f.asset("a", "")
	f.asset("b", "var y, d", exp("y", "y"), exp("default", "d"))
	f.dep("a", "./b", "b", reexportAll())

	expectResolved(t, f.g, a, "y", "b", "y", "y")

	// "export *" never forwards the default export
	expectResolved(t, f.g, a, "default", "a", "default", "")
}

func TestResolveLaterReexportAllWins(t *testing.T) {
	f := newFixture(t)
	a := f.asset("a", "")
	f.asset("b", "var x", exp("x", "x"))
	f.asset("c", "var x", exp("x", "x"))
	f.dep("a", "./b", "b", reexportAll())
	f.dep("a", "./c", "c", reexportAll())

	expectResolved(t, f.g, a, "x", "c", "x", "x")
}

func TestResolveReexportAllCycle(t *testing.T) {
	f := newFixture(t)
	a := f.asset("a", "")
	f.asset("b", "var y", exp("y", "y"))
	f.dep("a", "./b", "b", reexportAll())
	f.dep("b", "./a", "a", reexportAll())

	// The probe through the cycle fails without failing the lookup
	expectResolved(t, f.g, a, "y", "b", "y", "y")
	expectResolved(t, f.g, a, "z", "a", "z", "")
}

func TestResolveOwnExportBeatsReexportAll(t *testing.T) {
	f := newFixture(t)
	a := f.asset("a", "var x", exp("x", "x"))
	f.asset("b", "var x", exp("x", "x"))
	f.dep("a", "./b", "b", reexportAll())

	expectResolved(t, f.g, a, "x", "a", "x", "x")
}

func TestExportedSymbols(t *testing.T) {
	f := newFixture(t)
	a := f.asset("a", "var own", exp("own", "own"), exp("fwd", "$a$import$fwd"))
	f.asset("b", "var y, d", exp("y", "y"), exp("default", "d"))
	f.asset("c", "var deep", exp("deep", "deep"))
	f.dep("a", "./b", "b", reexportAll())
	f.dep("a", "./c", "c", imp("deep", "$a$import$fwd"))
	f.dep("b", "./a", "a", reexportAll())

	var names []string
	for _, symbol := range ExportedSymbols(f.g, a) {
		names = append(names, symbol.Asset.ID+":"+symbol.ExportSymbol)
	}
	assert.Equal(t, []string{"a:own", "c:deep", "b:y"}, names)
}
