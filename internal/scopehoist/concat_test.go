package scopehoist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoistjs/hoist/internal/config"
	"github.com/hoistjs/hoist/internal/graph"
	"github.com/hoistjs/hoist/internal/js_ast"
	"github.com/hoistjs/hoist/internal/logger"
	"github.com/hoistjs/hoist/internal/test"
)

func concatForTest(t *testing.T, f *fixture, options config.Options) *Result {
	t.Helper()
	result, err := Concat(context.Background(), f.b, f.g, options)
	require.NoError(t, err)
	return result
}

func expectMerged(t *testing.T, f *fixture, expected string) *Result {
	t.Helper()
	result := concatForTest(t, f, config.Options{OmitProvenance: true})
	test.AssertEqualWithDiff(t, printMerged(t, result, false), expected)
	return result
}

func TestConcatRequireAtFirstStatement(t *testing.T) {
	f := newFixture(t)
	f.entry("a", `
		$hoist$require("a", "./b");
		use(x);
	`)
	f.asset("b", "var x = 2;")
	f.dep("a", "./b", "b", imp("x", "x"))

	result := expectMerged(t, f, `var x = 2;
$hoist$require("a", "./b");
use(x);
`)
	assert.Empty(t, result.Wrapped)
	assert.Empty(t, result.Excluded)
}

func TestConcatSpliceIndex(t *testing.T) {
	f := newFixture(t)
	f.entry("a", `
		var before = 1;
		setup();
		console.log($hoist$require("a", "./b").x);
		$hoist$require("a", "./b");
	`)
	f.asset("b", "var x = 2;")
	f.dep("a", "./b", "b")

	expectMerged(t, f, `var before = 1;
setup();
var x = 2;
console.log($hoist$require("a", "./b").x);
$hoist$require("a", "./b");
`)
}

func TestConcatSpliceOrderDiffersFromEdgeOrder(t *testing.T) {
	f := newFixture(t)
	f.entry("a", `
		$hoist$require("a", "./c");
		middle();
		$hoist$require("a", "./b");
	`)
	f.asset("b", "fromB();")
	f.asset("c", "fromC();")
	f.dep("a", "./b", "b")
	f.dep("a", "./c", "c")

	expectMerged(t, f, `fromC();
$hoist$require("a", "./c");
middle();
fromB();
$hoist$require("a", "./b");
`)
}

func TestConcatSharedSpliceIndexKeepsTraversalOrder(t *testing.T) {
	f := newFixture(t)
	f.entry("a", `$hoist$require("a", "./b"), $hoist$require("a", "./c");`)
	f.asset("b", "fromB();")
	f.asset("c", "fromC();")
	f.dep("a", "./b", "b")
	f.dep("a", "./c", "c")

	expectMerged(t, f, `fromB();
fromC();
$hoist$require("a", "./b"), $hoist$require("a", "./c");
`)
}

func TestConcatNestedDependencies(t *testing.T) {
	f := newFixture(t)
	f.entry("a", `
		first();
		$hoist$require("a", "./b");
	`)
	f.asset("b", `
		$hoist$require("b", "./c");
		fromB();
	`)
	f.asset("c", "fromC();")
	f.dep("a", "./b", "b")
	f.dep("b", "./c", "c")

	expectMerged(t, f, `first();
fromC();
$hoist$require("b", "./c");
fromB();
$hoist$require("a", "./b");
`)
}

func TestConcatRequireOutsideExpressionStatement(t *testing.T) {
	f := newFixture(t)
	f.entry("a", `
		first();
		var b = $hoist$require("a", "./b");
	`)
	f.asset("b", "fromB();")
	f.dep("a", "./b", "b")

	expectMerged(t, f, `fromB();
first();
var b = $hoist$require("a", "./b");
`)
}

func TestConcatProvenanceComments(t *testing.T) {
	f := newFixture(t)
	f.entry("a", `$hoist$require("a", "./b");`)
	f.asset("b", "var x = 2;")
	f.dep("a", "./b", "b")

	result := concatForTest(t, f, config.Options{})
	test.AssertEqualWithDiff(t, printMerged(t, result, false), `// ASSET: b.js
var x = 2;
// ASSET: a.js
$hoist$require("a", "./b");
`)
}

func TestConcatCustomRequireName(t *testing.T) {
	f := newFixture(t)
	f.entry("a", `
		first();
		__load("a", "./b");
		$hoist$require("a", "./b");
	`)
	f.asset("b", "fromB();")
	f.dep("a", "./b", "b")

	result := concatForTest(t, f, config.Options{OmitProvenance: true, RequireName: "__load"})
	test.AssertEqualWithDiff(t, printMerged(t, result, false), `first();
fromB();
__load("a", "./b");
$hoist$require("a", "./b");
`)
}

func TestConcatWrapsLazyDependency(t *testing.T) {
	f := newFixture(t)
	f.entry("e", `
		function load() {
			return $hoist$require("e", "./a");
		}
		load();
	`)
	f.asset("a", `
		$hoist$require("a", "./b");
		var fromA = 1;
	`)
	f.asset("b", "var fromB = 2;")
	lazy := f.dep("e", "./a", "a")
	lazy.Meta.ShouldWrap = true
	f.dep("a", "./b", "b")

	result := expectMerged(t, f, `var fromB, $b$executed = false;
function $b$init() {
  if ($b$executed)
    return;
  $b$executed = true;
  fromB = 2;
}
var fromA, $a$executed = false;
function $a$init() {
  if ($a$executed)
    return;
  $a$executed = true;
  $hoist$require("a", "./b");
  fromA = 1;
}
function load() {
  return $hoist$require("e", "./a");
}
load();
`)
	assert.Equal(t, []string{"a", "b"}, result.Wrapped)
}

func TestConcatWrapReachesAssetsSeenUnwrapped(t *testing.T) {
	f := newFixture(t)
	e := f.entry("e", `
		$hoist$require("e", "./shared");
		$hoist$require("e", "./lazy");
	`)
	shared := f.asset("shared", "")
	lazy := f.asset("lazy", `$hoist$require("lazy", "./leaf");`)
	leaf := f.asset("leaf", "")
	f.dep("e", "./shared", "shared")
	f.dep("e", "./lazy", "lazy").Meta.ShouldWrap = true
	f.dep("lazy", "./shared", "shared")
	f.dep("lazy", "./leaf", "leaf")

	result := concatForTest(t, f, config.Options{})
	assert.False(t, e.Meta.ShouldWrap())
	assert.True(t, lazy.Meta.ShouldWrap())
	assert.True(t, shared.Meta.ShouldWrap())
	assert.True(t, leaf.Meta.ShouldWrap())
	assert.Equal(t, []string{"shared", "lazy", "leaf"}, result.Wrapped)
}

func TestConcatCycle(t *testing.T) {
	f := newFixture(t)
	f.entry("e", `$hoist$require("e", "./a");`)
	f.asset("a", `
		$hoist$require("a", "./b");
		var fromA = 1;
	`)
	f.asset("b", `
		$hoist$require("b", "./a");
		var fromB = 2;
	`)
	f.dep("e", "./a", "a")
	f.dep("a", "./b", "b")
	f.dep("b", "./a", "a")

	result := expectMerged(t, f, `var fromB, $b$executed = false;
function $b$init() {
  if ($b$executed)
    return;
  $b$executed = true;
  $hoist$require("b", "./a");
  fromB = 2;
}
var fromA, $a$executed = false;
function $a$init() {
  if ($a$executed)
    return;
  $a$executed = true;
  $hoist$require("a", "./b");
  fromA = 1;
}
$hoist$require("e", "./a");
`)
	assert.Equal(t, []string{"a", "b"}, result.Wrapped)
}

func TestConcatWrappedRootRunsItself(t *testing.T) {
	f := newFixture(t)
	f.entry("e", `
		$hoist$require("e", "./a");
		var top = 1;
	`)
	f.asset("a", `$hoist$require("a", "./e");`)
	f.dep("e", "./a", "a")
	f.dep("a", "./e", "e")

	result := expectMerged(t, f, `var $a$executed = false;
function $a$init() {
  if ($a$executed)
    return;
  $a$executed = true;
  $hoist$require("a", "./e");
}
var top, $e$executed = false;
function $e$init() {
  if ($e$executed)
    return;
  $e$executed = true;
  $hoist$require("e", "./a");
  top = 1;
}
$e$init();
`)
	assert.Equal(t, []string{"e", "a"}, result.Wrapped)
}

func TestConcatExcludesUnusedPureAssets(t *testing.T) {
	f := newFixture(t)
	f.entry("e", `
		$hoist$require("e", "./pure");
		$hoist$require("e", "./used");
		main();
	`)
	pure := f.asset("pure", `
		var unused = 1;
		$hoist$require("pure", "./effect");
	`, exp("unused", "unused"))
	pure.SideEffects = false
	f.asset("effect", "sideEffect();")
	used := f.asset("used", "var x = 1, y = 2;", exp("x", "x"), exp("y", "y"))
	used.SideEffects = false
	f.dep("e", "./pure", "pure")
	f.dep("e", "./used", "used", imp("x", "$e$import$x"))
	f.dep("pure", "./effect", "effect")

	// The dependency of the dropped asset moves up to the entry
	result := expectMerged(t, f, `sideEffect();
$hoist$require("e", "./pure");
var x = 1, y = 2;
$hoist$require("e", "./used");
main();
`)
	assert.Equal(t, []string{"pure"}, result.Excluded)
	assert.Equal(t, []string{"x"}, result.UsedExports.Names("used"))
}

func TestConcatKeepsUnusedCommonJS(t *testing.T) {
	f := newFixture(t)
	f.entry("e", `$hoist$require("e", "./cjs");`)
	cjs := f.asset("cjs", "module.exports = 1;")
	cjs.SideEffects = false
	cjs.Meta.IsCommonJS = true
	f.dep("e", "./cjs", "cjs")

	result := expectMerged(t, f, `module.exports = 1;
$hoist$require("e", "./cjs");
`)
	assert.Empty(t, result.Excluded)
}

func TestConcatSkipsUnresolvedAndForeignEdges(t *testing.T) {
	f := newFixture(t)
	f.entry("e", `
		$hoist$require("e", "external");
		$hoist$require("e", "./other");
		done();
	`)
	f.outside("other", "elsewhere();")
	f.dep("e", "external", "")
	f.dep("e", "./other", "other")

	expectMerged(t, f, `$hoist$require("e", "external");
$hoist$require("e", "./other");
done();
`)
}

func TestConcatGraphDesync(t *testing.T) {
	f := newFixture(t)
	f.entry("e", `$hoist$require("e", "./helpr");`)
	f.dep("e", "./helper", "")

	_, err := Concat(context.Background(), f.b, f.g, config.Options{})
	var desync *GraphDesyncError
	require.True(t, errors.As(err, &desync))
	assert.Equal(t, "./helpr", desync.Specifier)
	assert.Equal(t, "./helper", desync.Suggestion)
	assert.Equal(t, logger.Loc{Start: 20}, desync.Loc())
	assert.EqualError(t, err, `e.js: Could not find a dependency for "./helpr" in asset "e" (did you mean "./helper"?)`)

	var located LocatedError
	require.True(t, errors.As(err, &located))
	assert.Equal(t, "e.js", located.AssetPath())
}

func TestConcatMalformedRequire(t *testing.T) {
	f := newFixture(t)
	f.entry("e", `$hoist$require("e", specifier);`)

	_, err := Concat(context.Background(), f.b, f.g, config.Options{})
	var malformed *MalformedRequireError
	require.True(t, errors.As(err, &malformed))
	assert.EqualError(t, err, `e.js: The second argument to "$hoist$require" must be a string literal`)
}

func TestConcatParseError(t *testing.T) {
	f := newFixture(t)
	f.entry("e", `$hoist$require("e", "./bad");`)
	f.asset("bad", "var = 1;")
	f.dep("e", "./bad", "bad")

	_, err := Concat(context.Background(), f.b, f.g, config.Options{})
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "bad", parseErr.AssetID)
	assert.NotEmpty(t, parseErr.Msgs)
	assert.True(t, strings.HasPrefix(err.Error(), `failed to parse asset "bad" (bad.js): 1:4: `), err.Error())
}

func TestConcatHelpersComeFirst(t *testing.T) {
	f := newFixture(t)
	f.entry("e", "main();")
	f.b.Format = graph.OutputFormatESModule

	result := concatForTest(t, f, config.Options{OmitProvenance: true})
	first, ok := result.Stmts[0].Data.(*js_ast.SFunction)
	require.True(t, ok)
	assert.Equal(t, "$hoist$interopDefault", first.Fn.Name.Name)
	assert.Equal(t, "main();\n", printMerged(t, result, false))
}

func TestConcatPrelude(t *testing.T) {
	f := newFixture(t)
	f.entry("e", "main();")
	f.b.Format = graph.OutputFormatGlobal
	f.b.Entry = true
	f.b.Referenced = true
	require.True(t, NeedsPrelude(f.b))

	result := concatForTest(t, f, config.Options{OmitProvenance: true})
	local, ok := result.Stmts[0].Data.(*js_ast.SLocal)
	require.True(t, ok)
	assert.Equal(t, "hoistRequire", local.Decls[0].Binding.Data.(*js_ast.BIdentifier).Name)
	assert.Equal(t, "main();\n", printMerged(t, result, true))
}

func TestNeedsPrelude(t *testing.T) {
	for _, c := range []struct {
		format     graph.OutputFormat
		entry      bool
		referenced bool
		expected   bool
	}{
		{graph.OutputFormatGlobal, true, true, true},
		{graph.OutputFormatGlobal, false, true, false},
		{graph.OutputFormatGlobal, true, false, false},
		{graph.OutputFormatESModule, true, true, false},
		{graph.OutputFormatCommonJS, true, true, false},
	} {
		b := graph.NewBundle(graph.New(), "bundle", "js")
		b.Format, b.Entry, b.Referenced = c.format, c.entry, c.referenced
		assert.Equal(t, c.expected, NeedsPrelude(b), "%v entry=%v referenced=%v", c.format, c.entry, c.referenced)
	}
}

func TestConcatVerboseLog(t *testing.T) {
	f := newFixture(t)
	f.entry("e", `$hoist$require("e", "./a");`)
	pure := f.asset("pure", "")
	pure.SideEffects = false
	f.asset("a", "")
	f.dep("e", "./a", "a").Meta.ShouldWrap = true

	log := logger.NewDeferLog()
	concatForTest(t, f, config.Options{Log: log})

	var texts []string
	for _, msg := range log.Done() {
		assert.Equal(t, logger.Verbose, msg.Kind)
		texts = append(texts, msg.Text)
	}
	assert.Contains(t, texts, "Wrapping a.js")
	assert.Contains(t, texts, "Excluding pure.js because none of its exports are used")
}

func buildWideFixture(t *testing.T, leaves int, badLeaf int) *fixture {
	t.Helper()
	f := newFixture(t)
	code := strings.Builder{}
	for i := 0; i < leaves; i++ {
		fmt.Fprintf(&code, "$hoist$require(\"e\", \"./l%d\");\n", i)
	}
	f.entry("e", code.String())
	for i := 0; i < leaves; i++ {
		id := fmt.Sprintf("l%d", i)
		leaf := fmt.Sprintf("var v%d = %d;", i, i)
		if i == badLeaf {
			leaf = "var = ;"
		}
		f.asset(id, leaf)
		f.dep("e", "./"+id, id)
	}
	return f
}

func TestConcatOutputDoesNotDependOnConcurrency(t *testing.T) {
	var outputs []string
	for _, concurrency := range []int{1, 3, 64} {
		f := buildWideFixture(t, 40, -1)
		result := concatForTest(t, f, config.Options{Concurrency: concurrency})
		outputs = append(outputs, printMerged(t, result, false))

		for _, asset := range f.b.Assets() {
			assert.NotNil(t, asset.Stmts, asset.ID)
		}
	}
	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[0], outputs[2])
	assert.Contains(t, outputs[0], "// ASSET: l39.js\nvar v39 = 39;\n$hoist$require(\"e\", \"./l39\");\n")
}

func TestConcatStopsOnFirstFailure(t *testing.T) {
	f := buildWideFixture(t, 40, 17)

	_, err := Concat(context.Background(), f.b, f.g, config.Options{Concurrency: 4})
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "l17", parseErr.AssetID)
}

func TestConcatCanceledContext(t *testing.T) {
	f := buildWideFixture(t, 10, -1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Concat(ctx, f.b, f.g, config.Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
