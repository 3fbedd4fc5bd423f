package scopehoist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoistjs/hoist/internal/graph"
	"github.com/hoistjs/hoist/internal/js_ast"
	"github.com/hoistjs/hoist/internal/logger"
	"github.com/hoistjs/hoist/internal/test"
)

func expectWrapped(t *testing.T, code string, expected string) {
	t.Helper()
	t.Run(code, func(t *testing.T) {
		t.Helper()
		asset := &graph.Asset{ID: "m", FilePath: "m.js"}
		stmts, err := WrapModule(asset, parseForTest(t, code))
		require.NoError(t, err)
		test.AssertEqualWithDiff(t, printForTest(stmts), expected)
	})
}

func TestWrapEmptyModule(t *testing.T) {
	expectWrapped(t, "", `var $m$executed = false;
function $m$init() {
  if ($m$executed)
    return;
  $m$executed = true;
}
`)
}

func TestWrapHoistsDeclarations(t *testing.T) {
	expectWrapped(t, `
		var a = 1, {b, c: [d]} = obj;
		let e;
		const f = 2;
		function helper() { return a }
		class Foo {}
		if (cond) {
			var g = 3;
			let h = 4;
		}
		for (var i = 0; i < 3; i++) {}
		for (var k of list) use(k);
		var a = 5;
	`, `var a, b, d, e, f, Foo, g, i, k, $m$executed = false;
function helper() {
  return a;
}
function $m$init() {
  if ($m$executed)
    return;
  $m$executed = true;
  a = 1;
  ({ b, c: [d] } = obj);
  f = 2;
  Foo = class Foo {
  };
  if (cond) {
    g = 3;
    let h = 4;
  }
  for (i = 0; i < 3; i++) {}
  for (k of list)
    use(k);
  a = 5;
}
`)
}

func TestWrapDestructuringOrder(t *testing.T) {
	expectWrapped(t, "var {z, a: [y, {x = 1}], ...w} = o, [v, , ...u] = p, z = 0", `var z, y, x, w, v, u, $m$executed = false;
function $m$init() {
  if ($m$executed)
    return;
  $m$executed = true;
  ({ z, a: [y, { x = 1 }], ...w } = o);
  [v, , ...u] = p;
  z = 0;
}
`)
}

func TestWrapDoesNotEnterFunctions(t *testing.T) {
	expectWrapped(t, `
		function outer() { var inner = 1 }
		x = function () { var y = 2 };
		try { var t = f() } catch (err) { var u } finally { let q }
	`, `var t, u, $m$executed = false;
function outer() {
  var inner = 1;
}
function $m$init() {
  if ($m$executed)
    return;
  $m$executed = true;
  x = function() {
    var y = 2;
  };
  try {
    t = f();
  } catch (err) {} finally {
    let q;
  }
}
`)
}

func TestWrapInitializerGuard(t *testing.T) {
	asset := &graph.Asset{ID: "m", FilePath: "m.js"}
	stmts, err := WrapModule(asset, parseForTest(t, "sideEffect()"))
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	initFn, ok := stmts[len(stmts)-1].Data.(*js_ast.SFunction)
	require.True(t, ok)
	assert.Equal(t, InitName("m"), initFn.Fn.Name.Name)

	// The body only runs while the flag is still false, and the flag is set
	// before anything else so a reentrant call from a cycle returns early
	body := initFn.Fn.Body.Stmts
	require.Len(t, body, 3)
	guard, ok := body[0].Data.(*js_ast.SIf)
	require.True(t, ok)
	assert.Equal(t, ExecutedName("m"), guard.Test.Data.(*js_ast.EIdentifier).Name)
	assert.IsType(t, &js_ast.SReturn{}, guard.Yes.Data)
	assert.Equal(t, "$m$executed = true;\n", printForTest(body[1:2]))
	assert.Equal(t, "sideEffect();\n", printForTest(body[2:]))
}

func TestWrapForInInitializer(t *testing.T) {
	asset := &graph.Asset{ID: "m", FilePath: "m.js"}
	stmts := []js_ast.Stmt{{Data: &js_ast.SForIn{
		Init: js_ast.Stmt{Data: &js_ast.SLocal{Kind: js_ast.LocalVar, Decls: []js_ast.Decl{{
			Binding:    js_ast.Binding{Data: &js_ast.BIdentifier{Name: "k"}},
			ValueOrNil: js_ast.Expr{Loc: logger.Loc{Start: 13}, Data: &js_ast.ENumber{Value: 0}},
		}}}},
		Value: js_ast.Ident(logger.Loc{}, "o"),
		Body:  js_ast.Stmt{Data: &js_ast.SEmpty{}},
	}}}

	_, err := WrapModule(asset, stmts)
	var unsupported *UnsupportedSyntaxError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, logger.Loc{Start: 13}, unsupported.Loc())
	assert.EqualError(t, err, `m.js: Cannot hoist a for-in loop variable with an initializer out of asset "m"`)
}
