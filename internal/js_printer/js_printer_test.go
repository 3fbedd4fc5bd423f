package js_printer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoistjs/hoist/internal/js_ast"
	"github.com/hoistjs/hoist/internal/js_parser"
	"github.com/hoistjs/hoist/internal/logger"
	"github.com/hoistjs/hoist/internal/test"
)

func expectPrintedCommon(t *testing.T, contents string, expected string, options Options) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog()
		stmts, ok := js_parser.Parse(log, test.SourceForTest(contents))
		require.True(t, ok, test.MsgsText(log))
		js := Print(stmts, options)
		test.AssertEqualWithDiff(t, string(js), expected)
	})
}

func expectPrinted(t *testing.T, contents string, expected string) {
	t.Helper()
	expectPrintedCommon(t, contents, expected, Options{})
}

func expectPrintedMinify(t *testing.T, contents string, expected string) {
	t.Helper()
	expectPrintedCommon(t, contents, expected, Options{MinifyWhitespace: true})
}

func TestNumber(t *testing.T) {
	expectPrinted(t, "x = 0", "x = 0;\n")
	expectPrinted(t, "x = 1e3", "x = 1000;\n")
	expectPrinted(t, "x = 0x10", "x = 16;\n")
	expectPrinted(t, "x = 1e21", "x = 1e21;\n")
	expectPrinted(t, "x = 0.000001", "x = 1e-6;\n")
	expectPrinted(t, "x = 0.5", "x = 0.5;\n")
	expectPrinted(t, "x = -1", "x = -1;\n")
	expectPrinted(t, "(1).toString()", "(1).toString();\n")
	expectPrinted(t, "x = 10n", "x = 10n;\n")

	expectPrintedMinify(t, "x = 0.5", "x=.5;")
}

func TestString(t *testing.T) {
	expectPrinted(t, "x = 'a\"b\\n'", "x = \"a\\\"b\\n\";\n")
	expectPrinted(t, "x = '\\x00'", "x = \"\\x00\";\n")
	expectPrinted(t, "x = 'café'", "x = \"café\";\n")

	assert.Equal(t, "\"a\\u2028b\"", QuoteForJS("a\u2028b"))
	assert.Equal(t, "\"\\x01\\t\"", QuoteForJS("\x01\t"))
}

func TestTemplateAndRegExp(t *testing.T) {
	expectPrinted(t, "x = `a${b}c`", "x = `a${b}c`;\n")
	expectPrinted(t, "x = tag`a\\n`", "x = tag`a\\n`;\n")
	expectPrinted(t, "x = /a/g", "x = /a/g;\n")
}

func TestPrecedence(t *testing.T) {
	expectPrinted(t, "(a + b) * c", "(a + b) * c;\n")
	expectPrinted(t, "a + (b * c)", "a + b * c;\n")
	expectPrinted(t, "a - (b - c)", "a - (b - c);\n")
	expectPrinted(t, "(a, b)", "a, b;\n")
	expectPrinted(t, "a = b = c", "a = b = c;\n")
	expectPrinted(t, "a ?? (b || c)", "a ?? (b || c);\n")
	expectPrinted(t, "(-a) ** 2", "(-a) ** 2;\n")
	expectPrinted(t, "x = a ? b : c", "x = a ? b : c;\n")
	expectPrinted(t, "typeof x === 'y'", "typeof x === \"y\";\n")
	expectPrinted(t, "void 0", "void 0;\n")
	expectPrinted(t, "delete a[b]", "delete a[b];\n")
}

func TestSpaceBeforeOperator(t *testing.T) {
	expectPrintedMinify(t, "a + +b", "a+ +b;")
	expectPrintedMinify(t, "a - -b", "a- -b;")
	expectPrintedMinify(t, "a + ++b", "a+ ++b;")
	expectPrintedMinify(t, "x-- > y", "x-- >y;")
}

func TestCallAndNew(t *testing.T) {
	expectPrinted(t, "new Foo", "new Foo();\n")
	expectPrinted(t, "new (foo())()", "new (foo())();\n")
	expectPrinted(t, "(function() {})()", "(function() {})();\n")
	expectPrinted(t, "x = function() {}", "x = function() {};\n")
	expectPrinted(t, "x = import('y')", "x = import(\"y\");\n")
	expectPrinted(t, "f(...a, b)", "f(...a, b);\n")
}

func TestOptionalChain(t *testing.T) {
	expectPrinted(t, "a?.b.c", "a?.b.c;\n")
	expectPrinted(t, "(a?.b).c", "(a?.b).c;\n")
	expectPrinted(t, "a?.[b]", "a?.[b];\n")
	expectPrinted(t, "a?.()", "a?.();\n")
}

func TestObjectAndArray(t *testing.T) {
	expectPrinted(t, "({a: 1})", "({ a: 1 });\n")
	expectPrinted(t, "x = {a, b: c}", "x = { a, b: c };\n")
	expectPrinted(t, "x = {'a-b': 1, [c]: 2}", "x = { \"a-b\": 1, [c]: 2 };\n")
	expectPrinted(t, "x = {\na: 1\n}", "x = {\n  a: 1\n};\n")
	expectPrinted(t, "x = {get a() { return 1 }}", "x = { get a() {\n  return 1;\n} };\n")
	expectPrinted(t, "x = [1, , 2,]", "x = [1, , 2];\n")
	expectPrinted(t, "x = [,]", "x = [,];\n")
	expectPrinted(t, "({a} = b)", "({ a } = b);\n")
}

func TestArrow(t *testing.T) {
	expectPrinted(t, "x => x * 2", "(x) => x * 2;\n")
	expectPrinted(t, "x = () => ({})", "x = () => ({});\n")
	expectPrinted(t, "x = async (a, ...b) => { await a }", "x = async (a, ...b) => {\n  await a;\n};\n")
}

func TestFunctionAndClass(t *testing.T) {
	expectPrinted(t, "function f(a, b = 1, ...c) { return a }",
		"function f(a, b = 1, ...c) {\n  return a;\n}\n")
	expectPrinted(t, "async function* f() { yield* g(); await h }",
		"async function* f() {\n  yield* g();\n  await h;\n}\n")
	expectPrinted(t, "class A extends B { constructor() { super() } static x = 1; #y; get z() { return 1 } }",
		"class A extends B {\n  constructor() {\n    super();\n  }\n  static x = 1;\n  #y;\n  get z() {\n    return 1;\n  }\n}\n")
	expectPrinted(t, "x = class {}", "x = class {\n};\n")
}

func TestBindings(t *testing.T) {
	expectPrinted(t, "let x = 1, y", "let x = 1, y;\n")
	expectPrinted(t, "let {a, b: [c = 1], ...d} = e", "let { a, b: [c = 1], ...d } = e;\n")
	expectPrinted(t, "const [a, , ...b] = c", "const [a, , ...b] = c;\n")
}

func TestStatements(t *testing.T) {
	expectPrinted(t, "'use strict'; a", "\"use strict\";\na;\n")
	expectPrinted(t, "if (a) b; else c", "if (a)\n  b;\nelse\n  c;\n")
	expectPrinted(t, "if (a) { b } else if (c) d", "if (a) {\n  b;\n} else if (c)\n  d;\n")
	expectPrinted(t, "for (var i = 0; i < n; i++) {}", "for (var i = 0; i < n; i++) {}\n")
	expectPrinted(t, "for (;;) {}", "for (;;) {}\n")
	expectPrinted(t, "for (var x = ('a' in b);;) {}", "for (var x = (\"a\" in b);;) {}\n")
	expectPrinted(t, "for (x in y) {}", "for (x in y) {}\n")
	expectPrinted(t, "for (const [a, b] of c) {}", "for (const [a, b] of c) {}\n")
	expectPrinted(t, "while (a) b()", "while (a)\n  b();\n")
	expectPrinted(t, "do x(); while (y)", "do\n  x();\nwhile (y);\n")
	expectPrinted(t, "label: for (;;) break label", "label:\n  for (;;)\n    break label;\n")
	expectPrinted(t, "try { a } catch (e) { b } finally { c }",
		"try {\n  a;\n} catch (e) {\n  b;\n} finally {\n  c;\n}\n")
	expectPrinted(t, "try {} catch {}", "try {} catch {}\n")
	expectPrinted(t, "switch (a) { case 1: b; break; default: c }",
		"switch (a) {\n  case 1:\n    b;\n    break;\n  default:\n    c;\n}\n")
	expectPrinted(t, "throw new Error('x')", "throw new Error(\"x\");\n")
	expectPrinted(t, "return", "return;\n")
	expectPrinted(t, "debugger", "debugger;\n")
}

func TestMinify(t *testing.T) {
	expectPrintedMinify(t, "if (a) { b; c } d", "if(a){b;c}d;")
	expectPrintedMinify(t, "let x = 1", "let x=1;")
	expectPrintedMinify(t, "function f(a, b) { return a + b }", "function f(a,b){return a+b}")
	expectPrintedMinify(t, "x = /a/; y", "x=/a/;y;")
}

func TestLeadingComments(t *testing.T) {
	log := logger.NewDeferLog()
	stmts, ok := js_parser.Parse(log, test.SourceForTest("x;\nfunction f() {}"))
	require.True(t, ok)

	stmts[1].LeadingComments = []js_ast.Comment{{Text: " ASSET: src/a.js"}}
	test.AssertEqualWithDiff(t, string(Print(stmts, Options{})), "x;\n// ASSET: src/a.js\nfunction f() {}\n")
}

func TestIndent(t *testing.T) {
	log := logger.NewDeferLog()
	stmts, ok := js_parser.Parse(log, test.SourceForTest("if (a) b()"))
	require.True(t, ok)
	test.AssertEqualWithDiff(t, string(Print(stmts, Options{Indent: 1})), "  if (a)\n    b();\n")
}
