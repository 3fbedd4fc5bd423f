package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoistjs/hoist/internal/graph"
)

func mapFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, contents := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(dedent.Dedent(contents))}
	}
	return fsys
}

func expectLoadError(t *testing.T, files map[string]string, name string, expected string) {
	t.Helper()
	_, err := Load(mapFS(files), name)
	assert.EqualError(t, err, expected)
}

func TestLoadTOML(t *testing.T) {
	m, err := Load(mapFS(map[string]string{
		"app/hoist.toml": `
			bundle = "main"
			format = "esm"
			referenced = true
			entries = ["src/index.js"]
			side_effects = ["src/index.js", "src/polyfills/**"]

			[[assets]]
			path = "src/index.js"
			id = "index"

			[[assets.dependencies]]
			specifier = "./math"
			target = "src/math.js"
			imports = ["add as $index$import$add", "*"]
			wrap = true
			namespace_escapes = true

			[[assets.dependencies]]
			specifier = "lodash"

			[[assets]]
			path = "src/math.js"
			exports = ["add", "default as $math$default"]

			[[assets]]
			path = "src/polyfills/array.js"
			code = "Array.prototype.flat ||= polyfill;"
			referenced_by = ["js"]
		`,
		"app/src/index.js": `$hoist$require("index", "./math");`,
		"app/src/math.js":  `var add = (a, b) => a + b;`,
	}), "app/hoist.toml")
	require.NoError(t, err)

	b := m.Bundle
	assert.Equal(t, "main", b.ID)
	assert.Equal(t, "js", b.Type)
	assert.Equal(t, graph.OutputFormatESModule, b.OutputFormat())
	assert.True(t, b.IsEntry())
	assert.True(t, b.IsReferenced())
	assert.Equal(t, []string{"app/hoist.toml", "app/src/index.js", "app/src/math.js"}, m.Files)

	index := m.Graph.Asset("index")
	require.NotNil(t, index)
	assert.Equal(t, index, b.MainEntry())
	assert.Equal(t, "app/src/index.js", index.FilePath)
	assert.True(t, index.SideEffects)

	math := m.Graph.Asset(AssetID("app/src/math.js"))
	require.NotNil(t, math)
	assert.Len(t, math.ID, 16)
	assert.False(t, math.SideEffects)
	assert.Equal(t, []graph.Symbol{{Exported: "add", Local: "add"}, {Exported: "default", Local: "$math$default"}}, math.Symbols)

	polyfill := m.Graph.Asset(AssetID("app/src/polyfills/array.js"))
	require.NotNil(t, polyfill)
	assert.True(t, polyfill.SideEffects)
	assert.Equal(t, "Array.prototype.flat ||= polyfill;", polyfill.Code)
	assert.True(t, m.Graph.IsAssetReferencedByAssetType(polyfill, "js"))

	deps := m.Graph.Dependencies(index)
	require.Len(t, deps, 2)
	assert.Equal(t, "index:./math", deps[0].ID)
	assert.Equal(t, []graph.SymbolImport{{Imported: "add", Local: "$index$import$add"}, {Imported: "*", Local: "*"}}, deps[0].Symbols)
	assert.True(t, deps[0].IsReexportAll())
	assert.True(t, deps[0].Meta.ShouldWrap)
	assert.True(t, deps[0].NamespaceEscapes)
	assert.Equal(t, math, m.Graph.DependencyResolution(deps[0]))
	assert.Nil(t, m.Graph.DependencyResolution(deps[1]))
}

func TestLoadYAML(t *testing.T) {
	m, err := Load(mapFS(map[string]string{
		"bundle.yml": `
			entry: false
			side_effects: false
			entries: [a.js]
			assets:
			  - path: a.js
			    id: a
			    code: "$hoist$require('a', './b')"
			    dependencies:
			      - specifier: ./b
			        target: b.js
			        async: true
			  - path: b.js
			    id: b
			    code: "module.exports = 1"
			    commonjs: true
			    side_effects: true
			  - path: c.js
			    id: c
			    code: ""
			    external: true
		`,
	}), "bundle.yml")
	require.NoError(t, err)

	b := m.Bundle
	assert.Equal(t, "bundle", b.ID)
	assert.Equal(t, graph.OutputFormatGlobal, b.OutputFormat())
	assert.False(t, b.IsEntry())

	a, bAsset, c := m.Graph.Asset("a"), m.Graph.Asset("b"), m.Graph.Asset("c")
	assert.False(t, a.SideEffects)
	assert.True(t, bAsset.SideEffects)
	assert.True(t, bAsset.Meta.IsCommonJS)
	assert.True(t, b.HasAsset(a))
	assert.True(t, b.HasAsset(bAsset))
	assert.False(t, b.HasAsset(c))
	assert.True(t, m.Graph.Dependencies(a)[0].IsAsync)
	assert.Equal(t, []string{"bundle.yml"}, m.Files)
}

func TestLoadErrors(t *testing.T) {
	expectLoadError(t, map[string]string{"m.json": "{}"}, "m.json",
		`m.json: unsupported manifest extension ".json" (expected .toml, .yaml, or .yml)`)
	expectLoadError(t, map[string]string{"m.toml": `format = "amd"`}, "m.toml",
		`m.toml: unknown output format "amd"`)
	expectLoadError(t, map[string]string{"m.toml": ``}, "m.toml",
		`m.toml: the bundle has no entries`)
	expectLoadError(t, map[string]string{"m.toml": `entries = ["x.js"]`}, "m.toml",
		`m.toml: entry "x.js" is not one of the assets`)
	expectLoadError(t, map[string]string{"m.toml": `side_effects = "yes"`}, "m.toml",
		`m.toml: side_effects must be a bool or a list of globs, got yes`)
	expectLoadError(t, map[string]string{"m.toml": `side_effects = ["src/[a"]`}, "m.toml",
		`m.toml: invalid side_effects pattern "src/[a"`)
	expectLoadError(t, map[string]string{"m.toml": `
		[[assets]]
		path = "a.js"
		code = ""
		exports = ["a as b as c"]
	`}, "m.toml", `m.toml: asset "a.js": invalid symbol "a as b as c" (expected "name" or "name as local")`)
	expectLoadError(t, map[string]string{"m.toml": `
		[[assets]]
		path = "a.js"
		id = "not-an-identifier"
		code = ""
	`}, "m.toml", `m.toml: asset "a.js": the id "not-an-identifier" cannot be part of an identifier`)
	expectLoadError(t, map[string]string{"m.toml": `
		[[assets]]
		path = "a.js"
		code = ""

		[[assets.dependencies]]
		specifier = "./b"
		target = "b.js"
	`}, "m.toml", `m.toml: asset "a.js": dependency "./b" points to "b.js" which is not one of the assets`)

	_, err := Load(mapFS(map[string]string{"m.toml": `entrys = ["a.js"]`}), "m.toml")
	assert.Error(t, err)

	_, err = Load(mapFS(map[string]string{"m.toml": `
		[[assets]]
		path = "missing.js"
	`}), "m.toml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js"), []byte("run();"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hoist.toml"), []byte(dedent.Dedent(`
		entries = ["a.js"]

		[[assets]]
		path = "a.js"
		id = "a"
	`)), 0o644))

	m, err := LoadFile(filepath.Join(dir, "hoist.toml"))
	require.NoError(t, err)
	assert.Equal(t, "hoist", m.Bundle.ID)
	assert.Equal(t, "run();", m.Graph.Asset("a").Code)
	assert.Equal(t, []string{"hoist.toml", "a.js"}, m.Files)
}

func TestAssetIDIsStable(t *testing.T) {
	assert.Equal(t, AssetID("src/a.js"), AssetID("src/a.js"))
	assert.NotEqual(t, AssetID("src/a.js"), AssetID("src/b.js"))
	assert.Regexp(t, `^[0-9a-f]{16}$`, AssetID("src/a.js"))
}
