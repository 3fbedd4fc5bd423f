// Package manifest loads a bundle and the dependency graph around it from a
// TOML or YAML file. The result is what earlier bundling stages would have
// produced: per-module code that has already been rewritten into
// "$hoist$require()" calls, the symbol tables, and the resolved edges.
//
// A small manifest looks like this:
//
//   bundle = "main"
//   format = "global"
//   entries = ["src/index.js"]
//   side_effects = ["src/polyfills/**"]
//
//   [[assets]]
//   path = "src/index.js"
//
//   [[assets.dependencies]]
//   specifier = "./math"
//   target = "src/math.js"
//   imports = ["add as $index$import$add"]
//
//   [[assets]]
//   path = "src/math.js"
//   exports = ["add", "default as $math$default"]
//
package manifest

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/hoistjs/hoist/internal/graph"
	"github.com/hoistjs/hoist/internal/js_lexer"
)

type file struct {
	Bundle     string `toml:"bundle" yaml:"bundle"`
	Type       string `toml:"type" yaml:"type"`
	Format     string `toml:"format" yaml:"format"`
	Entry      *bool  `toml:"entry" yaml:"entry"`
	Referenced bool   `toml:"referenced" yaml:"referenced"`

	// The first entry is the main entry
	Entries []string `toml:"entries" yaml:"entries"`

	// Either a bool or a list of globs matching the paths (relative to the
	// manifest) of the modules that have side effects
	SideEffects any `toml:"side_effects" yaml:"side_effects"`

	Assets []assetEntry `toml:"assets" yaml:"assets"`
}

type assetEntry struct {
	Path string `toml:"path" yaml:"path"`
	ID   string `toml:"id" yaml:"id"`
	Type string `toml:"type" yaml:"type"`

	// Used instead of reading "path" when present
	Code *string `toml:"code" yaml:"code"`

	SideEffects  *bool    `toml:"side_effects" yaml:"side_effects"`
	CommonJS     bool     `toml:"commonjs" yaml:"commonjs"`
	ESModule     bool     `toml:"es_module" yaml:"es_module"`
	External     bool     `toml:"external" yaml:"external"`
	ReferencedBy []string `toml:"referenced_by" yaml:"referenced_by"`
	Exports      []string `toml:"exports" yaml:"exports"`

	Dependencies []dependencyEntry `toml:"dependencies" yaml:"dependencies"`
}

type dependencyEntry struct {
	ID        string `toml:"id" yaml:"id"`
	Specifier string `toml:"specifier" yaml:"specifier"`

	// Left empty for an unresolved edge
	Target string `toml:"target" yaml:"target"`

	Imports          []string `toml:"imports" yaml:"imports"`
	Wrap             bool     `toml:"wrap" yaml:"wrap"`
	Async            bool     `toml:"async" yaml:"async"`
	Weak             bool     `toml:"weak" yaml:"weak"`
	Optional         bool     `toml:"optional" yaml:"optional"`
	NamespaceEscapes bool     `toml:"namespace_escapes" yaml:"namespace_escapes"`
}

type Manifest struct {
	Graph  *graph.Graph
	Bundle *graph.Bundle

	// Every file the manifest was built from, as paths inside the file system
	// it was loaded from. The manifest itself comes first.
	Files []string
}

// Asset ids that aren't given explicitly are derived from the module path
func AssetID(modulePath string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(modulePath))
}

// Loads a manifest from disk. Paths inside it are relative to its directory.
func LoadFile(manifestPath string) (*Manifest, error) {
	dir, name := filepath.Split(manifestPath)
	if dir == "" {
		dir = "."
	}
	return Load(os.DirFS(dir), name)
}

func Load(fsys fs.FS, name string) (*Manifest, error) {
	contents, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}

	// Unknown keys are rejected so a misspelled option isn't silently ignored
	var f file
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".toml":
		decoder := toml.NewDecoder(bytes.NewReader(contents))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&f); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(contents))
		decoder.KnownFields(true)
		if err := decoder.Decode(&f); err != nil && err != io.EOF {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported manifest extension %q (expected .toml, .yaml, or .yml)", name, ext)
	}

	b := builder{
		fsys:     fsys,
		name:     name,
		dir:      path.Dir(name),
		byPath:   make(map[string]*graph.Asset),
		manifest: &Manifest{Graph: graph.New(), Files: []string{name}},
	}
	if err := b.build(&f); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return b.manifest, nil
}

type builder struct {
	fsys     fs.FS
	name     string
	dir      string
	byPath   map[string]*graph.Asset
	manifest *Manifest
}

func (b *builder) modulePath(p string) string {
	return path.Join(b.dir, p)
}

func (b *builder) build(f *file) error {
	m := b.manifest

	kind := f.Type
	if kind == "" {
		kind = "js"
	}
	format, ok := graph.ParseOutputFormat(f.Format)
	if !ok {
		return fmt.Errorf("unknown output format %q", f.Format)
	}
	bundleID := f.Bundle
	if bundleID == "" {
		bundleID = strings.TrimSuffix(path.Base(b.name), path.Ext(b.name))
	}
	m.Bundle = graph.NewBundle(m.Graph, bundleID, kind)
	m.Bundle.Format = format
	m.Bundle.Entry = f.Entry == nil || *f.Entry
	m.Bundle.Referenced = f.Referenced

	hasSideEffects, err := parseSideEffects(f.SideEffects)
	if err != nil {
		return err
	}

	for i := range f.Assets {
		if err := b.addAsset(&f.Assets[i], hasSideEffects); err != nil {
			return err
		}
	}

	for i := range f.Assets {
		if err := b.addDependencies(&f.Assets[i]); err != nil {
			return err
		}
	}

	if len(f.Entries) == 0 {
		return fmt.Errorf("the bundle has no entries")
	}
	for _, entry := range f.Entries {
		asset, ok := b.byPath[b.modulePath(entry)]
		if !ok {
			return fmt.Errorf("entry %q is not one of the assets", entry)
		}
		m.Bundle.AddEntryAsset(asset)
	}
	return nil
}

func (b *builder) addAsset(entry *assetEntry, hasSideEffects func(string) bool) error {
	if entry.Path == "" {
		return fmt.Errorf("an asset is missing its path")
	}
	modulePath := b.modulePath(entry.Path)

	code := ""
	if entry.Code != nil {
		code = *entry.Code
	} else {
		contents, err := fs.ReadFile(b.fsys, modulePath)
		if err != nil {
			return err
		}
		code = string(contents)
		b.manifest.Files = append(b.manifest.Files, modulePath)
	}

	asset := &graph.Asset{
		ID:          entry.ID,
		FilePath:    modulePath,
		Type:        entry.Type,
		Code:        code,
		SideEffects: hasSideEffects(path.Clean(entry.Path)),
		Meta: graph.AssetMeta{
			IsCommonJS:  entry.CommonJS,
			IsES6Module: entry.ESModule,
		},
	}
	if asset.ID == "" {
		asset.ID = AssetID(modulePath)
	} else if !js_lexer.IsIdentifier("$" + asset.ID) {
		return fmt.Errorf("asset %q: the id %q cannot be part of an identifier", entry.Path, asset.ID)
	}
	if asset.Type == "" {
		asset.Type = "js"
	}
	if entry.SideEffects != nil {
		asset.SideEffects = *entry.SideEffects
	}
	for _, text := range entry.Exports {
		exported, local, err := parseSymbol(text)
		if err != nil {
			return fmt.Errorf("asset %q: %w", entry.Path, err)
		}
		asset.Symbols = append(asset.Symbols, graph.Symbol{Exported: exported, Local: local})
	}

	if err := b.manifest.Graph.AddAsset(asset); err != nil {
		return err
	}
	b.byPath[modulePath] = asset
	if !entry.External {
		b.manifest.Bundle.AddAsset(asset)
	}
	for _, kind := range entry.ReferencedBy {
		b.manifest.Graph.MarkReferencedByAssetType(asset, kind)
	}
	return nil
}

func (b *builder) addDependencies(entry *assetEntry) error {
	g := b.manifest.Graph
	source := b.byPath[b.modulePath(entry.Path)]

	for _, d := range entry.Dependencies {
		if d.Specifier == "" {
			return fmt.Errorf("asset %q has a dependency without a specifier", entry.Path)
		}
		dep := &graph.Dependency{
			ID:               d.ID,
			SourceAssetID:    source.ID,
			ModuleSpecifier:  d.Specifier,
			Meta:             graph.DependencyMeta{ShouldWrap: d.Wrap},
			IsAsync:          d.Async,
			IsWeak:           d.Weak,
			IsOptional:       d.Optional,
			NamespaceEscapes: d.NamespaceEscapes,
		}
		if dep.ID == "" {
			dep.ID = source.ID + ":" + d.Specifier
		}
		for _, text := range d.Imports {
			imported, local, err := parseSymbol(text)
			if err != nil {
				return fmt.Errorf("asset %q: dependency %q: %w", entry.Path, d.Specifier, err)
			}
			dep.Symbols = append(dep.Symbols, graph.SymbolImport{Imported: imported, Local: local})
		}
		if err := g.AddDependency(dep); err != nil {
			return err
		}

		if d.Target == "" {
			continue
		}
		target, ok := b.byPath[b.modulePath(d.Target)]
		if !ok {
			return fmt.Errorf("asset %q: dependency %q points to %q which is not one of the assets", entry.Path, d.Specifier, d.Target)
		}
		if err := g.ResolveDependency(dep, target); err != nil {
			return err
		}
	}
	return nil
}

// Accepts "name" or "name as local". The pair "*" re-exports everything.
func parseSymbol(text string) (string, string, error) {
	fields := strings.Fields(text)
	switch {
	case len(fields) == 1:
		return fields[0], fields[0], nil
	case len(fields) == 3 && fields[1] == "as":
		return fields[0], fields[2], nil
	}
	return "", "", fmt.Errorf("invalid symbol %q (expected \"name\" or \"name as local\")", text)
}

func parseSideEffects(value any) (func(string) bool, error) {
	switch v := value.(type) {
	case nil:
		return func(string) bool { return true }, nil

	case bool:
		return func(string) bool { return v }, nil

	case []any:
		patterns := make([]string, 0, len(v))
		for _, item := range v {
			pattern, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("side_effects patterns must be strings, got %v", item)
			}
			if !doublestar.ValidatePattern(pattern) {
				return nil, fmt.Errorf("invalid side_effects pattern %q", pattern)
			}
			patterns = append(patterns, pattern)
		}
		return func(modulePath string) bool {
			for _, pattern := range patterns {
				if matched, _ := doublestar.Match(pattern, modulePath); matched {
					return true
				}
			}
			return false
		}, nil
	}

	return nil, fmt.Errorf("side_effects must be a bool or a list of globs, got %v", value)
}
