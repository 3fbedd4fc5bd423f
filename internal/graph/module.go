package graph

import (
	"github.com/hoistjs/hoist/internal/js_ast"
)

// The name used for namespace imports and re-export-all edges
const Star = "*"

// Maps an exported name to the local binding that holds its value
type Symbol struct {
	Exported string
	Local    string
}

// Maps an imported name (the export name at the target) to the local binding
// it is bound to in the importing module
type SymbolImport struct {
	Imported string
	Local    string
}

type Asset struct {
	// Opaque and identifier-safe. This is used to derive generated names such
	// as "$<id>$init" so it must not contain characters that are invalid in an
	// identifier.
	ID       string
	FilePath string

	// The output kind of this asset ("js", "css", ...)
	Type string

	// The code after per-language transformation. Module syntax has already
	// been rewritten into "$hoist$require()" calls at this point.
	Code string

	// If false, this asset may be dropped when none of its exports are used
	SideEffects bool

	Symbols []Symbol
	Meta    AssetMeta

	// Filled in by the concatenation preprocessor
	Stmts []js_ast.Stmt
}

// Returns the local binding for an exported name
func (a *Asset) LocalForExport(exported string) (string, bool) {
	for _, symbol := range a.Symbols {
		if symbol.Exported == exported {
			return symbol.Local, true
		}
	}
	return "", false
}

type Dependency struct {
	ID              string
	SourceAssetID   string
	ModuleSpecifier string

	// Ordered imported-name to local-name pairs
	Symbols []SymbolImport

	Meta DependencyMeta

	IsAsync    bool
	IsWeak     bool
	IsOptional bool

	// The namespace object created by a "*" import is observed as a whole
	// (enumerated or passed around) instead of only being read by property
	NamespaceEscapes bool
}

// "export * from 'x'" shows up as the pair "*" -> "*"
func (dep *Dependency) IsReexportAll() bool {
	for _, pair := range dep.Symbols {
		if pair.Imported == Star && pair.Local == Star {
			return true
		}
	}
	return false
}

// Returns the imported name that is bound to the given local identifier
func (dep *Dependency) ImportedForLocal(local string) (string, bool) {
	for _, pair := range dep.Symbols {
		if pair.Local == local {
			return pair.Imported, true
		}
	}
	return "", false
}
