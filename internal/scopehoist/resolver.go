package scopehoist

import (
	"github.com/hoistjs/hoist/internal/graph"
)

// The parts of the dependency graph that concatenation reads. "*graph.Graph"
// implements this.
type BundleGraph interface {
	Dependencies(asset *graph.Asset) []*graph.Dependency

	// Returns nil when the edge was left unresolved (an external module or a
	// re-export that an earlier stage optimized away)
	DependencyResolution(dep *graph.Dependency) *graph.Asset

	IsAssetReferencedByAssetType(asset *graph.Asset, kind string) bool
}

// The bundle being concatenated. "*graph.Bundle" implements this.
type Bundle interface {
	MainEntry() *graph.Asset
	EntryAssets() []*graph.Asset
	Assets() []*graph.Asset
	HasAsset(asset *graph.Asset) bool
	TraverseAssets(visitor graph.AssetVisitor)
	OutputFormat() graph.OutputFormat
	IsEntry() bool
	IsReferenced() bool
}

type ResolvedSymbol struct {
	// The asset that defines the binding
	Asset *graph.Asset

	// The name the binding is exported under by "Asset"
	ExportSymbol string

	// The local binding inside "Asset", or empty if the asset does not declare
	// one (for example a CommonJS module with dynamic exports)
	Symbol string
}

type symbolKey struct {
	assetID string
	name    string
}

type symbolResolver struct {
	graph  BundleGraph
	onPath map[symbolKey]bool
}

// Follows re-export chains until reaching the asset that declares the binding.
//
// If the chain loops back onto itself ("a" re-exports "x" from "b" which
// re-exports "x" from "a"), the walk stops and the pair the lookup started
// from is returned. A loop that is only reachable through "export *" just
// makes that one "export *" edge contribute nothing. When several "export *"
// edges provide the same name, the last one wins.
func ResolveSymbol(g BundleGraph, asset *graph.Asset, exportName string) ResolvedSymbol {
	r := symbolResolver{graph: g, onPath: make(map[symbolKey]bool)}
	if result, ok := r.resolve(asset, exportName); ok {
		return result
	}
	local, _ := asset.LocalForExport(exportName)
	return ResolvedSymbol{Asset: asset, ExportSymbol: exportName, Symbol: local}
}

// Returns false if a cycle was found
func (r *symbolResolver) resolve(asset *graph.Asset, exportName string) (ResolvedSymbol, bool) {
	if exportName == graph.Star {
		return ResolvedSymbol{Asset: asset, ExportSymbol: graph.Star, Symbol: graph.Star}, true
	}

	key := symbolKey{assetID: asset.ID, name: exportName}
	if r.onPath[key] {
		return ResolvedSymbol{}, false
	}
	r.onPath[key] = true
	defer delete(r.onPath, key)

	local, hasLocal := asset.LocalForExport(exportName)
	deps := r.graph.Dependencies(asset)

	// Later edges shadow earlier ones
	for i := len(deps) - 1; i >= 0; i-- {
		dep := deps[i]

		// Is the export bound to something this edge imports?
		if hasLocal {
			if imported, ok := dep.ImportedForLocal(local); ok {
				target := r.graph.DependencyResolution(dep)
				if target == nil {
					break
				}
				return r.resolve(target, imported)
			}
		}

		// Default exports are never forwarded by "export *", and an export the
		// asset declares itself shadows anything "export *" could forward
		if !hasLocal && dep.IsReexportAll() && exportName != "default" {
			if target := r.graph.DependencyResolution(dep); target != nil {
				if result, ok := r.resolve(target, exportName); ok && result.Symbol != "" {
					return result, true
				}
			}
		}
	}

	return ResolvedSymbol{Asset: asset, ExportSymbol: exportName, Symbol: local}, true
}

// Returns every export of the asset resolved to its definer, followed by
// everything forwarded through "export *" edges except "default"
func ExportedSymbols(g BundleGraph, asset *graph.Asset) []ResolvedSymbol {
	return exportedSymbols(g, asset, make(map[string]bool))
}

func exportedSymbols(g BundleGraph, asset *graph.Asset, visited map[string]bool) []ResolvedSymbol {
	if visited[asset.ID] {
		return nil
	}
	visited[asset.ID] = true

	var symbols []ResolvedSymbol
	for _, symbol := range asset.Symbols {
		symbols = append(symbols, ResolveSymbol(g, asset, symbol.Exported))
	}

	for _, dep := range g.Dependencies(asset) {
		if !dep.IsReexportAll() {
			continue
		}
		target := g.DependencyResolution(dep)
		if target == nil {
			continue
		}
		for _, symbol := range exportedSymbols(g, target, visited) {
			if symbol.ExportSymbol != "default" {
				symbols = append(symbols, symbol)
			}
		}
	}

	return symbols
}
