package scopehoist

import (
	"sort"

	"github.com/hoistjs/hoist/internal/graph"
)

// Maps an asset id to the names of its exports that something uses. Keys are
// always the asset that defines the binding, never a module that merely
// re-exports it. The name "*" means the asset is consumed as a whole.
type UsedExports struct {
	names map[string][]string
	index map[string]map[string]bool
}

func newUsedExports() *UsedExports {
	return &UsedExports{
		names: make(map[string][]string),
		index: make(map[string]map[string]bool),
	}
}

func (u *UsedExports) add(assetID string, name string) {
	set := u.index[assetID]
	if set == nil {
		set = make(map[string]bool)
		u.index[assetID] = set
	}
	if !set[name] {
		set[name] = true
		u.names[assetID] = append(u.names[assetID], name)
	}
}

// In the order they were first marked
func (u *UsedExports) Names(assetID string) []string {
	return u.names[assetID]
}

func (u *UsedExports) Has(assetID string, name string) bool {
	return u.index[assetID][name]
}

func (u *UsedExports) Count(assetID string) int {
	return len(u.names[assetID])
}

func (u *UsedExports) AssetIDs() []string {
	ids := make([]string, 0, len(u.names))
	for id := range u.names {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type usageMarker struct {
	graph BundleGraph
	used  *UsedExports
}

func (m *usageMarker) markUsed(asset *graph.Asset, name string) {
	resolved := ResolveSymbol(m.graph, asset, name)
	m.used.add(resolved.Asset.ID, resolved.ExportSymbol)
}

// The results of "ExportedSymbols" are already resolved
func (m *usageMarker) markAllExports(asset *graph.Asset) {
	for _, symbol := range ExportedSymbols(m.graph, asset) {
		if symbol.Symbol != "" {
			m.used.add(symbol.Asset.ID, symbol.ExportSymbol)
		}
	}
}

// Computes which exports of which assets are used by anything. The result
// does not depend on the order assets are visited in.
func ComputeUsedExports(bundle Bundle, g BundleGraph) *UsedExports {
	m := usageMarker{graph: g, used: newUsedExports()}

	// The public surface of the entry point is always used
	if entry := bundle.MainEntry(); entry != nil {
		m.markAllExports(entry)
	}

	for _, asset := range bundle.Assets() {
		for _, dep := range g.Dependencies(asset) {
			target := g.DependencyResolution(dep)
			if target == nil {
				continue
			}

			for _, pair := range dep.Symbols {
				// "export * from" forwards names but does not read any of them
				if pair.Local == graph.Star {
					continue
				}

				// A namespace import only uses everything when the namespace
				// object itself escapes. Property reads off a namespace that
				// doesn't escape show up as their own named pairs.
				if pair.Imported == graph.Star {
					if dep.NamespaceEscapes {
						m.markAllExports(target)
						m.markUsed(target, graph.Star)
					}
					continue
				}

				m.markUsed(target, pair.Imported)
			}
		}

		// Another bundle loads this asset as a whole, so nothing can be shaken
		if g.IsAssetReferencedByAssetType(asset, "js") {
			m.markUsed(asset, graph.Star)
			m.markAllExports(asset)
		}
	}

	return m.used
}

// A side-effect-free ES module with no used exports contributes nothing
func ShouldExcludeAsset(asset *graph.Asset, used *UsedExports) bool {
	return !asset.SideEffects && !asset.Meta.IsCommonJS && used.Count(asset.ID) == 0
}
