package graph

// The code in this file builds the graph. This happens once, before any
// concatenation runs, and the graph's shape is not changed afterward. Only
// the per-asset wrap flag and syntax tree are written to later.

import (
	"fmt"
)

func (g *Graph) AddAsset(asset *Asset) error {
	if asset.ID == "" {
		return fmt.Errorf("asset %q has no id", asset.FilePath)
	}
	if existing, ok := g.assets[asset.ID]; ok {
		return fmt.Errorf("duplicate asset id %q for %q and %q", asset.ID, existing.FilePath, asset.FilePath)
	}
	g.assets[asset.ID] = asset
	g.assetOrder = append(g.assetOrder, asset)
	return nil
}

func (g *Graph) AddDependency(dep *Dependency) error {
	if _, ok := g.assets[dep.SourceAssetID]; !ok {
		return fmt.Errorf("dependency %q comes from unknown asset %q", dep.ID, dep.SourceAssetID)
	}
	if _, ok := g.depIDs[dep.ID]; ok {
		return fmt.Errorf("duplicate dependency id %q", dep.ID)
	}
	g.depIDs[dep.ID] = dep
	g.deps[dep.SourceAssetID] = append(g.deps[dep.SourceAssetID], dep)
	return nil
}

// Resolving an edge that was already resolved replaces the old target
func (g *Graph) ResolveDependency(dep *Dependency, target *Asset) error {
	if _, ok := g.depIDs[dep.ID]; !ok {
		return fmt.Errorf("dependency %q is not part of the graph", dep.ID)
	}
	if _, ok := g.assets[target.ID]; !ok {
		return fmt.Errorf("dependency %q resolves to unknown asset %q", dep.ID, target.ID)
	}
	g.resolutions[dep.ID] = target.ID
	return nil
}

// Records that an asset of the given output kind in another bundle loads
// this asset at runtime
func (g *Graph) MarkReferencedByAssetType(asset *Asset, kind string) {
	kinds := g.referencedBy[asset.ID]
	if kinds == nil {
		kinds = make(map[string]bool)
		g.referencedBy[asset.ID] = kinds
	}
	kinds[kind] = true
}
