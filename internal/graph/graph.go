package graph

import (
	"fmt"
)

// Graph holds every asset and dependency edge across all bundles. Assets are
// stored in an id-keyed table and edges only refer to assets by id, so cycles
// in the module graph are not cycles in memory.
type Graph struct {
	assets      map[string]*Asset
	assetOrder  []*Asset
	deps        map[string][]*Dependency
	depIDs      map[string]*Dependency
	resolutions map[string]string

	// Asset id to the output kinds of the assets in other bundles that load it
	// at runtime
	referencedBy map[string]map[string]bool
}

func New() *Graph {
	return &Graph{
		assets:       make(map[string]*Asset),
		deps:         make(map[string][]*Dependency),
		depIDs:       make(map[string]*Dependency),
		resolutions:  make(map[string]string),
		referencedBy: make(map[string]map[string]bool),
	}
}

func (g *Graph) Asset(id string) *Asset {
	return g.assets[id]
}

// All assets in the order they were added
func (g *Graph) Assets() []*Asset {
	return g.assetOrder
}

// Outgoing edges of the asset in source order
func (g *Graph) Dependencies(asset *Asset) []*Dependency {
	return g.deps[asset.ID]
}

// Returns nil if the dependency was never resolved or was optimized away
func (g *Graph) DependencyResolution(dep *Dependency) *Asset {
	if id, ok := g.resolutions[dep.ID]; ok {
		return g.assets[id]
	}
	return nil
}

func (g *Graph) IsAssetReferencedByAssetType(asset *Asset, kind string) bool {
	return g.referencedBy[asset.ID][kind]
}

func (g *Graph) String() string {
	edges := 0
	for _, deps := range g.deps {
		edges += len(deps)
	}
	return fmt.Sprintf("graph(%d assets, %d dependencies, %d resolved)", len(g.assets), edges, len(g.resolutions))
}
