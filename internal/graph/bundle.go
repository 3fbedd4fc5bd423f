package graph

import (
	"fmt"
	"strings"
)

type OutputFormat uint8

const (
	// A plain script that shares modules through a global registry
	OutputFormatGlobal OutputFormat = iota

	OutputFormatESModule
	OutputFormatCommonJS
)

func (format OutputFormat) String() string {
	switch format {
	case OutputFormatGlobal:
		return "global"
	case OutputFormatESModule:
		return "esmodule"
	case OutputFormatCommonJS:
		return "commonjs"
	}
	return fmt.Sprintf("OutputFormat(%d)", uint8(format))
}

func ParseOutputFormat(text string) (OutputFormat, bool) {
	switch strings.ToLower(text) {
	case "", "global", "iife":
		return OutputFormatGlobal, true
	case "esmodule", "esm":
		return OutputFormatESModule, true
	case "commonjs", "cjs":
		return OutputFormatCommonJS, true
	}
	return 0, false
}

type Bundle struct {
	ID     string
	Type   string
	Format OutputFormat

	// There is no parent bundle of the same type
	Entry bool

	// Other bundles load this bundle's assets at runtime
	Referenced bool

	graph       *Graph
	members     map[string]bool
	assets      []*Asset
	entryAssets []*Asset
	mainEntry   *Asset
}

func NewBundle(g *Graph, id string, kind string) *Bundle {
	return &Bundle{
		ID:      id,
		Type:    kind,
		graph:   g,
		members: make(map[string]bool),
	}
}

func (b *Bundle) AddAsset(asset *Asset) {
	if !b.members[asset.ID] {
		b.members[asset.ID] = true
		b.assets = append(b.assets, asset)
	}
}

// The first entry asset added becomes the main entry
func (b *Bundle) AddEntryAsset(asset *Asset) {
	b.AddAsset(asset)
	for _, entry := range b.entryAssets {
		if entry == asset {
			return
		}
	}
	b.entryAssets = append(b.entryAssets, asset)
	if b.mainEntry == nil {
		b.mainEntry = asset
	}
}

func (b *Bundle) SetMainEntry(asset *Asset) {
	b.AddEntryAsset(asset)
	b.mainEntry = asset
}

// Returns nil for bundles without a main entry (shared bundles)
func (b *Bundle) MainEntry() *Asset {
	return b.mainEntry
}

func (b *Bundle) EntryAssets() []*Asset {
	return b.entryAssets
}

func (b *Bundle) Assets() []*Asset {
	return b.assets
}

func (b *Bundle) HasAsset(asset *Asset) bool {
	return asset != nil && b.members[asset.ID]
}

func (b *Bundle) OutputFormat() OutputFormat {
	return b.Format
}

func (b *Bundle) IsEntry() bool {
	return b.Entry
}

func (b *Bundle) IsReferenced() bool {
	return b.Referenced
}

type AssetVisitor struct {
	// Returning false skips this asset's dependencies and its "Exit" call
	Enter func(asset *Asset) bool

	Exit func(asset *Asset)
}

// Visits member assets depth-first starting at each entry asset. Each asset
// is entered at most once. Dependencies are visited in source order and edges
// leaving the bundle or left unresolved are not followed.
func (b *Bundle) TraverseAssets(visitor AssetVisitor) {
	visited := make(map[string]bool)

	var visit func(asset *Asset)
	visit = func(asset *Asset) {
		if visited[asset.ID] {
			return
		}
		visited[asset.ID] = true

		if visitor.Enter != nil && !visitor.Enter(asset) {
			return
		}

		for _, dep := range b.graph.Dependencies(asset) {
			if target := b.graph.DependencyResolution(dep); b.HasAsset(target) {
				visit(target)
			}
		}

		if visitor.Exit != nil {
			visitor.Exit(asset)
		}
	}

	for _, entry := range b.entryAssets {
		visit(entry)
	}
}
