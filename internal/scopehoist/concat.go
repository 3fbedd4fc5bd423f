package scopehoist

import (
	"context"
	"fmt"
	"sort"

	"github.com/hoistjs/hoist/internal/config"
	"github.com/hoistjs/hoist/internal/graph"
	"github.com/hoistjs/hoist/internal/helpers"
	"github.com/hoistjs/hoist/internal/js_ast"
	"github.com/hoistjs/hoist/internal/js_parser"
	"github.com/hoistjs/hoist/internal/logger"
	"github.com/hoistjs/hoist/internal/runtime"
)

type Result struct {
	// The whole program: prelude, helpers, then every live root module with
	// its dependencies spliced in
	Stmts []js_ast.Stmt

	UsedExports *UsedExports

	// Asset ids in bundle order
	Wrapped  []string
	Excluded []string
}

// Merges every asset of the bundle into a single program. Modules that can
// run eagerly are inlined right before the statement that first requires
// them. Modules that are part of a cycle or are required lazily are wrapped
// in an initializer function instead. Side-effect-free modules whose exports
// are never used are left out.
func Concat(ctx context.Context, bundle Bundle, g BundleGraph, options config.Options) (*Result, error) {
	options = options.Normalized()
	timer := helpers.NewTimer()
	defer timer.Log(options.Log)

	timer.Begin("Propagate wrap flags")
	propagateWrap(bundle, g)
	timer.End("Propagate wrap flags")

	timer.Begin("Preprocess assets")
	outputs, err := preprocessAssets(ctx, bundle.Assets(), options)
	timer.End("Preprocess assets")
	if err != nil {
		return nil, err
	}

	stmts, err := parseRuntime(runtime.Helpers)
	if err != nil {
		return nil, err
	}
	if NeedsPrelude(bundle) {
		prelude, err := parseRuntime(runtime.Prelude)
		if err != nil {
			return nil, err
		}
		stmts = append(prelude, stmts...)
	}

	timer.Begin("Compute used exports")
	used := ComputeUsedExports(bundle, g)
	timer.End("Compute used exports")

	result := &Result{UsedExports: used}
	for _, asset := range bundle.Assets() {
		if asset.Meta.ShouldWrap() {
			result.Wrapped = append(result.Wrapped, asset.ID)
			options.Log.AddVerbose(fmt.Sprintf("Wrapping %s", asset.FilePath))
		}
		if ShouldExcludeAsset(asset, used) {
			result.Excluded = append(result.Excluded, asset.ID)
			options.Log.AddVerbose(fmt.Sprintf("Excluding %s because none of its exports are used", asset.FilePath))
		}
	}

	timer.Begin("Merge assets")
	merged, err := mergeAssets(bundle, g, outputs, used, options.RequireName)
	timer.End("Merge assets")
	if err != nil {
		return nil, err
	}

	result.Stmts = append(stmts, merged...)
	return result, nil
}

// The module registry is only needed by script bundles that are loaded
// directly and that other bundles pull modules out of
func NeedsPrelude(bundle Bundle) bool {
	return bundle.OutputFormat() == graph.OutputFormatGlobal && bundle.IsEntry() && bundle.IsReferenced()
}

func parseRuntime(code string) ([]js_ast.Stmt, error) {
	log := logger.NewDeferLog()
	source := logger.Source{KeyPath: runtime.SourcePath, PrettyPath: runtime.SourcePath, Contents: code}
	stmts, ok := js_parser.Parse(log, source)
	if !ok {
		return nil, &ParseError{FilePath: runtime.SourcePath, Msgs: log.Done()}
	}
	return stmts, nil
}

// Marks every asset that must be wrapped. An edge forces its target to be
// wrapped if the edge itself asks for it, if the target is already on the
// current path (a cycle), or if the walk got here through a wrapped edge.
// Each asset is walked at most once without and once with the inherited
// flag, so this terminates on cycles.
func propagateWrap(bundle Bundle, g BundleGraph) {
	type visitKey struct {
		assetID string
		wrap    bool
	}
	visited := make(map[visitKey]bool)
	onPath := make(map[string]int)

	var visit func(asset *graph.Asset, wrap bool)
	visit = func(asset *graph.Asset, wrap bool) {
		key := visitKey{assetID: asset.ID, wrap: wrap}
		if visited[key] {
			return
		}
		visited[key] = true
		onPath[asset.ID]++

		for _, dep := range g.Dependencies(asset) {
			target := g.DependencyResolution(dep)
			if !bundle.HasAsset(target) {
				continue
			}
			shouldWrap := wrap || dep.Meta.ShouldWrap || onPath[target.ID] > 0
			if shouldWrap {
				target.Meta.MarkShouldWrap()
			}
			visit(target, shouldWrap)
		}

		onPath[asset.ID]--
	}

	for _, entry := range bundle.EntryAssets() {
		visit(entry, false)
	}
}

// One frame per live asset on the current traversal path. Finished children
// are stored here until the asset itself is finished.
type mergeFrame struct {
	parent     *mergeFrame
	childOrder []string
	children   map[string][]js_ast.Stmt
}

func (frame *mergeFrame) addChild(assetID string, stmts []js_ast.Stmt) {
	if frame.children == nil {
		frame.children = make(map[string][]js_ast.Stmt)
	}
	frame.childOrder = append(frame.childOrder, assetID)
	frame.children[assetID] = stmts
}

type merger struct {
	graph       BundleGraph
	outputs     map[string][]js_ast.Stmt
	used        *UsedExports
	requireName string

	// An excluded asset pushes its parent's frame again so its dependencies
	// attach to the closest live ancestor. A nil frame is the root.
	stack  []*mergeFrame
	result []js_ast.Stmt
	err    error
}

func mergeAssets(bundle Bundle, g BundleGraph, outputs map[string][]js_ast.Stmt, used *UsedExports, requireName string) ([]js_ast.Stmt, error) {
	m := merger{
		graph:       g,
		outputs:     outputs,
		used:        used,
		requireName: requireName,
	}
	bundle.TraverseAssets(graph.AssetVisitor{
		Enter: m.enter,
		Exit:  m.exit,
	})
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *merger) top() *mergeFrame {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

func (m *merger) enter(asset *graph.Asset) bool {
	if m.err != nil {
		return false
	}
	parent := m.top()
	if ShouldExcludeAsset(asset, m.used) {
		m.stack = append(m.stack, parent)
	} else {
		m.stack = append(m.stack, &mergeFrame{parent: parent})
	}
	return true
}

func (m *merger) exit(asset *graph.Asset) {
	frame := m.top()
	m.stack = m.stack[:len(m.stack)-1]
	if m.err != nil || frame == nil || ShouldExcludeAsset(asset, m.used) {
		return
	}

	// Copy so splicing never writes into the preprocessed list
	own := m.outputs[asset.ID]
	stmts := append([]js_ast.Stmt(nil), own...)

	// The first statement that requires a dependency is where it goes
	spliceAt := make(map[string]int)
	for i, stmt := range own {
		if _, ok := stmt.Data.(*js_ast.SExpr); !ok {
			continue
		}
		targets, err := findRequires(m.graph, asset, stmt, m.requireName)
		if err != nil {
			m.err = err
			return
		}
		for _, target := range targets {
			if _, ok := spliceAt[target.ID]; !ok {
				spliceAt[target.ID] = i
			}
		}
	}

	// Splice from the highest index down so no splice shifts a pending one.
	// Children that share an index end up in traversal order.
	type splice struct {
		index int
		stmts []js_ast.Stmt
	}
	splices := make([]splice, 0, len(frame.childOrder))
	for i := len(frame.childOrder) - 1; i >= 0; i-- {
		childID := frame.childOrder[i]
		splices = append(splices, splice{index: spliceAt[childID], stmts: frame.children[childID]})
	}
	sort.SliceStable(splices, func(i, j int) bool {
		return splices[i].index > splices[j].index
	})
	for _, s := range splices {
		spliced := make([]js_ast.Stmt, 0, len(stmts)+len(s.stmts))
		spliced = append(spliced, stmts[:s.index]...)
		spliced = append(spliced, s.stmts...)
		spliced = append(spliced, stmts[s.index:]...)
		stmts = spliced
	}

	if frame.parent != nil {
		frame.parent.addChild(asset.ID, stmts)
		return
	}

	// Nothing requires a wrapped root, so run it where it would have run
	if asset.Meta.ShouldWrap() {
		stmts = append(stmts, js_ast.Stmt{Data: &js_ast.SExpr{Value: js_ast.Expr{
			Data: &js_ast.ECall{Target: js_ast.Ident(logger.Loc{}, InitName(asset.ID))},
		}}})
	}
	m.result = append(m.result, stmts...)
}
