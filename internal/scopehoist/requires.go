package scopehoist

import (
	"github.com/hoistjs/hoist/internal/graph"
	"github.com/hoistjs/hoist/internal/helpers"
	"github.com/hoistjs/hoist/internal/js_ast"
)

// Finds the assets loaded by require-shaped calls anywhere inside the
// statement, in the order the calls appear:
//
//   $hoist$require("<asset id>", "./specifier")
//
// Edges that were left unresolved are skipped. A specifier that matches no
// edge of the asset is an error since the code and the graph disagree.
func findRequires(g BundleGraph, asset *graph.Asset, stmt js_ast.Stmt, requireName string) (result []*graph.Asset, err error) {
	js_ast.WalkStmt(stmt, func(expr js_ast.Expr) bool {
		if err != nil {
			return false
		}

		call, ok := expr.Data.(*js_ast.ECall)
		if !ok {
			return true
		}
		if callee, ok := call.Target.Data.(*js_ast.EIdentifier); !ok || callee.Name != requireName {
			return true
		}

		var specifier *js_ast.EString
		if len(call.Args) >= 2 {
			specifier, _ = call.Args[1].Data.(*js_ast.EString)
		}
		if specifier == nil {
			err = &MalformedRequireError{
				AssetID:  asset.ID,
				FilePath: asset.FilePath,
				Callee:   requireName,
				At:       expr.Loc,
			}
			return false
		}

		dep := dependencyForSpecifier(g, asset, specifier.Value)
		if dep == nil {
			err = &GraphDesyncError{
				AssetID:    asset.ID,
				FilePath:   asset.FilePath,
				Specifier:  specifier.Value,
				Suggestion: suggestSpecifier(g, asset, specifier.Value),
				At:         call.Args[1].Loc,
			}
			return false
		}

		if target := g.DependencyResolution(dep); target != nil {
			result = append(result, target)
		}
		return true
	})
	return
}

func dependencyForSpecifier(g BundleGraph, asset *graph.Asset, specifier string) *graph.Dependency {
	for _, dep := range g.Dependencies(asset) {
		if dep.ModuleSpecifier == specifier {
			return dep
		}
	}
	return nil
}

func suggestSpecifier(g BundleGraph, asset *graph.Asset, specifier string) string {
	deps := g.Dependencies(asset)
	known := make([]string, 0, len(deps))
	for _, dep := range deps {
		known = append(known, dep.ModuleSpecifier)
	}
	if suggestion, ok := helpers.MakeTypoDetector(known).MaybeCorrectTypo(specifier); ok {
		return suggestion
	}
	return ""
}
