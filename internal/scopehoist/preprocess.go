package scopehoist

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hoistjs/hoist/internal/config"
	"github.com/hoistjs/hoist/internal/graph"
	"github.com/hoistjs/hoist/internal/helpers"
	"github.com/hoistjs/hoist/internal/js_ast"
	"github.com/hoistjs/hoist/internal/js_parser"
	"github.com/hoistjs/hoist/internal/logger"
)

// Parses and, where needed, wraps every asset. At most
// "options.Concurrency" assets are in flight at once. Each task only touches
// its own asset, and the first failure cancels the tasks that have not
// started yet.
func preprocessAssets(ctx context.Context, assets []*graph.Asset, options config.Options) (map[string][]js_ast.Stmt, error) {
	results := make([][]js_ast.Stmt, len(assets))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(options.Concurrency)

	for i, asset := range assets {
		i, asset := i, asset
		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = helpers.PanicToError(r)
				}
			}()

			if err := ctx.Err(); err != nil {
				return err
			}

			stmts, err := preprocessAsset(asset, options)
			if err != nil {
				return err
			}
			results[i] = stmts
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	outputs := make(map[string][]js_ast.Stmt, len(assets))
	for i, asset := range assets {
		asset.Stmts = results[i]
		outputs[asset.ID] = results[i]
	}
	return outputs, nil
}

func preprocessAsset(asset *graph.Asset, options config.Options) ([]js_ast.Stmt, error) {
	log := logger.NewDeferLog()
	source := logger.Source{
		KeyPath:    asset.FilePath,
		PrettyPath: asset.FilePath,
		Contents:   asset.Code,
	}

	stmts, ok := js_parser.Parse(log, source)
	if !ok {
		return nil, &ParseError{AssetID: asset.ID, FilePath: asset.FilePath, Msgs: log.Done()}
	}

	if asset.Meta.ShouldWrap() {
		var err error
		if stmts, err = WrapModule(asset, stmts); err != nil {
			return nil, err
		}
	}

	// Tag where each module starts in the merged output
	if !options.OmitProvenance && len(stmts) > 0 {
		stmts[0].LeadingComments = append([]js_ast.Comment{{
			Loc:  stmts[0].Loc,
			Text: " ASSET: " + asset.FilePath,
		}}, stmts[0].LeadingComments...)
	}

	return stmts, nil
}
