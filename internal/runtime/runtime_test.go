package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoistjs/hoist/internal/js_ast"
	"github.com/hoistjs/hoist/internal/js_parser"
	"github.com/hoistjs/hoist/internal/logger"
)

func parseRuntime(t *testing.T, code string) []js_ast.Stmt {
	t.Helper()
	log := logger.NewDeferLog()
	source := logger.Source{KeyPath: SourcePath, PrettyPath: SourcePath, Contents: code}
	stmts, ok := js_parser.Parse(log, source)
	require.True(t, ok)
	require.Empty(t, log.Done())
	return stmts
}

func TestHelpersParse(t *testing.T) {
	stmts := parseRuntime(t, Helpers)

	var names []string
	for _, stmt := range stmts {
		if fn, ok := stmt.Data.(*js_ast.SFunction); ok {
			names = append(names, fn.Fn.Name.Name)
		}
	}
	assert.Equal(t, []string{
		"$hoist$interopDefault",
		"$hoist$defineInteropFlag",
		"$hoist$exportWildcard",
		"$hoist$missingModule",
	}, names)

	_, ok := stmts[len(stmts)-1].Data.(*js_ast.SLocal)
	assert.True(t, ok, "the global alias is declared last")
}

func TestPreludeParse(t *testing.T) {
	stmts := parseRuntime(t, Prelude)
	require.Len(t, stmts, 1)

	local, ok := stmts[0].Data.(*js_ast.SLocal)
	require.True(t, ok)
	id, ok := local.Decls[0].Binding.Data.(*js_ast.BIdentifier)
	require.True(t, ok)
	assert.Equal(t, "hoistRequire", id.Name)
}
