package js_ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoistjs/hoist/internal/logger"
)

func bIdent(name string) Binding {
	return Binding{Data: &BIdentifier{Name: name}}
}

func TestForEachIdentifierInBinding(t *testing.T) {
	// {a, b: [c, , ...d], e = 1}
	pattern := Binding{Data: &BObject{Properties: []PropertyBinding{
		{Key: Expr{Data: &EString{Value: "a"}}, Value: bIdent("a")},
		{Key: Expr{Data: &EString{Value: "b"}}, Value: Binding{Data: &BArray{
			Items: []ArrayBinding{
				{Binding: bIdent("c")},
				{Binding: Binding{Data: &BMissing{}}},
				{Binding: bIdent("d")},
			},
			HasSpread: true,
		}}},
		{Key: Expr{Data: &EString{Value: "e"}}, Value: bIdent("e"), DefaultValueOrNil: Expr{Data: &ENumber{Value: 1}}},
	}}}

	var names []string
	_, ok := ForEachIdentifierInBinding(pattern, func(name LocName) { names = append(names, name.Name) })
	require.True(t, ok)
	assert.Equal(t, []string{"a", "c", "d", "e"}, names)
}

type bUnknown struct{}

func (*bUnknown) isBinding() {}

func TestForEachIdentifierInBindingRejectsUnknownShape(t *testing.T) {
	pattern := Binding{Data: &BArray{Items: []ArrayBinding{
		{Binding: bIdent("a")},
		{Binding: Binding{Data: &bUnknown{}}},
	}}}

	var names []string
	bad, ok := ForEachIdentifierInBinding(pattern, func(name LocName) { names = append(names, name.Name) })
	assert.False(t, ok)
	assert.IsType(t, &bUnknown{}, bad)
	assert.Equal(t, []string{"a"}, names)
}

func TestConvertBindingToExpr(t *testing.T) {
	pattern := Binding{Loc: logger.Loc{Start: 4}, Data: &BArray{
		Items: []ArrayBinding{
			{Binding: bIdent("a"), DefaultValueOrNil: Expr{Data: &ENumber{Value: 2}}},
			{Binding: bIdent("rest")},
		},
		HasSpread: true,
	}}

	expr := ConvertBindingToExpr(pattern)
	array, ok := expr.Data.(*EArray)
	require.True(t, ok)
	assert.Equal(t, int32(4), expr.Loc.Start)
	require.Len(t, array.Items, 2)

	assign, ok := array.Items[0].Data.(*EBinary)
	require.True(t, ok)
	assert.Equal(t, BinOpAssign, assign.Op)
	assert.Equal(t, &EIdentifier{Name: "a"}, assign.Left.Data)

	spread, ok := array.Items[1].Data.(*ESpread)
	require.True(t, ok)
	assert.Equal(t, &EIdentifier{Name: "rest"}, spread.Value.Data)
}

func TestWalkFindsNestedCalls(t *testing.T) {
	call := func(name string) Expr {
		return Expr{Data: &ECall{Target: Ident(logger.Loc{}, name)}}
	}

	// if (x) { (function () { inner(); }); } else outer();
	stmts := []Stmt{{Data: &SIf{
		Test: Ident(logger.Loc{}, "x"),
		Yes: Stmt{Data: &SBlock{Stmts: []Stmt{{Data: &SExpr{Value: Expr{Data: &EFunction{Fn: Fn{
			Body: FnBody{Stmts: []Stmt{{Data: &SExpr{Value: call("inner")}}}},
		}}}}}}}},
		NoOrNil: Stmt{Data: &SExpr{Value: call("outer")}},
	}}}

	var found []string
	WalkStmts(stmts, func(expr Expr) bool {
		if c, ok := expr.Data.(*ECall); ok {
			found = append(found, c.Target.Data.(*EIdentifier).Name)
		}
		return true
	})
	assert.Equal(t, []string{"inner", "outer"}, found)

	// Pruning at the function skips its body
	found = nil
	WalkStmts(stmts, func(expr Expr) bool {
		if c, ok := expr.Data.(*ECall); ok {
			found = append(found, c.Target.Data.(*EIdentifier).Name)
		}
		_, isFn := expr.Data.(*EFunction)
		return !isFn
	})
	assert.Equal(t, []string{"outer"}, found)
}

func TestJoinAllWithComma(t *testing.T) {
	assert.Nil(t, JoinAllWithComma(nil).Data)

	joined := JoinAllWithComma([]Expr{Ident(logger.Loc{}, "a"), Ident(logger.Loc{}, "b"), Ident(logger.Loc{}, "c")})
	outer, ok := joined.Data.(*EBinary)
	require.True(t, ok)
	assert.Equal(t, BinOpComma, outer.Op)
	assert.Equal(t, &EIdentifier{Name: "c"}, outer.Right.Data)
}
