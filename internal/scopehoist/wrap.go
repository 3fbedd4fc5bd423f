package scopehoist

import (
	"fmt"

	"github.com/hoistjs/hoist/internal/graph"
	"github.com/hoistjs/hoist/internal/js_ast"
	"github.com/hoistjs/hoist/internal/logger"
)

// Calling this runs the body of a wrapped asset the first time and does
// nothing after that
func InitName(assetID string) string {
	return "$" + assetID + "$init"
}

func ExecutedName(assetID string) string {
	return "$" + assetID + "$executed"
}

type moduleWrapper struct {
	asset    *graph.Asset
	decls    []js_ast.Decl
	declared map[string]bool
	fns      []js_ast.Stmt
	err      error
}

// Turns the asset's top-level code into a lazily-run initializer:
//
//   var a, b, Foo, $id$executed = false;
//   function helper() {}
//   function $id$init() {
//     if ($id$executed) return;
//     $id$executed = true;
//     a = 1;
//     ({b} = obj);
//     Foo = class Foo {};
//   }
//
// Every top-level declaration and every "var" outside a nested function is
// hoisted so the bindings exist before the initializer first runs. Top-level
// function declarations are moved out of the initializer so they can be
// called early. Function and class bodies are never entered.
func WrapModule(asset *graph.Asset, stmts []js_ast.Stmt) ([]js_ast.Stmt, error) {
	w := moduleWrapper{
		asset:    asset,
		declared: make(map[string]bool),
	}

	body := w.visitStmts(stmts, true)
	if w.err != nil {
		return nil, w.err
	}

	executed := ExecutedName(asset.ID)
	w.decls = append(w.decls, js_ast.Decl{
		Binding:    js_ast.Binding{Data: &js_ast.BIdentifier{Name: executed}},
		ValueOrNil: js_ast.Expr{Data: &js_ast.EBoolean{Value: false}},
	})

	guard := []js_ast.Stmt{
		{Data: &js_ast.SIf{
			Test: js_ast.Ident(logger.Loc{}, executed),
			Yes:  js_ast.Stmt{Data: &js_ast.SReturn{}},
		}},
		js_ast.AssignStmt(js_ast.Ident(logger.Loc{}, executed), js_ast.Expr{Data: &js_ast.EBoolean{Value: true}}),
	}

	initFn := js_ast.Stmt{Data: &js_ast.SFunction{Fn: js_ast.Fn{
		Name: &js_ast.LocName{Name: InitName(asset.ID)},
		Body: js_ast.FnBody{Stmts: append(guard, body...)},
	}}}

	result := make([]js_ast.Stmt, 0, len(w.fns)+2)
	result = append(result, js_ast.Stmt{Data: &js_ast.SLocal{Kind: js_ast.LocalVar, Decls: w.decls}})
	result = append(result, w.fns...)
	result = append(result, initFn)
	return result, nil
}

func (w *moduleWrapper) fail(loc logger.Loc, pattern string) {
	if w.err == nil {
		w.err = &UnsupportedSyntaxError{
			AssetID:  w.asset.ID,
			FilePath: w.asset.FilePath,
			Pattern:  pattern,
			At:       loc,
		}
	}
}

func (w *moduleWrapper) declare(name js_ast.LocName) {
	if !w.declared[name.Name] {
		w.declared[name.Name] = true
		w.decls = append(w.decls, js_ast.Decl{
			Binding: js_ast.Binding{Loc: name.Loc, Data: &js_ast.BIdentifier{Name: name.Name}},
		})
	}
}

func (w *moduleWrapper) hoistBinding(binding js_ast.Binding) {
	if bad, ok := js_ast.ForEachIdentifierInBinding(binding, w.declare); !ok {
		w.fail(binding.Loc, fmt.Sprintf("a declaration with a binding of type %T", bad))
	}
}

// Returns the declarations as assignments, dropping the ones without a value
func (w *moduleWrapper) hoistDecls(decls []js_ast.Decl) (assigns []js_ast.Expr) {
	for _, decl := range decls {
		w.hoistBinding(decl.Binding)
		if decl.ValueOrNil.Data != nil {
			assigns = append(assigns, js_ast.Assign(js_ast.ConvertBindingToExpr(decl.Binding), decl.ValueOrNil))
		}
	}
	return
}

func (w *moduleWrapper) visitStmts(stmts []js_ast.Stmt, isTopLevel bool) []js_ast.Stmt {
	result := make([]js_ast.Stmt, 0, len(stmts))

	for _, stmt := range stmts {
		switch s := stmt.Data.(type) {
		case *js_ast.SLocal:
			// Block-scoped declarations below the top level stay where they are
			if s.Kind != js_ast.LocalVar && !isTopLevel {
				break
			}
			for _, assign := range w.hoistDecls(s.Decls) {
				result = append(result, js_ast.Stmt{Loc: assign.Loc, Data: &js_ast.SExpr{Value: assign}})
			}
			continue

		case *js_ast.SFunction:
			if isTopLevel {
				w.fns = append(w.fns, stmt)
				continue
			}

		case *js_ast.SClass:
			if !isTopLevel {
				break
			}
			if s.Class.Name == nil {
				w.fail(stmt.Loc, "a class declaration without a name")
				continue
			}
			name := *s.Class.Name
			w.declare(name)
			result = append(result, js_ast.Stmt{Loc: stmt.Loc, Data: &js_ast.SExpr{Value: js_ast.Assign(
				js_ast.Ident(name.Loc, name.Name),
				js_ast.Expr{Loc: stmt.Loc, Data: &js_ast.EClass{Class: s.Class}},
			)}})
			continue

		case *js_ast.SBlock:
			s.Stmts = w.visitStmts(s.Stmts, false)

		case *js_ast.SIf:
			s.Yes = w.visitBody(s.Yes)
			if s.NoOrNil.Data != nil {
				s.NoOrNil = w.visitBody(s.NoOrNil)
			}

		case *js_ast.SFor:
			if local, ok := s.InitOrNil.Data.(*js_ast.SLocal); ok && local.Kind == js_ast.LocalVar {
				if value := js_ast.JoinAllWithComma(w.hoistDecls(local.Decls)); value.Data != nil {
					s.InitOrNil = js_ast.Stmt{Loc: s.InitOrNil.Loc, Data: &js_ast.SExpr{Value: value}}
				} else {
					s.InitOrNil = js_ast.Stmt{}
				}
			}
			s.Body = w.visitBody(s.Body)

		case *js_ast.SForIn:
			s.Init = w.visitForInOfInit(s.Init)
			s.Body = w.visitBody(s.Body)

		case *js_ast.SForOf:
			s.Init = w.visitForInOfInit(s.Init)
			s.Body = w.visitBody(s.Body)

		case *js_ast.SWhile:
			s.Body = w.visitBody(s.Body)

		case *js_ast.SDoWhile:
			s.Body = w.visitBody(s.Body)

		case *js_ast.SWith:
			s.Body = w.visitBody(s.Body)

		case *js_ast.SLabel:
			s.Stmt = w.visitBody(s.Stmt)

		case *js_ast.STry:
			s.Body = w.visitStmts(s.Body, false)
			if s.Catch != nil {
				s.Catch.Body = w.visitStmts(s.Catch.Body, false)
			}
			if s.Finally != nil {
				s.Finally.Stmts = w.visitStmts(s.Finally.Stmts, false)
			}

		case *js_ast.SSwitch:
			for i := range s.Cases {
				s.Cases[i].Body = w.visitStmts(s.Cases[i].Body, false)
			}
		}

		result = append(result, stmt)
	}

	return result
}

// Rewrites a single-statement body such as the "yes" branch of an "if"
func (w *moduleWrapper) visitBody(stmt js_ast.Stmt) js_ast.Stmt {
	stmts := w.visitStmts([]js_ast.Stmt{stmt}, false)
	switch len(stmts) {
	case 0:
		return js_ast.Stmt{Loc: stmt.Loc, Data: &js_ast.SEmpty{}}
	case 1:
		return stmts[0]
	default:
		return js_ast.Stmt{Loc: stmt.Loc, Data: &js_ast.SBlock{Stmts: stmts}}
	}
}

// "for (var [a, b] of list)" becomes "for ([a, b] of list)"
func (w *moduleWrapper) visitForInOfInit(init js_ast.Stmt) js_ast.Stmt {
	local, ok := init.Data.(*js_ast.SLocal)
	if !ok || local.Kind != js_ast.LocalVar || len(local.Decls) != 1 {
		return init
	}
	decl := local.Decls[0]
	if decl.ValueOrNil.Data != nil {
		w.fail(decl.ValueOrNil.Loc, "a for-in loop variable with an initializer")
		return init
	}
	w.hoistBinding(decl.Binding)
	return js_ast.Stmt{Loc: init.Loc, Data: &js_ast.SExpr{Value: js_ast.ConvertBindingToExpr(decl.Binding)}}
}
