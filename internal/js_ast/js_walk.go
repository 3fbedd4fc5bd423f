package js_ast

// A read-only pre-order traversal over every expression in a subtree,
// including expressions nested inside function and class bodies. Returning
// false from "visit" skips the children of that expression.
type ExprVisitor func(expr Expr) bool

func WalkStmts(stmts []Stmt, visit ExprVisitor) {
	for _, stmt := range stmts {
		WalkStmt(stmt, visit)
	}
}

func WalkStmt(stmt Stmt, visit ExprVisitor) {
	switch s := stmt.Data.(type) {
	case nil, *SEmpty, *SDebugger, *SDirective, *SBreak, *SContinue:

	case *SBlock:
		WalkStmts(s.Stmts, visit)

	case *SExpr:
		WalkExpr(s.Value, visit)

	case *SFunction:
		walkFn(s.Fn, visit)

	case *SClass:
		walkClass(s.Class, visit)

	case *SLabel:
		WalkStmt(s.Stmt, visit)

	case *SIf:
		WalkExpr(s.Test, visit)
		WalkStmt(s.Yes, visit)
		WalkStmt(s.NoOrNil, visit)

	case *SFor:
		WalkStmt(s.InitOrNil, visit)
		WalkExpr(s.TestOrNil, visit)
		WalkExpr(s.UpdateOrNil, visit)
		WalkStmt(s.Body, visit)

	case *SForIn:
		WalkStmt(s.Init, visit)
		WalkExpr(s.Value, visit)
		WalkStmt(s.Body, visit)

	case *SForOf:
		WalkStmt(s.Init, visit)
		WalkExpr(s.Value, visit)
		WalkStmt(s.Body, visit)

	case *SDoWhile:
		WalkStmt(s.Body, visit)
		WalkExpr(s.Test, visit)

	case *SWhile:
		WalkExpr(s.Test, visit)
		WalkStmt(s.Body, visit)

	case *SWith:
		WalkExpr(s.Value, visit)
		WalkStmt(s.Body, visit)

	case *STry:
		WalkStmts(s.Body, visit)
		if s.Catch != nil {
			walkBinding(s.Catch.BindingOrNil, visit)
			WalkStmts(s.Catch.Body, visit)
		}
		if s.Finally != nil {
			WalkStmts(s.Finally.Stmts, visit)
		}

	case *SSwitch:
		WalkExpr(s.Test, visit)
		for _, c := range s.Cases {
			WalkExpr(c.ValueOrNil, visit)
			WalkStmts(c.Body, visit)
		}

	case *SReturn:
		WalkExpr(s.ValueOrNil, visit)

	case *SThrow:
		WalkExpr(s.Value, visit)

	case *SLocal:
		for _, decl := range s.Decls {
			walkBinding(decl.Binding, visit)
			WalkExpr(decl.ValueOrNil, visit)
		}

	default:
		panic("Internal error")
	}
}

func WalkExpr(expr Expr, visit ExprVisitor) {
	if expr.Data == nil || !visit(expr) {
		return
	}

	switch e := expr.Data.(type) {
	case *EArray:
		walkExprs(e.Items, visit)

	case *EUnary:
		WalkExpr(e.Value, visit)

	case *EBinary:
		WalkExpr(e.Left, visit)
		WalkExpr(e.Right, visit)

	case *ENew:
		WalkExpr(e.Target, visit)
		walkExprs(e.Args, visit)

	case *ECall:
		WalkExpr(e.Target, visit)
		walkExprs(e.Args, visit)

	case *EDot:
		WalkExpr(e.Target, visit)

	case *EIndex:
		WalkExpr(e.Target, visit)
		WalkExpr(e.Index, visit)

	case *EArrow:
		walkArgs(e.Args, visit)
		WalkStmts(e.Body.Stmts, visit)

	case *EFunction:
		walkFn(e.Fn, visit)

	case *EClass:
		walkClass(e.Class, visit)

	case *EObject:
		walkProperties(e.Properties, visit)

	case *ESpread:
		WalkExpr(e.Value, visit)

	case *ETemplate:
		WalkExpr(e.TagOrNil, visit)
		for _, part := range e.Parts {
			WalkExpr(part.Value, visit)
		}

	case *EAwait:
		WalkExpr(e.Value, visit)

	case *EYield:
		WalkExpr(e.ValueOrNil, visit)

	case *EIf:
		WalkExpr(e.Test, visit)
		WalkExpr(e.Yes, visit)
		WalkExpr(e.No, visit)

	case *EImportCall:
		WalkExpr(e.Expr, visit)
	}
}

func walkExprs(exprs []Expr, visit ExprVisitor) {
	for _, expr := range exprs {
		WalkExpr(expr, visit)
	}
}

func walkArgs(args []Arg, visit ExprVisitor) {
	for _, arg := range args {
		walkBinding(arg.Binding, visit)
		WalkExpr(arg.DefaultOrNil, visit)
	}
}

func walkFn(fn Fn, visit ExprVisitor) {
	walkArgs(fn.Args, visit)
	WalkStmts(fn.Body.Stmts, visit)
}

func walkClass(class Class, visit ExprVisitor) {
	WalkExpr(class.ExtendsOrNil, visit)
	walkProperties(class.Properties, visit)
}

func walkProperties(properties []Property, visit ExprVisitor) {
	for _, property := range properties {
		if property.IsComputed {
			WalkExpr(property.Key, visit)
		}
		WalkExpr(property.ValueOrNil, visit)
		WalkExpr(property.InitializerOrNil, visit)
	}
}

// Default values and computed keys inside patterns are expressions too
func walkBinding(binding Binding, visit ExprVisitor) {
	switch b := binding.Data.(type) {
	case *BArray:
		for _, item := range b.Items {
			walkBinding(item.Binding, visit)
			WalkExpr(item.DefaultValueOrNil, visit)
		}

	case *BObject:
		for _, property := range b.Properties {
			if property.IsComputed {
				WalkExpr(property.Key, visit)
			}
			walkBinding(property.Value, visit)
			WalkExpr(property.DefaultValueOrNil, visit)
		}
	}
}
