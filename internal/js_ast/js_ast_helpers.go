package js_ast

import "github.com/hoistjs/hoist/internal/logger"

func Assign(a Expr, b Expr) Expr {
	return Expr{Loc: a.Loc, Data: &EBinary{Op: BinOpAssign, Left: a, Right: b}}
}

func AssignStmt(a Expr, b Expr) Stmt {
	return Stmt{Loc: a.Loc, Data: &SExpr{Value: Assign(a, b)}}
}

func JoinWithComma(a Expr, b Expr) Expr {
	if a.Data == nil {
		return b
	}
	if b.Data == nil {
		return a
	}
	return Expr{Loc: a.Loc, Data: &EBinary{Op: BinOpComma, Left: a, Right: b}}
}

func JoinAllWithComma(all []Expr) (result Expr) {
	for _, value := range all {
		result = JoinWithComma(result, value)
	}
	return
}

func Ident(loc logger.Loc, name string) Expr {
	return Expr{Loc: loc, Data: &EIdentifier{Name: name}}
}

// Turns a declaration pattern into the equivalent assignment target, so
// "var {a, b: [c]} = x" can be rewritten as "({a, b: [c]} = x)"
func ConvertBindingToExpr(binding Binding) Expr {
	loc := binding.Loc

	switch b := binding.Data.(type) {
	case *BMissing:
		return Expr{Loc: loc, Data: &EMissing{}}

	case *BIdentifier:
		return Ident(loc, b.Name)

	case *BArray:
		exprs := make([]Expr, len(b.Items))
		for i, item := range b.Items {
			expr := ConvertBindingToExpr(item.Binding)
			if b.HasSpread && i+1 == len(b.Items) {
				expr = Expr{Loc: expr.Loc, Data: &ESpread{Value: expr}}
			} else if item.DefaultValueOrNil.Data != nil {
				expr = Assign(expr, item.DefaultValueOrNil)
			}
			exprs[i] = expr
		}
		return Expr{Loc: loc, Data: &EArray{
			Items:        exprs,
			IsSingleLine: b.IsSingleLine,
		}}

	case *BObject:
		properties := make([]Property, len(b.Properties))
		for i, property := range b.Properties {
			value := ConvertBindingToExpr(property.Value)
			kind := PropertyNormal
			if property.IsSpread {
				kind = PropertySpread
			}
			properties[i] = Property{
				Kind:             kind,
				IsComputed:       property.IsComputed,
				Key:              property.Key,
				ValueOrNil:       value,
				InitializerOrNil: property.DefaultValueOrNil,
			}
		}
		return Expr{Loc: loc, Data: &EObject{
			Properties:   properties,
			IsSingleLine: b.IsSingleLine,
		}}

	default:
		panic("Internal error")
	}
}

// Calls "visit" for every identifier bound by the pattern, in source order.
// Returns false without visiting the rest if the binding contains a shape
// that isn't an identifier, an array pattern, or an object pattern.
func ForEachIdentifierInBinding(binding Binding, visit func(LocName)) (B, bool) {
	switch b := binding.Data.(type) {
	case *BMissing:

	case *BIdentifier:
		visit(LocName{Loc: binding.Loc, Name: b.Name})

	case *BArray:
		for _, item := range b.Items {
			if bad, ok := ForEachIdentifierInBinding(item.Binding, visit); !ok {
				return bad, false
			}
		}

	case *BObject:
		for _, property := range b.Properties {
			if bad, ok := ForEachIdentifierInBinding(property.Value, visit); !ok {
				return bad, false
			}
		}

	default:
		return b, false
	}

	return nil, true
}
