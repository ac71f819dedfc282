package walk

import "kumeo/ast"

// plainValue converts an AST value to a plain Go value with no reference
// resolution.  Paths render as their dotted form, calls as their source form.
func plainValue(v ast.Value) interface{} {
	return convertValue(v, nil)
}

// convertValue converts an AST value to a plain Go value.  When resolve is
// non-nil, it is applied to every path expression and every string of the
// form `root.rest`; it returns the replacement value and whether the input
// was recognized as a reference.  Unrecognized dotted strings stay opaque.
func convertValue(v ast.Value, resolve func(node ast.Node, dotted string) (string, bool)) interface{} {
	switch val := v.(type) {
	case *ast.StringLit:
		if resolve != nil {
			if resolved, ok := resolve(val, val.Value); ok {
				return resolved
			}
		}
		return val.Value
	case *ast.NumberLit:
		return val.Value
	case *ast.BoolLit:
		return val.Value
	case *ast.NullLit:
		return nil
	case *ast.Array:
		elems := make([]interface{}, 0, len(val.Elements))
		for _, e := range val.Elements {
			elems = append(elems, convertValue(e, resolve))
		}
		return elems
	case *ast.Object:
		obj := make(map[string]interface{}, len(val.Fields))
		for _, f := range val.Fields {
			obj[f.Name] = convertValue(f.Value, resolve)
		}
		return obj
	case *ast.PathExpr:
		if resolve != nil {
			if resolved, ok := resolve(val, val.String()); ok {
				return resolved
			}
		}
		return val.String()
	case *ast.CallExpr:
		return ast.FormatValue(val)
	default:
		return nil
	}
}

// valueKindName names an AST value's kind for shape error messages.
func valueKindName(v ast.Value) string {
	switch v.(type) {
	case *ast.StringLit:
		return "string"
	case *ast.NumberLit:
		return "number"
	case *ast.BoolLit:
		return "boolean"
	case *ast.NullLit:
		return "null"
	case *ast.Array:
		return "array"
	case *ast.Object:
		return "object"
	case *ast.PathExpr:
		return "path"
	case *ast.CallExpr:
		return "call"
	default:
		return "value"
	}
}
