package ast

import (
	"strings"

	"kumeo/report"
)

// Value represents a structured configuration value.
type Value interface {
	Node
	value()
}

// StringLit is a string literal value.
type StringLit struct {
	NodeBase
	Value string

	// Raw marks triple-quoted literals, which round-trip without escaping.
	Raw bool
}

func (*StringLit) value() {}

// NumberLit is a numeric literal value.
type NumberLit struct {
	NodeBase
	Value float64

	// Text is the literal as written, preserved for faithful printing.
	Text string
}

func (*NumberLit) value() {}

// BoolLit is a boolean literal value.
type BoolLit struct {
	NodeBase
	Value bool
}

func (*BoolLit) value() {}

// NullLit is the null literal.
type NullLit struct {
	NodeBase
}

func (*NullLit) value() {}

// Array is an ordered list of values.
type Array struct {
	NodeBase
	Elements []Value
}

func (*Array) value() {}

// Object is an ordered map of string keys to values.  Field order is the
// declaration order; lookups scan the fields in order.
type Object struct {
	NodeBase
	Fields []*ObjectField
}

func (*Object) value() {}

// Get returns the value of the field with the given name, or nil if the
// object has no such field.
func (o *Object) Get(name string) Value {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Value
		}
	}

	return nil
}

// Field returns the full field record for the given name.
func (o *Object) Field(name string) *ObjectField {
	for _, f := range o.Fields {
		if f.Name == name {
			return f
		}
	}

	return nil
}

// ObjectField is one key-value entry of an object.
type ObjectField struct {
	NodeBase

	Name     string
	NameSpan *report.TextSpan

	Value Value
}

// PathExpr is a dotted identifier chain such as `source.transactions`.
type PathExpr struct {
	NodeBase
	Segments []string
}

func (*PathExpr) value() {}

// String returns the dotted form of the path.
func (p *PathExpr) String() string {
	return strings.Join(p.Segments, ".")
}

// Root returns the first segment of the path.
func (p *PathExpr) Root() string {
	return p.Segments[0]
}

// CallExpr is a constructor call such as `NATS("events")`.
type CallExpr struct {
	NodeBase

	Name string
	Args []*Argument
}

func (*CallExpr) value() {}

// Positional returns the call's positional argument values in order.
func (c *CallExpr) Positional() []Value {
	var vals []Value
	for _, arg := range c.Args {
		if arg.Name == "" {
			vals = append(vals, arg.Value)
		}
	}

	return vals
}

// Named returns the value of the named argument with the given name, or nil.
func (c *CallExpr) Named(name string) Value {
	for _, arg := range c.Args {
		if arg.Name == name {
			return arg.Value
		}
	}

	return nil
}

// Argument is one argument of a call: named when Name is non-empty,
// positional otherwise.
type Argument struct {
	NodeBase

	Name     string
	NameSpan *report.TextSpan

	Value Value
}
