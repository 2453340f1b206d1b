// Package types implements the language's small type algebra: primitive
// types, procedure signatures, fixed-size arrays and named aliases, plus the
// compatibility relation and the implicit conversions between them.
package types

import (
	"fmt"
	"strings"
)

// Kind is the variant tag of a Type.
type Kind int

const (
	KindNone Kind = iota
	KindProcedure
	KindNamed
	KindEnum
	KindInteger
	KindFloat
	KindString
	KindBool
	KindArray
	KindCustom
)

var kindNames = [...]string{
	KindNone:      "none",
	KindProcedure: "procedure",
	KindNamed:     "type",
	KindEnum:      "enum",
	KindInteger:   "integer",
	KindFloat:     "float",
	KindString:    "string",
	KindBool:      "bool",
	KindArray:     "array",
	KindCustom:    "custom",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Type is one value of the type algebra. Types are immutable once built and
// may be shared freely between symbols.
type Type interface {
	Kind() Kind
	String() string
}

// basic is a type with no parameters.
type basic Kind

func (b basic) Kind() Kind { return Kind(b) }

func (b basic) String() string {
	if Kind(b) == KindNone {
		return "_"
	}
	return Kind(b).String()
}

var (
	None    Type = basic(KindNone)
	Enum    Type = basic(KindEnum)
	Integer Type = basic(KindInteger)
	Float   Type = basic(KindFloat)
	String  Type = basic(KindString)
	Bool    Type = basic(KindBool)
)

// Procedure is a procedure signature.
type Procedure struct {
	Params []Type
	Return Type
}

func (p *Procedure) Kind() Kind { return KindProcedure }

func (p *Procedure) String() string {
	var sb strings.Builder
	sb.WriteString("procedure(")
	for _, param := range p.Params {
		sb.WriteString(param.String())
		sb.WriteByte(',')
	}
	sb.WriteString(") -> ")
	sb.WriteString(p.Return.String())
	return sb.String()
}

// Named is the type of a name introduced by a type declaration. Using the
// name as a type mark yields Aliased.
type Named struct {
	Aliased Type
}

func (n *Named) Kind() Kind { return KindNamed }

func (n *Named) String() string { return "type(" + n.Aliased.String() + ")" }

// Array is a fixed-size array. Size 0 marks a placeholder of unknown size
// that only appears as an expected type.
type Array struct {
	Elem Type
	Size uint
}

func (a *Array) Kind() Kind { return KindArray }

func (a *Array) String() string {
	size := "_"
	if a.Size > 0 {
		size = fmt.Sprint(a.Size)
	}
	return "array(" + a.Elem.String() + ")[" + size + "]"
}

// Custom is a user type known only by name.
type Custom struct {
	Name string
}

func (c Custom) Kind() Kind { return KindCustom }

func (c Custom) String() string { return "custom" }

// ElementOf returns the element type of an array, or t itself.
func ElementOf(t Type) Type {
	if a, ok := t.(*Array); ok {
		return a.Elem
	}
	return t
}

// IsNumeric reports whether t is Integer or Float.
func IsNumeric(t Type) bool {
	k := t.Kind()
	return k == KindInteger || k == KindFloat
}

// Join returns the result type of an arithmetic operator applied to a and b:
// Float if either side is Float, otherwise a.
func Join(a, b Type) Type {
	if a.Kind() == KindFloat || b.Kind() == KindFloat {
		return Float
	}
	return a
}

// Widen returns the type both operands of a comparison are converted to:
// Float if either side is Float, Integer if either side is Integer and the
// other Bool, otherwise a.
func Widen(a, b Type) Type {
	ak, bk := a.Kind(), b.Kind()
	switch {
	case ak == KindFloat || bk == KindFloat:
		return Float
	case ak == KindInteger && bk == KindBool, ak == KindBool && bk == KindInteger:
		return Integer
	}
	return a
}
