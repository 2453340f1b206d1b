// Package backend is the code generation side of the compiler. The parser
// talks to it only through the Backend interface; Module is a text IR
// recorder that implements it.
package backend

import (
	"fmt"
	"strconv"

	"imlang/pkg/types"
)

// Backend receives the parser's requests for storage, constants and
// instructions. Values it returns are opaque handles to the parser.
type Backend interface {
	// Lower maps a source type to its machine representation. Unsupported
	// types return an error together with the Void fallback.
	Lower(t types.Type) (Type, error)
	// Allocate reserves storage for a variable and returns its address.
	Allocate(name string, t Type, global bool) Value
	// Const materialises a literal of type t.
	Const(t types.Type, literal string) (Value, error)
	// Emit appends one instruction and returns its result, or the zero Value
	// for instructions without one.
	Emit(op Opcode, operands ...Value) Value
	// LinkBuiltin declares an externally provided procedure.
	LinkBuiltin(name string, sig *types.Procedure) Value
	// BeginProcedure opens a procedure body. Instructions go to it until the
	// matching EndProcedure.
	BeginProcedure(name string, sig *types.Procedure) Value
	// Param returns incoming argument i of the open procedure.
	Param(i int) Value
	EndProcedure()
	NewLabel(hint string) Value
	// PlaceLabel starts the basic block named by label.
	PlaceLabel(label Value)
}

// Type is a machine-level type.
type Type struct {
	name string
	elem *Type
	size uint
}

var (
	Void  = Type{name: "void"}
	I32   = Type{name: "i32"}
	I64   = Type{name: "i64"}
	F64   = Type{name: "f64"}
	PtrI8 = Type{name: "ptr i8"}
	Label = Type{name: "label"}
)

// ArrayOf returns the type of size consecutive elem values.
func ArrayOf(elem Type, size uint) Type {
	return Type{name: "array", elem: &elem, size: size}
}

// Elem returns the element type of an array type, or t itself.
func (t Type) Elem() Type {
	if t.elem == nil {
		return t
	}
	return *t.elem
}

// IsArray reports whether t was built by ArrayOf.
func (t Type) IsArray() bool { return t.elem != nil }

func (t Type) String() string {
	if t.elem != nil {
		return fmt.Sprintf("[%d x %s]", t.size, t.elem)
	}
	if t.name == "" {
		return "void"
	}
	return t.name
}

// Value is a handle to something the backend produced: a temporary, an
// address, a constant, a procedure or a label. The zero Value is "no value".
type Value struct {
	Ref  string
	Type Type

	addr   bool // Ref names storage holding a Type
	konst  bool
	intVal int64
	fltVal float64
}

// Valid reports whether v refers to anything.
func (v Value) Valid() bool { return v.Ref != "" }

// IsConst reports whether v is a compile-time numeric constant.
func (v Value) IsConst() bool { return v.konst }

// Int returns the value of an integer or boolean constant.
func (v Value) Int() int64 { return v.intVal }

// Float returns the value of a float constant.
func (v Value) Float() float64 { return v.fltVal }

// IsAddr reports whether v is the address of storage rather than a loaded
// value.
func (v Value) IsAddr() bool { return v.addr }

func (v Value) String() string {
	if !v.Valid() {
		return "<none>"
	}
	if v.addr {
		return "ptr " + v.Ref
	}
	return v.Type.String() + " " + v.Ref
}

func intConst(t Type, n int64) Value {
	return Value{Ref: strconv.FormatInt(n, 10), Type: t, konst: true, intVal: n}
}

func floatConst(f float64) Value {
	return Value{Ref: strconv.FormatFloat(f, 'g', -1, 64), Type: F64, konst: true, fltVal: f}
}

// Opcode selects the instruction built by Emit.
type Opcode int

const (
	OpAdd Opcode = iota
	OpSub
	OpMul
	OpDiv
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpEqual
	OpNotEqual
	OpAnd
	OpOr
	OpNot
	OpNeg
	OpLoad   // (addr)
	OpStore  // (addr, value)
	OpIndex  // (array addr, index) -> element addr
	OpCall   // (proc, args...)
	OpJump   // (label)
	OpBranch // (cond, then label, else label)
	OpReturn // (value?)
	OpIntToBool
	OpIntToFloat
	OpFloatToInt
	OpBoolToInt
)

var opNames = [...]string{
	OpAdd:        "add",
	OpSub:        "sub",
	OpMul:        "mul",
	OpDiv:        "div",
	OpLess:       "lt",
	OpLessEq:     "le",
	OpGreater:    "gt",
	OpGreaterEq:  "ge",
	OpEqual:      "eq",
	OpNotEqual:   "ne",
	OpAnd:        "and",
	OpOr:         "or",
	OpNot:        "not",
	OpNeg:        "neg",
	OpLoad:       "load",
	OpStore:      "store",
	OpIndex:      "index",
	OpCall:       "call",
	OpJump:       "br",
	OpBranch:     "br",
	OpReturn:     "ret",
	OpIntToBool:  "itob",
	OpIntToFloat: "sitofp",
	OpFloatToInt: "fptosi",
	OpBoolToInt:  "zext",
}

func (op Opcode) String() string {
	if op >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

func (op Opcode) isCompare() bool { return op >= OpLess && op <= OpNotEqual }

func (op Opcode) isArith() bool { return op >= OpAdd && op <= OpDiv }
