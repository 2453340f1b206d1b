package backend

import "imlang/pkg/types"

var conversionOps = map[types.Conversion]Opcode{
	types.IntToBool:  OpIntToBool,
	types.IntToFloat: OpIntToFloat,
	types.FloatToInt: OpFloatToInt,
	types.BoolToInt:  OpBoolToInt,
}

// Coerce converts v from one source type to another, emitting the
// conversion through b. Same-kind types pass v through unchanged.
func Coerce(b Backend, from, to types.Type, v Value) (Value, error) {
	conv, err := types.Convert(from, to)
	if err != nil {
		return Value{}, err
	}
	if conv == types.NoConversion {
		return v, nil
	}
	return b.Emit(conversionOps[conv], v), nil
}

// Builtin is a runtime-provided procedure visible to every program.
type Builtin struct {
	Name string
	Sig  *types.Procedure
}

// Builtins returns the runtime procedures in link order.
func Builtins() []Builtin {
	return []Builtin{
		{"getbool", &types.Procedure{Return: types.Bool}},
		{"putbool", &types.Procedure{Params: []types.Type{types.Bool}, Return: types.Bool}},
		{"getinteger", &types.Procedure{Return: types.Integer}},
		{"putinteger", &types.Procedure{Params: []types.Type{types.Integer}, Return: types.Bool}},
		{"getfloat", &types.Procedure{Return: types.Float}},
		{"putfloat", &types.Procedure{Params: []types.Type{types.Float}, Return: types.Bool}},
	}
}
