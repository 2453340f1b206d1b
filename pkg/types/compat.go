package types

import "fmt"

// Compatible reports whether a value of type actual may be used where
// expected is required. Integer interoperates with Bool and Float, arrays
// compare element-wise and by size, an array also matches its element type,
// and every other pair must share a Kind. The relation is not transitive.
func Compatible(expected, actual Type) bool {
	ek, ak := expected.Kind(), actual.Kind()
	switch {
	case ek == KindInteger && ak == KindBool, ek == KindBool && ak == KindInteger:
		return true
	case ek == KindInteger && ak == KindFloat, ek == KindFloat && ak == KindInteger:
		return true
	}

	ea, eIsArray := expected.(*Array)
	aa, aIsArray := actual.(*Array)
	switch {
	case eIsArray && aIsArray:
		return Compatible(ea.Elem, aa.Elem) && ea.Size == aa.Size
	case eIsArray:
		return Compatible(ea.Elem, actual)
	case aIsArray:
		return Compatible(aa.Elem, expected)
	}
	return ek == ak
}

// Conversion names the value-level operation that turns one type into
// another.
type Conversion int

const (
	NoConversion Conversion = iota
	IntToBool                // x != 0, widened to the boolean domain
	IntToFloat
	FloatToInt
	BoolToInt
)

func (c Conversion) String() string {
	switch c {
	case NoConversion:
		return "none"
	case IntToBool:
		return "int-to-bool"
	case IntToFloat:
		return "int-to-float"
	case FloatToInt:
		return "float-to-int"
	case BoolToInt:
		return "bool-to-int"
	}
	return fmt.Sprintf("Conversion(%d)", int(c))
}

// CoercionError reports a pair of types with no implicit conversion.
type CoercionError struct {
	From, To Type
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %s to %s", e.From, e.To)
}

// Convert returns the conversion needed to use a from value as a to value.
// Types of the same Kind need none.
func Convert(from, to Type) (Conversion, error) {
	fk, tk := from.Kind(), to.Kind()
	if fk == tk {
		return NoConversion, nil
	}
	switch {
	case fk == KindInteger && tk == KindBool:
		return IntToBool, nil
	case fk == KindInteger && tk == KindFloat:
		return IntToFloat, nil
	case fk == KindFloat && tk == KindInteger:
		return FloatToInt, nil
	case fk == KindBool && tk == KindInteger:
		return BoolToInt, nil
	}
	return NoConversion, &CoercionError{From: from, To: to}
}
