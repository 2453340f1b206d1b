package types

import (
	"errors"
	"testing"
)

func TestString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{None, "_"},
		{Integer, "integer"},
		{Float, "float"},
		{String, "string"},
		{Bool, "bool"},
		{Enum, "enum"},
		{Custom{Name: "point"}, "custom"},
		{&Array{Elem: Integer, Size: 10}, "array(integer)[10]"},
		{&Array{Elem: Float}, "array(float)[_]"},
		{&Named{Aliased: Integer}, "type(integer)"},
		{&Procedure{Return: Bool}, "procedure() -> bool"},
		{&Procedure{Params: []Type{Integer, Float}, Return: None}, "procedure(integer,float,) -> _"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCompatible(t *testing.T) {
	arr10 := &Array{Elem: Integer, Size: 10}
	tests := []struct {
		name             string
		expected, actual Type
		want             bool
	}{
		{"same primitive", Integer, Integer, true},
		{"integer bool", Integer, Bool, true},
		{"bool integer", Bool, Integer, true},
		{"integer float", Integer, Float, true},
		{"float integer", Float, Integer, true},
		{"float bool", Float, Bool, false},
		{"bool float", Bool, Float, false},
		{"string integer", String, Integer, false},
		{"string string", String, String, true},
		{"none none", None, None, true},
		{"arrays same size", arr10, &Array{Elem: Integer, Size: 10}, true},
		{"arrays compatible elements", arr10, &Array{Elem: Float, Size: 10}, true},
		{"arrays different size", arr10, &Array{Elem: Integer, Size: 5}, false},
		{"arrays incompatible elements", arr10, &Array{Elem: String, Size: 10}, false},
		{"array decays left", arr10, Integer, true},
		{"array decays right", Float, arr10, true},
		{"array decay incompatible", arr10, String, false},
		{"procedures by kind", &Procedure{Return: Integer}, &Procedure{Params: []Type{Float}, Return: Bool}, true},
		{"custom by kind", Custom{Name: "a"}, Custom{Name: "b"}, true},
		{"named vs integer", &Named{Aliased: Integer}, Integer, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compatible(tt.expected, tt.actual); got != tt.want {
				t.Errorf("Compatible(%s, %s) = %v, want %v", tt.expected, tt.actual, got, tt.want)
			}
		})
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		from, to Type
		want     Conversion
		wantErr  bool
	}{
		{Integer, Integer, NoConversion, false},
		{Float, Float, NoConversion, false},
		{Integer, Bool, IntToBool, false},
		{Integer, Float, IntToFloat, false},
		{Float, Integer, FloatToInt, false},
		{Bool, Integer, BoolToInt, false},
		{&Array{Elem: Integer, Size: 2}, &Array{Elem: Integer, Size: 2}, NoConversion, false},
		{Bool, Float, NoConversion, true},
		{Float, Bool, NoConversion, true},
		{String, Integer, NoConversion, true},
	}
	for _, tt := range tests {
		got, err := Convert(tt.from, tt.to)
		if (err != nil) != tt.wantErr {
			t.Errorf("Convert(%s, %s) error = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Convert(%s, %s) = %s, want %s", tt.from, tt.to, got, tt.want)
		}
		if err != nil {
			var ce *CoercionError
			if !errors.As(err, &ce) || ce.From != tt.from || ce.To != tt.to {
				t.Errorf("expected *CoercionError for %s -> %s, got %v", tt.from, tt.to, err)
			}
		}
	}
}

func TestJoin(t *testing.T) {
	if Join(Integer, Integer) != Integer {
		t.Error("integer op integer should stay integer")
	}
	if Join(Integer, Float) != Float || Join(Float, Integer) != Float {
		t.Error("mixing float should promote to float")
	}
	if ElementOf(&Array{Elem: Bool, Size: 3}) != Bool || ElementOf(Integer) != Integer {
		t.Error("ElementOf mismatch")
	}
}

func TestWiden(t *testing.T) {
	tests := []struct {
		a, b Type
		want Type
	}{
		{Integer, Integer, Integer},
		{Bool, Bool, Bool},
		{String, String, String},
		{Bool, Integer, Integer},
		{Integer, Bool, Integer},
		{Integer, Float, Float},
		{Float, Integer, Float},
		{Float, Float, Float},
	}
	for _, tt := range tests {
		if got := Widen(tt.a, tt.b); got != tt.want {
			t.Errorf("Widen(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
		if got := Widen(tt.b, tt.a); got != tt.want {
			t.Errorf("Widen(%s, %s) = %s, want %s", tt.b, tt.a, got, tt.want)
		}
	}
}
