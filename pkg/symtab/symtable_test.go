package symtab

import (
	"reflect"
	"strings"
	"testing"

	"imlang/pkg/types"
)

func sym(name string, t types.Type) *Symbol {
	return &Symbol{Name: name, Type: t}
}

func TestAddAndLookup(t *testing.T) {
	st := New()
	st.Add(ScopeGlobal, sym("g", types.Integer))

	st.Push("p")
	st.Add(ScopeLocal, sym("l", types.Float))

	if s, ok := st.Lookup("l"); !ok || s.Type != types.Float {
		t.Errorf("local lookup failed: %v %v", s, ok)
	}
	if s, ok := st.Lookup("g"); !ok || s.Type != types.Integer {
		t.Errorf("global lookup failed: %v %v", s, ok)
	}
	if _, ok := st.Lookup("missing"); ok {
		t.Error("unexpected symbol")
	}

	st.Pop()
	if _, ok := st.Lookup("l"); ok {
		t.Error("local should be gone after Pop")
	}
}

func TestLookupSkipsIntermediateFrames(t *testing.T) {
	st := New()
	st.Push("outer")
	st.Add(ScopeLocal, sym("x", types.Integer))
	st.Push("inner")

	if _, ok := st.Lookup("x"); ok {
		t.Error("x from the enclosing, non-global frame must not be visible")
	}

	st.Pop()
	if _, ok := st.Lookup("x"); !ok {
		t.Error("x should be visible in its own frame")
	}
}

func TestLocalShadowsGlobal(t *testing.T) {
	st := New()
	st.Add(ScopeGlobal, sym("x", types.Integer))
	st.Push("p")
	st.Add(ScopeLocal, sym("x", types.String))

	s, _ := st.Lookup("x")
	if s.Type != types.String {
		t.Errorf("expected local x, got %s", s.Type)
	}
}

func TestAddOverwrites(t *testing.T) {
	st := New()
	st.Add(ScopeGlobal, sym("x", types.Integer))
	st.Add(ScopeGlobal, sym("x", types.Bool))
	s, _ := st.Lookup("x")
	if s.Type != types.Bool {
		t.Errorf("last write should win, got %s", s.Type)
	}
	if st.Global().Len() != 1 {
		t.Errorf("expected 1 global, got %d", st.Global().Len())
	}
}

func TestScopeGlobalFromNestedFrame(t *testing.T) {
	st := New()
	st.Push("p")
	st.Push("q")
	st.Add(ScopeGlobal, sym("shared", types.Float))
	st.Unwind(1)
	if _, ok := st.Global().Get("shared"); !ok {
		t.Error("global declaration from a nested frame should land in frame 0")
	}
}

func TestEnclosingRegistration(t *testing.T) {
	st := New()
	st.Push("outer")
	st.Push("proc")

	s := sym("proc", &types.Procedure{Return: types.Integer})
	st.Add(ScopeLocal, s)
	f := st.Pop()
	st.Add(ScopeLocal, s)
	st.PushFrame(f)

	if got, _ := st.Top().Get("proc"); got != s {
		t.Error("procedure missing from its own frame")
	}
	st.Pop()
	if got, _ := st.Top().Get("proc"); got != s {
		t.Error("procedure missing from the enclosing frame")
	}
}

func TestPopNeverRemovesGlobal(t *testing.T) {
	st := New()
	if f := st.Pop(); f != nil {
		t.Errorf("Pop on global-only table returned %v", f)
	}
	if st.Depth() != 1 {
		t.Errorf("Depth = %d", st.Depth())
	}

	st.Push("a")
	st.Push("b")
	popped := st.Unwind(0)
	names := []string{}
	for _, f := range popped {
		names = append(names, f.Name)
	}
	if !reflect.DeepEqual(names, []string{"b", "a"}) {
		t.Errorf("Unwind popped %v", names)
	}
	if st.Depth() != 1 {
		t.Errorf("Depth after Unwind = %d", st.Depth())
	}
}

func TestString(t *testing.T) {
	st := New()
	st.Add(ScopeGlobal, sym("zeta", types.Integer))
	st.Add(ScopeGlobal, sym("alpha", &types.Array{Elem: types.Float, Size: 3}))
	st.Push("p")

	out := st.String()
	if !strings.Contains(out, "Scope global:\n") || !strings.Contains(out, "Scope p: (empty)") {
		t.Errorf("unexpected dump:\n%s", out)
	}
	if strings.Index(out, "alpha") > strings.Index(out, "zeta") {
		t.Errorf("names should be sorted:\n%s", out)
	}
	if !strings.Contains(out, "array(float)[3]") {
		t.Errorf("missing type in dump:\n%s", out)
	}
}
