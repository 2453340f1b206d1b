package backend

import (
	"fmt"
	"strconv"
	"strings"

	"imlang/pkg/types"
)

// Module records a program as readable three-address IR: global storage and
// declarations first, then one define block per procedure.
type Module struct {
	Name string

	decls  []string
	names  map[string]int
	strs   int
	labels int
	done   []*proc
	open   []*proc
}

type proc struct {
	name       string
	ret        Type
	params     []Value
	out        strings.Builder
	temps      int
	terminated bool
}

// NewModule returns an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name, names: make(map[string]int)}
}

var _ Backend = (*Module)(nil)

// unique returns name, suffixed when it has been handed out before.
func (m *Module) unique(name string) string {
	n := m.names[name]
	m.names[name] = n + 1
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%s.%d", name, n)
}

func (m *Module) decl(format string, args ...any) {
	m.decls = append(m.decls, fmt.Sprintf(format, args...))
}

func (m *Module) cur() *proc {
	if len(m.open) == 0 {
		panic("backend: instruction emitted outside a procedure")
	}
	return m.open[len(m.open)-1]
}

func (p *proc) line(format string, args ...any) {
	fmt.Fprintf(&p.out, "  "+format+"\n", args...)
}

func (p *proc) temp() string {
	t := fmt.Sprintf("%%%d", p.temps)
	p.temps++
	return t
}

func (m *Module) Lower(t types.Type) (Type, error) {
	switch t.Kind() {
	case types.KindInteger:
		return I64, nil
	case types.KindFloat:
		return F64, nil
	case types.KindBool:
		return I32, nil
	case types.KindString:
		return PtrI8, nil
	case types.KindNone:
		return Void, nil
	case types.KindArray:
		a := t.(*types.Array)
		if a.Size == 0 {
			return Void, fmt.Errorf("array of unknown size has no storage")
		}
		elem, err := m.Lower(a.Elem)
		if err != nil {
			return Void, err
		}
		return ArrayOf(elem, a.Size), nil
	}
	return Void, fmt.Errorf("no machine representation for %s", t)
}

func (m *Module) Allocate(name string, t Type, global bool) Value {
	if global || len(m.open) == 0 {
		ref := "@" + m.unique(name)
		m.decl("%s = global %s zeroinitializer", ref, t)
		return Value{Ref: ref, Type: t, addr: true}
	}
	p := m.cur()
	m.reopen(p)
	ref := fmt.Sprintf("%%%s.%d", name, p.temps)
	p.temps++
	p.line("%s = alloca %s", ref, t)
	return Value{Ref: ref, Type: t, addr: true}
}

func (m *Module) Const(t types.Type, literal string) (Value, error) {
	switch t.Kind() {
	case types.KindInteger:
		n, err := strconv.ParseInt(strings.ReplaceAll(literal, "_", ""), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid integer literal %q", literal)
		}
		return intConst(I64, n), nil
	case types.KindFloat:
		f, err := strconv.ParseFloat(strings.ReplaceAll(literal, "_", ""), 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid float literal %q", literal)
		}
		return floatConst(f), nil
	case types.KindBool:
		switch literal {
		case "true":
			return intConst(I32, 1), nil
		case "false":
			return intConst(I32, 0), nil
		}
		return Value{}, fmt.Errorf("invalid bool literal %q", literal)
	case types.KindString:
		text := strings.TrimSuffix(strings.TrimPrefix(literal, `"`), `"`)
		ref := fmt.Sprintf("@.str.%d", m.strs)
		m.strs++
		m.decl("%s = constant c%s", ref, strconv.Quote(text))
		return Value{Ref: ref, Type: PtrI8}, nil
	}
	return Value{}, fmt.Errorf("no literal form for %s", t)
}

func (m *Module) LinkBuiltin(name string, sig *types.Procedure) Value {
	ret, params := m.signature(sig)
	ref := "@" + m.unique(name)
	m.decl("declare %s %s(%s)", ret, ref, joinTypes(params))
	return Value{Ref: ref, Type: ret}
}

func (m *Module) signature(sig *types.Procedure) (Type, []Type) {
	ret, _ := m.Lower(sig.Return)
	params := make([]Type, len(sig.Params))
	for i, pt := range sig.Params {
		params[i], _ = m.Lower(pt)
	}
	return ret, params
}

func joinTypes(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

func (m *Module) BeginProcedure(name string, sig *types.Procedure) Value {
	ret, params := m.signature(sig)
	ref := "@" + m.unique(name)
	p := &proc{name: ref, ret: ret}
	head := make([]string, len(params))
	for i, t := range params {
		v := Value{Ref: fmt.Sprintf("%%arg%d", i), Type: t}
		p.params = append(p.params, v)
		head[i] = v.String()
	}
	fmt.Fprintf(&p.out, "define %s %s(%s) {\nentry:\n", ret, ref, strings.Join(head, ", "))
	m.open = append(m.open, p)
	return Value{Ref: ref, Type: ret}
}

func (m *Module) Param(i int) Value {
	p := m.cur()
	if i < 0 || i >= len(p.params) {
		return Value{}
	}
	return p.params[i]
}

func (m *Module) EndProcedure() {
	p := m.cur()
	if !p.terminated {
		if p.ret == Void {
			p.line("ret void")
		} else {
			p.line("unreachable")
		}
	}
	p.out.WriteString("}\n")
	m.open = m.open[:len(m.open)-1]
	m.done = append(m.done, p)
}

func (m *Module) NewLabel(hint string) Value {
	l := Value{Ref: fmt.Sprintf("%s.%d", hint, m.labels), Type: Label}
	m.labels++
	return l
}

func (m *Module) PlaceLabel(label Value) {
	p := m.cur()
	if !p.terminated {
		p.line("br label %%%s", label.Ref)
	}
	fmt.Fprintf(&p.out, "%s:\n", label.Ref)
	p.terminated = false
}

// reopen starts an unreachable block so that code following a terminator
// still lands in a well-formed block.
func (m *Module) reopen(p *proc) {
	if p.terminated {
		m.PlaceLabel(m.NewLabel("dead"))
	}
}

func (m *Module) Emit(op Opcode, ops ...Value) Value {
	if v, ok := fold(op, ops); ok {
		return v
	}
	p := m.cur()
	m.reopen(p)

	switch {
	case op.isArith():
		a, b := ops[0], ops[1]
		t := p.temp()
		p.line("%s = %s%s %s %s, %s", t, floatPrefix(a.Type), op, a.Type, a.Ref, b.Ref)
		return Value{Ref: t, Type: a.Type}
	case op.isCompare():
		a, b := ops[0], ops[1]
		cmp := "icmp"
		if a.Type == F64 {
			cmp = "fcmp"
		}
		t := p.temp()
		p.line("%s = %s %s %s %s, %s", t, cmp, op, a.Type, a.Ref, b.Ref)
		return Value{Ref: t, Type: I32}
	}

	switch op {
	case OpAnd, OpOr:
		a, b := ops[0], ops[1]
		t := p.temp()
		p.line("%s = %s %s %s, %s", t, op, a.Type, a.Ref, b.Ref)
		return Value{Ref: t, Type: a.Type}
	case OpNot, OpNeg:
		a := ops[0]
		t := p.temp()
		p.line("%s = %s%s %s %s", t, floatPrefix(a.Type), op, a.Type, a.Ref)
		return Value{Ref: t, Type: a.Type}
	case OpLoad:
		a := ops[0]
		if !a.addr {
			return a
		}
		t := p.temp()
		p.line("%s = load %s, ptr %s", t, a.Type, a.Ref)
		return Value{Ref: t, Type: a.Type}
	case OpStore:
		addr, v := ops[0], ops[1]
		p.line("store %s, ptr %s", v, addr.Ref)
		return Value{}
	case OpIndex:
		arr, idx := ops[0], ops[1]
		t := p.temp()
		p.line("%s = index %s, ptr %s, %s", t, arr.Type, arr.Ref, idx)
		return Value{Ref: t, Type: arr.Type.Elem(), addr: true}
	case OpCall:
		fn, args := ops[0], ops[1:]
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		if fn.Type == Void {
			p.line("call void %s(%s)", fn.Ref, strings.Join(parts, ", "))
			return Value{}
		}
		t := p.temp()
		p.line("%s = call %s %s(%s)", t, fn.Type, fn.Ref, strings.Join(parts, ", "))
		return Value{Ref: t, Type: fn.Type}
	case OpJump:
		p.line("br label %%%s", ops[0].Ref)
		p.terminated = true
		return Value{}
	case OpBranch:
		p.line("br %s, label %%%s, label %%%s", ops[0], ops[1].Ref, ops[2].Ref)
		p.terminated = true
		return Value{}
	case OpReturn:
		if len(ops) == 0 || !ops[0].Valid() {
			p.line("ret void")
		} else {
			p.line("ret %s", ops[0])
		}
		p.terminated = true
		return Value{}
	case OpIntToBool, OpIntToFloat, OpFloatToInt, OpBoolToInt:
		a := ops[0]
		to := convTarget[op]
		t := p.temp()
		p.line("%s = %s %s to %s", t, op, a, to)
		return Value{Ref: t, Type: to}
	}
	panic(fmt.Sprintf("backend: unsupported opcode %s", op))
}

var convTarget = map[Opcode]Type{
	OpIntToBool:  I32,
	OpIntToFloat: F64,
	OpFloatToInt: I64,
	OpBoolToInt:  I64,
}

func floatPrefix(t Type) string {
	if t == F64 {
		return "f"
	}
	return ""
}

// fold evaluates conversions and negations of constants.
func fold(op Opcode, ops []Value) (Value, bool) {
	if len(ops) != 1 || !ops[0].konst {
		return Value{}, false
	}
	a := ops[0]
	switch op {
	case OpNeg:
		if a.Type == F64 {
			return floatConst(-a.fltVal), true
		}
		return intConst(a.Type, -a.intVal), true
	case OpNot:
		if a.Type == I32 {
			return intConst(I32, a.intVal^1), true
		}
		return intConst(a.Type, ^a.intVal), true
	case OpIntToBool:
		if a.intVal != 0 {
			return intConst(I32, 1), true
		}
		return intConst(I32, 0), true
	case OpIntToFloat:
		return floatConst(float64(a.intVal)), true
	case OpFloatToInt:
		return intConst(I64, int64(a.fltVal)), true
	case OpBoolToInt:
		return intConst(I64, a.intVal), true
	}
	return Value{}, false
}

// String renders the whole module. Procedures appear in the order they were
// completed.
func (m *Module) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; module %s\n", m.Name)
	for _, d := range m.decls {
		sb.WriteString(d)
		sb.WriteByte('\n')
	}
	for _, p := range m.done {
		sb.WriteByte('\n')
		sb.WriteString(p.out.String())
	}
	return sb.String()
}
