// Package symtab is the compiler's scope chain: a stack of name to symbol
// frames over one persistent global frame.
package symtab

import (
	"fmt"
	"sort"
	"strings"

	"imlang/pkg/backend"
	"imlang/pkg/types"
)

type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeLocal
)

// Symbol is one declared name. Symbols are shared between frames and are not
// modified after they are added.
type Symbol struct {
	Name  string
	Type  types.Type
	Value backend.Value // storage address, procedure, or zero for type names
	Line  int
}

// Frame is one level of the scope chain.
type Frame struct {
	Name    string
	symbols map[string]*Symbol
}

func newFrame(name string) *Frame {
	return &Frame{Name: name, symbols: make(map[string]*Symbol)}
}

// Get returns the symbol declared as name in this frame only.
func (f *Frame) Get(name string) (*Symbol, bool) {
	sym, ok := f.symbols[name]
	return sym, ok
}

func (f *Frame) Len() int { return len(f.symbols) }

// Names returns the declared names in sorted order.
func (f *Frame) Names() []string {
	names := make([]string, 0, len(f.symbols))
	for name := range f.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns a deterministically ordered dump of the frame.
func (f *Frame) String() string {
	var sb strings.Builder
	if len(f.symbols) == 0 {
		fmt.Fprintf(&sb, "Scope %s: (empty)\n", f.Name)
		return sb.String()
	}
	fmt.Fprintf(&sb, "Scope %s:\n", f.Name)
	for _, name := range f.Names() {
		sym := f.symbols[name]
		fmt.Fprintf(&sb, "  %-20s  %s\n", name, sym.Type)
	}
	return sb.String()
}

// Table is the scope chain. Frame 0 is the global frame and is never popped.
//
// Lookup consults the innermost frame and then the global frame only;
// frames in between are not visible.
type Table struct {
	frames []*Frame
}

func New() *Table {
	return &Table{frames: []*Frame{newFrame("global")}}
}

// Push opens a new innermost frame.
func (t *Table) Push(name string) *Frame {
	f := newFrame(name)
	t.frames = append(t.frames, f)
	return f
}

// PushFrame reinstalls a frame previously returned by Pop.
func (t *Table) PushFrame(f *Frame) {
	t.frames = append(t.frames, f)
}

// Pop removes and returns the innermost frame. The global frame stays; Pop
// returns nil when it is the only one left.
func (t *Table) Pop() *Frame {
	if len(t.frames) <= 1 {
		return nil
	}
	f := t.frames[len(t.frames)-1]
	t.frames = t.frames[:len(t.frames)-1]
	return f
}

// Depth returns the number of frames, counting the global frame.
func (t *Table) Depth() int { return len(t.frames) }

// Unwind pops frames until Depth is depth and returns them innermost first.
func (t *Table) Unwind(depth int) []*Frame {
	var popped []*Frame
	for len(t.frames) > depth && len(t.frames) > 1 {
		popped = append(popped, t.Pop())
	}
	return popped
}

func (t *Table) Global() *Frame { return t.frames[0] }

func (t *Table) Top() *Frame { return t.frames[len(t.frames)-1] }

// Add declares sym in the innermost frame (ScopeLocal) or the global frame
// (ScopeGlobal). An existing symbol of the same name in that frame is
// replaced.
func (t *Table) Add(kind ScopeKind, sym *Symbol) {
	f := t.Top()
	if kind == ScopeGlobal {
		f = t.Global()
	}
	f.symbols[sym.Name] = sym
}

// Lookup returns the symbol and whether it was found.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	if sym, ok := t.Top().symbols[name]; ok {
		return sym, true
	}
	sym, ok := t.Global().symbols[name]
	return sym, ok
}

// String dumps every active frame, outermost first.
func (t *Table) String() string {
	var sb strings.Builder
	for _, f := range t.frames {
		sb.WriteString(f.String())
	}
	return sb.String()
}
