package lexer

import "testing"

// run feeds input to a fresh automaton for c and reports whether it is alive
// and accepting after the last character.
func run(c Category, input string) (alive, accepting bool) {
	a := NewAutomaton(c)
	for _, ch := range input {
		if _, ok := a.Step(ch); !ok {
			return false, false
		}
	}
	st, ok := a.State()
	return ok, ok && st.Accepting
}

func TestAutomata(t *testing.T) {
	tests := []struct {
		cat       Category
		input     string
		alive     bool
		accepting bool
	}{
		{Identifier, "a", true, true},
		{Identifier, "abc_1Z", true, true},
		{Identifier, "1a", false, false},
		{Identifier, "_a", false, false},
		{Identifier, "a-b", false, false},

		{Number, "7", true, true},
		{Number, "1_000", true, true},
		{Number, "3.", true, true},
		{Number, "3.25", true, true},
		{Number, "3.2.5", false, false},
		{Number, "_1", false, false},

		{String, `"`, true, false},
		{String, `"abc`, true, false},
		{String, `"a b"`, true, true},
		{String, `"a"b`, false, false},

		{LineComment, "/", true, false},
		{LineComment, "//", true, true},
		{LineComment, "// text", true, true},
		{LineComment, "// text\n", false, false},

		{LessEq, "<", true, false},
		{LessEq, "<=", true, true},
		{Less, "<", true, true},
		{Less, "<=", false, false},
		{Assign, ":=", true, true},
		{ProgramKW, "prog", true, false},
		{ProgramKW, "program", true, true},
		{ProgramKW, "programs", false, false},

		{Unknown, "", true, false},
		{Unknown, "@#$", true, false},
	}

	for _, tt := range tests {
		alive, accepting := run(tt.cat, tt.input)
		if alive != tt.alive || accepting != tt.accepting {
			t.Errorf("%s on %q: alive=%v accepting=%v, want alive=%v accepting=%v",
				tt.cat, tt.input, alive, accepting, tt.alive, tt.accepting)
		}
	}
}

func TestBlockCommentNesting(t *testing.T) {
	tests := []struct {
		input     string
		alive     bool
		accepting bool
		depth     int
	}{
		{"/", true, false, 0},
		{"/*", true, false, 1},
		{"/**/", true, true, 0},
		{"/* a */", true, true, 0},
		{"/* a */ ", false, false, 0},
		{"/* /* */", true, false, 1},
		{"/* /*  */", true, false, 1},
		{"/* /* */ */", true, true, 0},
		{"/* /* inner */ still comment */", true, true, 0},
		{"/*/**/*/", true, true, 0},
		{"/* /* /* */ */", true, false, 1},
		{"/* /* /* */ */ */", true, true, 0},
		{"/* ** // */", true, true, 0},
		{"/* *** */", true, true, 0},
		{"/* * / */", true, true, 0},
		{"/x", false, false, 0},
		{"x", false, false, 0},
	}

	for _, tt := range tests {
		a := NewAutomaton(BlockComment).(*blockComment)
		alive := true
		for _, ch := range tt.input {
			if _, ok := a.Step(ch); !ok {
				alive = false
				break
			}
		}
		st, ok := a.State()
		if ok != alive {
			t.Fatalf("%q: State() liveness %v disagrees with Step %v", tt.input, ok, alive)
		}
		if alive != tt.alive || st.Accepting != tt.accepting {
			t.Errorf("%q: alive=%v accepting=%v, want alive=%v accepting=%v",
				tt.input, alive, st.Accepting, tt.alive, tt.accepting)
		}
		if alive && a.Depth() != tt.depth {
			t.Errorf("%q: depth=%d, want %d", tt.input, a.Depth(), tt.depth)
		}
	}
}

func TestAutomatonReset(t *testing.T) {
	a := NewAutomaton(Identifier)
	for _, ch := range "ab" {
		a.Step(ch)
	}
	a.Step('-')
	if _, ok := a.State(); ok {
		t.Fatal("expected automaton to be dead")
	}
	if _, ok := a.Step('c'); ok {
		t.Fatal("dead automaton must not resurrect")
	}

	a.Reset()
	st, ok := a.State()
	if !ok || st.Accepting || len(st.Consumed) != 0 || st.Position != 0 {
		t.Fatalf("after Reset: %+v, alive=%v", st, ok)
	}
	st, ok = a.Step('z')
	if !ok || !st.Accepting || string(st.Consumed) != "z" {
		t.Fatalf("after Reset and Step: %+v, alive=%v", st, ok)
	}
}

func TestNewAutomataOrder(t *testing.T) {
	set := NewAutomata()
	if len(set) != int(numCategories) {
		t.Fatalf("expected %d automata, got %d", numCategories, len(set))
	}
	for i, a := range set {
		if a.Category() != Category(i) {
			t.Errorf("automaton %d has category %s", i, a.Category())
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		ch   rune
		want CharGroup
	}{
		{'a', Lower}, {'z', Lower}, {'A', Upper}, {'Z', Upper},
		{'0', Digit}, {'9', Digit}, {'_', Other}, {' ', Other}, {'é', Other},
	}
	for _, tt := range tests {
		if got := Classify(tt.ch); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.ch, got, tt.want)
		}
	}
	for _, ch := range " \t\n\r" {
		if !IsSpace(ch) {
			t.Errorf("IsSpace(%q) = false", ch)
		}
	}
	if IsSpace('x') {
		t.Error("IsSpace('x') = true")
	}
}
