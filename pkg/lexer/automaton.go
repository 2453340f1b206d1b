package lexer

// State is the position of a live automaton. A dead automaton has no State:
// Step and State report that with a false second result.
type State struct {
	Position  uint   // node in the automaton's transition graph
	Accepting bool   // the consumed text is a complete lexeme of this category
	Consumed  []rune // text matched so far; valid until the next Step or Reset
}

// Automaton matches one lexical category one character at a time. Once an
// automaton dies it stays dead until Reset.
type Automaton interface {
	Category() Category
	// Reset returns the automaton to its initial, non-accepting state with no
	// consumed text.
	Reset()
	// Step feeds ch and returns the next state, or false when ch has no
	// transition from the current state.
	Step(ch rune) (State, bool)
	// State returns the current state, or false when the automaton is dead.
	State() (State, bool)
}

// machine carries the bookkeeping shared by every automaton.
type machine struct {
	cat   Category
	st    State
	alive bool
	buf   []rune
}

func (m *machine) Category() Category { return m.cat }

func (m *machine) State() (State, bool) {
	if !m.alive {
		return State{}, false
	}
	return m.st, true
}

func (m *machine) reset() {
	m.buf = m.buf[:0]
	m.st = State{Consumed: m.buf}
	m.alive = true
}

func (m *machine) to(pos uint, accept bool, ch rune) (State, bool) {
	m.buf = append(m.buf, ch)
	m.st = State{Position: pos, Accepting: accept, Consumed: m.buf}
	return m.st, true
}

func (m *machine) die() (State, bool) {
	m.alive = false
	m.st = State{}
	return State{}, false
}

// fixedText accepts exactly one spelling: a keyword or an operator.
type fixedText struct {
	machine
	word []rune
}

func newFixedText(c Category) *fixedText {
	a := &fixedText{machine: machine{cat: c}, word: []rune(c.Spelling())}
	a.Reset()
	return a
}

func (a *fixedText) Reset() { a.reset() }

func (a *fixedText) Step(ch rune) (State, bool) {
	if !a.alive {
		return State{}, false
	}
	pos := a.st.Position
	if int(pos) >= len(a.word) || a.word[pos] != ch {
		return a.die()
	}
	return a.to(pos+1, int(pos)+1 == len(a.word), ch)
}

// identifier: a letter, then any run of letters, digits and underscores.
// Every step after the first character re-accepts.
type identifier struct{ machine }

func (a *identifier) Reset() { a.reset() }

func (a *identifier) Step(ch rune) (State, bool) {
	if !a.alive {
		return State{}, false
	}
	switch a.st.Position {
	case 0:
		if IsLetter(ch) {
			return a.to(1, true, ch)
		}
	case 1:
		if IsLetter(ch) || IsDigit(ch) || ch == '_' {
			return a.to(1, true, ch)
		}
	}
	return a.die()
}

// number: digits (with '_' separators) and at most one decimal point.
//
//	0 -digit-> 1 ; 1 -digit|_-> 1 ; 1 -'.'-> 2 ; 2 -digit|_-> 2
type number struct{ machine }

func (a *number) Reset() { a.reset() }

func (a *number) Step(ch rune) (State, bool) {
	if !a.alive {
		return State{}, false
	}
	switch a.st.Position {
	case 0:
		if IsDigit(ch) {
			return a.to(1, true, ch)
		}
	case 1:
		if IsDigit(ch) || ch == '_' {
			return a.to(1, true, ch)
		}
		if ch == '.' {
			return a.to(2, true, ch)
		}
	case 2:
		if IsDigit(ch) || ch == '_' {
			return a.to(2, true, ch)
		}
	}
	return a.die()
}

// stringLit: a double-quoted run with no escapes. The closing quote is
// terminal.
type stringLit struct{ machine }

func (a *stringLit) Reset() { a.reset() }

func (a *stringLit) Step(ch rune) (State, bool) {
	if !a.alive {
		return State{}, false
	}
	switch a.st.Position {
	case 0:
		if ch == '"' {
			return a.to(1, false, ch)
		}
	case 1:
		if ch == '"' {
			return a.to(2, true, ch)
		}
		return a.to(1, false, ch)
	}
	return a.die()
}

// lineComment: "//" followed by anything up to, not including, a newline.
type lineComment struct{ machine }

func (a *lineComment) Reset() { a.reset() }

func (a *lineComment) Step(ch rune) (State, bool) {
	if !a.alive {
		return State{}, false
	}
	switch a.st.Position {
	case 0:
		if ch == '/' {
			return a.to(1, false, ch)
		}
	case 1:
		if ch == '/' {
			return a.to(2, true, ch)
		}
	case 2:
		if ch != '\n' {
			return a.to(2, true, ch)
		}
	}
	return a.die()
}

// Block comment positions. The nesting depth is tracked separately.
const (
	bcStart     uint = iota // nothing consumed
	bcOpenSlash             // consumed the opening '/'
	bcBody                  // inside the comment
	bcSeenSlash             // inside, last char was '/': a '*' opens a nested level
	bcSeenStar              // inside, last char was '*': a '/' closes a level
	bcClosed                // depth returned to zero; accepting and terminal
)

// blockComment matches nestable /* ... */ comments. It accepts only when the
// outermost level is closed.
type blockComment struct {
	machine
	depth int
}

func (a *blockComment) Reset() {
	a.reset()
	a.depth = 0
}

// Depth returns the number of comment levels currently open.
func (a *blockComment) Depth() int { return a.depth }

func (a *blockComment) Step(ch rune) (State, bool) {
	if !a.alive {
		return State{}, false
	}
	switch a.st.Position {
	case bcStart:
		if ch == '/' {
			return a.to(bcOpenSlash, false, ch)
		}
	case bcOpenSlash:
		if ch == '*' {
			a.depth = 1
			return a.to(bcBody, false, ch)
		}
	case bcBody:
		return a.inBody(ch)
	case bcSeenSlash:
		if ch == '*' {
			a.depth++
			return a.to(bcBody, false, ch)
		}
		return a.inBody(ch)
	case bcSeenStar:
		if ch == '/' {
			a.depth--
			if a.depth == 0 {
				return a.to(bcClosed, true, ch)
			}
			return a.to(bcBody, false, ch)
		}
		return a.inBody(ch)
	}
	return a.die()
}

func (a *blockComment) inBody(ch rune) (State, bool) {
	switch ch {
	case '/':
		return a.to(bcSeenSlash, false, ch)
	case '*':
		return a.to(bcSeenStar, false, ch)
	}
	return a.to(bcBody, false, ch)
}

// catchAll never dies and never accepts. It keeps the scan loop supplied
// with a live automaton and collects unrecognised text.
type catchAll struct{ machine }

func (a *catchAll) Reset() { a.reset() }

func (a *catchAll) Step(ch rune) (State, bool) {
	return a.to(0, false, ch)
}

// NewAutomaton returns a fresh automaton for c.
func NewAutomaton(c Category) Automaton {
	var a Automaton
	switch {
	case c == Unknown:
		a = &catchAll{machine{cat: c}}
	case c == Identifier:
		a = &identifier{machine{cat: c}}
	case c == Number:
		a = &number{machine{cat: c}}
	case c == String:
		a = &stringLit{machine{cat: c}}
	case c == LineComment:
		a = &lineComment{machine{cat: c}}
	case c == BlockComment:
		a = &blockComment{machine: machine{cat: c}}
	case c.hasFixedText():
		return newFixedText(c)
	default:
		panic("lexer: no automaton for " + c.String())
	}
	a.Reset()
	return a
}

// NewAutomata returns one automaton per category in declaration order, so the
// slice index doubles as the tie-break priority.
func NewAutomata() []Automaton {
	set := make([]Automaton, numCategories)
	for c := Category(0); c < numCategories; c++ {
		set[c] = NewAutomaton(c)
	}
	return set
}
