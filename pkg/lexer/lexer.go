// Package lexer turns source text into a lazy stream of tokens by running one
// finite automaton per lexical category over the input in lockstep and
// keeping the longest accepted match.
package lexer

import (
	"iter"

	"imlang/pkg/diag"
)

// Lexer holds all mutable state for one scanning pass over src. It owns the
// input cursor; tokens are produced on demand by Next.
type Lexer struct {
	src   []rune
	pos   int // index of the next rune to consume
	line  int // current 1-based source line
	set   []Automaton
	diags *diag.List
}

// New returns a Lexer over src that reports unrecognised input to diags.
// A nil diags gets a private list, reachable through Diagnostics.
func New(src string, diags *diag.List) *Lexer {
	if diags == nil {
		diags = &diag.List{}
	}
	return &Lexer{src: []rune(src), line: 1, set: NewAutomata(), diags: diags}
}

// Diagnostics returns the list lexical errors are reported to.
func (l *Lexer) Diagnostics() *diag.List { return l.diags }

// Line returns the current 1-based source line.
func (l *Lexer) Line() int { return l.line }

// Next returns the next token, skipping whitespace and comments. It returns
// false once the input is exhausted.
func (l *Lexer) Next() (Token, bool) {
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			return Token{}, false
		}
		tok, ok := l.scan()
		if !ok || tok.Category.IsComment() {
			continue
		}
		return tok, true
	}
}

// All yields the remaining tokens.
func (l *Lexer) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			tok, ok := l.Next()
			if !ok || !yield(tok) {
				return
			}
		}
	}
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.src) && IsSpace(l.src[l.pos]) {
		if l.src[l.pos] == '\n' {
			l.line++
		}
		l.pos++
	}
}

// scan runs every automaton from the current position and commits one
// lexeme. The second result is false when nothing was produced.
func (l *Lexer) scan() (Token, bool) {
	for _, a := range l.set {
		a.Reset()
	}
	catch := l.set[Unknown]

	start, line := l.pos, l.line
	best, bestEnd := -1, start
	i := start
	live := 0
	for i < len(l.src) {
		ch := l.src[i]
		live = 0
		for k := 1; k < len(l.set); k++ {
			st, ok := l.set[k].Step(ch)
			if !ok {
				continue
			}
			live++
			// Later categories overwrite earlier ones at the same length.
			if st.Accepting {
				best, bestEnd = k, i+1
			}
		}
		if live == 0 {
			// Nothing recognises this character at all: hand it to the
			// catch-all so the scan always makes progress.
			if i == start {
				catch.Step(ch)
				i++
			}
			break
		}
		catch.Step(ch)
		i++
	}

	unterminated := i == len(l.src) && live > 0 && i > bestEnd && l.open()
	if best >= 0 && !unterminated {
		text := string(l.src[start:bestEnd])
		l.commit(bestEnd)
		return Token{Category: Category(best), Text: text, Line: line}, true
	}

	st, _ := catch.State()
	text := string(st.Consumed)
	l.commit(i)
	if text == "" {
		return Token{}, false
	}
	if unterminated {
		l.diags.Errorf(line, "unterminated token %q", abbreviate(text))
	} else {
		l.diags.Errorf(line, "unrecognized token %q", text)
	}
	return Token{Category: Unknown, Text: text, Line: line}, true
}

// open reports whether a string or block comment is still waiting for its
// closing delimiter.
func (l *Lexer) open() bool {
	for _, c := range []Category{String, BlockComment} {
		if _, ok := l.set[c].State(); ok {
			return true
		}
	}
	return false
}

// commit advances the cursor to end, counting the newlines passed over.
func (l *Lexer) commit(end int) {
	for ; l.pos < end; l.pos++ {
		if l.src[l.pos] == '\n' {
			l.line++
		}
	}
}

func abbreviate(s string) string {
	const max = 24
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// Lex tokenises src in one go. Comments are dropped; lexical errors are
// returned as diagnostics alongside Unknown tokens.
func Lex(src string) ([]Token, *diag.List) {
	l := New(src, nil)
	var tokens []Token
	for tok := range l.All() {
		tokens = append(tokens, tok)
	}
	return tokens, l.diags
}
