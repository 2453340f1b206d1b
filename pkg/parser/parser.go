// Package parser is a single-pass recursive descent parser that type-checks
// and drives code generation as it goes.
//
// Grammar:
//
//	program         = "program" IDENTIFIER "is" program_body "."
//	program_body    = declaration* "begin" statement* "end" "program"
//	declaration     = "global"? (procedure_decl | variable_decl | type_decl) ";"
//	procedure_decl  = procedure_header procedure_body
//	procedure_header= "procedure" IDENTIFIER ":" type_mark "(" parameter_list? ")"
//	procedure_body  = declaration* "begin" statement* "end" "procedure"
//	parameter_list  = variable_decl ("," variable_decl)*
//	variable_decl   = "variable" IDENTIFIER ":" type_mark ("[" "-"? NUMBER "]")?
//	type_decl       = "type" IDENTIFIER "is" type_mark
//	type_mark       = "integer" | "float" | "string" | "bool" | IDENTIFIER
//	                | "enum" "{" IDENTIFIER ("," IDENTIFIER)* "}"
//	statement       = (assignment | if_stmt | loop_stmt | return_stmt) ";"
//	assignment      = destination ":=" expression
//	destination     = IDENTIFIER ("[" expression "]")?
//	if_stmt         = "if" "(" expression ")" "then" statement* ("else" statement*)? "end" "if"
//	loop_stmt       = "for" "(" assignment ";" expression ")" statement* "end" "for"
//	return_stmt     = "return" expression
//	expression      = "not"? arith_op (("&" | "|") arith_op)*
//	arith_op        = relation (("+" | "-") relation)*
//	relation        = term (("<" | "<=" | ">" | ">=" | "==" | "!=") term)*
//	term            = factor (("*" | "/") factor)*
//	factor          = "(" expression ")" | call | name | "-" (name | NUMBER)
//	                | NUMBER | STRING | "true" | "false"
//	call            = IDENTIFIER "(" (expression ("," expression)*)? ")"
//	name            = IDENTIFIER ("[" expression "]")?
package parser

import (
	"errors"
	"slices"
	"strings"

	"imlang/pkg/backend"
	"imlang/pkg/diag"
	"imlang/pkg/lexer"
	"imlang/pkg/symtab"
	"imlang/pkg/types"
)

// TokenEntry is a token the parser has given meaning to: its resolved type
// and the backend value computed for it.
type TokenEntry struct {
	Token lexer.Token
	Type  types.Type
	Value backend.Value
}

// Line returns the source line of the entry.
func (e TokenEntry) Line() int { return e.Token.Line }

// Result is the outcome of parsing one compilation unit.
type Result struct {
	Program     string          // declared program name, empty if the header failed
	Globals     *symtab.Frame   // the global frame, builtins included
	Scopes      []*symtab.Frame // every frame popped during the parse, in pop order
	Diagnostics *diag.List
}

// OK reports whether the unit parsed without errors.
func (r *Result) OK() bool { return !r.Diagnostics.HasErrors() }

// Err joins the unit's errors, or returns nil.
func (r *Result) Err() error { return r.Diagnostics.Err() }

// Dump renders the retained frames followed by the global frame.
func (r *Result) Dump() string {
	var sb strings.Builder
	for _, f := range r.Scopes {
		sb.WriteString(f.String())
	}
	if r.Globals != nil {
		sb.WriteString(r.Globals.String())
	}
	return sb.String()
}

// Parser holds the state of one parse. It pulls tokens from its Lexer on
// demand through a one-token lookahead buffer.
type Parser struct {
	lex   *lexer.Lexer
	diags *diag.List

	look    lexer.Token
	hasLook bool
	atEnd   bool

	scopes *symtab.Table
	popped []*symtab.Frame
	be     backend.Backend
	ret    types.Type // return type of the enclosing procedure

	endReported bool
}

// New returns a Parser over src that generates code through be.
func New(src string, be backend.Backend) *Parser {
	diags := &diag.List{}
	return &Parser{
		lex:    lexer.New(src, diags),
		diags:  diags,
		scopes: symtab.New(),
		be:     be,
		ret:    types.None,
	}
}

// Parse parses src as one program with code generated into be.
func Parse(src string, be backend.Backend) *Result {
	return New(src, be).Parse()
}

// peek returns the current token without consuming it. The second result is
// false at end of input.
func (p *Parser) peek() (lexer.Token, bool) {
	if !p.hasLook {
		p.look, p.hasLook = p.lex.Next()
		p.atEnd = !p.hasLook
		p.hasLook = true
	}
	return p.look, !p.atEnd
}

// advance consumes and returns the current token.
func (p *Parser) advance() (lexer.Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.hasLook = false
	}
	return tok, ok
}

// at reports whether the current token is of category c.
func (p *Parser) at(c lexer.Category) bool {
	tok, ok := p.peek()
	return ok && tok.Category == c
}

// accept consumes the current token if it is of category c.
func (p *Parser) accept(c lexer.Category) bool {
	if p.at(c) {
		p.advance()
		return true
	}
	return false
}

// expect consumes the current token if it matches c, otherwise returns an
// error and leaves the token in place.
func (p *Parser) expect(c lexer.Category) (lexer.Token, error) {
	tok, ok := p.peek()
	if !ok {
		return tok, p.unexpectedEnd()
	}
	if tok.Category != c {
		return tok, unexpected(tok, c.Spelling())
	}
	p.advance()
	return tok, nil
}

func (p *Parser) unexpectedEnd() error {
	return &UnexpectedEndError{Line: p.lex.Line()}
}

func unexpected(tok lexer.Token, expected string) error {
	return &UnexpectedTokenError{Line: tok.Line, Expected: expected, Actual: tok.Text}
}

// report records err. End of input is reported once per parse.
func (p *Parser) report(err error) {
	var end *UnexpectedEndError
	if errors.As(err, &end) {
		if p.endReported {
			return
		}
		p.endReported = true
	}
	p.diags.Report(err)
}

// resync discards tokens up to and including the next semicolon.
func (p *Parser) resync() {
	for {
		tok, ok := p.advance()
		if !ok {
			p.report(p.unexpectedEnd())
			return
		}
		if tok.Category == lexer.Semicolon {
			return
		}
	}
}

// endItem closes one entry of a declaration or statement list. A failed
// entry is reported and skipped through its semicolon; a good one must be
// followed by a semicolon.
func (p *Parser) endItem(err error) {
	if err == nil {
		_, err = p.expect(lexer.Semicolon)
	}
	if err != nil {
		p.report(err)
		p.resync()
	}
}

// Parse runs the whole program rule and returns the collected result.
func (p *Parser) Parse() *Result {
	res := &Result{Diagnostics: p.diags}
	defer func() {
		res.Globals = p.scopes.Global()
		p.popped = append(p.popped, p.scopes.Unwind(1)...)
		res.Scopes = p.popped
	}()

	p.linkBuiltins()

	name, err := p.programHeader()
	if err != nil {
		p.report(err)
		return res
	}
	res.Program = name

	p.be.BeginProcedure("main", &types.Procedure{Return: types.None})
	err = p.programBody()
	if err == nil {
		p.be.Emit(backend.OpReturn)
	}
	p.be.EndProcedure()
	if err != nil {
		p.report(err)
		return res
	}

	if _, err := p.expect(lexer.Period); err != nil {
		p.report(err)
		return res
	}
	if tok, ok := p.peek(); ok {
		p.report(unexpected(tok, "<end of program>"))
		return res
	}
	if !p.diags.HasErrors() {
		p.diags.Infof(0, "program %s parsed", name)
	}
	return res
}

func (p *Parser) linkBuiltins() {
	for _, b := range backend.Builtins() {
		v := p.be.LinkBuiltin(b.Name, b.Sig)
		p.scopes.Add(symtab.ScopeGlobal, &symtab.Symbol{Name: b.Name, Type: b.Sig, Value: v})
	}
}

func (p *Parser) programHeader() (string, error) {
	if _, err := p.expect(lexer.ProgramKW); err != nil {
		return "", err
	}
	id, err := p.expect(lexer.Identifier)
	if err != nil {
		return "", err
	}
	if _, err := p.expect(lexer.IsKW); err != nil {
		return "", err
	}
	return id.Text, nil
}

// programBody declares into the global frame; the program does not open a
// scope of its own.
func (p *Parser) programBody() error {
	p.declarations()
	if _, err := p.expect(lexer.BeginKW); err != nil {
		return err
	}
	p.statements(lexer.EndKW)
	if _, err := p.expect(lexer.EndKW); err != nil {
		return err
	}
	_, err := p.expect(lexer.ProgramKW)
	return err
}

var declarationStart = []lexer.Category{lexer.GlobalKW, lexer.ProcedureKW, lexer.VariableKW, lexer.TypeKW}

func (p *Parser) declarations() {
	for {
		tok, ok := p.peek()
		if !ok || !slices.Contains(declarationStart, tok.Category) {
			return
		}
		p.endItem(p.declaration())
	}
}

// statements parses statements until one of stop (or end of input) is the
// current token.
func (p *Parser) statements(stop ...lexer.Category) {
	for {
		tok, ok := p.peek()
		if !ok || slices.Contains(stop, tok.Category) {
			return
		}
		p.endItem(p.statement())
	}
}
