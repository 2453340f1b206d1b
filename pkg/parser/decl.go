package parser

import (
	"fmt"
	"strconv"
	"strings"

	"imlang/pkg/backend"
	"imlang/pkg/lexer"
	"imlang/pkg/symtab"
	"imlang/pkg/types"
)

func scopeOf(global bool) symtab.ScopeKind {
	if global {
		return symtab.ScopeGlobal
	}
	return symtab.ScopeLocal
}

func (p *Parser) declaration() error {
	global := p.accept(lexer.GlobalKW)
	tok, ok := p.peek()
	if !ok {
		return p.unexpectedEnd()
	}
	switch tok.Category {
	case lexer.ProcedureKW:
		return p.procedureDecl(global)
	case lexer.VariableKW:
		return p.variableDecl(global)
	case lexer.TypeKW:
		return p.typeDecl(global)
	}
	return unexpected(tok, "(procedure|variable|type)")
}

// allocate lowers t and reserves storage for id. Declarations at program
// level and those marked global get global storage.
func (p *Parser) allocate(id lexer.Token, t types.Type, global bool) backend.Value {
	bt, err := p.be.Lower(t)
	if err != nil {
		p.diags.Warnf(id.Line, "%s: %v", id.Text, err)
	}
	return p.be.Allocate(id.Text, bt, global || p.scopes.Depth() == 1)
}

// variable parses "variable" IDENTIFIER ":" type_mark bound? and returns the
// name and its type without declaring it.
func (p *Parser) variable() (lexer.Token, types.Type, error) {
	if _, err := p.expect(lexer.VariableKW); err != nil {
		return lexer.Token{}, nil, err
	}
	id, err := p.expect(lexer.Identifier)
	if err != nil {
		return id, nil, err
	}
	if _, err := p.expect(lexer.Colon); err != nil {
		return id, nil, err
	}
	t, err := p.typeMark()
	if err != nil {
		return id, nil, err
	}
	if p.accept(lexer.LBracket) {
		size, err := p.bound()
		if err != nil {
			return id, nil, err
		}
		if _, err := p.expect(lexer.RBracket); err != nil {
			return id, nil, err
		}
		t = &types.Array{Elem: t, Size: size}
	}
	return id, t, nil
}

func (p *Parser) variableDecl(global bool) error {
	id, t, err := p.variable()
	if err != nil {
		return err
	}
	p.scopes.Add(scopeOf(global), &symtab.Symbol{
		Name:  id.Text,
		Type:  t,
		Value: p.allocate(id, t, global),
		Line:  id.Line,
	})
	return nil
}

// bound parses an array size. Only positive integer literals are accepted.
func (p *Parser) bound() (uint, error) {
	neg := p.accept(lexer.Dash)
	tok, err := p.expect(lexer.Number)
	if err != nil {
		return 0, err
	}
	n, perr := strconv.ParseUint(strings.ReplaceAll(tok.Text, "_", ""), 10, 32)
	if neg || perr != nil || n == 0 {
		text := tok.Text
		if neg {
			text = "-" + text
		}
		return 0, &GenericError{Line: tok.Line, Msg: fmt.Sprintf("array bound must be a positive integer, got %s", text)}
	}
	return uint(n), nil
}

func (p *Parser) typeDecl(global bool) error {
	if _, err := p.expect(lexer.TypeKW); err != nil {
		return err
	}
	id, err := p.expect(lexer.Identifier)
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.IsKW); err != nil {
		return err
	}
	t, err := p.typeMark()
	if err != nil {
		return err
	}
	p.scopes.Add(scopeOf(global), &symtab.Symbol{Name: id.Text, Type: &types.Named{Aliased: t}, Line: id.Line})
	return nil
}

func (p *Parser) typeMark() (types.Type, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, p.unexpectedEnd()
	}
	switch tok.Category {
	case lexer.IntegerKW:
		p.advance()
		return types.Integer, nil
	case lexer.FloatKW:
		p.advance()
		return types.Float, nil
	case lexer.StringKW:
		p.advance()
		return types.String, nil
	case lexer.BoolKW:
		p.advance()
		return types.Bool, nil
	case lexer.Identifier:
		p.advance()
		sym, ok := p.scopes.Lookup(tok.Text)
		if !ok {
			return nil, &SymbolNotFoundError{Name: tok.Text, Line: tok.Line}
		}
		named, ok := sym.Type.(*types.Named)
		if !ok {
			return nil, invalidType(tok.Line, sym.Type, &types.Named{Aliased: types.None})
		}
		return named.Aliased, nil
	case lexer.EnumKW:
		p.advance()
		if _, err := p.expect(lexer.LBrace); err != nil {
			return nil, err
		}
		for {
			if _, err := p.expect(lexer.Identifier); err != nil {
				return nil, err
			}
			if !p.accept(lexer.Comma) {
				break
			}
		}
		if _, err := p.expect(lexer.RBrace); err != nil {
			return nil, err
		}
		return types.Enum, nil
	}
	return nil, unexpected(tok, "<type mark>")
}

type param struct {
	id  lexer.Token
	typ types.Type
}

// procedureDecl parses a whole procedure. Its frame is popped (and retained)
// whether or not the body parses.
func (p *Parser) procedureDecl(global bool) error {
	depth := p.scopes.Depth()
	defer func() {
		p.popped = append(p.popped, p.scopes.Unwind(depth)...)
	}()

	sig, err := p.procedureHeader(global)
	if err != nil {
		return err
	}
	defer p.be.EndProcedure()
	return p.procedureBody(sig)
}

// procedureHeader opens the procedure's frame, declares the procedure in it
// and in the enclosing scope, and declares the parameters. On success the
// backend has an open procedure body.
func (p *Parser) procedureHeader(global bool) (*types.Procedure, error) {
	if _, err := p.expect(lexer.ProcedureKW); err != nil {
		return nil, err
	}
	id, err := p.expect(lexer.Identifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Colon); err != nil {
		return nil, err
	}
	ret, err := p.typeMark()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}

	p.scopes.Push(id.Text)

	var params []param
	if p.at(lexer.VariableKW) {
		if params, err = p.parameterList(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}

	sig := &types.Procedure{Return: ret}
	for _, prm := range params {
		sig.Params = append(sig.Params, prm.typ)
	}
	sym := &symtab.Symbol{
		Name:  id.Text,
		Type:  sig,
		Value: p.be.BeginProcedure(id.Text, sig),
		Line:  id.Line,
	}

	// Visible inside its own body for recursion, and to its siblings.
	p.scopes.Add(symtab.ScopeLocal, sym)
	if global {
		p.scopes.Add(symtab.ScopeGlobal, sym)
	} else {
		f := p.scopes.Pop()
		p.scopes.Add(symtab.ScopeLocal, sym)
		p.scopes.PushFrame(f)
	}

	for i, prm := range params {
		addr := p.allocate(prm.id, prm.typ, false)
		p.be.Emit(backend.OpStore, addr, p.be.Param(i))
		p.scopes.Add(symtab.ScopeLocal, &symtab.Symbol{Name: prm.id.Text, Type: prm.typ, Value: addr, Line: prm.id.Line})
	}
	return sig, nil
}

func (p *Parser) parameterList() ([]param, error) {
	var params []param
	for {
		id, t, err := p.variable()
		if err != nil {
			return nil, err
		}
		params = append(params, param{id: id, typ: t})
		if !p.accept(lexer.Comma) {
			return params, nil
		}
	}
}

func (p *Parser) procedureBody(sig *types.Procedure) error {
	outer := p.ret
	p.ret = sig.Return
	defer func() { p.ret = outer }()

	p.declarations()
	if _, err := p.expect(lexer.BeginKW); err != nil {
		return err
	}
	p.statements(lexer.EndKW)
	if _, err := p.expect(lexer.EndKW); err != nil {
		return err
	}
	_, err := p.expect(lexer.ProcedureKW)
	return err
}
