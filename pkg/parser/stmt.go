package parser

import (
	"fmt"

	"imlang/pkg/backend"
	"imlang/pkg/lexer"
	"imlang/pkg/types"
)

func (p *Parser) statement() error {
	tok, ok := p.peek()
	if !ok {
		return p.unexpectedEnd()
	}
	switch tok.Category {
	case lexer.Identifier:
		return p.assignment()
	case lexer.IfKW:
		return p.ifStatement()
	case lexer.ForKW:
		return p.loopStatement()
	case lexer.ReturnKW:
		return p.returnStatement()
	}
	return unexpected(tok, "(<identifier>|if|for|return)")
}

func (p *Parser) assignment() error {
	dest, err := p.destination()
	if err != nil {
		return err
	}
	assign, err := p.expect(lexer.Assign)
	if err != nil {
		return err
	}
	if !dest.Value.IsAddr() {
		return &GenericError{Line: dest.Line(), Msg: fmt.Sprintf("cannot assign to %s %q", dest.Type, dest.Token.Text)}
	}
	val, err := p.expression()
	if err != nil {
		return err
	}
	if !types.Compatible(dest.Type, val.Type) {
		return invalidType(assign.Line, val.Type, dest.Type)
	}
	v, err := p.coerce(val, dest.Type, assign.Line)
	if err != nil {
		return err
	}
	p.be.Emit(backend.OpStore, dest.Value, v)
	return nil
}

// destination resolves the target of an assignment to its storage address.
func (p *Parser) destination() (TokenEntry, error) {
	id, err := p.expect(lexer.Identifier)
	if err != nil {
		return TokenEntry{}, err
	}
	sym, ok := p.scopes.Lookup(id.Text)
	if !ok {
		return TokenEntry{}, &SymbolNotFoundError{Name: id.Text, Line: id.Line}
	}
	dest := TokenEntry{Token: id, Type: sym.Type, Value: sym.Value}
	if p.accept(lexer.LBracket) {
		return p.element(dest)
	}
	return dest, nil
}

// element parses the index expression after "[" and returns the address and
// type of the selected element of base.
func (p *Parser) element(base TokenEntry) (TokenEntry, error) {
	arr, ok := base.Type.(*types.Array)
	if !ok {
		return TokenEntry{}, invalidType(base.Line(), base.Type, &types.Array{Elem: types.None})
	}
	idx, err := p.expression()
	if err != nil {
		return TokenEntry{}, err
	}
	if !types.Compatible(types.Integer, idx.Type) {
		return TokenEntry{}, invalidType(idx.Line(), idx.Type, types.Integer)
	}
	iv, err := p.coerce(idx, types.Integer, idx.Line())
	if err != nil {
		return TokenEntry{}, err
	}
	if _, err := p.expect(lexer.RBracket); err != nil {
		return TokenEntry{}, err
	}
	addr := p.be.Emit(backend.OpIndex, base.Value, iv)
	return TokenEntry{Token: base.Token, Type: arr.Elem, Value: addr}, nil
}

// condition checks that cond can steer a branch. A mismatch is reported but
// does not stop the enclosing statement from parsing.
func (p *Parser) condition(cond TokenEntry, line int) backend.Value {
	if !types.Compatible(types.Bool, cond.Type) {
		p.report(invalidType(line, cond.Type, types.Bool))
		return cond.Value
	}
	v, err := p.coerce(cond, types.Bool, line)
	if err != nil {
		p.report(err)
		return cond.Value
	}
	return v
}

func (p *Parser) ifStatement() error {
	if _, err := p.expect(lexer.IfKW); err != nil {
		return err
	}
	if _, err := p.expect(lexer.LParen); err != nil {
		return err
	}
	cond, err := p.expression()
	if err != nil {
		return err
	}
	rp, err := p.expect(lexer.RParen)
	if err != nil {
		return err
	}
	cv := p.condition(cond, rp.Line)
	if _, err := p.expect(lexer.ThenKW); err != nil {
		return err
	}

	then, els, done := p.be.NewLabel("if.then"), p.be.NewLabel("if.else"), p.be.NewLabel("if.end")
	p.be.Emit(backend.OpBranch, cv, then, els)
	p.be.PlaceLabel(then)
	p.statements(lexer.ElseKW, lexer.EndKW)
	p.be.Emit(backend.OpJump, done)
	p.be.PlaceLabel(els)
	if p.accept(lexer.ElseKW) {
		p.statements(lexer.EndKW)
	}
	p.be.PlaceLabel(done)

	if _, err := p.expect(lexer.EndKW); err != nil {
		return err
	}
	_, err = p.expect(lexer.IfKW)
	return err
}

func (p *Parser) loopStatement() error {
	if _, err := p.expect(lexer.ForKW); err != nil {
		return err
	}
	if _, err := p.expect(lexer.LParen); err != nil {
		return err
	}
	if err := p.assignment(); err != nil {
		return err
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return err
	}

	head, body, done := p.be.NewLabel("for.cond"), p.be.NewLabel("for.body"), p.be.NewLabel("for.end")
	p.be.PlaceLabel(head)
	cond, err := p.expression()
	if err != nil {
		return err
	}
	rp, err := p.expect(lexer.RParen)
	if err != nil {
		return err
	}
	cv := p.condition(cond, rp.Line)

	p.be.Emit(backend.OpBranch, cv, body, done)
	p.be.PlaceLabel(body)
	p.statements(lexer.EndKW)
	p.be.Emit(backend.OpJump, head)
	p.be.PlaceLabel(done)

	if _, err := p.expect(lexer.EndKW); err != nil {
		return err
	}
	_, err = p.expect(lexer.ForKW)
	return err
}

func (p *Parser) returnStatement() error {
	kw, err := p.expect(lexer.ReturnKW)
	if err != nil {
		return err
	}
	val, err := p.expression()
	if err != nil {
		return err
	}
	if !types.Compatible(p.ret, val.Type) {
		return invalidType(kw.Line, val.Type, p.ret)
	}
	v, err := p.coerce(val, p.ret, kw.Line)
	if err != nil {
		return err
	}
	p.be.Emit(backend.OpReturn, v)
	return nil
}
