package parser

import (
	"errors"
	"strings"

	"imlang/pkg/backend"
	"imlang/pkg/lexer"
	"imlang/pkg/types"
)

// coerce converts e's value to type to. An impossible conversion is an
// invalid type at line.
func (p *Parser) coerce(e TokenEntry, to types.Type, line int) (backend.Value, error) {
	v, err := backend.Coerce(p.be, e.Type, to, e.Value)
	var ce *types.CoercionError
	if errors.As(err, &ce) {
		return v, invalidType(line, e.Type, to)
	}
	return v, err
}

// fold combines left and right under op, coercing both operands to result
// first. The folded entry takes the line of right.
func (p *Parser) fold(op backend.Opcode, left, right TokenEntry, operand, result types.Type) (TokenEntry, error) {
	lv, err := p.coerce(left, operand, right.Line())
	if err != nil {
		return TokenEntry{}, err
	}
	rv, err := p.coerce(right, operand, right.Line())
	if err != nil {
		return TokenEntry{}, err
	}
	tok := left.Token
	tok.Line = right.Token.Line
	return TokenEntry{Token: tok, Type: result, Value: p.be.Emit(op, lv, rv)}, nil
}

var numeric = []types.Type{types.Integer, types.Float}

// expression = "not"? arith_op (("&" | "|") arith_op)*
func (p *Parser) expression() (TokenEntry, error) {
	negate := p.accept(lexer.NotKW)
	left, err := p.arithOp()
	if err != nil {
		return left, err
	}
	if negate {
		k := left.Type.Kind()
		if k != types.KindInteger && k != types.KindBool {
			return left, invalidType(left.Line(), left.Type, types.Integer, types.Bool)
		}
		left.Value = p.be.Emit(backend.OpNot, left.Value)
	}

	for {
		tok, ok := p.peek()
		if !ok || (tok.Category != lexer.Ampersand && tok.Category != lexer.Pipe) {
			return left, nil
		}
		p.advance()
		right, err := p.arithOp()
		if err != nil {
			return right, err
		}
		if right.Type.Kind() != left.Type.Kind() {
			return right, invalidType(right.Line(), right.Type, left.Type)
		}
		if k := right.Type.Kind(); k != types.KindBool && k != types.KindInteger {
			return right, invalidType(right.Line(), right.Type, types.Bool, types.Integer)
		}
		op := backend.OpAnd
		if tok.Category == lexer.Pipe {
			op = backend.OpOr
		}
		if left, err = p.fold(op, left, right, left.Type, left.Type); err != nil {
			return left, err
		}
	}
}

// arith_op = relation (("+" | "-") relation)*
func (p *Parser) arithOp() (TokenEntry, error) {
	left, err := p.relation()
	if err != nil {
		return left, err
	}
	for {
		tok, ok := p.peek()
		if !ok || (tok.Category != lexer.Plus && tok.Category != lexer.Dash) {
			return left, nil
		}
		p.advance()
		right, err := p.relation()
		if err != nil {
			return right, err
		}
		op := backend.OpAdd
		if tok.Category == lexer.Dash {
			op = backend.OpSub
		}
		if left, err = p.arithmetic(op, left, right); err != nil {
			return left, err
		}
	}
}

// arithmetic checks and folds a numeric operator. The result is Float when
// either side is.
func (p *Parser) arithmetic(op backend.Opcode, left, right TokenEntry) (TokenEntry, error) {
	if !types.IsNumeric(left.Type) {
		return left, invalidType(left.Line(), left.Type, numeric...)
	}
	if !types.IsNumeric(right.Type) {
		return right, invalidType(right.Line(), right.Type, numeric...)
	}
	t := types.Join(left.Type, right.Type)
	return p.fold(op, left, right, t, t)
}

var relationOps = map[lexer.Category]backend.Opcode{
	lexer.Less:      backend.OpLess,
	lexer.LessEq:    backend.OpLessEq,
	lexer.Greater:   backend.OpGreater,
	lexer.GreaterEq: backend.OpGreaterEq,
	lexer.Equal:     backend.OpEqual,
	lexer.NotEqual:  backend.OpNotEqual,
}

// relation = term (("<" | "<=" | ">" | ">=" | "==" | "!=") term)*
func (p *Parser) relation() (TokenEntry, error) {
	left, err := p.term()
	if err != nil {
		return left, err
	}
	for {
		tok, ok := p.peek()
		op, isRel := relationOps[tok.Category]
		if !ok || !isRel {
			return left, nil
		}
		p.advance()
		right, err := p.term()
		if err != nil {
			return right, err
		}

		equality := op == backend.OpEqual || op == backend.OpNotEqual
		switch {
		case types.Compatible(types.Integer, left.Type):
		case equality && types.Compatible(types.String, left.Type):
		case equality:
			return left, invalidType(left.Line(), left.Type, types.Integer, types.Float, types.Bool, types.String)
		default:
			return left, invalidType(left.Line(), left.Type, types.Integer, types.Float, types.Bool)
		}
		if !types.Compatible(left.Type, right.Type) {
			return right, invalidType(right.Line(), right.Type, left.Type)
		}
		if left, err = p.fold(op, left, right, types.Widen(left.Type, right.Type), types.Bool); err != nil {
			return left, err
		}
	}
}

// term = factor (("*" | "/") factor)*
func (p *Parser) term() (TokenEntry, error) {
	left, err := p.factor()
	if err != nil {
		return left, err
	}
	for {
		tok, ok := p.peek()
		if !ok || (tok.Category != lexer.Asterisk && tok.Category != lexer.Slash) {
			return left, nil
		}
		p.advance()
		right, err := p.factor()
		if err != nil {
			return right, err
		}
		op := backend.OpMul
		if tok.Category == lexer.Slash {
			op = backend.OpDiv
		}
		if left, err = p.arithmetic(op, left, right); err != nil {
			return left, err
		}
	}
}

func (p *Parser) factor() (TokenEntry, error) {
	tok, ok := p.peek()
	if !ok {
		return TokenEntry{}, p.unexpectedEnd()
	}
	switch tok.Category {
	case lexer.LParen:
		p.advance()
		e, err := p.expression()
		if err != nil {
			return e, err
		}
		if _, err := p.expect(lexer.RParen); err != nil {
			return e, err
		}
		return e, nil
	case lexer.Identifier:
		p.advance()
		if p.at(lexer.LParen) {
			return p.call(tok)
		}
		return p.name(tok)
	case lexer.Dash:
		return p.negative()
	case lexer.Number:
		return p.number()
	case lexer.String:
		return p.literal(types.String)
	case lexer.TrueKW, lexer.FalseKW:
		return p.literal(types.Bool)
	}
	return TokenEntry{}, unexpected(tok, "('('|<identifier>|'-'|<number>|<string>|true|false)")
}

func (p *Parser) literal(t types.Type) (TokenEntry, error) {
	tok, _ := p.advance()
	v, err := p.be.Const(t, tok.Text)
	if err != nil {
		return TokenEntry{}, &GenericError{Line: tok.Line, Msg: err.Error()}
	}
	return TokenEntry{Token: tok, Type: t, Value: v}, nil
}

func (p *Parser) number() (TokenEntry, error) {
	tok, _ := p.peek()
	if strings.Contains(tok.Text, ".") {
		return p.literal(types.Float)
	}
	return p.literal(types.Integer)
}

// negative parses "-" (name | NUMBER).
func (p *Parser) negative() (TokenEntry, error) {
	p.advance()
	tok, ok := p.peek()
	if !ok {
		return TokenEntry{}, p.unexpectedEnd()
	}
	var e TokenEntry
	var err error
	switch tok.Category {
	case lexer.Identifier:
		p.advance()
		e, err = p.name(tok)
	case lexer.Number:
		e, err = p.number()
	default:
		return TokenEntry{}, unexpected(tok, "(<identifier>|<number>)")
	}
	if err != nil {
		return e, err
	}
	if !types.IsNumeric(e.Type) {
		return e, invalidType(e.Line(), e.Type, numeric...)
	}
	e.Value = p.be.Emit(backend.OpNeg, e.Value)
	return e, nil
}

// name resolves an identifier that has already been consumed, with an
// optional index, and loads its value.
func (p *Parser) name(id lexer.Token) (TokenEntry, error) {
	sym, ok := p.scopes.Lookup(id.Text)
	if !ok {
		return TokenEntry{}, &SymbolNotFoundError{Name: id.Text, Line: id.Line}
	}
	e := TokenEntry{Token: id, Type: sym.Type, Value: sym.Value}
	if p.accept(lexer.LBracket) {
		var err error
		if e, err = p.element(e); err != nil {
			return e, err
		}
	}
	if e.Value.IsAddr() {
		e.Value = p.be.Emit(backend.OpLoad, e.Value)
	}
	return e, nil
}

// call parses the argument list of a call to id. Arguments are checked and
// converted against the declared parameter types in order.
func (p *Parser) call(id lexer.Token) (TokenEntry, error) {
	if _, err := p.expect(lexer.LParen); err != nil {
		return TokenEntry{}, err
	}
	sym, ok := p.scopes.Lookup(id.Text)
	if !ok {
		return TokenEntry{}, &SymbolNotFoundError{Name: id.Text, Line: id.Line}
	}
	sig, ok := sym.Type.(*types.Procedure)
	if !ok {
		return TokenEntry{}, invalidType(id.Line, sym.Type, &types.Procedure{Return: types.None})
	}

	args := []backend.Value{sym.Value}
	if !p.at(lexer.RParen) {
		for i := 0; ; i++ {
			if i >= len(sig.Params) {
				tok, _ := p.peek()
				return TokenEntry{}, &GenericError{Line: tok.Line, Msg: "too many arguments"}
			}
			want := sig.Params[i]
			arg, err := p.expression()
			if err != nil {
				return arg, err
			}
			if !types.Compatible(want, arg.Type) {
				return arg, invalidType(arg.Line(), arg.Type, want)
			}
			v, err := p.coerce(arg, want, arg.Line())
			if err != nil {
				return arg, err
			}
			args = append(args, v)
			if !p.accept(lexer.Comma) {
				break
			}
		}
	}
	rp, err := p.expect(lexer.RParen)
	if err != nil {
		return TokenEntry{}, err
	}
	if len(args)-1 < len(sig.Params) {
		return TokenEntry{}, &GenericError{Line: rp.Line, Msg: "expected more arguments"}
	}
	return TokenEntry{Token: id, Type: sig.Return, Value: p.be.Emit(backend.OpCall, args...)}, nil
}
