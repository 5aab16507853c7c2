package formula

// Грамматика:
//
//	expr    := term (('+'|'-') term)*
//	term    := unary (('*'|'/'|'%') unary)*
//	unary   := ('+'|'-') operand | power
//	operand := ('+'|'-') operand | postfix
//	power   := postfix ('**' unary)?
//
// Унарный минус слева от '**' без скобок (-2 ** 2) - ошибка компиляции.
//	postfix := primary ('.' ident)*
//	primary := number | ident | '(' expr ')'
type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, errorf(t.pos, "expected %s, got %s", kind, describe(t))
	}
	return t, nil
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokPlus && t.kind != tokMinus {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: t.kind, left: left, right: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokStar && t.kind != tokSlash && t.kind != tokPercent {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: t.kind, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	t := p.peek()
	if t.kind != tokPlus && t.kind != tokMinus {
		return p.parsePower()
	}
	n, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if op := p.peek(); op.kind == tokPow {
		return nil, errorf(op.pos, "unary operator before '**' needs parentheses")
	}
	return n, nil
}

func (p *parser) parseOperand() (node, error) {
	t := p.peek()
	if t.kind != tokPlus && t.kind != tokMinus {
		return p.parsePostfix()
	}
	p.next()
	operand, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &unaryNode{op: t.kind, operand: operand}, nil
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokPow {
		return base, nil
	}
	p.next()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: tokPow, left: base, right: exp}, nil
}

func (p *parser) parsePostfix() (node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokDot {
		dot := p.next()
		name, err := p.expect(tokIdent)
		if err != nil {
			return nil, errorf(dot.pos, "expected field name after '.'")
		}
		n = &memberNode{object: n, field: name.text, pos: name.pos}
	}
	return n, nil
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return &numberNode{v: t.num}, nil
	case tokIdent:
		if !isBinding(t.text) {
			return nil, errorf(t.pos, "%s is not defined", t.text)
		}
		return &identNode{name: t.text}, nil
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, errorf(t.pos, "unexpected %s", describe(t))
}

func describe(t token) string {
	if t.kind == tokEOF {
		return t.kind.String()
	}
	return "'" + t.text + "'"
}
