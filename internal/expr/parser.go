package expr

// Grammar, lowest precedence first:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("+" | "-") unary | power
//	power   = primary [ ("^" | "**") unary ]
//	primary = number | ident | ident "(" [ expr { "," expr } ] ")" | "(" expr ")"
type parser struct {
	lex *lexer
	tok token
}

// Parse parses src into an expression tree.
func Parse(src string) (Node, error) {
	p := &parser{lex: &lexer{src: src}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind == tokEOF {
		return nil, p.lex.errorf(0, "empty expression")
	}

	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.lex.errorf(p.tok.pos, "unexpected "+describe(p.tok))
	}
	return n, nil
}

func describe(t token) string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return "\"" + t.text + "\""
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) isOp(ops ...string) bool {
	if p.tok.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if p.tok.text == op {
			return true
		}
	}
	return false
}

func (p *parser) expr() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.isOp("+", "-") {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*", "/") {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *parser) unary() (Node, error) {
	if p.isOp("+", "-") {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op == "+" {
			return x, nil
		}
		return &Unary{Op: op, X: x}, nil
	}
	return p.power()
}

func (p *parser) power() (Node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if !p.isOp("^") {
		return base, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &Binary{Op: "^", L: base, R: exp}, nil
}

func (p *parser) primary() (Node, error) {
	t := p.tok
	switch t.kind {
	case tokNum:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Num{Value: t.num}, nil

	case tokIdent:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokLParen {
			return &Ident{Name: t.text}, nil
		}
		args, err := p.args()
		if err != nil {
			return nil, err
		}
		return &Call{Fn: t.text, Args: args}, nil

	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.lex.errorf(p.tok.pos, "expected \")\", got "+describe(p.tok))
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return n, nil
	}

	return nil, p.lex.errorf(t.pos, "unexpected "+describe(t))
}

// args parses a parenthesised argument list; the current token is "(".
func (p *parser) args() ([]Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var args []Node
	if p.tok.kind == tokRParen {
		return args, p.advance()
	}
	for {
		a, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)

		switch p.tok.kind {
		case tokComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case tokRParen:
			return args, p.advance()
		default:
			return nil, p.lex.errorf(p.tok.pos, "expected \",\" or \")\", got "+describe(p.tok))
		}
	}
}
