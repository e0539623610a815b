package query

import (
	"fmt"
	"strconv"
	"strings"
)

// parseOr parses OR expressions (lowest precedence)
func (p *Parser) parseOr() (Expression, error) {
	if err := p.depth.enter(); err != nil {
		return nil, err
	}
	defer p.depth.exit()

	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: TokenOr, Right: right}
	}

	return left, nil
}

// parseAnd parses AND expressions (higher precedence than OR)
func (p *Parser) parseAnd() (Expression, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: TokenAnd, Right: right}
	}

	return left, nil
}

// parseNot parses NOT prefixes
func (p *Parser) parseNot() (Expression, error) {
	if p.current().Type == TokenNot && p.peek().Type != TokenExists {
		p.advance()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Expr: inner}, nil
	}
	return p.parsePredicate()
}

// parsePredicate parses a single condition: EXISTS, a parenthesized
// condition, or a value followed by a comparison, IN, LIKE, BETWEEN or IS.
func (p *Parser) parsePredicate() (Expression, error) {
	if p.current().Type == TokenExists || (p.current().Type == TokenNot && p.peek().Type == TokenExists) {
		return p.parseExistsExpr()
	}

	// "(" may open a nested condition or a value such as (price * 2). Try
	// the condition first and fall back to a value.
	if p.current().Type == TokenLeftParen && p.peek().Type != TokenSelect && p.peek().Type != TokenWith {
		start := p.pos
		p.advance()
		if cond, err := p.parseOr(); err == nil && p.current().Type == TokenRightParen {
			p.advance()
			if !isValueContinuation(p.current().Type) {
				return cond, nil
			}
		}
		p.pos = start
	}

	left, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	negate := false
	if p.current().Type == TokenNot {
		switch p.peek().Type {
		case TokenIn, TokenLike, TokenBetween:
			negate = true
			p.advance()
		}
	}

	switch p.current().Type {
	case TokenEqual, TokenNotEqual, TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual:
		op := p.current().Type
		p.advance()
		right, err := p.parseValue()
		if err != nil {
			return nil, fmt.Errorf("failed to parse right side of %v: %w", op, err)
		}
		return &ComparisonExpr{Left: left, Operator: op, Right: right}, nil
	case TokenIn:
		return p.parseInExpr(left, negate)
	case TokenLike:
		p.advance()
		if p.current().Type != TokenString {
			return nil, fmt.Errorf("expected string pattern after LIKE")
		}
		pattern := p.current().Value
		p.advance()
		return &LikeExpr{Expr: left, Pattern: pattern, Negate: negate}, nil
	case TokenBetween:
		p.advance()
		lower, err := p.parseValue()
		if err != nil {
			return nil, fmt.Errorf("failed to parse BETWEEN lower bound: %w", err)
		}
		if err := p.expect(TokenAnd); err != nil {
			return nil, fmt.Errorf("expected AND in BETWEEN: %w", err)
		}
		upper, err := p.parseValue()
		if err != nil {
			return nil, fmt.Errorf("failed to parse BETWEEN upper bound: %w", err)
		}
		return &BetweenExpr{Expr: left, Lower: lower, Upper: upper, Negate: negate}, nil
	case TokenIs:
		p.advance()
		isNot := false
		if p.current().Type == TokenNot {
			isNot = true
			p.advance()
		}
		if err := p.expect(TokenNull); err != nil {
			return nil, fmt.Errorf("expected NULL after IS: %w", err)
		}
		return &IsNullExpr{Expr: left, Negate: isNot}, nil
	}

	return &TruthExpr{Expr: left}, nil
}

// isValueContinuation reports whether a token after ")" means the
// parenthesized part was a value operand rather than a whole condition.
func isValueContinuation(t TokenType) bool {
	switch t {
	case TokenPlus, TokenMinus, TokenStar, TokenSlash,
		TokenEqual, TokenNotEqual, TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual,
		TokenIn, TokenLike, TokenBetween, TokenIs:
		return true
	}
	return false
}

// parseInExpr parses IN (v1, v2, ...) or IN (subquery)
func (p *Parser) parseInExpr(left SelectExpression, negate bool) (Expression, error) {
	p.advance() // consume IN
	if err := p.expect(TokenLeftParen); err != nil {
		return nil, fmt.Errorf("expected ( after IN: %w", err)
	}

	if p.current().Type == TokenSelect || p.current().Type == TokenWith {
		sub, err := p.parseQuery()
		if err != nil {
			return nil, fmt.Errorf("failed to parse IN subquery: %w", err)
		}
		if err := p.expect(TokenRightParen); err != nil {
			return nil, fmt.Errorf("expected ) after IN subquery: %w", err)
		}
		return &InSubqueryExpr{Expr: left, Subquery: sub, Negate: negate}, nil
	}

	var values []SelectExpression
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, fmt.Errorf("failed to parse IN list: %w", err)
		}
		values = append(values, v)
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	if err := p.expect(TokenRightParen); err != nil {
		return nil, fmt.Errorf("expected ) after IN list: %w", err)
	}
	return &InExpr{Expr: left, Values: values, Negate: negate}, nil
}

// parseExistsExpr parses [NOT] EXISTS (subquery)
func (p *Parser) parseExistsExpr() (Expression, error) {
	negate := false
	if p.current().Type == TokenNot {
		negate = true
		p.advance()
	}
	p.advance() // consume EXISTS

	if err := p.expect(TokenLeftParen); err != nil {
		return nil, fmt.Errorf("expected ( after EXISTS: %w", err)
	}
	sub, err := p.parseQuery()
	if err != nil {
		return nil, fmt.Errorf("failed to parse EXISTS subquery: %w", err)
	}
	if err := p.expect(TokenRightParen); err != nil {
		return nil, fmt.Errorf("expected ) after EXISTS subquery: %w", err)
	}
	return &ExistsExpr{Subquery: sub, Negate: negate}, nil
}

// parseValue parses an additive expression (lowest value precedence)
func (p *Parser) parseValue() (SelectExpression, error) {
	if err := p.depth.enter(); err != nil {
		return nil, err
	}
	defer p.depth.exit()

	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenPlus || p.current().Type == TokenMinus {
		op := p.current().Type
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &ArithmeticExpr{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

// parseTerm parses * and /
func (p *Parser) parseTerm() (SelectExpression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenStar || p.current().Type == TokenSlash {
		op := p.current().Type
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ArithmeticExpr{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

// parseUnary parses a leading sign
func (p *Parser) parseUnary() (SelectExpression, error) {
	switch p.current().Type {
	case TokenPlus:
		p.advance()
		return p.parseUnary()
	case TokenMinus:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if lit, ok := operand.(*LiteralExpr); ok {
			switch v := lit.Value.(type) {
			case int64:
				return &LiteralExpr{Value: -v}, nil
			case float64:
				return &LiteralExpr{Value: -v}, nil
			}
		}
		return &ArithmeticExpr{Left: &LiteralExpr{Value: int64(0)}, Operator: TokenMinus, Right: operand}, nil
	}
	return p.parsePrimary()
}

// parsePrimary parses literals, column references, function calls, CASE,
// scalar subqueries and parenthesized values.
func (p *Parser) parsePrimary() (SelectExpression, error) {
	tok := p.current()

	switch tok.Type {
	case TokenNumber:
		p.advance()
		return parseNumberLiteral(tok.Value)
	case TokenString:
		p.advance()
		return &LiteralExpr{Value: tok.Value}, nil
	case TokenBool:
		p.advance()
		return &LiteralExpr{Value: strings.EqualFold(tok.Value, "true")}, nil
	case TokenNull:
		p.advance()
		return &LiteralExpr{Value: nil}, nil
	case TokenCase:
		return p.parseCaseExpression()
	case TokenLeftParen:
		if p.peek().Type == TokenSelect || p.peek().Type == TokenWith {
			p.advance()
			sub, err := p.parseQuery()
			if err != nil {
				return nil, fmt.Errorf("failed to parse scalar subquery: %w", err)
			}
			if err := p.expect(TokenRightParen); err != nil {
				return nil, fmt.Errorf("expected ) after scalar subquery: %w", err)
			}
			return &ScalarSubqueryExpr{Query: sub}, nil
		}
		p.advance()
		inner, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRightParen); err != nil {
			return nil, fmt.Errorf("expected ) to close expression: %w", err)
		}
		return inner, nil
	case TokenIdent:
		if p.peek().Type == TokenLeftParen {
			return p.parseFunctionCall()
		}
		if err := ValidateColumnName(tok.Value); err != nil {
			return nil, err
		}
		p.advance()
		return &ColumnRef{Column: tok.Value}, nil
	case TokenEOF:
		return nil, fmt.Errorf("unexpected end of query, expected expression")
	}

	return nil, fmt.Errorf("unexpected token %q in expression", tok.Value)
}

func parseNumberLiteral(text string) (SelectExpression, error) {
	if strings.Contains(text, ".") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", text, err)
		}
		return &LiteralExpr{Value: f}, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", text, err)
	}
	return &LiteralExpr{Value: n}, nil
}

// parseCaseExpression parses CASE [operand] WHEN ... THEN ... [ELSE ...] END
func (p *Parser) parseCaseExpression() (SelectExpression, error) {
	p.advance() // consume CASE

	var operand SelectExpression
	if p.current().Type != TokenWhen {
		var err error
		operand, err = p.parseValue()
		if err != nil {
			return nil, fmt.Errorf("CASE: failed to parse operand: %w", err)
		}
	}

	caseExpr := &CaseExpr{}
	for p.current().Type == TokenWhen {
		p.advance()

		var cond Expression
		if operand != nil {
			v, err := p.parseValue()
			if err != nil {
				return nil, fmt.Errorf("CASE: failed to parse WHEN value: %w", err)
			}
			cond = &ComparisonExpr{Left: operand, Operator: TokenEqual, Right: v}
		} else {
			var err error
			cond, err = p.parseOr()
			if err != nil {
				return nil, fmt.Errorf("CASE: failed to parse WHEN condition: %w", err)
			}
		}

		if err := p.expect(TokenThen); err != nil {
			return nil, fmt.Errorf("CASE: expected THEN: %w", err)
		}
		result, err := p.parseValue()
		if err != nil {
			return nil, fmt.Errorf("CASE: failed to parse THEN result: %w", err)
		}
		caseExpr.WhenClauses = append(caseExpr.WhenClauses, WhenClause{Condition: cond, Result: result})
	}

	if len(caseExpr.WhenClauses) == 0 {
		return nil, fmt.Errorf("CASE requires at least one WHEN clause")
	}

	if p.current().Type == TokenElse {
		p.advance()
		elseExpr, err := p.parseValue()
		if err != nil {
			return nil, fmt.Errorf("CASE: failed to parse ELSE result: %w", err)
		}
		caseExpr.ElseExpr = elseExpr
	}

	if err := p.expect(TokenEnd); err != nil {
		return nil, fmt.Errorf("CASE: expected END: %w", err)
	}
	return caseExpr, nil
}
