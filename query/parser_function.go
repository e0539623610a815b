package query

import (
	"fmt"
	"strings"
)

var aggregateFunctions = map[string]bool{
	"COUNT": true,
	"SUM":   true,
	"AVG":   true,
	"MIN":   true,
	"MAX":   true,
}

var windowFunctions = map[string]bool{
	"ROW_NUMBER":  true,
	"RANK":        true,
	"DENSE_RANK":  true,
	"LAG":         true,
	"LEAD":        true,
	"NTILE":       true,
	"FIRST_VALUE": true,
	"LAST_VALUE":  true,
	"NTH_VALUE":   true,
}

// IsAggregateFunction reports whether name is an aggregate function
func IsAggregateFunction(name string) bool {
	return aggregateFunctions[strings.ToUpper(name)]
}

// IsWindowFunction reports whether name is a ranking or offset window function
func IsWindowFunction(name string) bool {
	return windowFunctions[strings.ToUpper(name)]
}

// parseFunctionCall parses name(args) and dispatches to the aggregate,
// window or scalar form.
func (p *Parser) parseFunctionCall() (SelectExpression, error) {
	funcName := strings.ToUpper(p.current().Value)
	p.advance() // skip function name

	if err := p.expect(TokenLeftParen); err != nil {
		return nil, fmt.Errorf("expected '(' after function name: %w", err)
	}

	if IsAggregateFunction(funcName) {
		return p.parseAggregateArgs(funcName)
	}

	if (funcName == "CAST" || funcName == "TRY_CAST") && p.current().Type != TokenRightParen {
		return p.parseCastArgs(funcName)
	}

	args, err := p.parseArgumentList()
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", funcName, err)
	}

	if IsWindowFunction(funcName) {
		if p.current().Type != TokenOver {
			return nil, fmt.Errorf("window function %s requires OVER clause", funcName)
		}
		p.advance()
		spec, err := p.parseWindowSpec()
		if err != nil {
			return nil, fmt.Errorf("failed to parse window specification: %w", err)
		}
		return &WindowExpr{Function: funcName, Args: args, Window: spec}, nil
	}

	return &FunctionCall{Name: funcName, Args: args}, nil
}

// parseArgumentList parses comma-separated values up to and including ")"
func (p *Parser) parseArgumentList() ([]SelectExpression, error) {
	var args []SelectExpression
	if p.current().Type == TokenRightParen {
		p.advance()
		return args, nil
	}

	for {
		arg, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}

	if err := p.expect(TokenRightParen); err != nil {
		return nil, fmt.Errorf("expected ')' after arguments: %w", err)
	}
	return args, nil
}

// parseCastArgs parses (value AS type) and also accepts the two-argument
// call form (value, 'type').
func (p *Parser) parseCastArgs(funcName string) (SelectExpression, error) {
	value, err := p.parseValue()
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", funcName, err)
	}

	var target SelectExpression
	switch p.current().Type {
	case TokenAs:
		p.advance()
		if p.current().Type != TokenIdent {
			return nil, fmt.Errorf("function %s: expected type name after AS", funcName)
		}
		target = &LiteralExpr{Value: strings.ToUpper(p.current().Value)}
		p.advance()
	case TokenComma:
		p.advance()
		if target, err = p.parseValue(); err != nil {
			return nil, fmt.Errorf("function %s: %w", funcName, err)
		}
	default:
		return nil, fmt.Errorf("function %s: expected AS", funcName)
	}

	if err := p.expect(TokenRightParen); err != nil {
		return nil, fmt.Errorf("expected ')' after %s arguments: %w", funcName, err)
	}
	return &FunctionCall{Name: funcName, Args: []SelectExpression{value, target}}, nil
}

// parseAggregateArgs parses ([DISTINCT] expr | *) for an aggregate
func (p *Parser) parseAggregateArgs(funcName string) (SelectExpression, error) {
	agg := &AggregateExpr{Function: funcName}

	if p.current().Type == TokenDistinct {
		agg.Distinct = true
		p.advance()
	}

	if p.current().Type == TokenStar {
		if funcName != "COUNT" || agg.Distinct {
			return nil, fmt.Errorf("%s(*) is not supported", funcName)
		}
		p.advance()
	} else {
		arg, err := p.parseValue()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s argument: %w", funcName, err)
		}
		agg.Arg = arg
	}

	if err := p.expect(TokenRightParen); err != nil {
		return nil, fmt.Errorf("expected ')' after %s argument: %w", funcName, err)
	}

	if p.current().Type == TokenOver {
		return nil, fmt.Errorf("aggregate %s cannot be used as a window function", funcName)
	}
	return agg, nil
}

// parseWindowSpec parses ( [PARTITION BY cols] [ORDER BY items] )
func (p *Parser) parseWindowSpec() (*WindowSpec, error) {
	if err := p.expect(TokenLeftParen); err != nil {
		return nil, fmt.Errorf("expected '(' after OVER: %w", err)
	}

	spec := &WindowSpec{}

	if p.current().Type == TokenPartition {
		p.advance()
		if err := p.expect(TokenBy); err != nil {
			return nil, fmt.Errorf("expected BY after PARTITION: %w", err)
		}
		for {
			if p.current().Type != TokenIdent {
				return nil, fmt.Errorf("expected column name in PARTITION BY")
			}
			spec.PartitionBy = append(spec.PartitionBy, p.current().Value)
			p.advance()

			if p.current().Type != TokenComma {
				break
			}
			p.advance()
		}
	}

	if p.current().Type == TokenOrder {
		p.advance()
		if err := p.expect(TokenBy); err != nil {
			return nil, fmt.Errorf("expected BY after ORDER: %w", err)
		}
		orderBy, err := p.parseOrderByList()
		if err != nil {
			return nil, fmt.Errorf("failed to parse ORDER BY in window: %w", err)
		}
		spec.OrderBy = orderBy
	}

	if err := p.expect(TokenRightParen); err != nil {
		return nil, fmt.Errorf("expected ')' after window specification: %w", err)
	}

	return spec, nil
}
