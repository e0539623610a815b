package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser parses SQL queries into AST
type Parser struct {
	tokens []Token
	pos    int
	depth  depthGuard
}

// NewParser creates a new parser
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens: tokens,
		pos:    0,
	}
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF, Value: ""}
	}
	return p.tokens[p.pos]
}

// peek returns the next token without advancing
func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TokenEOF, Value: ""}
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token
func (p *Parser) advance() {
	p.pos++
}

// expect checks if current token matches expected type and advances
func (p *Parser) expect(tokType TokenType) error {
	if p.current().Type != tokType {
		return fmt.Errorf("expected %v, got %q", tokType, p.current().Value)
	}
	p.advance()
	return nil
}

// Parse parses a SQL query
func Parse(query string) (*Query, error) {
	if err := ValidateQuery(query); err != nil {
		return nil, err
	}

	tokens := Tokenize(query)
	if err := ValidateTokens(tokens); err != nil {
		return nil, err
	}
	if last := tokens[len(tokens)-1]; last.Type == TokenError {
		return nil, fmt.Errorf("invalid character in query: %s", last.Value)
	}

	parser := NewParser(tokens)
	q, err := parser.parseQuery()
	if err != nil {
		return nil, err
	}

	if parser.current().Type != TokenEOF {
		return nil, fmt.Errorf("unexpected trailing tokens after query: %s", parser.current().Value)
	}

	return q, nil
}

// parseQuery parses: [WITH cte AS (...)] SELECT ... FROM ... [JOIN ...] [WHERE ...]
// [GROUP BY ...] [HAVING ...] [ORDER BY ...] [LIMIT n] [OFFSET n]
func (p *Parser) parseQuery() (*Query, error) {
	var ctes []CTE
	if p.current().Type == TokenWith {
		var err error
		ctes, err = p.parseWithClause()
		if err != nil {
			return nil, err
		}
	}

	if err := p.expect(TokenSelect); err != nil {
		return nil, fmt.Errorf("query must start with SELECT (or WITH): %w", err)
	}

	distinct := false
	if p.current().Type == TokenDistinct {
		distinct = true
		p.advance()
	}

	selectList, err := p.parseSelectList()
	if err != nil {
		return nil, fmt.Errorf("failed to parse SELECT list: %w", err)
	}

	if err := p.expect(TokenFrom); err != nil {
		return nil, fmt.Errorf("expected FROM after SELECT list: %w", err)
	}

	q := &Query{
		CTEs:       ctes,
		SelectList: selectList,
		Distinct:   distinct,
	}

	q.TableName, q.Subquery, q.TableAlias, err = p.parseSource("FROM")
	if err != nil {
		return nil, err
	}

	for isJoinStart(p.current().Type) {
		join, err := p.parseJoin()
		if err != nil {
			return nil, fmt.Errorf("failed to parse JOIN: %w", err)
		}
		q.Joins = append(q.Joins, *join)
	}

	if p.current().Type == TokenWhere {
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, fmt.Errorf("failed to parse WHERE: %w", err)
		}
		q.Filter = expr
	}

	if p.current().Type == TokenGroup {
		groupBy, err := p.parseGroupBy()
		if err != nil {
			return nil, err
		}
		q.GroupBy = groupBy
	}

	if p.current().Type == TokenHaving {
		if len(q.GroupBy) == 0 {
			return nil, fmt.Errorf("HAVING clause requires GROUP BY")
		}
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, fmt.Errorf("failed to parse HAVING: %w", err)
		}
		q.Having = expr
	}

	if p.current().Type == TokenOrder {
		p.advance()
		if err := p.expect(TokenBy); err != nil {
			return nil, fmt.Errorf("expected BY after ORDER: %w", err)
		}
		orderBy, err := p.parseOrderByList()
		if err != nil {
			return nil, err
		}
		q.OrderBy = orderBy
	}

	if p.current().Type == TokenLimit {
		p.advance()
		limit, err := p.parseCount("LIMIT")
		if err != nil {
			return nil, err
		}
		q.Limit = limit
	}

	if p.current().Type == TokenOffset {
		p.advance()
		offset, err := p.parseCount("OFFSET")
		if err != nil {
			return nil, err
		}
		q.Offset = offset
	}

	return q, nil
}

func isJoinStart(t TokenType) bool {
	switch t {
	case TokenJoin, TokenInner, TokenLeft, TokenRight, TokenFull, TokenCross:
		return true
	}
	return false
}

// parseSource parses a table name or parenthesized subquery followed by an
// optional alias.
func (p *Parser) parseSource(clause string) (string, *Query, string, error) {
	var (
		tableName string
		subquery  *Query
	)

	if p.current().Type == TokenLeftParen {
		p.advance()
		sub, err := p.parseQuery()
		if err != nil {
			return "", nil, "", fmt.Errorf("failed to parse subquery in %s: %w", clause, err)
		}
		if err := p.expect(TokenRightParen); err != nil {
			return "", nil, "", fmt.Errorf("expected ) after subquery: %w", err)
		}
		subquery = sub
	} else {
		if p.current().Type != TokenIdent {
			return "", nil, "", fmt.Errorf("expected table name or subquery after %s", clause)
		}
		tableName = p.current().Value
		if err := ValidateTableName(tableName); err != nil {
			return "", nil, "", err
		}
		p.advance()
	}

	alias := ""
	if p.current().Type == TokenAs {
		p.advance()
		if p.current().Type != TokenIdent {
			return "", nil, "", fmt.Errorf("expected alias after AS")
		}
	}
	if p.current().Type == TokenIdent {
		alias = p.current().Value
		p.advance()
	}

	return tableName, subquery, alias, nil
}

// parseJoin parses a JOIN clause
func (p *Parser) parseJoin() (*Join, error) {
	join := &Join{}

	switch p.current().Type {
	case TokenCross:
		join.Type = JoinCross
		p.advance()
	case TokenInner:
		join.Type = JoinInner
		p.advance()
	case TokenLeft, TokenRight, TokenFull:
		join.Type = map[TokenType]JoinType{TokenLeft: JoinLeft, TokenRight: JoinRight, TokenFull: JoinFull}[p.current().Type]
		p.advance()
		if p.current().Type == TokenOuter {
			p.advance()
		}
	case TokenJoin:
		join.Type = JoinInner
	default:
		return nil, fmt.Errorf("expected JOIN keyword")
	}
	if err := p.expect(TokenJoin); err != nil {
		return nil, err
	}

	var err error
	join.TableName, join.Subquery, join.Alias, err = p.parseSource("JOIN")
	if err != nil {
		return nil, err
	}

	if join.Type != JoinCross {
		if err := p.expect(TokenOn); err != nil {
			return nil, fmt.Errorf("expected ON clause after JOIN table: %w", err)
		}
		condition, err := p.parseOr()
		if err != nil {
			return nil, fmt.Errorf("failed to parse JOIN condition: %w", err)
		}
		join.Condition = condition
	}

	return join, nil
}

// parseWithClause parses WITH name AS (query) [, name AS (query) ...]
func (p *Parser) parseWithClause() ([]CTE, error) {
	p.advance() // consume WITH

	var ctes []CTE
	seen := make(map[string]bool)
	for {
		if p.current().Type != TokenIdent {
			return nil, fmt.Errorf("expected CTE name after WITH")
		}
		name := p.current().Value
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("duplicate CTE name in same WITH clause: %s", name)
		}
		seen[key] = true
		p.advance()

		if err := p.expect(TokenAs); err != nil {
			return nil, fmt.Errorf("expected AS after CTE name %s: %w", name, err)
		}
		if err := p.expect(TokenLeftParen); err != nil {
			return nil, fmt.Errorf("expected ( after AS in CTE %s: %w", name, err)
		}
		cteQuery, err := p.parseQuery()
		if err != nil {
			return nil, fmt.Errorf("failed to parse CTE %s: %w", name, err)
		}
		if err := p.expect(TokenRightParen); err != nil {
			return nil, fmt.Errorf("expected ) to close CTE %s: %w", name, err)
		}
		ctes = append(ctes, CTE{Name: name, Query: cteQuery})

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	return ctes, nil
}

// parseSelectList parses the comma-separated SELECT items
func (p *Parser) parseSelectList() ([]SelectItem, error) {
	var items []SelectItem
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		if p.current().Type != TokenComma {
			return items, nil
		}
		p.advance()
	}
}

// parseSelectItem parses expr [[AS] alias] or *
func (p *Parser) parseSelectItem() (SelectItem, error) {
	if p.current().Type == TokenStar {
		p.advance()
		return SelectItem{Expr: &ColumnRef{Column: "*"}}, nil
	}

	expr, err := p.parseValue()
	if err != nil {
		return SelectItem{}, err
	}

	item := SelectItem{Expr: expr}
	sawAs := false
	if p.current().Type == TokenAs {
		sawAs = true
		p.advance()
		if p.current().Type != TokenIdent && p.current().Type != TokenString {
			return SelectItem{}, fmt.Errorf("expected alias after AS")
		}
	}
	if p.current().Type == TokenIdent || (sawAs && p.current().Type == TokenString) {
		item.Alias = p.current().Value
		if err := ValidateColumnName(item.Alias); err != nil {
			return SelectItem{}, err
		}
		p.advance()
	}
	return item, nil
}

// parseGroupBy parses GROUP BY col [, col ...]
func (p *Parser) parseGroupBy() ([]string, error) {
	p.advance() // consume GROUP
	if err := p.expect(TokenBy); err != nil {
		return nil, fmt.Errorf("expected BY after GROUP: %w", err)
	}

	var columns []string
	for {
		if p.current().Type != TokenIdent {
			return nil, fmt.Errorf("expected column name in GROUP BY, got %q", p.current().Value)
		}
		if err := ValidateColumnName(p.current().Value); err != nil {
			return nil, err
		}
		columns = append(columns, p.current().Value)
		p.advance()

		if p.current().Type != TokenComma {
			return columns, nil
		}
		p.advance()
	}
}

// parseOrderByList parses expr [ASC|DESC] [, ...]
func (p *Parser) parseOrderByList() ([]OrderByItem, error) {
	var items []OrderByItem
	for {
		expr, err := p.parseValue()
		if err != nil {
			return nil, fmt.Errorf("failed to parse ORDER BY item: %w", err)
		}
		item := OrderByItem{Expr: expr}
		switch p.current().Type {
		case TokenDesc:
			item.Desc = true
			p.advance()
		case TokenAsc:
			p.advance()
		}
		items = append(items, item)

		if p.current().Type != TokenComma {
			return items, nil
		}
		p.advance()
	}
}

// parseCount parses the non-negative integer argument of LIMIT or OFFSET
func (p *Parser) parseCount(clause string) (*int64, error) {
	if p.current().Type != TokenNumber {
		return nil, fmt.Errorf("expected number after %s", clause)
	}
	n, err := strconv.ParseInt(p.current().Value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", clause, p.current().Value, err)
	}
	if n < 0 {
		return nil, fmt.Errorf("%s must be non-negative", clause)
	}
	p.advance()
	return &n, nil
}
