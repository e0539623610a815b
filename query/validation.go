package query

import (
	"errors"
	"fmt"
	"unicode"
)

// Parser limits
const (
	// MaxQueryLength bounds the raw SQL text (1MB)
	MaxQueryLength = 1024 * 1024
	MaxTokens      = 4096
	// MaxExpressionDepth bounds nested parentheses, CASE and function calls
	MaxExpressionDepth  = 100
	MaxColumnNameLength = 256
	MaxTableNameLength  = 256
)

var (
	ErrQueryTooLong      = errors.New("query too long")
	ErrTooManyTokens     = errors.New("too many tokens in query")
	ErrExpressionTooDeep = errors.New("expression nesting too deep")
	ErrColumnNameTooLong = errors.New("column name too long")
	ErrTableNameTooLong  = errors.New("table name too long")
	ErrEmptyTableName    = errors.New("table name cannot be empty")
	// ErrInvalidViewName is returned for view names SQL cannot reference
	ErrInvalidViewName = errors.New("invalid view name")
)

// ValidateQuery checks the raw query text
func ValidateQuery(sql string) error {
	if len(sql) > MaxQueryLength {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrQueryTooLong, len(sql), MaxQueryLength)
	}
	return nil
}

// ValidateTokens checks the token count of a lexed query
func ValidateTokens(tokens []Token) error {
	if len(tokens) > MaxTokens {
		return fmt.Errorf("%w: %d tokens (max %d)", ErrTooManyTokens, len(tokens), MaxTokens)
	}
	return nil
}

// ValidateTableName checks a table reference in a FROM or JOIN clause
func ValidateTableName(name string) error {
	if name == "" {
		return ErrEmptyTableName
	}
	if len(name) > MaxTableNameLength {
		return fmt.Errorf("%w: %d chars (max %d)", ErrTableNameTooLong, len(name), MaxTableNameLength)
	}
	return nil
}

// ValidateViewName checks a name before it is registered as a temp view.
// Besides the table name limits the name must be a plain identifier so that
// queries can refer to it unquoted.
func ValidateViewName(name string) error {
	if err := ValidateTableName(name); err != nil {
		return err
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return fmt.Errorf("%w: %q", ErrInvalidViewName, name)
	}
	return nil
}

// ValidateColumnName checks the length of a column name or alias
func ValidateColumnName(name string) error {
	if len(name) > MaxColumnNameLength {
		return fmt.Errorf("%w: %d chars (max %d)", ErrColumnNameTooLong, len(name), MaxColumnNameLength)
	}
	return nil
}

// depthGuard counts recursive descent into nested expressions
type depthGuard int

func (d *depthGuard) enter() error {
	*d++
	if *d > MaxExpressionDepth {
		return fmt.Errorf("%w: %d (max %d)", ErrExpressionTooDeep, int(*d), MaxExpressionDepth)
	}
	return nil
}

func (d *depthGuard) exit() {
	*d--
}
