package ql

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

/*
This file contains a participle grammar for the query expression language the
CLI accepts. An expression is one of the five composite shapes:

	all(1,2)        elements having every listed bit
	any(1,3)        elements having at least one listed bit
	not(1; 2,3)     elements having bit 1 and none of 2,3
	unot(2,3)       all known elements except those having any of 2,3
	allnot(1; 2,3)  elements having bit 1 and none of 2,3, scoped to the universe

The semicolon separates the include bit from the exclude list in the shapes
that distinguish them.
*/

////////////////////////////////////////////////////////////////////////////////

// ErrSyntax wraps every parse and shape failure.
var ErrSyntax = errors.New("invalid query expression")

var (
	options = []participle.Option{
		participle.Lexer(
			lexer.MustSimple([]lexer.SimpleRule{
				{Name: "Ident", Pattern: `[a-zA-Z_]+`},
				{Name: "Integer", Pattern: `[0-9]+`},
				{Name: "Punct", Pattern: `[(),;]`},
				{Name: "whitespace", Pattern: `\s+`},
			}),
		),
	}

	parser = participle.MustBuild[Expr](options...)
)

// Expr is a parsed query expression. Head holds the bits before the
// semicolon, Tail the bits after it.
type Expr struct {
	Fn   string `parser:"@Ident '('"`
	Head []int  `parser:"@Integer (',' @Integer)*"`
	Tail []int  `parser:"(';' @Integer (',' @Integer)*)? ')'"`
}

// Parse parses one query expression and checks its shape: all/any/unot take
// a single bit list, not/allnot take one include bit, a semicolon, and an
// exclude list.
func Parse(src string) (*Expr, error) {
	expr, err := parser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	switch expr.Fn {
	case "all", "any", "unot":
		if len(expr.Tail) != 0 {
			return nil, fmt.Errorf("%w: %s takes no semicolon section", ErrSyntax, expr.Fn)
		}
	case "not", "allnot":
		if len(expr.Head) != 1 {
			return nil, fmt.Errorf("%w: %s takes exactly one include bit", ErrSyntax, expr.Fn)
		}
		if len(expr.Tail) == 0 {
			return nil, fmt.Errorf("%w: %s requires excludes after a semicolon", ErrSyntax, expr.Fn)
		}
	default:
		return nil, fmt.Errorf("%w: unknown shape %q", ErrSyntax, expr.Fn)
	}
	return expr, nil
}
