package ql

import (
	"context"
	"fmt"

	"github.com/bitdex/bitdex/query"
)

// Result is the outcome of executing an expression: Members for read forms,
// Stored for materializing forms.
type Result struct {
	Members []string
	Stored  *query.Materialized
}

// Run parses src and executes it against the engine. A positive ttlSeconds
// selects the materializing form; zero selects the read form.
func Run(ctx context.Context, eng *query.Engine, src string, ttlSeconds int) (Result, error) {
	expr, err := Parse(src)
	if err != nil {
		return Result{}, err
	}
	if ttlSeconds > 0 {
		mat, err := expr.store(ctx, eng, ttlSeconds)
		if err != nil {
			return Result{}, err
		}
		return Result{Stored: &mat}, nil
	}
	members, err := expr.read(ctx, eng)
	if err != nil {
		return Result{}, err
	}
	return Result{Members: members}, nil
}

func (e *Expr) read(ctx context.Context, eng *query.Engine) ([]string, error) {
	switch e.Fn {
	case "all":
		return eng.All(ctx, e.Head...)
	case "any":
		return eng.Any(ctx, e.Head...)
	case "not":
		return eng.Not(ctx, e.Head[0], e.Tail...)
	case "unot":
		return eng.UniverseNot(ctx, e.Head...)
	case "allnot":
		return eng.AllNot(ctx, e.Head[0], e.Tail...)
	default:
		return nil, fmt.Errorf("%w: unknown shape %q", ErrSyntax, e.Fn)
	}
}

func (e *Expr) store(ctx context.Context, eng *query.Engine, ttlSeconds int) (query.Materialized, error) {
	switch e.Fn {
	case "all":
		return eng.AllStore(ctx, ttlSeconds, e.Head...)
	case "any":
		return eng.AnyStore(ctx, ttlSeconds, e.Head...)
	case "not":
		return eng.NotStore(ctx, ttlSeconds, e.Head[0], e.Tail...)
	case "unot":
		return eng.UniverseNotStore(ctx, ttlSeconds, e.Head...)
	case "allnot":
		return eng.AllNotStore(ctx, ttlSeconds, e.Head[0], e.Tail...)
	default:
		return query.Materialized{}, fmt.Errorf("%w: unknown shape %q", ErrSyntax, e.Fn)
	}
}
