package security

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Field is a named piece of free text checked against a ruleset.
type Field struct {
	Name    string
	Value   string
	Ruleset Ruleset
}

// FieldRejection records which rule rejected a field.
type FieldRejection struct {
	Field   string
	Ruleset string
	Rule    string
	Message string
}

// ValidateFields classifies fields concurrently and returns one rejection per
// rejected field, keyed by field name. The map is empty when every field passes.
func ValidateFields(ctx context.Context, fields []Field) (map[string]FieldRejection, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]FieldRejection)
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, f := range fields {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := Classify(f.Value, f.Ruleset)
			if res.Valid {
				return nil
			}
			mu.Lock()
			out[f.Name] = FieldRejection{
				Field:   f.Name,
				Ruleset: f.Ruleset.Name(),
				Rule:    res.Rule,
				Message: res.Message,
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
