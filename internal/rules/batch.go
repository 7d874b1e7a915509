package rules

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/usestring/promptlib-mcp/pkg/types"
)

// Document is one named text to check.
type Document struct {
	Name string `json:"name,omitempty"`
	Text string `json:"text"`
}

// CheckDocuments checks docs concurrently with at most workers goroutines
// (unbounded when workers <= 0). Reports keep the input order. A cancelled
// context stops scheduling and returns its error.
func (s *RuleSet) CheckDocuments(ctx context.Context, docs []Document, workers int) ([]types.CheckReport, error) {
	reports := make([]types.CheckReport, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, doc := range docs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			violations := s.Check(doc.Text)
			reports[i] = types.CheckReport{
				Name:       doc.Name,
				Passed:     len(violations) == 0,
				Violations: violations,
			}
			if len(violations) > 0 {
				slog.Debug("document failed rules",
					slog.String("document", doc.Name),
					slog.Int("violations", len(violations)),
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}
