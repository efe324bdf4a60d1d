package filter

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/edhtail/internal/model"
)

// PrintingsLister lists every printing of a card, following pagination.
// Satisfied by the scryfall client.
type PrintingsLister interface {
	Printings(ctx context.Context, uri string) ([]model.Card, error)
}

// Apply runs the two-stage filter over the deduplicated pool and returns the
// survivors in pool order. Stage 1 is the synchronous predicate loop; stage 2
// is the strict PTK confirmation, which fetches all printings per card under
// its own concurrency bound. Stage 2 runs only when both ExcludePTK and
// PTKStrict are set; transport failures there fall back to the fast heuristic
// for that card alone and never fail the pipeline.
func Apply(ctx context.Context, pool []model.Card, rules Rules, printings PrintingsLister) ([]model.Card, error) {
	now := rules.now()

	prelim := make([]model.Card, 0, len(pool))
	for _, c := range pool {
		if rules.passesSync(c, now) {
			prelim = append(prelim, c)
		}
	}

	if !rules.ExcludePTK {
		return prelim, nil
	}

	if !rules.PTKStrict {
		out := prelim[:0]
		for _, c := range prelim {
			if !looksLikePTK(c) {
				out = append(out, c)
			}
		}
		return out, nil
	}

	return strictPTKFilter(ctx, prelim, rules, printings)
}

// strictPTKFilter confirms PTK membership exactly by scanning every printing
// of each candidate. Checks complete in any order; the output keeps the
// deterministic input order via a keep mask.
func strictPTKFilter(ctx context.Context, prelim []model.Card, rules Rules, printings PrintingsLister) ([]model.Card, error) {
	limit := rules.StrictConcurrency
	if limit < 2 {
		limit = 2
	}

	var mu sync.Mutex
	keep := make([]bool, len(prelim))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, c := range prelim {
		g.Go(func() error {
			ptk := isPTKStrict(gCtx, c, printings)
			mu.Lock()
			keep[i] = !ptk
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.Card, 0, len(prelim))
	for i, c := range prelim {
		if keep[i] {
			out = append(out, c)
		}
	}
	return out, nil
}

// isPTKStrict reports whether any printing of the card is from PTK. A failed
// printings fetch degrades to the fast heuristic for this card only.
func isPTKStrict(ctx context.Context, c model.Card, printings PrintingsLister) bool {
	if c.PrintsSearchURI == "" {
		return looksLikePTK(c)
	}
	all, err := printings.Printings(ctx, c.PrintsSearchURI)
	if err != nil {
		zap.L().Debug("filter: printings fetch failed, using fast heuristic",
			zap.String("card", c.Name),
			zap.Error(err),
		)
		return looksLikePTK(c)
	}
	for _, p := range all {
		if strings.EqualFold(p.SetCode, "ptk") {
			return true
		}
	}
	return false
}
