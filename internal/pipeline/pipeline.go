// Package pipeline orchestrates the fetch, filter, deck-count, and bottom-K
// stages end to end.
package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/edhtail/internal/config"
	"github.com/sells-group/edhtail/internal/filter"
	"github.com/sells-group/edhtail/internal/model"
	"github.com/sells-group/edhtail/internal/rank"
	"github.com/sells-group/edhtail/pkg/edhrec"
	"github.com/sells-group/edhtail/pkg/scryfall"
)

// progressEvery controls how often the deck-count stage logs progress.
const progressEvery = 50

// Params configures a single pipeline run.
type Params struct {
	BottomK       int
	Concurrency   int
	Delay         time.Duration
	OnlyPositive  bool
	IncludeErrors bool
	Rules         filter.Rules
}

// Outcome is the result of a completed run.
type Outcome struct {
	Results []model.FetchResult
	Stats   model.RunStats
}

// Pipeline wires the external clients to the processing stages.
type Pipeline struct {
	cfg      *config.Config
	scryfall scryfall.Client
	edhrec   edhrec.Client
}

// New creates a Pipeline with all dependencies.
func New(cfg *config.Config, sf scryfall.Client, ed edhrec.Client) *Pipeline {
	return &Pipeline{cfg: cfg, scryfall: sf, edhrec: ed}
}

// Run executes the full pipeline: fetch the commander pool, collapse reprints,
// filter, fetch deck counts under bounded concurrency, and reduce to the
// bottom K. A catalog fetch failure is fatal; per-commander fetch failures are
// absorbed into their results.
func (p *Pipeline) Run(ctx context.Context, params Params) (*Outcome, error) {
	log := zap.L().With(zap.String("query", p.cfg.Scryfall.Query))
	log.Info("pipeline: fetching commander pool")

	cards, err := p.scryfall.SearchAll(ctx, p.cfg.Scryfall.Query)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch pool")
	}

	pool := filter.CollapseByOracle(cards)
	log.Info("pipeline: pool collapsed",
		zap.Int("cards", len(cards)),
		zap.Int("pool", len(pool)),
	)

	survivors, err := filter.Apply(ctx, pool, params.Rules, p.scryfall)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: filter")
	}
	log.Info("pipeline: filters applied", zap.Int("survivors", len(survivors)))

	commanders := make([]model.Commander, 0, len(survivors))
	for _, c := range survivors {
		commanders = append(commanders, model.CommanderFromCard(c))
	}

	results, fetchErrs := p.fetchDeckCounts(ctx, commanders, params)

	selector := rank.New(rank.Options{
		K:             params.BottomK,
		OnlyPositive:  params.OnlyPositive,
		IncludeErrors: params.IncludeErrors,
	})
	processed := 0
	for res := range results {
		selector.Add(res)
		processed++
		if processed%progressEvery == 0 {
			log.Info("pipeline: progress",
				zap.Int("processed", processed),
				zap.Int("total", len(commanders)),
			)
		}
	}

	outcome := &Outcome{
		Results: selector.Results(),
		Stats: model.RunStats{
			CardsFetched: len(cards),
			PoolSize:     len(pool),
			Survivors:    len(survivors),
			Fetched:      processed,
			FetchErrors:  <-fetchErrs,
		},
	}
	log.Info("pipeline: complete",
		zap.Int("retained", len(outcome.Results)),
		zap.Int("fetch_errors", outcome.Stats.FetchErrors),
	)
	return outcome, nil
}

// fetchDeckCounts runs one deck-count fetch per commander under a bounded
// worker pool. The pacing delay elapses before a worker returns, so it is
// charged against the pool slot: per-slot throughput is bounded by request
// latency plus delay. Transport errors are folded into the result and never
// abort sibling fetches. The error count channel yields once after the
// results channel closes.
func (p *Pipeline) fetchDeckCounts(ctx context.Context, commanders []model.Commander, params Params) (<-chan model.FetchResult, <-chan int) {
	results := make(chan model.FetchResult)
	errCount := make(chan int, 1)

	limit := params.Concurrency
	if limit < 1 {
		limit = 1
	}

	go func() {
		defer close(results)

		var g errgroup.Group
		g.SetLimit(limit)

		var failed atomic.Int64
		for _, cmdr := range commanders {
			g.Go(func() error {
				res := p.fetchOne(ctx, cmdr)
				if res.Failed() {
					failed.Add(1)
				}
				select {
				case results <- res:
				case <-ctx.Done():
					return nil
				}
				p.pace(ctx, params.Delay)
				return nil
			})
		}
		_ = g.Wait()
		errCount <- int(failed.Load())
	}()

	return results, errCount
}

// fetchOne performs a single deck-count lookup, isolating any failure into
// the result's error field.
func (p *Pipeline) fetchOne(ctx context.Context, cmdr model.Commander) model.FetchResult {
	lookup, err := p.edhrec.DeckCount(ctx, cmdr.EDHRECRouteURL)
	if err != nil {
		zap.L().Debug("pipeline: deck count fetch failed",
			zap.String("commander", cmdr.Name),
			zap.Error(err),
		)
		return model.FetchResult{
			Name:      cmdr.Name,
			EDHRECURL: cmdr.EDHRECRouteURL,
			Err:       err.Error(),
		}
	}
	return model.FetchResult{
		Name:      cmdr.Name,
		EDHRECURL: lookup.FinalURL,
		Decks:     lookup.Decks,
	}
}

func (p *Pipeline) pace(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
