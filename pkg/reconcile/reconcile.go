// Package reconcile runs one batch pass: build the roster indexes once, decide
// every ledger row against them, then classify, sort and summarize.
//
// Indexes are read-only once built, so rows can be decided in parallel. Output
// is always restored to ledger order before the priority sort.
package reconcile

import (
	"context"
	"fmt"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/membermatch/pkg/decision"
	"github.com/agentstation/membermatch/pkg/duplicates"
	"github.com/agentstation/membermatch/pkg/errors"
	"github.com/agentstation/membermatch/pkg/index"
	"github.com/agentstation/membermatch/pkg/logging"
	"github.com/agentstation/membermatch/pkg/records"
	"github.com/agentstation/membermatch/pkg/review"
)

// Run reconciles targets against roster. It returns an error only for invalid
// options or a cancelled context; row-level problems are reported as
// decisions. A cancelled run returns no partial result.
func Run(ctx context.Context, roster []records.SourceRecord, targets []records.TargetRow, opts ...Option) (*Result, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx).With().
		Str("rule_set", o.rules.Name()).
		Logger()
	start := utc.Now()
	logger.Info().
		Int("roster", len(roster)).
		Int("targets", len(targets)).
		Int("workers", o.workers).
		Msg("Starting reconciliation")

	engine := decision.New(o.rules.Validator(), index.BuildExact(roster), index.BuildFallback(roster))

	decisions, err := decide(ctx, engine, targets, o.workers, &logger)
	if err != nil {
		return nil, err
	}

	classifier := o.rules.Classifier()
	priority := o.rules.Priority()
	log := make([]review.Entry, len(targets))
	for i, row := range targets {
		log[i] = review.NewEntry(row, decisions[i], classifier)
	}

	result := &Result{
		Decisions: decisions,
		Log:       log,
		Review:    review.SortByPriority(log, priority),
		Summary:   review.Summarize(log, priority),
	}
	if o.duplicates {
		result.Duplicates = duplicates.Find(roster)
	}

	end := utc.Now()
	result.Metadata = Metadata{
		RuleSet:    o.rules.Name(),
		Workers:    o.workers,
		RosterSize: len(roster),
		TargetRows: len(targets),
		StartTime:  start,
		EndTime:    end,
		Duration:   end.Time.Sub(start.Time),
	}

	logger.Info().
		Int("confirmed", result.Summary.Confirmed()).
		Int("total", result.Summary.Total).
		Int("duplicates", len(result.Duplicates)).
		Dur("duration", result.Metadata.Duration).
		Msg("Reconciliation complete")

	return result, nil
}

// decide fills one slot per target so the output keeps ledger order
// whichever worker finishes first.
func decide(ctx context.Context, engine *decision.Engine, targets []records.TargetRow, workers int, logger *zerolog.Logger) ([]decision.Decision, error) {
	out := make([]decision.Decision, len(targets))

	if workers <= 1 {
		for i, row := range targets {
			if err := ctx.Err(); err != nil {
				return nil, canceled(err)
			}
			out[i] = engine.Decide(row)
			trace(logger, row, out[i])
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, row := range targets {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = engine.Decide(row)
			trace(logger, row, out[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, canceled(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}
	return out, nil
}

func trace(logger *zerolog.Logger, row records.TargetRow, d decision.Decision) {
	logger.Trace().
		Int("row", row.Row).
		Str("status", string(d.Status)).
		Str("reason", d.Reason).
		Msg("Decided row")
}

// canceled matches both errors.ErrCanceled and the context error.
func canceled(err error) error {
	return fmt.Errorf("reconcile: %w: %w", errors.ErrCanceled, err)
}
