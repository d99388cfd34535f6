// Package runner executes hiring checks for company batches with
// bounded concurrency and retry. Order of the output matches the input
// regardless of completion order.
package runner

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gravity-outreach/hiring-detector/internal/types"
)

// Defaults for batch execution.
const (
	DefaultConcurrency = 10
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second
	backoffMultiplier  = 2
)

// failedMethod marks a result worth retrying. Negative verdicts are
// real answers and are never retried.
const failedMethod = "failed"

// HiringChecker runs the full check for one company.
type HiringChecker interface {
	Check(ctx context.Context, company types.Company) *types.HiringResult
}

// ResultSink persists completed results. Sink failures are logged, not
// fatal: a lost write should not sink the batch.
type ResultSink interface {
	SaveResult(ctx context.Context, company types.Company, result *types.HiringResult) error
}

// Outcome pairs a company with its final result.
type Outcome struct {
	Company types.Company       `json:"company"`
	Result  *types.HiringResult `json:"result"`
}

// Options tune batch execution. Zero values fall back to defaults.
type Options struct {
	Concurrency int
	MaxAttempts int
	BaseDelay   time.Duration
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = DefaultBaseDelay
	}
	return o
}

// Runner fans a company batch out over a bounded worker pool.
type Runner struct {
	checker HiringChecker
	sink    ResultSink
	opts    Options
	logger  *zap.Logger
}

// New builds a Runner. sink may be nil when results only need to be
// returned, not persisted.
func New(checker HiringChecker, sink ResultSink, opts Options, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		checker: checker,
		sink:    sink,
		opts:    opts.withDefaults(),
		logger:  logger,
	}
}

// Run checks every company in the batch. The only error returned is
// context cancellation; per-company failures surface as results with a
// failed detection method.
func (r *Runner) Run(ctx context.Context, companies []types.Company) ([]Outcome, error) {
	outcomes := make([]Outcome, len(companies))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, company := range companies {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result := r.checkWithRetry(ctx, company)
			outcomes[i] = Outcome{Company: company, Result: result}

			if r.sink != nil {
				if err := r.sink.SaveResult(ctx, company, result); err != nil {
					r.logger.Warn("failed to persist result",
						zap.String("company", company.Name), zap.Error(err))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// checkWithRetry reruns the whole per-company pipeline on terminal
// failure, backing off exponentially between attempts.
func (r *Runner) checkWithRetry(ctx context.Context, company types.Company) *types.HiringResult {
	delay := r.opts.BaseDelay

	var result *types.HiringResult
	for attempt := 1; attempt <= r.opts.MaxAttempts; attempt++ {
		result = r.checker.Check(ctx, company)
		if result.DetectionMethod != failedMethod {
			return result
		}
		if attempt == r.opts.MaxAttempts {
			break
		}

		r.logger.Warn("check failed, retrying",
			zap.String("company", company.Name),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return result
		case <-timer.C:
		}
		delay *= backoffMultiplier
	}
	return result
}
