package usecase

import (
	"context"
	"errors"

	"KeywordAnalyzer/internal/domain"
	"KeywordAnalyzer/internal/telemetry"
)

// Runner executes one run; *Pipeline and the application both satisfy it.
type Runner interface {
	Run(ctx context.Context, req domain.RunRequest, opts RunOptions) (domain.RunResult, *telemetry.RunMetrics, error)
}

// BatchItem is one queued run.
type BatchItem struct {
	Name    string
	Request domain.RunRequest
	Options RunOptions
}

// BatchOutcome reports one finished run.
type BatchOutcome struct {
	Name    string
	Result  domain.RunResult
	Metrics *telemetry.RunMetrics
	Err     error
}

// Batch runs queued items one after another. A failed item does not stop
// the batch; configuration errors do.
type Batch struct {
	runner Runner
}

// NewBatch wraps a runner.
func NewBatch(runner Runner) *Batch {
	return &Batch{runner: runner}
}

// Run executes items in order and returns an outcome per attempted item,
// plus the joined item errors.
func (b *Batch) Run(ctx context.Context, items []BatchItem) ([]BatchOutcome, error) {
	if b.runner == nil {
		return nil, nil
	}

	outcomes := make([]BatchOutcome, 0, len(items))
	var errs []error
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return outcomes, errors.Join(append(errs, err)...)
		}

		result, metrics, err := b.runner.Run(ctx, item.Request, item.Options)
		outcomes = append(outcomes, BatchOutcome{Name: item.Name, Result: result, Metrics: metrics, Err: err})
		if err == nil {
			continue
		}
		errs = append(errs, err)

		var stageErr *domain.StageError
		if !errors.As(err, &stageErr) {
			break
		}
	}
	return outcomes, errors.Join(errs...)
}
