package bulk

import (
	"context"
	"log/slog"

	"github.com/cosmosops/analyticalctl/internal/cosmos"
	"github.com/cosmosops/analyticalctl/internal/retry"
)

// Progress is told about every record as soon as its outcome is final.
type Progress interface {
	Succeeded(Outcome)
	Failed(Outcome)
}

// Executor disables the analytical store on records one at a time. A record
// that fails on every attempt is reported and the batch moves on.
type Executor struct {
	Client   cosmos.Client
	Policy   retry.Policy
	Progress Progress
	Logger   *slog.Logger
}

func (x *Executor) Execute(ctx context.Context, records []Record) Result {
	logger := x.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	res := Result{
		Found:    len(records),
		Outcomes: make([]Outcome, 0, len(records)),
	}

	for _, rec := range records {
		outcome := Outcome{Record: rec}

		if err := ctx.Err(); err != nil {
			outcome.Err = err
		} else {
			outcome.Err = retry.Run(ctx, x.Policy, func(ctx context.Context) error {
				outcome.Attempts++
				return x.Client.DisableAnalyticalStorage(ctx, rec.Database, rec.Container)
			})
		}

		res.Outcomes = append(res.Outcomes, outcome)
		if outcome.Succeeded() {
			res.Disabled++
			logger.Info("disabled analytical store",
				slog.String("database", rec.Database),
				slog.String("container", rec.Container),
				slog.Int("attempts", outcome.Attempts))
			if x.Progress != nil {
				x.Progress.Succeeded(outcome)
			}
			continue
		}

		logger.Warn("disabling analytical store failed",
			slog.String("database", rec.Database),
			slog.String("container", rec.Container),
			slog.Int("attempts", outcome.Attempts),
			slog.Any("error", outcome.Err))
		if x.Progress != nil {
			x.Progress.Failed(outcome)
		}
	}

	return res
}
