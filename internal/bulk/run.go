package bulk

import (
	"context"
	"log/slog"
)

// Status is how a run ended. Every status is a successful completion.
type Status int

const (
	StatusPreviewed Status = iota
	StatusNothingEnabled
	StatusDeclined
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusPreviewed:
		return "previewed"
	case StatusNothingEnabled:
		return "nothing-enabled"
	case StatusDeclined:
		return "declined"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Reporter renders each terminal state of a run.
type Reporter interface {
	Progress
	NothingEnabled(Inventory) error
	Preview(Inventory) error
	Announce(Inventory) error
	Declined(Inventory) error
	Summary(Inventory, Result) error
}

// Options selects what a run does.
type Options struct {
	// Database restricts the run to one database when set.
	Database string
	// Preview lists enabled containers and never mutates.
	Preview     bool
	AutoApprove bool
}

// Orchestrator wires the components of one invocation together.
type Orchestrator struct {
	Enumerator *Enumerator
	Executor   *Executor
	Prompter   Prompter
	Reporter   Reporter
	Logger     *slog.Logger
}

// Report is what a run produced. Result is set only for StatusCompleted.
type Report struct {
	Status    Status
	Inventory Inventory
	Result    *Result
}

func (o *Orchestrator) Run(ctx context.Context, opts Options) (Report, error) {
	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	inv, err := o.Enumerator.Enumerate(ctx, opts.Database)
	if err != nil {
		return Report{Inventory: inv}, err
	}
	logger.Info("enumeration finished",
		slog.Int("databases", inv.Databases),
		slog.Int("containers", inv.Containers),
		slog.Int("enabled", len(inv.Records)),
		slog.Int("skipped_databases", len(inv.SkippedDatabases)))

	if inv.Empty() {
		return Report{Status: StatusNothingEnabled, Inventory: inv}, o.Reporter.NothingEnabled(inv)
	}

	if opts.Preview {
		return Report{Status: StatusPreviewed, Inventory: inv}, o.Reporter.Preview(inv)
	}

	gate := &Gate{
		Prompter:    o.Prompter,
		AutoApprove: opts.AutoApprove,
		Announce:    o.Reporter.Announce,
	}
	approved, err := gate.Confirm(ctx, inv)
	if err != nil {
		return Report{Inventory: inv}, err
	}
	if !approved {
		logger.Info("operator declined")
		return Report{Status: StatusDeclined, Inventory: inv}, o.Reporter.Declined(inv)
	}

	o.Executor.Progress = o.Reporter
	res := o.Executor.Execute(ctx, inv.Records)
	return Report{Status: StatusCompleted, Inventory: inv, Result: &res}, o.Reporter.Summary(inv, res)
}
