package bulk

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cosmosops/analyticalctl/internal/classify"
	"github.com/cosmosops/analyticalctl/internal/cosmos"
	"github.com/cosmosops/analyticalctl/internal/retry"
)

// Enumerator lists databases and their containers and keeps the enabled ones.
type Enumerator struct {
	Client     cosmos.Client
	Classifier *classify.Classifier
	Policy     retry.Policy
	// Warnings receives one line per database that had to be skipped.
	Warnings io.Writer
	Logger   *slog.Logger
}

// Enumerate classifies every container of the account, or only of database
// when it is not empty.
func (e *Enumerator) Enumerate(ctx context.Context, database string) (Inventory, error) {
	logger := e.logger()
	var inv Inventory

	databases, err := e.databases(ctx, database)
	if err != nil {
		return inv, err
	}

	listed := 0
	for _, db := range databases {
		dbName, ok := e.Classifier.Name(db)
		if !ok {
			logger.Warn("skipping database without a name")
			continue
		}
		inv.Databases++

		containers, err := retry.Do(ctx, e.Policy, func(ctx context.Context) ([]cosmos.Resource, error) {
			return e.Client.ListContainers(ctx, dbName)
		})
		if err != nil {
			if ctx.Err() != nil {
				return inv, ctx.Err()
			}
			logger.Warn("listing containers failed, skipping database",
				slog.String("database", dbName), slog.Any("error", err))
			if e.Warnings != nil {
				fmt.Fprintf(e.Warnings, "skipping database %s: listing containers failed: %v\n", dbName, err)
			}
			inv.SkippedDatabases = append(inv.SkippedDatabases, dbName)
			continue
		}
		listed++

		for _, c := range containers {
			cName, ok := e.Classifier.Name(c)
			if !ok {
				logger.Warn("skipping container without a name", slog.String("database", dbName))
				continue
			}
			inv.Containers++

			retention, enabled := e.Classifier.Enabled(c)
			logger.Debug("classified container",
				slog.String("database", dbName),
				slog.String("container", cName),
				slog.Bool("enabled", enabled),
				slog.String("retention", retention.String()))
			if enabled {
				inv.Records = append(inv.Records, Record{Database: dbName, Container: cName, Retention: retention})
			}
		}
	}

	if inv.Databases > 0 && listed == 0 {
		return inv, fmt.Errorf("%w: containers could not be listed for any database", ErrEnumerationFailed)
	}

	SortRecords(inv.Records)
	return inv, nil
}

func (e *Enumerator) databases(ctx context.Context, database string) ([]cosmos.Resource, error) {
	if database != "" {
		db, err := retry.Do(ctx, e.Policy, func(ctx context.Context) (cosmos.Resource, error) {
			return e.Client.ShowDatabase(ctx, database)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %s: %w", ErrDatabaseNotFound, database, err)
		}
		return []cosmos.Resource{db}, nil
	}

	dbs, err := retry.Do(ctx, e.Policy, func(ctx context.Context) ([]cosmos.Resource, error) {
		return e.Client.ListDatabases(ctx)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: listing databases: %w", ErrEnumerationFailed, err)
	}
	return dbs, nil
}

func (e *Enumerator) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}
