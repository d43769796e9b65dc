// Package cosmos describes the slice of the Cosmos DB management API that
// analyticalctl depends on. Databases are the parent resources and SQL
// containers the children; both are handled as decoded JSON documents so the
// classifier can look attributes up at whichever depth the API version uses.
package cosmos

import (
	"context"
	"errors"
	"strings"
)

// Resource is a management API document (database or container) as decoded JSON.
type Resource map[string]any

// Client is the remote management API. Every method is a single remote call;
// retrying is the caller's concern.
type Client interface {
	ListDatabases(ctx context.Context) ([]Resource, error)
	ShowDatabase(ctx context.Context, database string) (Resource, error)
	ListContainers(ctx context.Context, database string) ([]Resource, error)
	// DisableAnalyticalStorage sets the container's analytical retention to 0.
	// Disabling an already disabled container succeeds.
	DisableAnalyticalStorage(ctx context.Context, database, container string) error
}

// Scope identifies the account whose databases are enumerated.
type Scope struct {
	ResourceGroup string
	AccountName   string
}

func (s Scope) Validate() error {
	var errs []error
	if strings.TrimSpace(s.ResourceGroup) == "" {
		errs = append(errs, errors.New("resource group is required"))
	}
	if strings.TrimSpace(s.AccountName) == "" {
		errs = append(errs, errors.New("account name is required"))
	}
	return errors.Join(errs...)
}
