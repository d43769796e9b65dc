package bulk

import (
	"errors"
)

var (
	// ErrEnumerationFailed means nothing could be classified: the database
	// listing failed, or every database's container listing failed.
	ErrEnumerationFailed = errors.New("enumeration failed")
	// ErrDatabaseNotFound means the single requested database could not be shown.
	ErrDatabaseNotFound = errors.New("database not found")
	// ErrGateReused guards the single confirmation per invocation.
	ErrGateReused = errors.New("confirmation already requested for this run")
)
