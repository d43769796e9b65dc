// Package bulk runs the enumerate, classify, confirm, mutate and report flow
// that disables the analytical store across an account's containers.
package bulk

import (
	"cmp"
	"slices"

	"github.com/cosmosops/analyticalctl/internal/classify"
)

// Record is one container with the analytical store enabled. It is the unit of
// work carried from enumeration through confirmation to mutation.
type Record struct {
	Database  string             `json:"database"`
	Container string             `json:"container"`
	Retention classify.Retention `json:"analyticalStorageTtl"`
}

func (r Record) String() string {
	return r.Database + "/" + r.Container
}

func compareRecords(a, b Record) int {
	if c := cmp.Compare(a.Database, b.Database); c != 0 {
		return c
	}
	return cmp.Compare(a.Container, b.Container)
}

// SortRecords orders records by (database, container).
func SortRecords(records []Record) {
	slices.SortStableFunc(records, compareRecords)
}

// Inventory is the classified result of an enumeration.
type Inventory struct {
	Records []Record
	// Databases and Containers count what was scanned, not what is enabled.
	Databases        int
	Containers       int
	SkippedDatabases []string
}

func (inv Inventory) Empty() bool {
	return len(inv.Records) == 0
}

// Group is the enabled containers of one database.
type Group struct {
	Database string
	Records  []Record
}

// Groups splits the (sorted) records into one group per database, in order.
func (inv Inventory) Groups() []Group {
	var groups []Group
	for _, r := range inv.Records {
		if n := len(groups); n > 0 && groups[n-1].Database == r.Database {
			groups[n-1].Records = append(groups[n-1].Records, r)
			continue
		}
		groups = append(groups, Group{Database: r.Database, Records: []Record{r}})
	}
	return groups
}

// Outcome is the final state of one record's mutation. Err is nil on success.
type Outcome struct {
	Record   Record
	Attempts int
	Err      error
}

func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Result aggregates a mutation batch. Disabled never exceeds Found.
type Result struct {
	Found    int
	Disabled int
	Outcomes []Outcome
}

func (r Result) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}
