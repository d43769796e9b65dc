package bulk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cosmosops/analyticalctl/internal/classify"
	"github.com/cosmosops/analyticalctl/internal/cosmos"
	"github.com/cosmosops/analyticalctl/internal/retry"
)

var errRemote = errors.New("remote unavailable")

type fakeClient struct {
	databases          []cosmos.Resource
	containers         map[string][]cosmos.Resource
	listDatabasesErr   error
	showErr            error
	listContainersErrs map[string]error
	disableErrs        map[string]error

	showCalls    []string
	disableCalls []string
}

func (f *fakeClient) ListDatabases(context.Context) ([]cosmos.Resource, error) {
	if f.listDatabasesErr != nil {
		return nil, f.listDatabasesErr
	}
	return f.databases, nil
}

func (f *fakeClient) ShowDatabase(_ context.Context, database string) (cosmos.Resource, error) {
	f.showCalls = append(f.showCalls, database)
	if f.showErr != nil {
		return nil, f.showErr
	}
	for _, db := range f.databases {
		if db["name"] == database {
			return db, nil
		}
	}
	return nil, fmt.Errorf("(NotFound) %s", database)
}

func (f *fakeClient) ListContainers(_ context.Context, database string) ([]cosmos.Resource, error) {
	if err := f.listContainersErrs[database]; err != nil {
		return nil, err
	}
	return f.containers[database], nil
}

func (f *fakeClient) DisableAnalyticalStorage(_ context.Context, database, container string) error {
	key := database + "/" + container
	f.disableCalls = append(f.disableCalls, key)
	return f.disableErrs[key]
}

type fakePrompter struct {
	answer    bool
	err       error
	questions []string
}

func (p *fakePrompter) Confirm(_ context.Context, question string) (bool, error) {
	p.questions = append(p.questions, question)
	return p.answer, p.err
}

type recordingReporter struct {
	events    []string
	succeeded []Outcome
	failed    []Outcome
}

func (r *recordingReporter) Succeeded(o Outcome) {
	r.events = append(r.events, "succeeded "+o.Record.String())
	r.succeeded = append(r.succeeded, o)
}

func (r *recordingReporter) Failed(o Outcome) {
	r.events = append(r.events, "failed "+o.Record.String())
	r.failed = append(r.failed, o)
}

func (r *recordingReporter) NothingEnabled(Inventory) error {
	r.events = append(r.events, "nothing-enabled")
	return nil
}

func (r *recordingReporter) Preview(Inventory) error {
	r.events = append(r.events, "preview")
	return nil
}

func (r *recordingReporter) Announce(Inventory) error {
	r.events = append(r.events, "announce")
	return nil
}

func (r *recordingReporter) Declined(Inventory) error {
	r.events = append(r.events, "declined")
	return nil
}

func (r *recordingReporter) Summary(_ Inventory, res Result) error {
	r.events = append(r.events, fmt.Sprintf("summary %d/%d", res.Disabled, res.Found))
	return nil
}

func container(name string, ttl string) cosmos.Resource {
	return cosmos.Resource{
		"name":     name,
		"resource": map[string]any{"id": name, "analyticalStorageTtl": json.Number(ttl)},
	}
}

// twoDatabases is db-a with one enabled (30) and one disabled container, and
// db-b with one enabled (90) container.
func twoDatabases() *fakeClient {
	return &fakeClient{
		databases: []cosmos.Resource{{"name": "db-b"}, {"name": "db-a"}},
		containers: map[string][]cosmos.Resource{
			"db-a": {container("orders", "30"), container("audit", "0")},
			"db-b": {container("events", "90")},
		},
	}
}

func testPolicy() (retry.Policy, *int) {
	sleeps := 0
	return retry.Policy{
		MaxAttempts: 3,
		Delay:       time.Second,
		Sleep: func(context.Context, time.Duration) error {
			sleeps++
			return nil
		},
	}, &sleeps
}

func newEnumerator(client cosmos.Client) *Enumerator {
	policy, _ := testPolicy()
	return &Enumerator{Client: client, Classifier: classify.Default(), Policy: policy}
}
