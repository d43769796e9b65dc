package azcli

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cosmosops/analyticalctl/internal/cosmos"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls  [][]string
	stdout string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, args []string) (*RunResult, error) {
	f.calls = append(f.calls, args)
	if f.err != nil {
		return nil, f.err
	}
	return &RunResult{Stdout: []byte(f.stdout)}, nil
}

var testScope = cosmos.Scope{ResourceGroup: "rg-1", AccountName: "acct-1"}

func TestListDatabasesBuildsArgsAndDecodes(t *testing.T) {
	runner := &fakeRunner{stdout: `[{"name":"db1"},{"name":"db2"}]`}
	client := NewClient(runner, testScope, nil)

	dbs, err := client.ListDatabases(context.Background())
	require.NoError(t, err)
	require.Len(t, dbs, 2)
	require.Equal(t, "db1", dbs[0]["name"])
	require.Equal(t, [][]string{{
		"cosmosdb", "sql", "database", "list",
		"--resource-group", "rg-1",
		"--account-name", "acct-1",
		"--output", "json",
	}}, runner.calls)
}

func TestShowDatabasePassesName(t *testing.T) {
	runner := &fakeRunner{stdout: `{"name":"db1","resource":{"id":"db1"}}`}
	client := NewClient(runner, testScope, nil)

	db, err := client.ShowDatabase(context.Background(), "db1")
	require.NoError(t, err)
	require.Equal(t, "db1", db["name"])
	require.Equal(t, []string{
		"cosmosdb", "sql", "database", "show",
		"--resource-group", "rg-1",
		"--account-name", "acct-1",
		"--name", "db1",
		"--output", "json",
	}, runner.calls[0])
}

func TestListContainersKeepsNumbersExact(t *testing.T) {
	runner := &fakeRunner{stdout: `[{"name":"c1","resource":{"analyticalStorageTtl":-1}}]`}
	client := NewClient(runner, testScope, nil)

	containers, err := client.ListContainers(context.Background(), "db1")
	require.NoError(t, err)
	resource := containers[0]["resource"].(map[string]any)
	require.Equal(t, json.Number("-1"), resource["analyticalStorageTtl"])
	require.Contains(t, runner.calls[0], "--database-name")
}

func TestDisableAnalyticalStorageArgs(t *testing.T) {
	runner := &fakeRunner{stdout: `{}`}
	client := NewClient(runner, testScope, nil)

	require.NoError(t, client.DisableAnalyticalStorage(context.Background(), "db1", "c1"))
	require.Equal(t, []string{
		"cosmosdb", "sql", "container", "update",
		"--resource-group", "rg-1",
		"--account-name", "acct-1",
		"--database-name", "db1",
		"--name", "c1",
		"--analytical-storage-ttl", "0",
		"--output", "json",
	}, runner.calls[0])
}

func TestRunJSONReportsDecodeErrors(t *testing.T) {
	client := NewClient(&fakeRunner{stdout: `not json`}, testScope, nil)

	_, err := client.ListDatabases(context.Background())
	var decodeErr *ErrDecode
	require.ErrorAs(t, err, &decodeErr)
}

func TestRunnerErrorsPropagate(t *testing.T) {
	cause := errors.New("throttled")
	client := NewClient(&fakeRunner{err: cause}, testScope, nil)

	_, err := client.ListContainers(context.Background(), "db1")
	require.ErrorIs(t, err, cause)
}
