package bulk

import (
	"context"
	"fmt"
	"testing"

	"github.com/cosmosops/analyticalctl/internal/retry"
	"github.com/stretchr/testify/require"
)

func records(n int) []Record {
	out := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Record{Database: "db", Container: fmt.Sprintf("c%02d", i), Retention: "30"})
	}
	return out
}

func TestExecuteIsolatesPermanentFailure(t *testing.T) {
	t.Parallel()

	const n, k = 5, 2
	recs := records(n)
	client := &fakeClient{disableErrs: map[string]error{recs[k].String(): errRemote}}
	policy, sleeps := testPolicy()
	reporter := &recordingReporter{}

	res := (&Executor{Client: client, Policy: policy, Progress: reporter}).Execute(context.Background(), recs)

	require.Equal(t, n, res.Found)
	require.Equal(t, n-1, res.Disabled)
	require.LessOrEqual(t, res.Disabled, res.Found)
	require.Len(t, res.Outcomes, n)

	failed := res.Failed()
	require.Len(t, failed, 1)
	require.Equal(t, recs[k], failed[0].Record)
	require.Equal(t, 3, failed[0].Attempts)
	require.ErrorIs(t, failed[0].Err, retry.ErrRemoteCallExhausted)
	require.Equal(t, 2, *sleeps)

	// every item after the failure was still attempted, in order
	var want []string
	for i, r := range recs {
		want = append(want, r.String())
		if i == k {
			want = append(want, r.String(), r.String())
		}
	}
	require.Equal(t, want, client.disableCalls)
	require.Len(t, reporter.succeeded, n-1)
	require.Len(t, reporter.failed, 1)
}

func TestExecuteStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := &fakeClient{}
	policy, _ := testPolicy()

	res := (&Executor{Client: client, Policy: policy}).Execute(ctx, records(3))
	require.Zero(t, res.Disabled)
	require.Len(t, res.Failed(), 3)
	require.Empty(t, client.disableCalls)
}

func TestSortRecordsOrdersByDatabaseThenContainer(t *testing.T) {
	t.Parallel()

	recs := []Record{
		{Database: "b", Container: "a"},
		{Database: "a", Container: "z"},
		{Database: "a", Container: "b"},
	}
	SortRecords(recs)
	require.Equal(t, []Record{
		{Database: "a", Container: "b"},
		{Database: "a", Container: "z"},
		{Database: "b", Container: "a"},
	}, recs)

	groups := Inventory{Records: recs}.Groups()
	require.Len(t, groups, 2)
	require.Equal(t, "a", groups[0].Database)
	require.Len(t, groups[0].Records, 2)
}
