package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cosmosops/analyticalctl/internal/bulk"
	"github.com/cosmosops/analyticalctl/internal/cmd/common"
	"github.com/cosmosops/analyticalctl/internal/cmd/output/jq"
	"github.com/cosmosops/analyticalctl/internal/iostreams"
	"github.com/cosmosops/analyticalctl/internal/retry"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

func inventory() bulk.Inventory {
	return bulk.Inventory{
		Records: []bulk.Record{
			{Database: "db-a", Container: "orders", Retention: "30"},
			{Database: "db-a", Container: "sessions", Retention: "-1"},
			{Database: "db-b", Container: "events", Retention: "90"},
		},
		Databases:  2,
		Containers: 4,
	}
}

type buffers struct {
	out, errOut *bytes.Buffer
}

func newTextReporter() (*Reporter, buffers) {
	streams, _, out, errOut := iostreams.NewTestIOStreams()
	return New(streams, RenderConfig{Format: common.TEXT}), buffers{out: out, errOut: errOut}
}

func TestPreviewGroupsByDatabase(t *testing.T) {
	r, bufs := newTextReporter()

	require.NoError(t, r.Preview(inventory()))

	want := "db-a\n" +
		"  orders    analyticalStorageTtl=30\n" +
		"  sessions  analyticalStorageTtl=-1\n" +
		"db-b\n" +
		"  events    analyticalStorageTtl=90\n" +
		"\n" +
		"Total: 2 database(s), 3 container(s)\n"
	if diff := cmp.Diff(want, bufs.out.String()); diff != "" {
		t.Fatalf("preview mismatch (-want +got):\n%s", diff)
	}
	require.Empty(t, bufs.errOut.String())
}

func TestNothingEnabled(t *testing.T) {
	r, bufs := newTextReporter()

	require.NoError(t, r.NothingEnabled(bulk.Inventory{Databases: 3, Containers: 5}))

	require.Equal(t, "No containers with analytical store enabled.\n", bufs.out.String())
}

func TestAnnounceIncludesNotice(t *testing.T) {
	r, bufs := newTextReporter()

	require.NoError(t, r.Announce(inventory()))

	require.Contains(t, bufs.out.String(), MsgAnnounce+"\ndb-a\n")
	require.Contains(t, bufs.out.String(), "Total: 2 database(s), 3 container(s)\n")
}

func TestSkippedDatabasesGoToErrOut(t *testing.T) {
	r, bufs := newTextReporter()
	inv := inventory()
	inv.SkippedDatabases = []string{"db-c"}

	require.NoError(t, r.Preview(inv))

	require.Equal(t, "Skipped databases: db-c\n", bufs.errOut.String())
	require.NotContains(t, bufs.out.String(), "db-c")
}

func TestProgressAndSummary(t *testing.T) {
	r, bufs := newTextReporter()
	inv := inventory()
	cause := &retry.ExhaustedError{Attempts: 3, Err: errors.New("conflict")}

	r.Succeeded(bulk.Outcome{Record: inv.Records[0], Attempts: 1})
	r.Failed(bulk.Outcome{Record: inv.Records[1], Attempts: 3, Err: cause})
	r.Succeeded(bulk.Outcome{Record: inv.Records[2], Attempts: 2})
	require.NoError(t, r.Summary(inv, bulk.Result{Found: 3, Disabled: 2}))

	require.Equal(t,
		"disabled db-a/orders\ndisabled db-b/events\nContainers disabled: 2 of 3\n",
		bufs.out.String())
	require.Equal(t,
		"failed to disable db-a/sessions: failed after 3 attempt(s): conflict\n",
		bufs.errOut.String())
}

func TestSummaryAllDisabled(t *testing.T) {
	r, bufs := newTextReporter()

	require.NoError(t, r.Summary(inventory(), bulk.Result{Found: 3, Disabled: 3}))

	require.Equal(t, "Containers disabled: 3\n", bufs.out.String())
}

func TestDeclined(t *testing.T) {
	r, bufs := newTextReporter()

	require.NoError(t, r.Declined(inventory()))

	require.Equal(t, MsgDeclined+"\n", bufs.out.String())
}

func TestJSONSummaryDocument(t *testing.T) {
	streams, _, out, errOut := iostreams.NewTestIOStreams()
	r := New(streams, RenderConfig{Format: common.JSON})
	inv := inventory()

	r.Succeeded(bulk.Outcome{Record: inv.Records[0], Attempts: 1})
	r.Failed(bulk.Outcome{Record: inv.Records[1], Attempts: 3, Err: errors.New("conflict")})
	require.NoError(t, r.Summary(inv, bulk.Result{
		Found:    3,
		Disabled: 2,
		Outcomes: []bulk.Outcome{
			{Record: inv.Records[0], Attempts: 1},
			{Record: inv.Records[1], Attempts: 3, Err: errors.New("conflict")},
			{Record: inv.Records[2], Attempts: 1},
		},
	}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Equal(t, "completed", got["status"])
	require.EqualValues(t, 2, got["databases"])
	require.EqualValues(t, 3, got["containers"])
	require.EqualValues(t, 2, got["disabled"])
	require.Equal(t, []any{map[string]any{
		"database":  "db-a",
		"container": "sessions",
		"attempts":  float64(3),
		"error":     "conflict",
	}}, got["failures"])
	require.Contains(t, errOut.String(), "failed to disable db-a/sessions: conflict")
	require.NotContains(t, out.String(), "disabled db-a/orders")
}

func TestYAMLPreviewDocument(t *testing.T) {
	streams, _, out, _ := iostreams.NewTestIOStreams()
	r := New(streams, RenderConfig{Format: common.YAML})

	require.NoError(t, r.Preview(inventory()))

	var got document
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	require.Equal(t, "previewed", got.Status)
	require.Equal(t, inventory().Records, got.Enabled)
	require.Nil(t, got.Disabled)
}

func TestStructuredAnnounceUsesErrOut(t *testing.T) {
	streams, _, out, errOut := iostreams.NewTestIOStreams()
	r := New(streams, RenderConfig{Format: common.JSON})

	require.NoError(t, r.Announce(inventory()))

	require.Empty(t, out.String())
	require.Contains(t, errOut.String(), MsgAnnounce)
}

func TestJQFilterAppliesToDocument(t *testing.T) {
	streams, _, out, _ := iostreams.NewTestIOStreams()
	r := New(streams, RenderConfig{
		Format: common.JSON,
		JQ:     jq.Settings{Filter: ".enabled[].container", RawOutput: true},
	})

	require.NoError(t, r.Preview(inventory()))

	require.Equal(t, "orders\nsessions\nevents\n", out.String())
}

func TestResolveColor(t *testing.T) {
	_, _, out, _ := iostreams.NewTestIOStreams()
	require.True(t, ResolveColor(common.ColorModeAlways, out))
	require.False(t, ResolveColor(common.ColorModeNever, out))
	require.False(t, ResolveColor(common.ColorModeAuto, out))
}

func TestForcedColorEmitsEscapes(t *testing.T) {
	streams, _, out, _ := iostreams.NewTestIOStreams()
	r := New(streams, RenderConfig{Format: common.TEXT, Color: true})

	require.NoError(t, r.NothingEnabled(bulk.Inventory{}))

	require.Contains(t, out.String(), "\x1b[")
	require.Contains(t, out.String(), MsgNothingEnabled)
}
