package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vivionix/vivionix-admin/jobs"
)

type stubEnqueuer struct {
	id    string
	err   error
	calls int
}

func (s *stubEnqueuer) EnqueueStockScan(context.Context) (string, error) {
	s.calls++
	return s.id, s.err
}

func run(t *testing.T, c *JobsCLI, args ...string) (int, string, string) {
	t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	code := c.Command(context.Background(), JobsOptions{Args: args, Stdout: stdout, Stderr: stderr})
	return code, stdout.String(), stderr.String()
}

func TestTriggerStockScan(t *testing.T) {
	enq := &stubEnqueuer{id: "task-1"}
	code, out, errOut := run(t, NewJobsCLIWith(enq, nil), "trigger", "stock:scan")
	require.Zero(t, code)
	require.Empty(t, errOut)
	require.Contains(t, out, "enqueued stock:scan (task-1)")
	require.Equal(t, 1, enq.calls)
}

func TestTriggerDuplicateIsNotAnError(t *testing.T) {
	code, out, _ := run(t, NewJobsCLIWith(&stubEnqueuer{}, nil), "trigger", "stock:scan")
	require.Zero(t, code)
	require.Contains(t, out, "already queued")
}

func TestTriggerFailures(t *testing.T) {
	code, _, errOut := run(t, NewJobsCLIWith(&stubEnqueuer{err: errors.New("redis down")}, nil), "trigger", "stock:scan")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "redis down")

	code, _, errOut = run(t, NewJobsCLIWith(&stubEnqueuer{}, nil), "trigger", "invoice:sync")
	require.Equal(t, 2, code)
	require.Contains(t, errOut, "unsupported job")

	code, _, _ = run(t, NewJobsCLIWith(&stubEnqueuer{}, nil))
	require.Equal(t, 2, code)
	code, _, _ = run(t, NewJobsCLIWith(&stubEnqueuer{}, nil), "purge")
	require.Equal(t, 2, code)
}

func TestInspect(t *testing.T) {
	stats := []jobs.QueueStat{{Queue: jobs.QueueDefault, Pending: 2, Active: 1, Failed: 3}}
	c := NewJobsCLIWith(nil, func() ([]jobs.QueueStat, error) { return stats, nil })

	code, out, _ := run(t, c, "inspect")
	require.Zero(t, code)
	require.Contains(t, out, "QUEUE")
	require.Contains(t, out, jobs.QueueDefault)

	code, out, _ = run(t, c, "inspect", "-json")
	require.Zero(t, code)
	var decoded []jobs.QueueStat
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Equal(t, stats, decoded)

	failing := NewJobsCLIWith(nil, func() ([]jobs.QueueStat, error) { return nil, errors.New("no redis") })
	code, _, errOut := run(t, failing, "inspect")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "no redis")
}
