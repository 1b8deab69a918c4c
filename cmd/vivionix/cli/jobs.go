package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/hibiken/asynq"

	"github.com/vivionix/vivionix-admin/jobs"
)

// Enqueuer submits background tasks.
type Enqueuer interface {
	EnqueueStockScan(ctx context.Context) (string, error)
}

// QueueInspector reports queue state.
type QueueInspector func() ([]jobs.QueueStat, error)

// JobsCLI wraps manual management helpers for the job queue.
type JobsCLI struct {
	enqueuer Enqueuer
	inspect  QueueInspector
	closers  []io.Closer
}

// NewJobsCLI builds the helpers against the given Redis connection.
func NewJobsCLI(opts asynq.RedisClientOpt) (*JobsCLI, error) {
	client, err := jobs.NewClient(opts)
	if err != nil {
		return nil, err
	}
	inspector := asynq.NewInspector(opts)
	return &JobsCLI{
		enqueuer: client,
		inspect:  func() ([]jobs.QueueStat, error) { return jobs.InspectQueues(inspector) },
		closers:  []io.Closer{client, inspector},
	}, nil
}

// NewJobsCLIWith builds the helpers from explicit collaborators.
func NewJobsCLIWith(enqueuer Enqueuer, inspect QueueInspector) *JobsCLI {
	return &JobsCLI{enqueuer: enqueuer, inspect: inspect}
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// JobsOptions are the arguments of the jobs command.
type JobsOptions struct {
	Args   []string
	Stdout io.Writer
	Stderr io.Writer
}

const jobsUsage = `usage:
  vivionix jobs trigger stock:scan
  vivionix jobs inspect [-json]`

// Command runs "jobs trigger <task>" or "jobs inspect" and returns the exit code.
func (c *JobsCLI) Command(ctx context.Context, opts JobsOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if len(opts.Args) == 0 {
		fmt.Fprintln(opts.Stderr, jobsUsage)
		return 2
	}
	switch opts.Args[0] {
	case "trigger":
		return c.trigger(ctx, opts)
	case "inspect":
		return c.inspectCommand(opts)
	default:
		fmt.Fprintf(opts.Stderr, "unknown jobs command %q\n%s\n", opts.Args[0], jobsUsage)
		return 2
	}
}

func (c *JobsCLI) trigger(ctx context.Context, opts JobsOptions) int {
	if len(opts.Args) != 2 {
		fmt.Fprintln(opts.Stderr, jobsUsage)
		return 2
	}
	switch opts.Args[1] {
	case jobs.TaskStockScan:
		id, err := c.enqueuer.EnqueueStockScan(ctx)
		if err != nil {
			fmt.Fprintf(opts.Stderr, "enqueue %s: %v\n", jobs.TaskStockScan, err)
			return 1
		}
		if id == "" {
			fmt.Fprintf(opts.Stdout, "%s already queued\n", jobs.TaskStockScan)
			return 0
		}
		fmt.Fprintf(opts.Stdout, "enqueued %s (%s)\n", jobs.TaskStockScan, id)
		return 0
	default:
		fmt.Fprintf(opts.Stderr, "unsupported job %q\n", opts.Args[1])
		return 2
	}
}

func (c *JobsCLI) inspectCommand(opts JobsOptions) int {
	fs := flag.NewFlagSet("jobs inspect", flag.ContinueOnError)
	fs.SetOutput(opts.Stderr)
	jsonOutput := fs.Bool("json", false, "print queue stats as JSON")
	if err := fs.Parse(opts.Args[1:]); err != nil {
		return 2
	}
	stats, err := c.inspect()
	if err != nil {
		fmt.Fprintf(opts.Stderr, "inspect queues: %v\n", err)
		return 1
	}
	if *jsonOutput {
		enc := json.NewEncoder(opts.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			fmt.Fprintf(opts.Stderr, "encode stats: %v\n", err)
			return 1
		}
		return 0
	}
	tw := tabwriter.NewWriter(opts.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QUEUE\tPENDING\tACTIVE\tSCHEDULED\tRETRY\tFAILED TODAY")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", s.Queue, s.Pending, s.Active, s.Scheduled, s.Retry, s.Failed)
	}
	_ = tw.Flush()
	return 0
}
