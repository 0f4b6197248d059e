package batch

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeJobs(n int) []Job {
	jobs := make([]Job, n)
	for i := range jobs {
		jobs[i] = Job{Input: string(rune('a'+i)) + ".cbz"}
	}
	return jobs
}

func TestRun_AllSucceed(t *testing.T) {
	var calls atomic.Int32
	results := Run(context.Background(), makeJobs(10), 3, func(ctx context.Context, job Job) error {
		calls.Add(1)
		return nil
	})

	require.Len(t, results, 10)
	assert.EqualValues(t, 10, calls.Load())
	assert.Empty(t, Failed(results))
	for i, r := range results {
		assert.Equal(t, makeJobs(10)[i], r.Job, "results keep job order")
	}
}

func TestRun_ErrorIsolation(t *testing.T) {
	errBad := errors.New("bad archive")
	jobs := makeJobs(6)

	results := Run(context.Background(), jobs, 2, func(ctx context.Context, job Job) error {
		if job.Input == "c.cbz" {
			return errBad
		}
		return nil
	})

	failed := Failed(results)
	require.Len(t, failed, 1)
	assert.Equal(t, "c.cbz", failed[0].Job.Input)
	assert.ErrorIs(t, failed[0].Err, errBad)
	assert.NoError(t, results[5].Err)
}

func TestRun_RespectsWorkerLimit(t *testing.T) {
	var inFlight, peak atomic.Int32

	Run(context.Background(), makeJobs(12), 3, func(ctx context.Context, job Job) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results := Run(ctx, makeJobs(4), 2, func(ctx context.Context, job Job) error {
		calls.Add(1)
		return nil
	})

	assert.Zero(t, calls.Load())
	require.Len(t, Failed(results), 4)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestRun_CancelMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := Run(ctx, makeJobs(20), 1, func(ctx context.Context, job Job) error {
		if job.Input == "c.cbz" {
			cancel()
		}
		return nil
	})

	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[2].Err)
	assert.ErrorIs(t, results[19].Err, context.Canceled)
}

func TestRun_ZeroWorkers(t *testing.T) {
	results := Run(context.Background(), makeJobs(2), 0, func(ctx context.Context, job Job) error {
		return nil
	})
	assert.Empty(t, Failed(results))
}

func TestJobs(t *testing.T) {
	inputs := []string{
		filepath.Join("comics", "Vol 1.cbz"),
		filepath.Join("other", "Vol.2.cbr"),
		"noext",
	}

	jobs := Jobs(inputs, "thumbs", "png")
	assert.Equal(t, []Job{
		{Input: inputs[0], Output: filepath.Join("thumbs", "Vol 1.png")},
		{Input: inputs[1], Output: filepath.Join("thumbs", "Vol.2.png")},
		{Input: inputs[2], Output: filepath.Join("thumbs", "noext.png")},
	}, jobs)

	jobs = Jobs(inputs[:1], "", ".jpg")
	assert.Equal(t, filepath.Join("comics", "Vol 1.jpg"), jobs[0].Output)
}
