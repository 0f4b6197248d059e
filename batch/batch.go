// Package batch runs thumbnail jobs concurrently.
package batch

import (
	"context"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Job is one archive to thumbnail.
type Job struct {
	Input  string
	Output string
}

// Result is the outcome of a Job. Err is nil on success.
type Result struct {
	Job Job
	Err error
}

// Func processes a single job.
type Func func(ctx context.Context, job Job) error

// Run calls fn for every job with at most workers calls in flight and
// returns one result per job, in job order. A failing job does not affect
// the others. Once ctx is done no further jobs are started and the
// remaining results carry ctx.Err().
func Run(ctx context.Context, jobs []Job, workers int, fn Func) []Result {
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(jobs))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, job := range jobs {
		results[i].Job = job
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Err = fn(ctx, job)
			return nil
		})
	}

	g.Wait()
	return results
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Jobs maps each input to an output in outDir named after the input with
// its extension replaced by ext (".png" style). An empty outDir places each
// output next to its input.
func Jobs(inputs []string, outDir, ext string) []Job {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	jobs := make([]Job, 0, len(inputs))
	for _, in := range inputs {
		base := filepath.Base(in)
		name := strings.TrimSuffix(base, filepath.Ext(base)) + ext

		dir := outDir
		if dir == "" {
			dir = filepath.Dir(in)
		}
		jobs = append(jobs, Job{Input: in, Output: filepath.Join(dir, name)})
	}
	return jobs
}
