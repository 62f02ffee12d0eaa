// Package tasks runs bulk per-entity work as fork-join index-range tasks.
package tasks

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Range is a half-open index range [Start, End).
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int {
	return r.End - r.Start
}

// Pool splits index spaces into disjoint ranges and runs one task per range.
// Run blocks until every task has finished.
type Pool struct {
	workers int
}

// NewPool returns a pool with the given worker count; n <= 0 uses NumCPU.
func NewPool(n int) *Pool {
	p := &Pool{}
	p.SetWorkers(n)
	return p
}

func (p *Pool) Workers() int {
	return p.workers
}

func (p *Pool) SetWorkers(n int) {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	p.workers = n
}

// Ranges splits [0, n) into at most Workers() contiguous ranges whose sizes
// differ by at most one.
func (p *Pool) Ranges(n int) []Range {
	if n <= 0 {
		return nil
	}
	parts := min(p.workers, n)
	size, extra := n/parts, n%parts
	out := make([]Range, 0, parts)
	start := 0
	for i := 0; i < parts; i++ {
		end := start + size
		if i < extra {
			end++
		}
		out = append(out, Range{Start: start, End: end})
		start = end
	}
	return out
}

// Run calls fn once per range of [0, n) and waits for all of them. The first
// error cancels ctx for the remaining tasks and is returned. A panicking task
// is reported as an error.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, r Range) error) error {
	ranges := p.Ranges(n)
	if len(ranges) == 0 {
		return nil
	}
	if len(ranges) == 1 {
		return runRange(ctx, ranges[0], fn)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, r := range ranges {
		r := r
		g.Go(func() error {
			return runRange(gctx, r, fn)
		})
	}
	return g.Wait()
}

func runRange(ctx context.Context, r Range, fn func(context.Context, Range) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("tasks: range [%d,%d) panicked: %v", r.Start, r.End, rec)
		}
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, r)
}
