package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mr-pipeline/internal/debug"
)

// Runner runs all extraction drivers against one source directory.
// Drivers write disjoint artifact sets, so they run in parallel up to
// Workers at a time. A driver whose required source file is missing is
// skipped; any other failure aborts the run.
type Runner struct {
	SourceDir string
	OutputDir string
	Workers   int
	Debug     bool
}

// Run executes every driver and returns the merged per-artifact record
// counts.
func (r *Runner) Run(ctx context.Context) (map[string]int, error) {
	extractors := []Extractor{
		NewCaseStudy(r.SourceDir, r.OutputDir),
		NewMarketPass(r.SourceDir, r.OutputDir),
		NewPriceAnalysis(r.SourceDir, r.OutputDir),
	}

	workers := r.Workers
	if workers <= 0 {
		workers = len(extractors)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	combined := make(map[string]int)

	for _, ex := range extractors {
		ex := ex
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			defer debug.DebugTiming(r.Debug, ex.Name()+" extraction")()

			results, err := ex.Extract()
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					debug.DebugOutput(r.Debug, "Skipping %s: %v", ex.Name(), err)
					return nil
				}
				return fmt.Errorf("%s extraction failed: %w", ex.Name(), err)
			}

			mu.Lock()
			for filename, count := range results {
				combined[filename] = count
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return combined, nil
}
