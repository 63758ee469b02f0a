// Package driver orchestrates parsing, validation and lowering for a set
// of compilation units. Units are independent (each gets a fresh lowering
// context), so files are processed concurrently; the core itself stays
// single-threaded per unit.
package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"siergen/internal/diag"
	"siergen/internal/ir"
	"siergen/internal/irparse"
	"siergen/internal/lower"
	"siergen/internal/project"
	"siergen/internal/sierra"
	"siergen/internal/source"
)

// Result is the outcome of one compilation unit.
type Result struct {
	Path    string
	FileID  source.FileID
	Bag     *diag.Bag
	Program *sierra.Program
	Report  *lower.Report
	Cached  bool
	Err     error
}

// Options configures a driver run.
type Options struct {
	Lower          lower.Options
	MaxDiagnostics int
	Jobs           int
	Cache          *DiskCache
}

// LowerFiles loads and lowers every path. Results keep the input order.
// A failed unit does not stop the others; per-unit failures live in
// Result.Err and Result.Bag.
func LowerFiles(ctx context.Context, fileSet *source.FileSet, paths []string, opts Options) ([]Result, error) {
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 100
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(paths))

	// Loading mutates the shared FileSet, so it happens up front.
	fileIDs := make([]source.FileID, len(paths))
	loadErrs := make([]error, len(paths))
	for i, path := range paths {
		fileIDs[i], loadErrs[i] = fileSet.Load(path)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(paths), 1)))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			bag := diag.NewBag(opts.MaxDiagnostics)
			res := Result{Path: path, Bag: bag}
			if loadErrs[i] != nil {
				res.Err = fmt.Errorf("failed to load %s: %w", path, loadErrs[i])
				results[i] = res
				return nil
			}
			res.FileID = fileIDs[i]
			results[i] = lowerUnit(fileSet, res, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// lowerUnit runs one compilation unit: cache probe, parse, validate,
// lower, cache fill.
func lowerUnit(fileSet *source.FileSet, res Result, opts Options) Result {
	file := fileSet.Get(res.FileID)
	key := cacheKey(project.Digest(file.Hash), opts.Lower)

	if prog, report, ok, err := opts.Cache.Get(key); err == nil && ok {
		res.Program = prog
		res.Report = report
		res.Cached = true
		return res
	}

	m := irparse.Parse(fileSet, res.FileID, res.Bag)
	if res.Bag.HasErrors() {
		res.Err = fmt.Errorf("%s: parse failed", res.Path)
		return res
	}

	if err := ir.Validate(m); err != nil {
		res.Err = fmt.Errorf("%s: invalid IR: %w", res.Path, err)
		return res
	}

	prog, report, err := lower.Lower(m, opts.Lower)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", res.Path, err)
		return res
	}
	res.Program = prog
	res.Report = report

	// Cache write failures never fail the build.
	_ = opts.Cache.Put(key, prog, report)
	return res
}
