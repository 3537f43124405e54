// Package batch runs many case files through the calculator
// concurrently. One bad file fails its own item, never its siblings.
package batch

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/taxghar/taxghar/internal/calculation"
	"github.com/taxghar/taxghar/internal/config"
	"github.com/taxghar/taxghar/internal/domain"
)

// defaultWorkers bounds concurrency when the caller does not.
const defaultWorkers = 4

// Item is one case file's outcome. Exactly one of Assessment or Err is
// set.
type Item struct {
	// ID is assigned per run so batch logs and outputs can be
	// correlated without leaning on file paths.
	ID         string             `json:"id" yaml:"id"`
	Path       string             `json:"path" yaml:"path"`
	Assessment *domain.Assessment `json:"assessment,omitempty" yaml:"assessment,omitempty"`
	Err        error              `json:"-" yaml:"-"`
	Error      string             `json:"error,omitempty" yaml:"error,omitempty"`
}

// Result is a completed batch. Items hold the same order as the input
// paths regardless of completion order.
type Result struct {
	Items     []Item `json:"items" yaml:"items"`
	Succeeded int    `json:"succeeded" yaml:"succeeded"`
	Failed    int    `json:"failed" yaml:"failed"`
}

// Runner fans case files out over a fixed worker pool.
type Runner struct {
	Calculator *calculation.Calculator
	Parser     *config.InputParser
	Workers    int
	Logger     calculation.Logger
}

// NewRunner creates a runner over a calculator with default concurrency.
func NewRunner(calc *calculation.Calculator) *Runner {
	return &Runner{
		Calculator: calc,
		Parser:     config.NewInputParser(),
		Workers:    defaultWorkers,
		Logger:     calculation.NopLogger{},
	}
}

// Run processes the case files and returns every item's outcome. The
// only error Run itself returns is context cancellation; per-file
// failures are recorded on their items.
func (r *Runner) Run(ctx context.Context, paths []string) (*Result, error) {
	workers := r.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	items := make([]Item, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				items[idx] = r.runOne(ctx, paths[idx])
			}
		}()
	}

dispatch:
	for idx := range paths {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{Items: items}
	for i := range items {
		if items[i].Err != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}
	return result, nil
}

func (r *Runner) runOne(ctx context.Context, path string) Item {
	item := Item{ID: uuid.NewString(), Path: path}

	fail := func(err error) Item {
		item.Err = err
		item.Error = err.Error()
		r.Logger.Errorf("%s: %v", path, err)
		return item
	}

	cf, err := r.Parser.LoadFromFile(path)
	if err != nil {
		return fail(err)
	}
	req, err := cf.ToRequest()
	if err != nil {
		return fail(err)
	}
	assessment, err := r.Calculator.Calculate(ctx, req)
	if err != nil {
		return fail(err)
	}
	assessment.Warnings = append(assessment.Warnings, r.Parser.ConfidenceFindings(cf)...)

	item.Assessment = assessment
	r.Logger.Infof("%s: assessed %s", path, assessment.Year)
	return item
}
