// Package pipeline drives concatenation cycles: it plans the output shape,
// allocates the output, splits it into tiles and executes the tiles on a
// worker pool, reporting per-input failures without aborting the cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mrjoshuak/go-chancat/concat"
	"github.com/mrjoshuak/go-chancat/internal/logger"
	"github.com/mrjoshuak/go-chancat/raster"
)

// ErrEmptyPlan is returned when no connection contributes components or the
// output cannot be allocated. When the first contributing input has an
// unsupported element type the error also wraps a *concat.UnsupportedTypeError.
var ErrEmptyPlan = errors.New("pipeline: nothing to concatenate")

// Result describes one completed update cycle.
type Result struct {
	// Output is the concatenated image. It is reused by later cycles of the
	// same Pipeline while the planned shape is unchanged.
	Output *raster.Image

	// Plan is the shape plan the cycle executed.
	Plan concat.Plan

	// Tiles are the tiles the output was split into.
	Tiles []raster.Extent

	// Errors holds every error reported during the cycle, as *TileError.
	Errors []error
}

// OK reports whether every input was copied into every tile.
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

// Pipeline runs update cycles for a concatenation filter.
// A Pipeline must not run concurrent Updates.
type Pipeline struct {
	config   Config
	logger   logger.Logger
	reporter Reporter
	progress concat.Progress

	output *raster.Image
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConfig sets the parallelism configuration.
func WithConfig(c Config) Option {
	return func(p *Pipeline) {
		p.config = c
	}
}

// WithLogger sets the logger used for cycle events.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithReporter sets the error channel tile errors are sent to, in addition
// to the cycle Result.
func WithReporter(r Reporter) Option {
	return func(p *Pipeline) {
		p.reporter = r
	}
}

// WithProgress sets the progress hook passed to every tile.
func WithProgress(pr concat.Progress) Option {
	return func(p *Pipeline) {
		p.progress = pr
	}
}

// New returns a pipeline with the given options applied.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		config: DefaultConfig(),
		logger: logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.reporter == nil {
		p.reporter = NewLogReporter(p.logger)
	}
	return p
}

// Update runs one cycle for f. Planning completes before any tile starts.
// Tile errors are reported and collected in the Result; they do not fail the
// cycle. Cancellation of ctx stops dispatch of further tiles, and Update then
// returns the partial Result together with ctx's error.
func (p *Pipeline) Update(ctx context.Context, f *concat.Filter) (*Result, error) {
	start := time.Now()

	plan := f.Plan()
	if plan.Components() == 0 {
		return nil, ErrEmptyPlan
	}

	if !plan.Output.Type.Valid() {
		first := plan.Inputs[0]
		return nil, fmt.Errorf("%w: %w", ErrEmptyPlan, &concat.UnsupportedTypeError{Index: first.Index, Type: first.Type})
	}
	out, err := p.allocate(plan.Output)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmptyPlan, err)
	}

	tiles := raster.Split(out.Extent(), p.config.effectiveTiles())
	workers := p.config.effectiveWorkers()
	if workers > len(tiles) {
		workers = len(tiles)
	}

	p.logger.Debug("update started",
		zap.Int("inputs", f.NumInputs()),
		zap.Int("components", plan.Components()),
		zap.Stringer("type", plan.Output.Type),
		zap.Stringer("extent", plan.Output.Extent),
		zap.Int("tiles", len(tiles)),
		zap.Int("workers", workers))

	tileErrs := make([]error, len(tiles))
	workerIDs := make([]int, len(tiles))

	pool := NewWorkerPool(workers)
	var ctxErr error
	for i, tile := range tiles {
		if ctxErr = ctx.Err(); ctxErr != nil {
			break
		}
		pool.Submit(func(workerID int) {
			workerIDs[i] = workerID
			tileErrs[i] = f.ExecuteTile(plan, out, tile, workerID, p.progress)
		})
	}
	pool.Wait()
	pool.Close()

	result := &Result{Output: out, Plan: plan, Tiles: tiles}
	for i, tile := range tiles {
		for _, err := range splitErrors(tileErrs[i]) {
			p.reporter.Report(tile, workerIDs[i], err)
			result.Errors = append(result.Errors, &TileError{Tile: tile, WorkerID: workerIDs[i], Err: err})
		}
	}

	p.logger.Debug("update finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("errors", len(result.Errors)))

	if ctxErr != nil {
		return result, ctxErr
	}
	return result, nil
}

// allocate returns the output image for meta, reusing the previous cycle's
// buffer when the shape is unchanged.
func (p *Pipeline) allocate(meta raster.Metadata) (*raster.Image, error) {
	if p.output != nil && p.output.Metadata().Equal(meta) {
		return p.output, nil
	}
	out, err := raster.NewImage(meta)
	if err != nil {
		return nil, err
	}
	p.output = out
	return out, nil
}
