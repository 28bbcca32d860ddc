package pipeline

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/mrjoshuak/go-chancat/concat"
	"github.com/mrjoshuak/go-chancat/internal/logger"
	"github.com/mrjoshuak/go-chancat/raster"
)

// Reporter is the pipeline's error channel. Report is called once for every
// error a tile produced; the cycle continues regardless.
type Reporter interface {
	Report(tile raster.Extent, workerID int, err error)
}

// TileError is an error produced while executing one tile.
type TileError struct {
	Tile     raster.Extent
	WorkerID int
	Err      error
}

func (e *TileError) Error() string {
	return "pipeline: tile " + e.Tile.String() + ": " + e.Err.Error()
}

func (e *TileError) Unwrap() error {
	return e.Err
}

// LogReporter logs every reported error and keeps them for inspection.
// It is safe for concurrent use.
type LogReporter struct {
	logger logger.Logger

	mu     sync.Mutex
	errors []error
}

// NewLogReporter returns a reporter that logs through l.
func NewLogReporter(l logger.Logger) *LogReporter {
	if l == nil {
		l = logger.NewNoopLogger()
	}
	return &LogReporter{logger: l}
}

// Report logs err with the connection index and element types it carries.
func (r *LogReporter) Report(tile raster.Extent, workerID int, err error) {
	fields := []zap.Field{
		zap.Stringer("tile", tile),
		zap.Int("worker", workerID),
		zap.Error(err),
	}

	var mismatch *concat.TypeMismatchError
	var unsupported *concat.UnsupportedTypeError
	switch {
	case errors.As(err, &mismatch):
		fields = append(fields,
			zap.Int("input", mismatch.Index),
			zap.Stringer("input_type", mismatch.Input),
			zap.Stringer("output_type", mismatch.Output))
		r.logger.Error("input element type does not match output", fields...)
	case errors.As(err, &unsupported):
		fields = append(fields,
			zap.Int("input", unsupported.Index),
			zap.Stringer("type", unsupported.Type))
		r.logger.Error("unsupported element type", fields...)
	default:
		r.logger.Error("tile execution failed", fields...)
	}

	r.mu.Lock()
	r.errors = append(r.errors, &TileError{Tile: tile, WorkerID: workerID, Err: err})
	r.mu.Unlock()
}

// Errors returns every error reported so far.
func (r *LogReporter) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errors...)
}

// Reset discards collected errors.
func (r *LogReporter) Reset() {
	r.mu.Lock()
	r.errors = nil
	r.mu.Unlock()
}

// splitErrors flattens errors joined with errors.Join.
func splitErrors(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, splitErrors(e)...)
		}
		return out
	}
	return []error{err}
}

type multiReporter []Reporter

func (m multiReporter) Report(tile raster.Extent, workerID int, err error) {
	for _, r := range m {
		r.Report(tile, workerID, err)
	}
}

// MultiReporter returns a Reporter that forwards every error to each of rs.
func MultiReporter(rs ...Reporter) Reporter {
	return multiReporter(append([]Reporter(nil), rs...))
}
