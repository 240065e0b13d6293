package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ocr-batch/internal/logger"
	"ocr-batch/internal/ocr"
)

// ProgressEvent is emitted after each file finishes, success or failure.
type ProgressEvent struct {
	Completed int
	Total     int
	Path      string
}

// Preprocessor optionally rewrites an image into a cleaner temporary copy
// before recognition. image.Processor satisfies it.
type Preprocessor interface {
	Enhance(path string) (string, error)
	Cleanup(path string) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithPreprocessor enables image enhancement before each recognition.
func WithPreprocessor(p Preprocessor) Option {
	return func(r *Runner) { r.pre = p }
}

// WithWorkers sets the number of concurrent recognitions. Values below 2 keep
// the original sequential behavior.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 1 {
			r.workers = n
		}
	}
}

// WithProgress registers a callback invoked after each file. With more than
// one worker the callback may be invoked from multiple goroutines.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(r *Runner) { r.onProgress = fn }
}

// Runner feeds each image of a batch through the recognition engine and
// collects one entry per image. A single file's failure never aborts the
// batch; only an entirely unavailable engine does.
type Runner struct {
	engine     ocr.Engine
	pre        Preprocessor
	workers    int
	onProgress func(ProgressEvent)
}

func NewRunner(engine ocr.Engine, opts ...Option) *Runner {
	r := &Runner{engine: engine, workers: 1}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes paths and returns the accumulated Result. The error return is
// reserved for the batch not being able to start at all (engine missing or
// misconfigured); cancellation is reported through Result.Cancelled with the
// entries processed so far retained.
func (r *Runner) Run(ctx context.Context, paths []string) (*Result, error) {
	if err := r.engine.Available(); err != nil {
		return nil, fmt.Errorf("recognition engine is not ready, configure the engine path before processing: %w", err)
	}

	res := newResult(len(paths))
	logger.DebugLog("[runner]: starting batch of %d files with %d worker(s)", len(paths), r.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, path := range paths {
		// Cancellation is checked between items.
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			r.processOne(gctx, path, res)
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil && res.Len() < res.Total() {
		logger.DebugLog("[runner]: cancelled after %d/%d files", res.Len(), res.Total())
		res.markCancelled()
	}
	return res, nil
}

func (r *Runner) processOne(ctx context.Context, path string, res *Result) {
	target := path
	if r.pre != nil {
		processed, err := r.pre.Enhance(path)
		if err != nil {
			// Fall back to the original image.
			logger.Warnf("preprocessing %s failed, using original: %v", path, err)
		} else {
			target = processed
			defer func() {
				if err := r.pre.Cleanup(processed); err != nil {
					logger.DebugLog("[runner]: cleanup %s: %v", processed, err)
				}
			}()
		}
	}

	text, err := r.engine.RecognizeText(ctx, target)
	if err != nil && ctx.Err() != nil {
		// The run was cancelled while this file was in flight; an
		// aborted attempt is not a per-file failure.
		return
	}

	var completed int
	if err != nil {
		logger.DebugLog("[runner]: recognition failed for %s: %v", path, err)
		completed = res.addFailure(path, err)
	} else {
		logger.DebugLog("[runner]: recognized %s (%d bytes of text)", path, len(text))
		completed = res.addText(path, text)
	}

	if r.onProgress != nil {
		r.onProgress(ProgressEvent{Completed: completed, Total: res.Total(), Path: path})
	}
}
