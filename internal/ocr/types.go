package ocr

import (
	"context"

	"ocr-batch/internal/ocr/engine"
)

// ErrEngineUnavailable signals the engine binary/library cannot be reached at
// all. Callers surface it before submitting any file, with guidance on fixing
// the engine path; it is never used for a single bad image.
var ErrEngineUnavailable = engine.ErrUnavailable

// Engine is the recognition collaborator: one image in, extracted text out.
// Text comes back exactly as the engine produced it, apart from the engine's
// own trimming.
type Engine interface {
	// RecognizeText extracts text from the image at imagePath. An empty
	// string with a nil error is a valid outcome (no detectable text).
	RecognizeText(ctx context.Context, imagePath string) (string, error)
	// Available probes the engine without processing an image. It wraps
	// ErrEngineUnavailable when the engine is missing or misconfigured.
	Available() error
	Close() error
}
