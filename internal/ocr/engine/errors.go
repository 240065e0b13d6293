package engine

import "errors"

// ErrUnavailable marks an engine that cannot run at all (missing binary,
// missing library, unreachable server). Per-image failures never wrap it.
var ErrUnavailable = errors.New("ocr engine is not available")
