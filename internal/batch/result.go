package batch

import (
	"path/filepath"
	"sync"
)

// FailureMarker is the sentinel recorded for files the engine could not
// process. It is distinct from the empty string, which means the image simply
// contained no detectable text.
const FailureMarker = "[[OCR FAILED]]"

// Result accumulates one entry per submitted image. Writes come from the
// runner's workers only; callers read it after Run returns (or snapshot via
// the accessors).
type Result struct {
	mu        sync.Mutex
	order     []string
	texts     map[string]string
	failures  map[string]error
	total     int
	cancelled bool
}

func newResult(total int) *Result {
	return &Result{
		texts:    make(map[string]string, total),
		failures: make(map[string]error),
		total:    total,
	}
}

func (r *Result) addText(path, text string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, path)
	r.texts[path] = text
	return len(r.order)
}

func (r *Result) addFailure(path string, err error) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, path)
	r.texts[path] = FailureMarker
	r.failures[path] = err
	return len(r.order)
}

func (r *Result) markCancelled() {
	r.mu.Lock()
	r.cancelled = true
	r.mu.Unlock()
}

// Text returns the recorded text (or FailureMarker) for path.
func (r *Result) Text(path string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	text, ok := r.texts[path]
	return text, ok
}

// Len reports how many files have a recorded entry.
func (r *Result) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Total reports how many files were submitted to the run.
func (r *Result) Total() int { return r.total }

// Cancelled reports whether the run stopped before processing every file.
func (r *Result) Cancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

// Failures returns a copy of the per-file errors keyed by image path.
func (r *Result) Failures() map[string]error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]error, len(r.failures))
	for k, v := range r.failures {
		out[k] = v
	}
	return out
}

// Entries returns the mapping to persist: display name (path basename) to
// extracted text, in processing order. When two source paths share a basename
// the later one keys by its full path, so no entry is silently dropped.
func (r *Result) Entries() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.order))
	owner := make(map[string]string, len(r.order))
	for _, path := range r.order {
		name := filepath.Base(path)
		if prev, taken := owner[name]; taken && prev != path {
			name = path
		} else {
			owner[name] = path
		}
		out[name] = r.texts[path]
	}
	return out
}
