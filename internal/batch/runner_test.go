package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocr-batch/internal/ocr"
)

type fakeEngine struct {
	availableErr error
	recognize    func(path string) (string, error)

	mu    sync.Mutex
	calls []string
}

func (f *fakeEngine) RecognizeText(ctx context.Context, imagePath string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, imagePath)
	f.mu.Unlock()
	if f.recognize != nil {
		return f.recognize(imagePath)
	}
	return "text of " + imagePath, nil
}

func (f *fakeEngine) Available() error { return f.availableErr }
func (f *fakeEngine) Close() error     { return nil }

func TestRunRecordsOneEntryPerFile(t *testing.T) {
	paths := []string{"a.png", "b.png", "c.png"}
	r := NewRunner(&fakeEngine{})

	res, err := r.Run(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, len(paths), res.Len())
	assert.False(t, res.Cancelled())
	for _, p := range paths {
		text, ok := res.Text(p)
		require.True(t, ok, p)
		assert.Equal(t, "text of "+p, text)
	}
}

func TestRunEmptyTextIsNotAFailure(t *testing.T) {
	r := NewRunner(&fakeEngine{recognize: func(string) (string, error) { return "", nil }})

	res, err := r.Run(context.Background(), []string{"blank.png"})
	require.NoError(t, err)

	text, ok := res.Text("blank.png")
	require.True(t, ok)
	assert.Equal(t, "", text)
	assert.Empty(t, res.Failures())
}

func TestRunPartialFailureContinues(t *testing.T) {
	boom := errors.New("decode error")
	engine := &fakeEngine{recognize: func(path string) (string, error) {
		if path == "2.png" {
			return "", boom
		}
		return "ok", nil
	}}

	res, err := NewRunner(engine).Run(context.Background(), []string{"1.png", "2.png", "3.png"})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Len())

	text, _ := res.Text("2.png")
	assert.Equal(t, FailureMarker, text)

	for _, p := range []string{"1.png", "3.png"} {
		text, _ := res.Text(p)
		assert.Equal(t, "ok", text)
	}

	failures := res.Failures()
	require.Len(t, failures, 1)
	assert.True(t, errors.Is(failures["2.png"], boom))
}

func TestRunFastFailsWhenEngineUnavailable(t *testing.T) {
	engine := &fakeEngine{availableErr: fmt.Errorf("no binary: %w", ocr.ErrEngineUnavailable)}

	res, err := NewRunner(engine).Run(context.Background(), []string{"a.png"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ocr.ErrEngineUnavailable))
	assert.Nil(t, res)
	assert.Empty(t, engine.calls, "no file may be attempted when the engine is missing")
}

func TestRunCancellationKeepsPartialResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	paths := []string{"1.png", "2.png", "3.png", "4.png", "5.png"}

	runner := NewRunner(&fakeEngine{}, WithProgress(func(ev ProgressEvent) {
		if ev.Completed == 2 {
			cancel()
		}
	}))

	res, err := runner.Run(ctx, paths)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Len())
	assert.True(t, res.Cancelled())
	for _, p := range paths[:2] {
		_, ok := res.Text(p)
		assert.True(t, ok, "already-processed entries are retained")
	}
}

func TestRunProgressEvents(t *testing.T) {
	var events []ProgressEvent
	runner := NewRunner(&fakeEngine{}, WithProgress(func(ev ProgressEvent) {
		events = append(events, ev)
	}))

	_, err := runner.Run(context.Background(), []string{"a.png", "b.png", "c.png"})
	require.NoError(t, err)

	require.Len(t, events, 3)
	for i, ev := range events {
		assert.Equal(t, i+1, ev.Completed)
		assert.Equal(t, 3, ev.Total)
	}
	assert.Equal(t, "a.png", events[0].Path, "sequential runs report files in order")
}

func TestRunIsIdempotent(t *testing.T) {
	paths := []string{"x.png", "y.png"}
	runner := NewRunner(&fakeEngine{})

	first, err := runner.Run(context.Background(), paths)
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, first.Entries(), second.Entries())
}

func TestRunWithWorkerPool(t *testing.T) {
	var paths []string
	for i := 0; i < 20; i++ {
		paths = append(paths, fmt.Sprintf("img-%02d.png", i))
	}

	runner := NewRunner(&fakeEngine{}, WithWorkers(4))
	res, err := runner.Run(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, len(paths), res.Len(), "completeness holds under parallelism")
	for _, p := range paths {
		_, ok := res.Text(p)
		assert.True(t, ok, p)
	}
}

type fakePreprocessor struct {
	enhanced []string
	cleaned  []string
	fail     bool
}

func (f *fakePreprocessor) Enhance(path string) (string, error) {
	if f.fail {
		return "", errors.New("enhance failed")
	}
	processed := path + ".processed"
	f.enhanced = append(f.enhanced, processed)
	return processed, nil
}

func (f *fakePreprocessor) Cleanup(path string) error {
	f.cleaned = append(f.cleaned, path)
	return nil
}

func TestRunPreprocessorIsUsedAndCleanedUp(t *testing.T) {
	pre := &fakePreprocessor{}
	engine := &fakeEngine{}
	runner := NewRunner(engine, WithPreprocessor(pre))

	res, err := runner.Run(context.Background(), []string{"a.png"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.png.processed"}, engine.calls)
	assert.Equal(t, pre.enhanced, pre.cleaned)

	// The result is keyed by the original path, not the temp copy.
	_, ok := res.Text("a.png")
	assert.True(t, ok)
}

func TestRunPreprocessorFailureFallsBackToOriginal(t *testing.T) {
	engine := &fakeEngine{}
	runner := NewRunner(engine, WithPreprocessor(&fakePreprocessor{fail: true}))

	res, err := runner.Run(context.Background(), []string{"a.png"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.png"}, engine.calls)
	assert.Equal(t, 1, res.Len())
	assert.Empty(t, res.Failures())
}

func TestEntriesUseBasenamesAndResolveCollisions(t *testing.T) {
	res := newResult(3)
	res.addText("/scans/january/receipt.png", "jan")
	res.addText("/scans/february/receipt.png", "feb")
	res.addText("/scans/february/other.png", "other")

	entries := res.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "jan", entries["receipt.png"])
	assert.Equal(t, "feb", entries["/scans/february/receipt.png"])
	assert.Equal(t, "other", entries["other.png"])
}
