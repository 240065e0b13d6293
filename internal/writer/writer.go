package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type WriteMode int

const (
	// ModeReplace discards anything previously written to the output path.
	ModeReplace WriteMode = iota
	// ModeMerge folds new entries into the mapping already written to the
	// output path, re-emitting the whole file. Watch mode relies on this.
	ModeMerge
)

type WriteRequest struct {
	Entries    map[string]string
	OutputPath string
	Mode       WriteMode
	ResponseCh chan error
}

// JSONWriter persists name→text mappings as a flat JSON object, one writer
// goroutine serializing all file access. The current mapping per output path
// is kept in memory so merges re-emit a complete file.
type JSONWriter struct {
	queue    chan WriteRequest
	shutdown chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
	contents map[string]map[string]string
	mu       sync.RWMutex
}

func NewJSONWriter() *JSONWriter {
	jw := &JSONWriter{
		queue:    make(chan WriteRequest, 100),
		shutdown: make(chan struct{}),
		contents: make(map[string]map[string]string),
	}
	jw.startWorker()
	return jw
}

func (jw *JSONWriter) startWorker() {
	jw.wg.Add(1)
	go func() {
		defer jw.wg.Done()
		for {
			select {
			case req := <-jw.queue:
				req.ResponseCh <- jw.writeToFileSync(req.Entries, req.OutputPath, req.Mode)
			case <-jw.shutdown:
				return
			}
		}
	}()
}

func (jw *JSONWriter) Close() {
	jw.once.Do(func() {
		close(jw.shutdown)
		jw.wg.Wait()
	})
}

// WriteToFile replaces the output file with the given entries.
func (jw *JSONWriter) WriteToFile(entries map[string]string, outputPath string) error {
	return jw.submit(entries, outputPath, ModeReplace)
}

// MergeToFile folds entries into the output file's existing mapping.
func (jw *JSONWriter) MergeToFile(entries map[string]string, outputPath string) error {
	return jw.submit(entries, outputPath, ModeMerge)
}

func (jw *JSONWriter) submit(entries map[string]string, outputPath string, mode WriteMode) error {
	responseCh := make(chan error, 1)
	req := WriteRequest{
		Entries:    entries,
		OutputPath: outputPath,
		Mode:       mode,
		ResponseCh: responseCh,
	}

	select {
	case jw.queue <- req:
		return <-responseCh
	case <-jw.shutdown:
		return fmt.Errorf("writer is shutting down")
	}
}

func (jw *JSONWriter) writeToFileSync(entries map[string]string, outputPath string, mode WriteMode) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	jw.mu.Lock()
	current := jw.contents[outputPath]
	if mode == ModeReplace || current == nil {
		current = make(map[string]string, len(entries))
	}
	for k, v := range entries {
		current[k] = v
	}
	jw.contents[outputPath] = current
	jw.mu.Unlock()

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("opening output file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(current); err != nil {
		return fmt.Errorf("writing JSON results: %w", err)
	}

	return nil
}
