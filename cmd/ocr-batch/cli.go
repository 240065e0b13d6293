package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"ocr-batch/internal/batch"
	"ocr-batch/internal/config"
	"ocr-batch/internal/fileset"
	"ocr-batch/internal/image"
	"ocr-batch/internal/ocr"
	"ocr-batch/internal/watch"
	"ocr-batch/internal/writer"
)

type CLI struct {
	files         string
	dir           string
	outputFile    string
	engineType    string
	tesseractPath string
	languages     string
	workers       int
	preprocess    bool
	watchDir      bool

	cfg config.Config
}

func NewCLI() *CLI {
	return &CLI{workers: 1, engineType: "tesseract"}
}

func (c *CLI) Run(args []string) error {
	c.cfg = config.Load()
	if c.cfg.Engine != "" {
		c.engineType = c.cfg.Engine
	}
	if c.cfg.TesseractPath != "" {
		c.tesseractPath = c.cfg.TesseractPath
	}

	fs := flag.NewFlagSet("ocr-batch", flag.ExitOnError)
	fs.StringVar(&c.files, "files", "", "Comma-separated list of image files to process")
	fs.StringVar(&c.dir, "dir", "", "Directory of images to process (searched recursively)")
	fs.StringVar(&c.outputFile, "out", "", "Output JSON file mapping image name to extracted text")
	fs.StringVar(&c.engineType, "engine", c.engineType, "OCR engine (tesseract, gosseract, ollama)")
	fs.StringVar(&c.tesseractPath, "tesseract", c.tesseractPath, "Path to the tesseract executable")
	fs.StringVar(&c.languages, "lang", "", "Comma-separated recognition languages (e.g. eng,deu)")
	fs.IntVar(&c.workers, "workers", c.workers, "Number of concurrent recognitions")
	fs.BoolVar(&c.preprocess, "preprocess", false, "Enhance images (grayscale/contrast/sharpen) before recognition")
	fs.BoolVar(&c.watchDir, "watch", false, "After the initial batch, keep watching -dir for new images")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}

	if c.files == "" && c.dir == "" {
		return fmt.Errorf("nothing to process: pass -files and/or -dir")
	}
	if c.outputFile == "" {
		return fmt.Errorf("no output file: pass -out results.json")
	}
	if c.watchDir && c.dir == "" {
		return fmt.Errorf("-watch requires -dir")
	}

	return c.process()
}

func (c *CLI) process() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	builder := fileset.NewBuilder()
	if c.files != "" {
		builder.AddFiles(splitList(c.files)...)
	}
	if c.dir != "" {
		builder.AddDir(c.dir)
	}
	for _, w := range builder.Warnings() {
		fmt.Printf("Warning: skipped %s (%s)\n", w.Path, w.Kind)
	}
	if builder.Len() == 0 && !c.watchDir {
		return fmt.Errorf("no image files found in the selection")
	}

	engine, err := ocr.NewEngine(c.engineType, ocr.Options{
		TesseractPath: c.tesseractPath,
		Languages:     splitList(c.languages),
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	opts := []batch.Option{
		batch.WithWorkers(c.workers),
		batch.WithProgress(func(ev batch.ProgressEvent) {
			fmt.Printf("Processing %d/%d: %s\n", ev.Completed, ev.Total, filepath.Base(ev.Path))
		}),
	}
	if c.preprocess {
		opts = append(opts, batch.WithPreprocessor(image.NewProcessor()))
	}
	runner := batch.NewRunner(engine, opts...)

	jsonWriter := writer.NewJSONWriter()
	defer jsonWriter.Close()

	result, err := runner.Run(ctx, builder.Paths())
	if err != nil {
		return err
	}
	if result.Len() > 0 {
		if err := jsonWriter.WriteToFile(result.Entries(), c.outputFile); err != nil {
			return fmt.Errorf("saving results (the batch itself completed, retry with a different -out): %w", err)
		}
	}
	c.report(result)
	c.saveConfig()

	if c.watchDir && ctx.Err() == nil {
		return c.watchLoop(ctx, runner, jsonWriter)
	}
	return nil
}

func (c *CLI) watchLoop(ctx context.Context, runner *batch.Runner, jsonWriter *writer.JSONWriter) error {
	fmt.Printf("Watching %s for new images (Ctrl-C to stop)...\n", c.dir)

	w := watch.New(c.dir, func(paths []string) {
		result, err := runner.Run(ctx, paths)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if result.Len() == 0 {
			return
		}
		if err := jsonWriter.MergeToFile(result.Entries(), c.outputFile); err != nil {
			fmt.Printf("Error saving results: %v\n", err)
			return
		}
		fmt.Printf("Added %d file(s) to %s\n", result.Len(), c.outputFile)
	})
	return w.Run(ctx)
}

func (c *CLI) report(result *batch.Result) {
	for path, err := range result.Failures() {
		fmt.Printf("Error processing %s: %v\n", path, err)
	}
	if result.Cancelled() {
		fmt.Printf("\nCancelled after %d of %d files. Partial results saved to: %s\n",
			result.Len(), result.Total(), c.outputFile)
		return
	}
	if result.Len() > 0 {
		fmt.Printf("\nProcessing complete! Results saved to: %s\n", c.outputFile)
		fmt.Printf("Processed %d images (%d failed)\n", result.Len(), len(result.Failures()))
	}
}

// saveConfig remembers the settings that worked for the next invocation.
func (c *CLI) saveConfig() {
	c.cfg.Engine = c.engineType
	c.cfg.TesseractPath = c.tesseractPath
	if c.dir != "" {
		c.cfg.LastInputDir = c.dir
	}
	if dir := filepath.Dir(c.outputFile); dir != "" {
		c.cfg.LastOutputDir = dir
	}
	if err := c.cfg.Save(); err != nil {
		fmt.Printf("Warning: could not save config: %v\n", err)
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
