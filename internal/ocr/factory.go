package ocr

import (
	"fmt"

	"ocr-batch/internal/ocr/engine"
)

// Options carries engine configuration resolved from flags and the saved
// config file. Zero values select the defaults of each engine.
type Options struct {
	// TesseractPath overrides the tesseract binary location for the
	// "tesseract" engine.
	TesseractPath string
	// Languages are traineddata hints (e.g. "eng", "deu").
	Languages []string
	// OllamaURL and OllamaModel configure the "ollama" engine.
	OllamaURL   string
	OllamaModel string
}

func NewEngine(engineType string, opts Options) (Engine, error) {
	switch engineType {
	case "tesseract", "":
		return engine.NewTesseractEngine(opts.TesseractPath, opts.Languages), nil
	case "gosseract":
		return engine.NewGosseractEngine(opts.Languages), nil
	case "ollama":
		return engine.NewOllamaEngine(opts.OllamaURL, opts.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unknown engine type: %s", engineType)
	}
}
