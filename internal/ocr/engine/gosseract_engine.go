package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine runs tesseract in-process through libtesseract. A fresh
// client per image keeps recognitions independent; gosseract clients are not
// safe for reuse across goroutines.
type GosseractEngine struct {
	languages []string
}

func NewGosseractEngine(languages []string) *GosseractEngine {
	return &GosseractEngine{languages: languages}
}

func (g *GosseractEngine) Available() error {
	langs, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return fmt.Errorf("querying traineddata: %v: %w", err, ErrUnavailable)
	}
	if len(langs) == 0 {
		return fmt.Errorf("no traineddata installed: %w", ErrUnavailable)
	}
	return nil
}

func (g *GosseractEngine) RecognizeText(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if len(g.languages) > 0 {
		if err := client.SetLanguage(g.languages...); err != nil {
			return "", fmt.Errorf("setting languages: %w", err)
		}
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("setting image %s: %w", imagePath, err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to extract text from image %s: %w", imagePath, err)
	}
	return strings.TrimSpace(text), nil
}

func (g *GosseractEngine) Close() error { return nil }
