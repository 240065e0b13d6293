package image

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Processor prepares scans for recognition: grayscale, upscale tiny images,
// bump contrast and sharpen. It writes a sibling "_processed" file so the
// original is never touched; callers remove it with Cleanup afterwards.
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

func (p *Processor) Enhance(path string) (string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening image %s: %w", path, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() < 300 || bounds.Dy() < 300 {
		img = imaging.Resize(img, bounds.Dx()*2, bounds.Dy()*2, imaging.Lanczos)
	}

	gray := imaging.Grayscale(img)
	contrast := imaging.AdjustContrast(gray, 10)
	sharp := imaging.Sharpen(contrast, 1.1)

	tempPath := processedPath(path)
	if err := imaging.Save(sharp, tempPath); err != nil {
		return "", fmt.Errorf("saving processed image: %w", err)
	}

	return tempPath, nil
}

func (p *Processor) Cleanup(filePath string) error {
	return os.Remove(filePath)
}

// IsProcessedFile reports whether path is an Enhance artifact, so directory
// scans don't pick up leftovers from an interrupted run.
func IsProcessedFile(path string) bool {
	return strings.Contains(filepath.Base(path), "_processed")
}

func processedPath(path string) string {
	extension := filepath.Ext(path)
	base := path[:len(path)-len(extension)]
	// imaging.Save infers the format from the extension; gif is not a
	// supported encode target, so processed gifs become pngs.
	if strings.EqualFold(extension, ".gif") {
		extension = ".png"
	}
	return base + "_processed" + extension
}
