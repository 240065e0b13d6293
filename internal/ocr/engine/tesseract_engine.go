package engine

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"ocr-batch/internal/logger"
)

// TesseractEngine shells out to the tesseract binary. The binary location is
// configurable so users with a non-PATH install (common on Windows) can point
// at the executable directly.
type TesseractEngine struct {
	command   string
	languages []string
}

func NewTesseractEngine(command string, languages []string) *TesseractEngine {
	if command == "" {
		command = "tesseract"
	}
	return &TesseractEngine{command: command, languages: languages}
}

func (t *TesseractEngine) Available() error {
	out, err := exec.Command(t.command, "--version").CombinedOutput()
	if err != nil {
		return fmt.Errorf("probing %s: %v: %w", t.command, err, ErrUnavailable)
	}
	logger.DebugLog("[tesseract]: version probe ok: %s", firstLine(out))
	return nil
}

func (t *TesseractEngine) RecognizeText(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout"}
	if len(t.languages) > 0 {
		args = append(args, "-l", strings.Join(t.languages, "+"))
	}
	// "quiet" is a config name and must come after the options.
	args = append(args, "quiet")
	cmd := exec.CommandContext(ctx, t.command, args...)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("running tesseract on %s: %w", imagePath, err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (t *TesseractEngine) Close() error { return nil }

func firstLine(out []byte) string {
	s := string(out)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
