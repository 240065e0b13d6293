package fileset

import (
	"io/fs"
	"path/filepath"
	"strings"

	"ocr-batch/internal/logger"
)

// recognizedExtensions is the fixed set of image suffixes the tool accepts.
// Matching is case-insensitive.
var recognizedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".bmp":  {},
	".tiff": {},
	".tif":  {},
	".gif":  {},
}

// IsImageFile reports whether the filename carries a recognized image extension.
func IsImageFile(name string) bool {
	_, ok := recognizedExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// WarningKind classifies why a selected entry was dropped from the set.
type WarningKind string

const (
	WarnNotFound   WarningKind = "not_found"
	WarnUnreadable WarningKind = "unreadable"
	WarnNotAnImage WarningKind = "not_an_image"
)

// Warning records a selected entry that could not join the batch. Warnings are
// advisory; they never abort building the set.
type Warning struct {
	Path string
	Kind WarningKind
	Err  error
}

// Builder resolves user-selected files and directories into an ordered,
// duplicate-free list of image paths. Directories are expanded recursively.
type Builder struct {
	paths    []string
	seen     map[string]struct{}
	warnings []Warning
}

func NewBuilder() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// AddFiles adds individual files in the order given. Non-image files and
// missing paths are dropped with a warning.
func (b *Builder) AddFiles(paths ...string) {
	for _, p := range paths {
		b.addFile(p, true)
	}
}

// AddDir walks dir recursively and adds every contained image file in
// lexicographic listing order. An unreadable directory (or subdirectory) is
// dropped with a warning and the walk continues elsewhere.
func (b *Builder) AddDir(dir string) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warnf("skipping %s: %v", path, err)
			b.warnings = append(b.warnings, Warning{Path: path, Kind: WarnUnreadable, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		// Directory expansion filters silently: a .txt in a folder is
		// expected, only explicitly selected non-images warrant a warning.
		if IsImageFile(path) {
			b.addFile(path, false)
		}
		return nil
	})
	if err != nil {
		b.warnings = append(b.warnings, Warning{Path: dir, Kind: WarnUnreadable, Err: err})
	}
}

func (b *Builder) addFile(path string, explicit bool) {
	if !IsImageFile(path) {
		if explicit {
			logger.Warnf("skipping non-image file %s", path)
			b.warnings = append(b.warnings, Warning{Path: path, Kind: WarnNotAnImage})
		}
		return
	}
	key, err := normalize(path)
	if err != nil {
		logger.Warnf("skipping %s: %v", path, err)
		b.warnings = append(b.warnings, Warning{Path: path, Kind: WarnNotFound, Err: err})
		return
	}
	if _, dup := b.seen[key]; dup {
		logger.DebugLog("[fileset]: duplicate %s (already added)", path)
		return
	}
	b.seen[key] = struct{}{}
	b.paths = append(b.paths, path)
}

// normalize resolves path to an absolute, symlink-free form usable as a dedup
// key. It fails when the file does not exist.
func normalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	} else {
		return "", err
	}
	return abs, nil
}

// Paths returns the resolved image paths in selection order.
func (b *Builder) Paths() []string {
	out := make([]string, len(b.paths))
	copy(out, b.paths)
	return out
}

// Warnings returns the entries dropped so far, in the order encountered.
func (b *Builder) Warnings() []Warning {
	out := make([]Warning, len(b.warnings))
	copy(out, b.warnings)
	return out
}

// Len reports how many image paths are currently in the set.
func (b *Builder) Len() int { return len(b.paths) }
