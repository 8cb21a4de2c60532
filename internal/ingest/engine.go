package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agentic-research/fextract/api"
)

// ResultMap holds one Record per visited path. Keys are the root joined
// with entry names; iteration order carries no meaning.
type ResultMap map[string]api.Record

// Walker enumerates a directory and dispatches every file it finds.
type Walker struct {
	Registry  *Registry
	Recursive bool
	// Workers > 1 extracts files concurrently with at most Workers in flight.
	Workers int
	Logger  *zap.Logger
}

// NewWalker returns a sequential, non-recursive walker over reg.
func NewWalker(reg *Registry, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{Registry: reg, Logger: logger}
}

// Walk extracts every file under root. The only error it returns is a
// *StructuralError when root is not a readable directory; every other
// failure is recorded in the map under the path that caused it.
func (w *Walker) Walk(root string) (ResultMap, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &StructuralError{Path: root, Err: fmt.Errorf("%w: %w", ErrNotDirectory, err)}
	}
	if !info.IsDir() {
		return nil, &StructuralError{Path: root, Err: ErrNotDirectory}
	}

	results := make(ResultMap)
	files := w.enumerate(root, results)
	w.logger().Debug("enumerated directory",
		zap.String("root", root),
		zap.Int("files", len(files)),
		zap.Bool("recursive", w.Recursive))

	// 1. Sequential baseline
	if w.Workers <= 1 {
		for _, path := range files {
			results[path] = w.Extract(path)
		}
		return results, nil
	}

	// 2. Bounded pool: each goroutine owns one slot, merged after Wait
	records := make([]api.Record, len(files))
	var g errgroup.Group
	g.SetLimit(w.Workers)
	for i, path := range files {
		g.Go(func() error {
			records[i] = w.Extract(path)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
	for i, path := range files {
		results[path] = records[i]
	}
	return results, nil
}

// Extract dispatches a single file and logs the outcome.
func (w *Walker) Extract(path string) api.Record {
	log := w.logger()
	log.Debug("extracting", zap.String("path", path))

	rec := w.Registry.Dispatch(path)
	switch {
	case rec.OK():
		log.Debug("extracted", zap.String("path", path), zap.String("type", string(rec.Type)))
	case rec.Failure.Kind == api.KindUnsupportedFormat:
		log.Warn(rec.Failure.Message, zap.String("path", path))
	default:
		log.Error("extraction failed",
			zap.String("path", path),
			zap.String("type", string(rec.Type)),
			zap.String("kind", string(rec.Failure.Kind)),
			zap.String("error", rec.Failure.Message))
	}
	return rec
}

// enumerate collects regular files (and symlinks to regular files) under
// root with an explicit stack. Unreadable directories and broken entries
// are written straight into results.
func (w *Walker) enumerate(root string, results ResultMap) []string {
	var files []string
	stack := []string{root}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// ReadDir returns the entries it managed to read alongside the error.
		entries, err := os.ReadDir(dir)
		if err != nil {
			w.recordIOFailure(results, dir, err)
		}

		var subdirs []string
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			switch k, err := entryKind(path, entry); {
			case err != nil:
				w.recordIOFailure(results, path, err)
			case k == kindFile:
				files = append(files, path)
			case k == kindDir && w.Recursive:
				subdirs = append(subdirs, path)
			case k == kindOther:
				w.logger().Debug("skipping non-regular file", zap.String("path", path))
			}
		}

		// Push in reverse so the first subdirectory is visited first.
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
	return files
}

func (w *Walker) recordIOFailure(results ResultMap, path string, err error) {
	w.logger().Error("cannot read entry", zap.String("path", path), zap.Error(err))
	results[path] = api.Fail(api.FormatUnknown, api.KindIO, err.Error())
}

func (w *Walker) logger() *zap.Logger {
	if w.Logger == nil {
		return zap.NewNop()
	}
	return w.Logger
}

type kind int

const (
	kindOther kind = iota
	kindFile
	kindDir
	// kindLinkedDir is a symlink to a directory; it is never descended.
	kindLinkedDir
)

// entryKind classifies a directory entry. Symlinks are resolved once:
// links to files count as files, links to directories are not followed.
func entryKind(path string, entry fs.DirEntry) (kind, error) {
	mode := entry.Type()
	switch {
	case mode.IsRegular():
		return kindFile, nil
	case mode.IsDir():
		return kindDir, nil
	case mode&fs.ModeSymlink != 0:
		info, err := os.Stat(path)
		if err != nil {
			return kindOther, err
		}
		if info.Mode().IsRegular() {
			return kindFile, nil
		}
		if info.IsDir() {
			return kindLinkedDir, nil
		}
	}
	return kindOther, nil
}
