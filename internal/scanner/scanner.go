package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"rule628/internal/model"
)

// FileWalker is responsible for traversing directories and feeding files to a channel
type FileWalker struct {
	Extensions map[string]struct{}
	Excludes   []string
}

func NewFileWalker(exts []string, excludes []string) *FileWalker {
	e := make(map[string]struct{})
	for _, ext := range exts {
		e[strings.TrimPrefix(strings.ToLower(ext), ".")] = struct{}{}
	}
	return &FileWalker{
		Extensions: e,
		Excludes:   excludes,
	}
}

// Walk traverses every root in turn and returns a channel of file paths.
// A root may be a single file. It runs in a separate goroutine and closes
// both channels when done; the first walk error stops the traversal.
func (fw *FileWalker) Walk(ctx context.Context, roots ...string) (<-chan string, <-chan error) {
	paths := make(chan string, 100)
	errs := make(chan error, 1)

	go func() {
		defer close(paths)
		defer close(errs)

		for _, root := range roots {
			if err := fw.walk(ctx, root, paths); err != nil {
				errs <- err
				return
			}
		}
	}()

	return paths, errs
}

func (fw *FileWalker) walk(ctx context.Context, root string, paths chan<- string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			if path != root && fw.excluded(path, d.Name()) {
				return filepath.SkipDir
			}
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir // Skip hidden directories like .git
			}
			return nil
		}

		if fw.excluded(path, d.Name()) || !fw.accepts(path) {
			return nil
		}

		select {
		case paths <- path:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})
}

// excluded matches exclude patterns as globs on the base name or as
// substrings of the path.
func (fw *FileWalker) excluded(path, name string) bool {
	for _, exclude := range fw.Excludes {
		matched, _ := filepath.Match(exclude, name)
		if matched || strings.Contains(filepath.ToSlash(path), exclude) {
			return true
		}
	}
	return false
}

func (fw *FileWalker) accepts(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if len(ext) > 0 {
		ext = ext[1:] // remove dot
	}
	_, ok := fw.Extensions[ext]
	return ok
}

type ScanResult struct {
	File    string
	Results []model.UnitResult
	Error   error
}

// Processor defines a function that audits the units of one file
type Processor func(path string) ([]model.UnitResult, error)

// WorkerPool manages concurrent processing
type WorkerPool struct {
	Concurrency int
	Processor   Processor
}

func NewWorkerPool(concurrency int, proc Processor) *WorkerPool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &WorkerPool{
		Concurrency: concurrency,
		Processor:   proc,
	}
}

func (wp *WorkerPool) Start(ctx context.Context, paths <-chan string) <-chan ScanResult {
	results := make(chan ScanResult)
	var wg sync.WaitGroup

	for i := 0; i < wp.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				if ctx.Err() != nil {
					return
				}
				res, err := wp.Processor(path)
				// Failed files are sent too so they can be reported
				select {
				case results <- ScanResult{File: path, Results: res, Error: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
