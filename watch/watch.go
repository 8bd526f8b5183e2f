// ABOUTME: Filesystem watcher that mirrors edits from a local directory into a playground.
// ABOUTME: Recursively watches a tree and reports changed source files with their kind and content.
package watch

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/scratchpen/scratchpen/pad"
)

// maxFileSize caps how much of a changed file is read into the playground.
const maxFileSize = 10 << 20

// ChangeFunc receives each changed source file. The name is the base filename
// without extension; the kind is derived from the extension.
type ChangeFunc func(name string, kind pad.Kind, content string) error

// Watcher watches a directory tree and reports changed source files.
type Watcher struct {
	watcher  *fsnotify.Watcher
	rootDir  string
	onChange ChangeFunc
	done     chan struct{}
}

// watchedExts lists the extensions mirrored into the playground. Everything
// else in the tree is ignored.
var watchedExts = map[string]bool{
	".html": true, ".htm": true,
	".css":      true,
	".js":       true,
	".mjs":      true,
	".py":       true,
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// New creates a watcher over rootDir and all its non-hidden subdirectories.
func New(rootDir string, onChange ChangeFunc) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsWatcher,
		rootDir:  rootDir,
		onChange: onChange,
		done:     make(chan struct{}),
	}

	if err := w.addDirectoryRecursive(rootDir); err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// addDirectoryRecursive adds a directory and all its subdirectories to the
// watcher, skipping hidden directories.
func (w *Watcher) addDirectoryRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if name := info.Name(); strings.HasPrefix(name, ".") && path != dir {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// Start begins watching for file changes in a background goroutine.
func (w *Watcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				w.handleEvent(event.Name)

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[watch] error: %v", err)

			case <-w.done:
				return
			}
		}
	}()
}

// handleEvent reads a changed file and forwards it when it is a watchable
// source file. New directories created under the root are added to the watch.
func (w *Watcher) handleEvent(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		if !strings.HasPrefix(filepath.Base(path), ".") {
			_ = w.addDirectoryRecursive(path)
		}
		return
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !watchedExts[ext] {
		return
	}
	if info.Size() > maxFileSize {
		log.Printf("[watch] skipping %s: larger than 10MB", path)
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[watch] reading %s: %v", path, err)
		return
	}

	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	kind := pad.KindForExtension(ext)

	if err := w.onChange(name, kind, string(content)); err != nil {
		log.Printf("[watch] applying %s: %v", path, err)
	}
}

// Stop stops the watcher and releases its resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}
