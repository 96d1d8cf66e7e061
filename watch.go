package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	watchDebounce = 500 * time.Millisecond
	watchMaxWait  = 5 * time.Second
)

// repoWatcher re-splits the repository when its files change. Change bursts
// are debounced with a quiet-period timer, capped by a maximum wait so large
// refactors still flush eventually.
type repoWatcher struct {
	root      string
	digestDir string
	excludes  []string
	resplit   func()

	fsw *fsnotify.Watcher

	mu       sync.Mutex
	pending  int
	debounce *time.Timer
	maxWait  *time.Timer
}

// newRepoWatcher wires up recursive watches below root, keeping clear of the
// digest directory and excluded directories.
func newRepoWatcher(root, digestDir string, excludes []string, resplit func()) (*repoWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &repoWatcher{root: root, digestDir: digestDir, excludes: excludes, resplit: resplit, fsw: fsw}
	if err := w.watchTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *repoWatcher) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		if w.skip(p) {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
}

// skip keeps the watcher away from the digest output and excluded trees, so
// writing digests never triggers a re-split of its own.
func (w *repoWatcher) skip(path string) bool {
	if path == w.digestDir || strings.HasPrefix(path, w.digestDir+string(os.PathSeparator)) {
		return true
	}
	return dirExcluded(filepath.Base(path), w.excludes)
}

// Run blocks, forwarding debounced change bursts into the resplit callback.
// It returns when the watcher is closed.
func (w *repoWatcher) Run() error {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.skip(ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				// New directories need their own watches.
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.watchTree(ev.Name); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: cannot watch %s: %v\n", ev.Name, err)
					}
				}
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.note()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: watch error: %v\n", err)
			}
		}
	}
}

// note registers one change and re-arms the quiet-period timer. The first
// change of a burst also starts the max-wait timer.
func (w *repoWatcher) note() {
	w.mu.Lock()
	defer w.mu.Unlock()
	first := w.pending == 0
	w.pending++
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(watchDebounce, w.flush)
	if first {
		w.maxWait = time.AfterFunc(watchMaxWait, w.flush)
	}
}

func (w *repoWatcher) flush() {
	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
		w.debounce = nil
	}
	if w.maxWait != nil {
		w.maxWait.Stop()
		w.maxWait = nil
	}
	changed := w.pending
	w.pending = 0
	w.mu.Unlock()

	if changed > 0 && w.resplit != nil {
		w.resplit()
	}
}

func (w *repoWatcher) Close() error {
	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
		w.debounce = nil
	}
	if w.maxWait != nil {
		w.maxWait.Stop()
		w.maxWait = nil
	}
	w.pending = 0
	w.mu.Unlock()
	return w.fsw.Close()
}
