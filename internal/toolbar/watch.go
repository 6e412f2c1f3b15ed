package toolbar

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the editor write/rename burst into one reload.
const reloadDelay = 200 * time.Millisecond

// Watcher reloads a bar file whenever it changes on disk. It watches
// the containing directory so editors that replace the file by rename
// still trigger a reload.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	updates chan []Bar

	mu    sync.Mutex
	timer *time.Timer
}

// Watch starts watching path. Reloaded bar sets arrive on Updates;
// parse failures are logged and skipped, keeping the last good set.
func Watch(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{
		path:    path,
		watcher: fw,
		updates: make(chan []Bar, 1),
	}
	go w.loop()
	return w, nil
}

// Updates delivers each successfully reloaded bar set.
func (w *Watcher) Updates() <-chan []Bar {
	return w.updates
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[toolbar] watch error: %v", err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reloadDelay, func() {
		bars, err := Load(w.path)
		if err != nil {
			log.Printf("[toolbar] reload skipped: %v", err)
			return
		}
		// Replace any queued update so the receiver sees the newest set.
		select {
		case <-w.updates:
		default:
		}
		w.updates <- bars
	})
}
