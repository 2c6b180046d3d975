package game

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watcher reloads a maze file into a Controller whenever it changes on
// disk. Reload failures are sent on Errors and leave the current maze in
// place.
type Watcher struct {
	watcher *fsnotify.Watcher
	ctrl    *Controller
	path    string

	Reloaded chan string
	Errors   chan error
	closeCh  chan struct{}
	once     sync.Once
	done     chan struct{}
}

// Watch starts watching path. The parent directory is watched so editors
// that replace the file by rename are still seen.
func Watch(ctrl *Controller, path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		watcher:  w,
		ctrl:     ctrl,
		path:     abs,
		Reloaded: make(chan string, 4),
		Errors:   make(chan error, 4),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher and closes its channels.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Reloaded)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	// Writers often touch the file several times in a row; reload once the
	// events have been quiet for watchDebounce.
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			timer.Reset(watchDebounce)
		case <-timer.C:
			if err := w.ctrl.LoadFile(w.path); err != nil {
				send(w.Errors, err)
				continue
			}
			send(w.Reloaded, w.path)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			send(w.Errors, err)
		case <-w.closeCh:
			return
		}
	}
}

// send drops the value when nobody is draining the channel.
func send[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}
