package quill

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// templateWatcher reports changes of watched template files by template name
type templateWatcher struct {
	fs       *fsnotify.Watcher
	onChange func(name string)
	logger   *zap.Logger

	mu    sync.Mutex
	names map[string]string // Cleaned path to template name
	done  chan struct{}
}

// newTemplateWatcher starts watching; onChange runs on the watcher goroutine
func newTemplateWatcher(onChange func(name string), logger *zap.Logger) (*templateWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &templateWatcher{
		fs:       fsw,
		onChange: onChange,
		logger:   logger,
		names:    make(map[string]string),
		done:     make(chan struct{}),
	}
	go w.run()
	logger.Debug(LogMsgWatcherStarted)
	return w, nil
}

// Watch adds the file of a template. Watching the same path again is a no-op.
func (w *templateWatcher) Watch(name, path string) error {
	path = filepath.Clean(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.names[path]; ok {
		return nil
	}
	if err := w.fs.Add(path); err != nil {
		return err
	}
	w.names[path] = name
	return nil
}

// Close stops the watcher and waits for its goroutine
func (w *templateWatcher) Close() error {
	err := w.fs.Close()
	<-w.done
	return err
}

func (w *templateWatcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			path := filepath.Clean(ev.Name)
			w.mu.Lock()
			name, watched := w.names[path]
			if watched && ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				// The file is gone from the watch list; watch again on next compile.
				delete(w.names, path)
			}
			w.mu.Unlock()
			if watched {
				w.onChange(name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn(LogMsgWatcherError, zap.Error(err))
		}
	}
}
