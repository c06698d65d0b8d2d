package drift

import (
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/gekko3d/drift/logging"
)

// ShaderWatcher flags changes in the shader directory so the renderer can
// reload between frames.
type ShaderWatcher struct {
	watcher *fsnotify.Watcher
	pending atomic.Bool
	log     logging.Logger
	wg      sync.WaitGroup
}

// WatchShaders starts watching dir.
func WatchShaders(dir string, log logging.Logger) (*ShaderWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	w := &ShaderWatcher{watcher: fw, log: logging.Component(log, "watcher")}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *ShaderWatcher) run() {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.log.Debugf("shader change: %s", event.Name)
				w.pending.Store(true)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnf("%v", err)
		}
	}
}

// Changed reports whether anything changed since the last call.
func (w *ShaderWatcher) Changed() bool {
	return w.pending.Swap(false)
}

func (w *ShaderWatcher) Close() error {
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
