package mission

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// AbortWatcher cancels a running mission when an "abort" file appears
// in the signals directory. It lets an operator stop a long mission
// from another terminal without hunting for the process.
type AbortWatcher struct {
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	logger  *Logger
	done    chan struct{}
}

// WatchAbort watches dataDir/signals for an abort file and invokes
// cancel when one is created or written. A watcher that cannot be set
// up is reported and skipped; the mission still runs.
func WatchAbort(dataDir string, cancel context.CancelFunc, logger *Logger) (*AbortWatcher, error) {
	signalsDir := filepath.Join(dataDir, "signals")
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		return nil, err
	}

	// A leftover abort file from a previous run would kill this mission
	// immediately.
	os.Remove(filepath.Join(signalsDir, "abort"))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(signalsDir); err != nil {
		watcher.Close()
		return nil, err
	}

	aw := &AbortWatcher{
		watcher: watcher,
		cancel:  cancel,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go aw.watch()
	return aw, nil
}

func (aw *AbortWatcher) watch() {
	for {
		select {
		case <-aw.done:
			return
		case event, ok := <-aw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != "abort" {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				aw.logger.Warnf("abort signal received, cancelling mission")
				aw.cancel()
				return
			}
		case <-aw.watcher.Errors:
			// Keep watching.
		}
	}
}

// Close stops the watcher.
func (aw *AbortWatcher) Close() error {
	close(aw.done)
	return aw.watcher.Close()
}
