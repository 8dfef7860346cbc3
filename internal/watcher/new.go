package watcher

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/minutes/internal/logger"
)

// queueSize bounds how many detected files may wait for the handler.
const queueSize = 64

// New creates a Watcher for inboxDir. Files are handed to handler one at a
// time, after settle has passed since they appeared.
func New(inboxDir string, handler EventHandler, log logger.Logger, settle time.Duration) (Watcher, error) {
	if err := os.MkdirAll(inboxDir, 0755); err != nil {
		return nil, fmt.Errorf("create inbox: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(inboxDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if settle < 0 {
		settle = 0
	}

	return &implWatcher{
		inboxDir: inboxDir,
		handler:  handler,
		logger:   log,
		watcher:  watcher,
		settle:   settle,
		queue:    make(chan string, queueSize),
	}, nil
}
