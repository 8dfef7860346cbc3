package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/minutes/internal/logger"
)

var audioExtensions = map[string]bool{
	".wav": true, ".mp3": true, ".m4a": true, ".flac": true, ".ogg": true,
	".opus": true, ".aac": true, ".wma": true, ".mp4": true, ".mov": true,
	".mkv": true, ".webm": true,
}

type implWatcher struct {
	inboxDir string
	handler  EventHandler
	logger   logger.Logger
	watcher  *fsnotify.Watcher
	settle   time.Duration
	queue    chan string
	wg       sync.WaitGroup
}

// Start monitors the inbox until ctx is done. A single worker drains the
// queue so the pipeline never runs twice at once. On shutdown the file in
// progress is finished and queued files are dropped.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Inbox watcher started. Monitoring: %s", w.inboxDir)

	w.wg.Add(1)
	go w.work(ctx)
	defer func() {
		close(w.queue)
		w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
		w.wg.Wait()
		w.logger.Info(ctx, "Inbox watcher stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isAudioFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-audio file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New recording detected: %s", event.Name)
			select {
			case w.queue <- event.Name:
			case <-ctx.Done():
				return ctx.Err()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

func (w *implWatcher) work(ctx context.Context) {
	defer w.wg.Done()
	for path := range w.queue {
		if ctx.Err() != nil {
			continue
		}
		// give the writer time to finish the file
		if w.settle > 0 {
			select {
			case <-time.After(w.settle):
			case <-ctx.Done():
				continue
			}
		}
		// a started run is never cut short by shutdown
		if err := w.handler(context.WithoutCancel(ctx), path); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", path, err)
		}
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func isAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}
