package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/minutes/internal/logger"
)

func TestIsAudioFile(t *testing.T) {
	tests := map[string]bool{
		"meeting.m4a":  true,
		"CALL.WAV":     true,
		"notes.txt":    false,
		"archive":      false,
		"standup.flac": true,
	}
	for path, want := range tests {
		if got := isAudioFile(path); got != want {
			t.Errorf("isAudioFile(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWatcherHandlesNewAudioSequentially(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")

	var mu sync.Mutex
	var handled []string
	inFlight, maxInFlight := 0, 0
	done := make(chan struct{}, 2)

	handler := func(ctx context.Context, path string) error {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		inFlight--
		handled = append(handled, filepath.Base(path))
		mu.Unlock()
		done <- struct{}{}
		return nil
	}

	w, err := New(dir, handler, logger.Nop(), 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(ctx) }()

	for _, name := range []string{"a.m4a", "ignored.txt", "b.wav"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for handler")
		}
	}
	cancel()
	<-errCh

	mu.Lock()
	defer mu.Unlock()
	if len(handled) != 2 {
		t.Errorf("handled = %v, want the two audio files", handled)
	}
	if maxInFlight != 1 {
		t.Errorf("max in flight = %d, want 1", maxInFlight)
	}
}

func TestWatcherFinishesRunOnShutdown(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")

	started := make(chan struct{})
	release := make(chan struct{})
	var handlerErr error
	handler := func(ctx context.Context, path string) error {
		select {
		case <-started:
		default:
			close(started)
		}
		<-release
		handlerErr = ctx.Err()
		return nil
	}

	w, err := New(dir, handler, logger.Nop(), 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(ctx) }()

	if err := os.WriteFile(filepath.Join(dir, "standup.m4a"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for handler")
	}

	cancel()
	close(release)
	<-errCh

	if handlerErr != nil {
		t.Errorf("handler context error = %v, want nil after shutdown", handlerErr)
	}
}
