package watcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ginjaninja78/rcli/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunCallsHandlerOnWrite(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(input, []byte("a\n1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- New(input, 20*time.Millisecond, quietLogger()).Run(ctx, func(context.Context) error {
			calls.Add(1)
			return errors.New("handler errors do not stop the watcher")
		})
	}()

	// The watch is registered asynchronously; keep writing until it is seen.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(input, []byte("a\n2\n"), 0o644)
		return calls.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}

func TestRunIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(input, []byte("a\n"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var calls atomic.Int32
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for ctx.Err() == nil {
			_ = os.WriteFile(filepath.Join(dir, "other.csv"), []byte("b\n"), 0o644)
			time.Sleep(20 * time.Millisecond)
		}
	}()

	err := New(input, 10*time.Millisecond, quietLogger()).Run(ctx, func(context.Context) error {
		calls.Add(1)
		return nil
	})
	<-writerDone
	require.NoError(t, err)
	assert.Zero(t, calls.Load())
}

func TestRunMissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope", "in.csv")

	err := New(missing, 0, quietLogger()).Run(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, types.ErrIO)
}

func TestRelevant(t *testing.T) {
	target := filepath.Join(string(filepath.Separator), "data", "in.csv")

	assert.True(t, relevant(fsnotify.Event{Name: target, Op: fsnotify.Write}, target))
	assert.True(t, relevant(fsnotify.Event{Name: target, Op: fsnotify.Create}, target))
	assert.False(t, relevant(fsnotify.Event{Name: target, Op: fsnotify.Remove}, target))
	assert.False(t, relevant(fsnotify.Event{Name: target, Op: fsnotify.Chmod}, target))
	assert.False(t, relevant(fsnotify.Event{Name: filepath.Join(filepath.Dir(target), "x.csv"), Op: fsnotify.Write}, target))
}

func TestNewDefaults(t *testing.T) {
	fw := New("in.csv", 0, nil)
	assert.Equal(t, DefaultDebounce, fw.delay)
	assert.NotNil(t, fw.logger)
}
