package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var callCount atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() {
			callCount.Add(1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	if count := callCount.Load(); count != 1 {
		t.Errorf("expected 1 callback invocation, got %d", count)
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() {
		called.Store(true)
	})
	d.Cancel()

	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback should not have been invoked after cancel")
	}
}

func TestDebouncerDefaultDuration(t *testing.T) {
	d := NewDebouncer(0)
	if d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default duration %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

func TestWatcherDetectsFileChange(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "shares.jsonl")
	if err := os.WriteFile(tmpFile, []byte("initial"), 0o644); err != nil {
		t.Fatal(err)
	}

	var changed atomic.Bool
	w, err := New(tmpFile,
		WithDebounce(50*time.Millisecond),
		WithOnChange(func() {
			changed.Store(true)
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(tmpFile, []byte("modified content"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)

	if !changed.Load() {
		t.Error("expected change to be detected")
	}
}

func TestWatcherPollingFallback(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "shares.csv")
	if err := os.WriteFile(tmpFile, []byte("initial"), 0o644); err != nil {
		t.Fatal(err)
	}

	var changed atomic.Bool
	w, err := New(tmpFile,
		WithForcePoll(true),
		WithPollInterval(50*time.Millisecond),
		WithDebounce(50*time.Millisecond),
		WithOnChange(func() {
			changed.Store(true)
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Error("expected polling mode when forced")
	}

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(tmpFile, []byte("rewritten rows"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(400 * time.Millisecond)

	if !changed.Load() {
		t.Error("expected change to be detected via polling")
	}
}

func TestWatcherChangedChannel(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "shares.csv")
	if err := os.WriteFile(tmpFile, []byte("a/b"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(tmpFile,
		WithForcePoll(true),
		WithPollInterval(50*time.Millisecond),
		WithDebounce(50*time.Millisecond),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(tmpFile, []byte("a/b\na/c"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Error("no signal on Changed channel")
	}
}

func TestWatcherDoubleStart(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "shares.csv")
	if err := os.WriteFile(tmpFile, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(tmpFile, WithForcePoll(true))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.Start(); err != ErrAlreadyStarted {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
}
