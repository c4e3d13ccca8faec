package taxonomy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_TriggersReloadOnRuleChange(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "think.md", `# Think Routing
route:: deepseek, deepseek-reasoner
synonyms:: think step by step
`)

	w, err := NewWatcher(dir, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	reloads := make(chan struct{}, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func() error {
			reloads <- struct{}{}
			return nil
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(50 * time.Millisecond)

	writeRuleFile(t, dir, "think.md", `# Think Routing
route:: deepseek, deepseek-chat
synonyms:: think step by step
`)

	select {
	case <-reloads:
	case <-time.After(2 * time.Second):
		t.Fatal("reload not triggered within deadline")
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("Watch returned error: %v", err)
	}
}

func TestWatcher_IgnoresNonRuleFiles(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher(dir, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	reloads := make(chan struct{}, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Watch(ctx, func() error { reloads <- struct{}{}; return nil }) }()

	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".hidden.md"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case <-reloads:
		t.Error("reload triggered by non-rule file")
	case <-time.After(200 * time.Millisecond):
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "r.md", "# R\nroute:: groq, llama-3.1-8b-instant\n")

	w, err := NewWatcher(dir, 80*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	reloads := make(chan struct{}, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Watch(ctx, func() error { reloads <- struct{}{}; return nil }) }()

	time.Sleep(50 * time.Millisecond)

	// A burst of writes inside one debounce window.
	for i := 0; i < 5; i++ {
		writeRuleFile(t, dir, "r.md", "# R\nroute:: groq, llama-3.1-8b-instant\n")
		time.Sleep(5 * time.Millisecond)
	}

	// Wait out the window plus slack, then count reloads.
	time.Sleep(300 * time.Millisecond)
	if got := len(reloads); got != 1 {
		t.Errorf("expected 1 debounced reload, got %d", got)
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}
