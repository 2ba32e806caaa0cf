package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_AtomicReplaceResyncs(t *testing.T) {
	db := testDB(t)
	store := testStore(t)
	logger := quietLogger()
	_ = store.Write("bookmarks.xbel", []byte(bankXBEL))
	if _, err := Sync(db, store, "bookmarks.xbel", logger); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string
	go Watch(ctx, db, store, store.Root(), "bookmarks.xbel", logger, func(kind, file string) {
		mu.Lock()
		events = append(events, kind+":"+file)
		mu.Unlock()
	})
	time.Sleep(100 * time.Millisecond)

	_ = store.Write("bookmarks.xbel", []byte(`<xbel version="1.0"><bookmark href="https://x" id="1"><title>x</title></bookmark></xbel>`))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		n, _ := db.Count()
		return n == 1
	}, "replaced document not re-indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == EventUpdated+":bookmarks.xbel" {
				return true
			}
		}
		return false
	}, "expected updated callback")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	db := testDB(t)
	store := testStore(t)
	logger := quietLogger()
	_ = store.Write("bookmarks.xbel", []byte(bankXBEL))
	_, _ = Sync(db, store, "bookmarks.xbel", logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	calls := 0
	go Watch(ctx, db, store, store.Root(), "bookmarks.xbel", logger, func(string, string) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(store.Root(), "README.md"), []byte("# notes"), 0o644)
	time.Sleep(2 * settleDelay)

	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("callback fired %d times for an unrelated file", calls)
	}
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	db := testDB(t)
	store := testStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, db, store, store.Root(), "bookmarks.xbel", quietLogger(), nil)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
