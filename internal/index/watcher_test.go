package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/storage"
)

// watcherTestEnv sets up a vault dir, storage, and DB for watcher tests.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	dbFile, err := os.CreateTemp("", "ansuz-watcher-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })
	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return vaultDir, store, db
}

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

func TestWatcher_NewFileIndexed(t *testing.T) {
	vaultDir, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	events := make(map[string]string)
	cb := func(kind, path string) {
		mu.Lock()
		events[path] = kind
		mu.Unlock()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, db, store, vaultDir, discardLogger(), cb)
	}()

	// Give the watcher a moment to register the root.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(vaultDir, "new.md"), []byte("status :: draft\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, 3*time.Second, 25*time.Millisecond, func() bool {
		paths, _ := db.QueryPaths(FieldQuery{Key: "status"})
		return len(paths) == 1 && paths[0] == "new.md"
	}, "new file was not indexed")

	eventually(t, 3*time.Second, 25*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		_, ok := events["new.md"]
		return ok
	}, "callback not fired for new file")

	cancel()
	<-done
}

func TestWatcher_RemovedFileDeleted(t *testing.T) {
	vaultDir, store, db := watcherTestEnv(t)

	target := filepath.Join(vaultDir, "gone.md")
	if err := os.WriteFile(target, []byte("k :: v\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, store, discardLogger()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, db, store, vaultDir, discardLogger(), nil)
	}()
	time.Sleep(100 * time.Millisecond)

	if err := os.Remove(target); err != nil {
		t.Fatal(err)
	}

	eventually(t, 3*time.Second, 25*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("gone.md")
		return cs == ""
	}, "removed file still indexed")

	cancel()
	<-done
}
