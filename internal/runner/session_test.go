package runner

import (
	"fmt"
	"sync"
	"testing"
)

func TestTablePutGetRemove(t *testing.T) {
	tbl := NewTable()

	s := newSession("c1", "python", newRecorder())
	tbl.Put(s)

	got, ok := tbl.Get("c1")
	if !ok || got != s {
		t.Fatal("expected to get back the registered session")
	}

	tbl.Remove(s)
	if _, ok := tbl.Get("c1"); ok {
		t.Fatal("expected session to be removed")
	}
}

func TestTableRemoveSparesReplacement(t *testing.T) {
	tbl := NewTable()

	stale := newSession("c1", "python", newRecorder())
	tbl.Put(stale)

	fresh := newSession("c1", "python", newRecorder())
	tbl.Put(fresh)

	// The stale session's delayed teardown must not evict the
	// replacement registered under the same id.
	tbl.Remove(stale)

	got, ok := tbl.Get("c1")
	if !ok || got != fresh {
		t.Fatal("replacement session should survive removal of the stale one")
	}
}

func TestTableConcurrentAccess(t *testing.T) {
	tbl := NewTable()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i%8)
			s := newSession(id, "python", newRecorder())
			tbl.Put(s)
			tbl.Get(id)
			tbl.Remove(s)
		}(i)
	}
	wg.Wait()

	if n := tbl.Len(); n != 0 {
		t.Fatalf("expected empty table, got %d entries", n)
	}
}
