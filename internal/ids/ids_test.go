package ids

import (
	"sort"
	"sync"
	"testing"
)

func TestNewOrderedAndUnique(t *testing.T) {
	var got []string
	for i := 0; i < 1000; i++ {
		got = append(got, New())
	}

	if !sort.StringsAreSorted(got) {
		t.Error("ids generated in sequence should sort lexicographically")
	}

	seen := make(map[string]bool, len(got))
	for _, id := range got {
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		if len(id) != 26 {
			t.Fatalf("id %q has length %d, want 26", id, len(id))
		}
	}
}

func TestNewConcurrent(t *testing.T) {
	const workers = 8
	const perWorker = 200

	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				id := New()
				mu.Lock()
				if seen[id] {
					t.Errorf("duplicate id %q under concurrency", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}
