package cache

import (
	"encoding/binary"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

// key builds a 16-byte key whose halves both vary with i.
func key(i int) [16]byte {
	var k [16]byte
	binary.LittleEndian.PutUint64(k[:8], uint64(i))
	binary.LittleEndian.PutUint64(k[8:], uint64(i)*0x9e3779b97f4a7c15)
	return k
}

func newTestMap() *Map[[16]byte, int] {
	return NewMap[[16]byte, int](Bytes16Hasher)
}

func TestNewMap(t *testing.T) {
	m := newTestMap()
	if m == nil {
		t.Fatal("NewMap returned nil")
	}
	if m.Len() != 0 {
		t.Errorf("expected empty map, got %d entries", m.Len())
	}
}

func TestMapGetOrCreate(t *testing.T) {
	m := newTestMap()
	createCalled := 0

	val, existed, err := m.GetOrCreate(key(1), func() (int, error) {
		createCalled++
		return 100, nil
	})
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if existed || val != 100 {
		t.Errorf("first GetOrCreate = (%d, %v), want (100, false)", val, existed)
	}

	val, existed, err = m.GetOrCreate(key(1), func() (int, error) {
		createCalled++
		return 200, nil
	})
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if !existed || val != 100 {
		t.Errorf("second GetOrCreate = (%d, %v), want cached (100, true)", val, existed)
	}
	if createCalled != 1 {
		t.Errorf("expected create called once, got %d", createCalled)
	}
}

func TestMapGetOrCreateError(t *testing.T) {
	m := newTestMap()
	errBoom := errors.New("boom")

	_, _, err := m.GetOrCreate(key(1), func() (int, error) {
		return 0, errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("failed create must not store an entry, got %d entries", m.Len())
	}

	val, existed, err := m.GetOrCreate(key(1), func() (int, error) {
		return 7, nil
	})
	if err != nil || existed || val != 7 {
		t.Errorf("retry: got (%d, %v, %v), want (7, false, nil)", val, existed, err)
	}
}

func TestMapGet(t *testing.T) {
	m := newTestMap()

	if _, ok := m.Get(key(9)); ok {
		t.Error("expected missing key to not exist")
	}

	_, _, _ = m.GetOrCreate(key(1), func() (int, error) { return 42, nil })
	if val, ok := m.Get(key(1)); !ok || val != 42 {
		t.Errorf("Get = (%d, %v), want (42, true)", val, ok)
	}
}

func TestMapNeverEvicts(t *testing.T) {
	m := newTestMap()
	const n = 10000
	for i := range n {
		_, _, _ = m.GetOrCreate(key(i), func() (int, error) { return i, nil })
	}
	if m.Len() != n {
		t.Errorf("expected %d entries, got %d", n, m.Len())
	}
	for i := 0; i < n; i += 997 {
		if v, ok := m.Get(key(i)); !ok || v != i {
			t.Errorf("Get(%d) = (%d, %v), want (%d, true)", i, v, ok, i)
		}
	}
}

func TestMapStats(t *testing.T) {
	m := newTestMap()

	_, _, _ = m.GetOrCreate(key(1), func() (int, error) { return 1, nil })
	_, _, _ = m.GetOrCreate(key(1), func() (int, error) { return 1, nil })
	_, _, _ = m.GetOrCreate(key(2), func() (int, error) { return 2, nil })
	m.Get(key(3))

	stats := m.Stats()
	if stats.Hits != 1 || stats.Misses != 3 || stats.Creates != 2 || stats.Len != 2 {
		t.Errorf("stats = %+v, want 1 hit, 3 misses, 2 creates, 2 entries", stats)
	}
	if stats.HitRate != 0.25 {
		t.Errorf("expected HitRate=0.25, got %f", stats.HitRate)
	}
}

func TestMapResetStatsKeepsEntries(t *testing.T) {
	m := newTestMap()
	for i := range 4 {
		_, _, _ = m.GetOrCreate(key(i), func() (int, error) { return i, nil })
	}

	m.ResetStats()
	stats := m.Stats()
	if stats.Hits != 0 || stats.Misses != 0 || stats.Creates != 0 {
		t.Errorf("expected zero counters after reset, got %+v", stats)
	}
	if stats.Len != 4 {
		t.Errorf("ResetStats must not drop entries, got Len=%d", stats.Len)
	}

	// Counting resumes from zero, as a new frame would.
	_, existed, _ := m.GetOrCreate(key(2), func() (int, error) { return -1, nil })
	if !existed {
		t.Error("entry lost across ResetStats")
	}
	if stats := m.Stats(); stats.Hits != 1 || stats.HitRate != 1 {
		t.Errorf("stats after one hit = %+v", stats)
	}
}

func TestMapRange(t *testing.T) {
	m := newTestMap()
	for i := range 20 {
		_, _, _ = m.GetOrCreate(key(i), func() (int, error) { return i, nil })
	}

	sum := 0
	m.Range(func(_ [16]byte, v int) bool {
		sum += v
		return true
	})
	if sum != 190 {
		t.Errorf("expected sum 190, got %d", sum)
	}

	visited := 0
	m.Range(func([16]byte, int) bool {
		visited++
		return visited < 3
	})
	if visited != 3 {
		t.Errorf("expected Range to stop after 3, visited %d", visited)
	}
}

func TestMapConcurrentCreateOnce(t *testing.T) {
	m := newTestMap()
	var creates atomic.Int32
	var wg sync.WaitGroup

	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 8 {
				_, _, _ = m.GetOrCreate(key(j), func() (int, error) {
					creates.Add(1)
					return j, nil
				})
			}
		}()
	}
	wg.Wait()

	if got := creates.Load(); got != 8 {
		t.Errorf("expected 8 creates across goroutines, got %d", got)
	}
	if m.Len() != 8 {
		t.Errorf("expected 8 entries, got %d", m.Len())
	}
}

func TestBytes16Hasher(t *testing.T) {
	a := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	b := a
	b[15] = 99
	if Bytes16Hasher(a) != Bytes16Hasher(a) {
		t.Error("Bytes16Hasher not deterministic")
	}
	if Bytes16Hasher(a) == Bytes16Hasher(b) {
		t.Error("Bytes16Hasher ignores the high half")
	}
}
