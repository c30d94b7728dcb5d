package brain

import (
	"reflect"
	"testing"
)

func TestMemoryObserveAndRecall(t *testing.T) {
	m := NewMemory(0)
	if _, ok := m.Recall(3); ok {
		t.Fatal("fresh memory recalled a card")
	}

	m.Observe(3, "Sun")
	m.Observe(7, "Moon")
	if s, ok := m.Recall(3); !ok || s != "Sun" {
		t.Fatalf("Recall(3) = %q, %v", s, ok)
	}

	m.Forget(3)
	if _, ok := m.Recall(3); ok {
		t.Fatal("forgotten card still recalled")
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}

	m.Reset()
	if m.Len() != 0 {
		t.Fatal("Reset left cards behind")
	}
}

func TestMemoryKnownPairs(t *testing.T) {
	m := NewMemory(0)
	m.Observe(0, "Sun")
	m.Observe(5, "Moon")
	m.Observe(2, "Sun")
	m.Observe(9, "Moon")
	m.Observe(4, "Star")

	got := m.KnownPairs([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	want := [][2]int{{0, 2}, {5, 9}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("KnownPairs() = %v, want %v", got, want)
	}

	// Card 2 is face up or matched, so only the Moon pair is usable.
	got = m.KnownPairs([]int{0, 1, 3, 4, 5, 9})
	if want := [][2]int{{5, 9}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("KnownPairs() restricted = %v, want %v", got, want)
	}
}

func TestMemoryMateOf(t *testing.T) {
	m := NewMemory(0)
	m.Observe(1, "Key")
	m.Observe(6, "Key")
	m.Observe(4, "Bus")

	if id, ok := m.MateOf(1, []int{0, 4, 6}); !ok || id != 6 {
		t.Fatalf("MateOf(1) = %d, %v", id, ok)
	}
	if _, ok := m.MateOf(4, []int{0, 1, 6}); ok {
		t.Fatal("MateOf found a mate for an unpaired symbol")
	}
	if _, ok := m.MateOf(8, []int{1, 6}); ok {
		t.Fatal("MateOf answered for an unseen card")
	}
}

func TestMemoryCapacityEvictsOldest(t *testing.T) {
	m := NewMemory(2)
	m.Observe(0, "A")
	m.Observe(1, "B")
	m.Observe(0, "A") // refresh card 0
	m.Observe(2, "C")

	if _, ok := m.Recall(1); ok {
		t.Fatal("oldest observation should be evicted")
	}
	if _, ok := m.Recall(0); !ok {
		t.Fatal("refreshed observation was evicted")
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
}
