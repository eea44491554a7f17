package intern_test

import (
	"testing"

	"github.com/ember-lang/ember/internal/intern"
	"github.com/ember-lang/ember/internal/objects"
)

func allocCounting(n *int) func([]byte, uint32) *objects.String {
	return func(b []byte, hash uint32) *objects.String {
		*n++
		owned := make([]byte, len(b))
		copy(owned, b)
		return objects.NewString(owned, hash)
	}
}

func TestInternHitReturnsSamePointer(t *testing.T) {
	in := intern.New()
	var allocs int
	alloc := allocCounting(&allocs)

	a := in.Intern([]byte("hello"), alloc)
	b := in.Intern([]byte("hello"), alloc)
	if a != b {
		t.Fatal("two interns of equal content returned distinct *String pointers")
	}
	if allocs != 1 {
		t.Fatalf("alloc called %d times, want exactly 1", allocs)
	}
}

func TestInternDistinctContentAllocatesTwice(t *testing.T) {
	in := intern.New()
	var allocs int
	alloc := allocCounting(&allocs)

	a := in.Intern([]byte("foo"), alloc)
	b := in.Intern([]byte("bar"), alloc)
	if a == b {
		t.Fatal("distinct content interned to the same pointer")
	}
	if allocs != 2 {
		t.Fatalf("alloc called %d times, want 2", allocs)
	}
}

func TestReleaseIfDeadClearsSlot(t *testing.T) {
	in := intern.New()
	var allocs int
	alloc := allocCounting(&allocs)

	s := in.Intern([]byte("gone"), alloc)
	in.ReleaseIfDead(s)

	in.Intern([]byte("gone"), alloc)
	if allocs != 2 {
		t.Fatalf("alloc called %d times after release, want 2 (one before, one after release)", allocs)
	}
}

func TestReleaseIfDeadIgnoresNonString(t *testing.T) {
	in := intern.New()
	// ReleaseIfDead takes value.Object; a *objects.Table is not a String
	// and must be a harmless no-op, never a panic.
	in.ReleaseIfDead(objects.NewTable())
}

func TestGrowKeepsAllEntriesFindable(t *testing.T) {
	in := intern.New()
	var allocs int
	alloc := allocCounting(&allocs)

	words := []string{}
	for i := 0; i < 100; i++ {
		words = append(words, string(rune('a'+i%26))+string(rune('A'+i%26)))
	}
	first := map[string]*objects.String{}
	for _, w := range words {
		first[w] = in.Intern([]byte(w), alloc)
	}
	for _, w := range words {
		again := in.Intern([]byte(w), alloc)
		if again != first[w] {
			t.Fatalf("after growth, interning %q again returned a different pointer", w)
		}
	}
}
