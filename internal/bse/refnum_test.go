package bse

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestReferenceGeneratorFormat(t *testing.T) {
	gen := NewReferenceGenerator()
	gen.now = func() time.Time {
		return time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	}

	ref, err := gen.Generate("10001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ref) != 19 {
		t.Errorf("expected 19 characters, got %d (%q)", len(ref), ref)
	}
	if !strings.HasPrefix(ref, "20260315") {
		t.Errorf("expected date prefix 20260315, got %q", ref)
	}
}

func TestReferenceGeneratorEmptyMember(t *testing.T) {
	gen := NewReferenceGenerator()
	if _, err := gen.Generate(""); !errors.Is(err, ErrEmptyMemberID) {
		t.Errorf("expected ErrEmptyMemberID, got %v", err)
	}
}

func TestReferenceGeneratorMonotonic(t *testing.T) {
	// Замороженное время: без bump'а все вызовы дали бы одинаковый номер
	gen := NewReferenceGenerator()
	frozen := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	gen.now = func() time.Time { return frozen }

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref, err := gen.Generate("10001")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[ref] {
			t.Fatalf("duplicate reference number %q", ref)
		}
		seen[ref] = true
	}
}

func TestReferenceGeneratorConcurrent(t *testing.T) {
	gen := NewReferenceGenerator()

	const goroutines = 20
	const perGoroutine = 50

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				ref, err := gen.Generate("10001")
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				mu.Lock()
				if seen[ref] {
					t.Errorf("duplicate reference number %q", ref)
				}
				seen[ref] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != goroutines*perGoroutine {
		t.Errorf("expected %d unique numbers, got %d", goroutines*perGoroutine, len(seen))
	}
}

func TestReferenceGeneratorPerMember(t *testing.T) {
	// Счетчики независимы per member
	gen := NewReferenceGenerator()
	frozen := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	gen.now = func() time.Time { return frozen }

	a, _ := gen.Generate("10001")
	b, _ := gen.Generate("10002")
	if a != b {
		t.Errorf("first numbers of different members should match for frozen clock: %q vs %q", a, b)
	}
}
