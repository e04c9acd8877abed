package history

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func newStore(t *testing.T, opts Options) *Store {
	t.Helper()
	s, err := New(opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestAddEvictsOldest(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, Options{Capacity: 2})

	for _, v := range []string{"a", "b", "c"} {
		if err := s.Add(ctx, v); err != nil {
			t.Fatalf("Add(%q): %v", v, err)
		}
	}

	want := []string{"c", "b"}
	if got := s.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

func TestAddUppercaseDedupe(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, Options{Capacity: 9, Uppercase: true})

	s.Add(ctx, "test.txt")
	s.Add(ctx, "TEST.TXT")

	want := []string{"TEST.TXT"}
	if got := s.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

func TestAddDuplicateMovesToFront(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, Options{Capacity: 3})
	s.Add(ctx, "a")
	s.Add(ctx, "b")
	s.Add(ctx, "c")

	s.Add(ctx, " a ")

	want := []string{"a", "c", "b"}
	if got := s.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

func TestAddEmptyIsNoop(t *testing.T) {
	calls := 0
	s := newStore(t, Options{Capacity: 3, Persist: func(context.Context, []string) error {
		calls++
		return nil
	}})

	if err := s.Add(context.Background(), "   "); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("len = %d, want 0", s.Len())
	}
	if calls != 0 {
		t.Errorf("persist called %d times, want 0", calls)
	}
}

func TestRemoveSubstring(t *testing.T) {
	ctx := context.Background()
	s, _ := New(Options{Capacity: 5}, []string{"USER.A.DATA", "USER.B.DATA", "OTHER"})

	if err := s.Remove(ctx, "B.DATA"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	want := []string{"USER.A.DATA", "OTHER"}
	if got := s.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

// Substring removal matches prefixes of longer names too; only the first hit goes.
func TestRemoveSubstringFalsePositive(t *testing.T) {
	ctx := context.Background()
	s, _ := New(Options{Capacity: 5}, []string{"ABC", "A"})

	s.Remove(ctx, "A")

	want := []string{"A"}
	if got := s.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %v, want %v (first containing entry removed)", got, want)
	}
}

func TestRemoveExact(t *testing.T) {
	ctx := context.Background()
	s, _ := New(Options{Order: Sorted}, []string{"prof1", "prof10"})

	s.RemoveExact(ctx, "prof1")

	want := []string{"prof10"}
	if got := s.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

func TestSortedOrder(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, Options{Order: Sorted})
	for _, v := range []string{"zeta", "alpha", "mid"} {
		s.Add(ctx, v)
	}
	want := []string{"alpha", "mid", "zeta"}
	if got := s.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

func TestResetPersistsEmpty(t *testing.T) {
	var last []string
	s, _ := New(Options{Capacity: 3, Persist: func(_ context.Context, e []string) error {
		last = e
		return nil
	}}, []string{"x"})

	if err := s.Reset(context.Background()); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if last == nil || len(last) != 0 {
		t.Errorf("persisted %v, want empty non-nil slice", last)
	}
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	boom := errors.New("storage unavailable")
	s := newStore(t, Options{Capacity: 3, Persist: func(context.Context, []string) error { return boom }})

	err := s.Add(context.Background(), "a")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if !s.Contains("a") {
		t.Error("in-memory add should survive persistence failure")
	}
}

func TestEntriesIsCopy(t *testing.T) {
	s, _ := New(Options{Capacity: 3}, []string{"a"})
	got := s.Entries()
	got[0] = "mutated"
	if s.Entries()[0] != "a" {
		t.Error("Entries must return a defensive copy")
	}
}

func TestNewRejectsNegativeCapacity(t *testing.T) {
	if _, err := New(Options{Capacity: -1}, nil); !errors.Is(err, ErrCapacity) {
		t.Errorf("err = %v, want ErrCapacity", err)
	}
}

func TestNewHydrationTrimsAndDedupes(t *testing.T) {
	s, _ := New(Options{Capacity: 2, Uppercase: true}, []string{"a", "A", "b", "c"})
	want := []string{"A", "B"}
	if got := s.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

func TestPropertyCapacityAndDedupe(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 8).Draw(t, "capacity")
		upper := rapid.Bool().Draw(t, "uppercase")
		values := rapid.SliceOf(rapid.StringMatching(`[a-cA-C]{0,2}`)).Draw(t, "values")

		s, err := New(Options{Capacity: capacity, Uppercase: upper}, nil)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		ctx := context.Background()
		for _, v := range values {
			before := s.Len()
			present := s.Contains(v)
			s.Add(ctx, v)

			if s.Len() > capacity {
				t.Fatalf("len %d exceeds capacity %d", s.Len(), capacity)
			}
			norm := strings.TrimSpace(v)
			if upper {
				norm = strings.ToUpper(norm)
			}
			if norm == "" {
				if s.Len() != before {
					t.Fatalf("empty add changed length")
				}
				continue
			}
			if s.Entries()[0] != norm {
				t.Fatalf("front = %q, want %q", s.Entries()[0], norm)
			}
			switch {
			case present && s.Len() != before:
				t.Fatalf("re-adding %q changed length %d -> %d", v, before, s.Len())
			case !present && s.Len() != min(before+1, capacity):
				t.Fatalf("adding %q: length %d -> %d", v, before, s.Len())
			}
			seen := map[string]bool{}
			for _, e := range s.Entries() {
				if seen[e] {
					t.Fatalf("duplicate entry %q", e)
				}
				seen[e] = true
			}
		}
	})
}
