package ptr_test

import (
	"testing"
	"time"

	"github.com/myrjola/gymlog/internal/ptr"
)

func TestRef(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		s := "test"
		p := ptr.Ref(s)

		if p == nil {
			t.Fatal("Expected pointer to be non-nil")
		}
		if *p != s {
			t.Errorf("Expected %q, got %q", s, *p)
		}

		// Modifying the original value doesn't affect the pointer.
		s = "modified"
		if *p == s {
			t.Errorf("Pointer value should not change when original value is modified")
		}
	})

	t.Run("time", func(t *testing.T) {
		now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		p := ptr.Ref(now)
		if !p.Equal(now) {
			t.Errorf("Expected %v, got %v", now, *p)
		}
	})
}

func TestDeref(t *testing.T) {
	if got := ptr.Deref[int](nil, 7); got != 7 {
		t.Errorf("Deref(nil) = %d, want 7", got)
	}
	if got := ptr.Deref(ptr.Ref(3), 7); got != 3 {
		t.Errorf("Deref(&3) = %d, want 3", got)
	}
}

func TestClone(t *testing.T) {
	if ptr.Clone[int](nil) != nil {
		t.Fatal("Clone(nil) should be nil")
	}
	orig := ptr.Ref(5)
	clone := ptr.Clone(orig)
	*clone = 6
	if *orig != 5 {
		t.Errorf("Clone shares memory with original: got %d, want 5", *orig)
	}
}
