package feed

import (
	"fmt"
	"testing"
)

func TestRecencySetEvictsOldest(t *testing.T) {
	r := newRecencySet(3)
	for i := 0; i < 5; i++ {
		r.Add(fmt.Sprintf("t%d", i))
	}

	if r.Len() != 3 {
		t.Errorf("Len = %d, want 3", r.Len())
	}
	if r.Contains("t0") || r.Contains("t1") {
		t.Error("expected oldest entries evicted")
	}
	for _, id := range []string{"t2", "t3", "t4"} {
		if !r.Contains(id) {
			t.Errorf("expected %s retained", id)
		}
	}
}

func TestRecencySetDuplicateAdd(t *testing.T) {
	r := newRecencySet(2)
	r.Add("a")
	r.Add("a")
	r.Add("b")

	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}
	if !r.Contains("a") || !r.Contains("b") {
		t.Error("expected both distinct ids present")
	}
}
