package engine

import "testing"

func TestMirrorBookOpenExtendsPosition(t *testing.T) {
	b := NewMirrorBook()
	b.Open("f1", "m1", "Yes", 100, 20)
	b.Open("f1", "m1", "Yes", 50, 10)

	pos, ok := b.Get("f1", "m1", "Yes")
	if !ok {
		t.Fatal("expected position")
	}
	if pos.Size != 150 || pos.Value != 30 {
		t.Errorf("position = %v shares / $%v, want 150 / $30", pos.Size, pos.Value)
	}
}

func TestMirrorBookKeysAreIndependent(t *testing.T) {
	b := NewMirrorBook()
	b.Open("f1", "m1", "Yes", 100, 20)
	b.Open("f1", "m1", "No", 40, 8)
	b.Open("f2", "m1", "Yes", 10, 2)

	if _, ok := b.Get("f1", "m1", "No"); !ok {
		t.Error("expected outcome-scoped position")
	}
	b.Close("f1", "m1", "Yes")
	if _, ok := b.Get("f1", "m1", "No"); !ok {
		t.Error("closing one outcome must not touch the other")
	}
	if _, ok := b.Get("f2", "m1", "Yes"); !ok {
		t.Error("closing one follow must not touch another")
	}
}

func TestMirrorBookDropFollow(t *testing.T) {
	b := NewMirrorBook()
	b.Open("f1", "m1", "Yes", 100, 20)
	b.Open("f1", "m2", "No", 50, 10)
	b.Open("f2", "m1", "Yes", 10, 2)

	b.DropFollow("f1")

	if got := len(b.FollowPositions("f1")); got != 0 {
		t.Errorf("f1 positions = %d, want 0", got)
	}
	if got := len(b.FollowPositions("f2")); got != 1 {
		t.Errorf("f2 positions = %d, want 1", got)
	}
}
