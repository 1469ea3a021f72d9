package engine

import (
	"sync"
)

// MirroredPosition is a follower-side position opened by copying.
type MirroredPosition struct {
	FollowID string
	MarketID string
	Outcome  string
	Size     float64
	Value    float64
}

// MirrorBook tracks the positions each follow currently mirrors, keyed by
// (follow, market, outcome). The dispatcher writes it on fills; the decision
// engine reads it to recognize closing trades.
type MirrorBook struct {
	mu        sync.RWMutex
	positions map[string]*MirroredPosition
}

// NewMirrorBook creates an empty mirror book.
func NewMirrorBook() *MirrorBook {
	return &MirrorBook{
		positions: make(map[string]*MirroredPosition),
	}
}

func mirrorKey(followID, marketID, outcome string) string {
	return followID + "|" + marketID + "|" + outcome
}

// Get returns the mirrored position for a follow in a market, if any.
func (b *MirrorBook) Get(followID, marketID, outcome string) (MirroredPosition, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	pos, ok := b.positions[mirrorKey(followID, marketID, outcome)]
	if !ok {
		return MirroredPosition{}, false
	}
	return *pos, true
}

// Open records a fill that opens or extends a mirrored position.
func (b *MirrorBook) Open(followID, marketID, outcome string, size, value float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := mirrorKey(followID, marketID, outcome)
	pos, ok := b.positions[key]
	if !ok {
		b.positions[key] = &MirroredPosition{
			FollowID: followID,
			MarketID: marketID,
			Outcome:  outcome,
			Size:     size,
			Value:    value,
		}
		return
	}
	pos.Size += size
	pos.Value += value
}

// Close removes a mirrored position and returns it.
func (b *MirrorBook) Close(followID, marketID, outcome string) (MirroredPosition, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := mirrorKey(followID, marketID, outcome)
	pos, ok := b.positions[key]
	if !ok {
		return MirroredPosition{}, false
	}
	delete(b.positions, key)
	return *pos, true
}

// DropFollow removes every mirrored position belonging to a follow.
func (b *MirrorBook) DropFollow(followID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key, pos := range b.positions {
		if pos.FollowID == followID {
			delete(b.positions, key)
		}
	}
}

// FollowPositions returns the mirrored positions held for a follow.
func (b *MirrorBook) FollowPositions(followID string) []MirroredPosition {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []MirroredPosition
	for _, pos := range b.positions {
		if pos.FollowID == followID {
			out = append(out, *pos)
		}
	}
	return out
}
