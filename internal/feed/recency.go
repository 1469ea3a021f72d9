package feed

// recencySet is a size-bounded set of recently seen trade ids with FIFO
// eviction. It absorbs upstream overlap in paginated results; the downstream
// (follow, trade) idempotency key catches anything that slips past it.
type recencySet struct {
	limit int
	seen  map[string]struct{}
	order []string
}

func newRecencySet(limit int) *recencySet {
	if limit <= 0 {
		limit = 512
	}
	return &recencySet{
		limit: limit,
		seen:  make(map[string]struct{}, limit),
	}
}

// Contains reports whether the id is in the set.
func (r *recencySet) Contains(id string) bool {
	_, ok := r.seen[id]
	return ok
}

// Add inserts the id, evicting the oldest entry when the bound is hit.
func (r *recencySet) Add(id string) {
	if _, ok := r.seen[id]; ok {
		return
	}
	if len(r.order) >= r.limit {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.seen, oldest)
	}
	r.seen[id] = struct{}{}
	r.order = append(r.order, id)
}

// Len returns the current number of tracked ids.
func (r *recencySet) Len() int {
	return len(r.order)
}
