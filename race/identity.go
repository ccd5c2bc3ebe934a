package race

// Links is the predecessor/successor lookup across a frame sequence, keyed
// by the synthetic entry IDs assigned during synthesis. It is rebuilt from
// scratch whenever the frame sequence is rebuilt and must never be mixed
// with frames from a different synthesis pass.
type Links struct {
	pred map[int]int
	succ map[int]int
	byID map[int]RankedEntry
}

// Link chains every entity's entries across frames in frame order: each
// entry's predecessor is the same entity's entry in the nearest earlier
// frame and its successor the nearest later one. The first entry of an
// entity has no predecessor and the last no successor.
//
// The links let a renderer animate an entity entering the visible top-K
// from its previous off-screen position (and symmetrically on exit) instead
// of popping in from nowhere.
func Link(frames []Frame) *Links {
	l := &Links{
		pred: make(map[int]int),
		succ: make(map[int]int),
		byID: make(map[int]RankedEntry),
	}
	lastSeen := make(map[string]RankedEntry)
	for _, f := range frames {
		for _, e := range f.Entries {
			l.byID[e.ID] = e
			if prev, ok := lastSeen[e.Entity]; ok {
				l.pred[e.ID] = prev.ID
				l.succ[prev.ID] = e.ID
			}
			lastSeen[e.Entity] = e
		}
	}
	return l
}

// Predecessor returns the entry preceding e in its entity's timeline. The
// second result is false when e is the entity's first appearance; callers
// fall back to e itself.
func (l *Links) Predecessor(e RankedEntry) (RankedEntry, bool) {
	id, ok := l.pred[e.ID]
	if !ok {
		return RankedEntry{}, false
	}
	return l.byID[id], true
}

// Successor returns the entry following e in its entity's timeline. The
// second result is false when e is the entity's last appearance.
func (l *Links) Successor(e RankedEntry) (RankedEntry, bool) {
	id, ok := l.succ[e.ID]
	if !ok {
		return RankedEntry{}, false
	}
	return l.byID[id], true
}
