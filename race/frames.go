package race

import (
	"sort"
	"time"
)

// RankedEntry is one entity's interpolated value and rank within a frame.
// ID is a synthetic identity, dense and unique within one synthesis pass;
// identity links are keyed by it.
type RankedEntry struct {
	ID     int
	Entity string
	Value  float64
	Rank   int
}

// Frame is one fully ranked, timestamped step of the animation timeline.
// Entries covers the whole entity universe at this instant, sorted
// descending by value; ranks at and beyond TopK are clamped to TopK so
// off-screen entities still have a defined exit target.
type Frame struct {
	Time    time.Time
	Entries []RankedEntry
	TopK    int
}

// Visible returns the entries within the top-K cut.
func (f Frame) Visible() []RankedEntry {
	n := 0
	for _, e := range f.Entries {
		if e.Rank >= f.TopK {
			break
		}
		n++
	}
	return f.Entries[:n]
}

// Entry returns the frame's entry for the given entity, if present.
func (f Frame) Entry(entity string) (RankedEntry, bool) {
	for _, e := range f.Entries {
		if e.Entity == entity {
			return e, true
		}
	}
	return RankedEntry{}, false
}

// Synthesize expands snapshots into the dense frame sequence.
//
// For each adjacent snapshot pair it emits steps sub-frames at parametric
// positions j/steps, linearly blending timestamps and per-entity values; an
// entity missing on one side blends against zero, so entries grow in from
// and shrink out to nothing. The final snapshot is emitted once, exactly.
// steps < 1 is coerced to 1, topK < 1 to 1. The result is deterministic:
// frame count is (len(snaps)-1)*steps+1 and equal-valued entities are
// ordered lexicographically by entity name.
func Synthesize(snaps []Snapshot, topK, steps int) ([]Frame, error) {
	if len(snaps) == 0 {
		return nil, ErrNoData
	}
	if steps < 1 {
		steps = 1
	}
	if topK < 1 {
		topK = 1
	}

	frames := make([]Frame, 0, (len(snaps)-1)*steps+1)
	nextID := 0
	for i := 0; i+1 < len(snaps); i++ {
		a, b := snaps[i], snaps[i+1]
		for j := 0; j < steps; j++ {
			t := float64(j) / float64(steps)
			frames = append(frames, rankFrame(
				blendTime(a.Time, b.Time, t),
				blendValues(a.Values, b.Values, t),
				topK, &nextID,
			))
		}
	}
	last := snaps[len(snaps)-1]
	frames = append(frames, rankFrame(last.Time, last.Values, topK, &nextID))
	return frames, nil
}

func blendTime(a, b time.Time, t float64) time.Time {
	if t == 0 {
		return a
	}
	return a.Add(time.Duration(t * float64(b.Sub(a))))
}

func blendValues(a, b map[string]float64, t float64) map[string]float64 {
	out := make(map[string]float64, len(a)+len(b))
	for entity, va := range a {
		out[entity] = (1 - t) * va
	}
	for entity, vb := range b {
		out[entity] += t * vb
	}
	return out
}

func rankFrame(ts time.Time, values map[string]float64, topK int, nextID *int) Frame {
	entries := make([]RankedEntry, 0, len(values))
	for entity, v := range values {
		entries = append(entries, RankedEntry{Entity: entity, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Entity < entries[j].Entity
	})
	for i := range entries {
		entries[i].ID = *nextID
		*nextID++
		entries[i].Rank = min(i, topK)
	}
	return Frame{Time: ts, Entries: entries, TopK: topK}
}
