package race

import (
	"errors"
	"sort"
	"time"
)

// ErrNoData is returned when filtering leaves nothing to animate.
var ErrNoData = errors.New("race: no snapshots after filtering")

// Snapshot is the exact, non-interpolated value table at one timestamp.
type Snapshot struct {
	Time   time.Time
	Values map[string]float64
}

// Window groups observations into per-timestamp snapshots, applying the
// category filter and the trailing time window first.
//
// An empty categories set means all categories. windowYears <= 0 means
// unbounded history; otherwise the cutoff is the first of the month
// windowYears before the latest snapshot's month, and snapshots strictly
// before the cutoff are dropped. Returns ErrNoData if zero snapshots remain.
func Window(obs []Observation, windowYears int, categories []string) ([]Snapshot, error) {
	allowed := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		allowed[c] = struct{}{}
	}

	byTime := make(map[time.Time]map[string]float64)
	for _, o := range obs {
		if len(allowed) > 0 {
			if _, ok := allowed[o.Category]; !ok {
				continue
			}
		}
		vals := byTime[o.Time]
		if vals == nil {
			vals = make(map[string]float64)
			byTime[o.Time] = vals
		}
		vals[o.Entity] = o.Value
	}
	if len(byTime) == 0 {
		return nil, ErrNoData
	}

	snaps := make([]Snapshot, 0, len(byTime))
	for t, vals := range byTime {
		snaps = append(snaps, Snapshot{Time: t, Values: vals})
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Time.Before(snaps[j].Time) })

	if windowYears > 0 {
		last := snaps[len(snaps)-1].Time
		cutoff := time.Date(last.Year()-windowYears, last.Month(), 1, 0, 0, 0, 0, time.UTC)
		i := sort.Search(len(snaps), func(i int) bool {
			return !snaps[i].Time.Before(cutoff)
		})
		snaps = snaps[i:]
	}
	if len(snaps) == 0 {
		return nil, ErrNoData
	}
	return snaps, nil
}
