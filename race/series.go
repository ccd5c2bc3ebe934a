// Package race turns a sparse monthly time series of ranked values into a
// dense sequence of smoothly interpolated "bar chart race" frames and drives
// a controllable playback loop over them.
package race

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"time"
)

// ErrEmptyInput is returned when no observation survives normalization.
var ErrEmptyInput = errors.New("race: no usable observations in input")

// DefaultCategory is assigned to records that arrive without one.
const DefaultCategory = "Unknown"

// DateLayout is the expected layout of record dates.
const DateLayout = "2006-01-02"

// Record is one raw input row, string-typed as it comes off the wire.
type Record struct {
	Date     string
	Name     string
	Value    string
	Category string
}

// Observation is one normalized data point: an entity's value at a
// month-end instant. Immutable once produced.
type Observation struct {
	Entity   string
	Time     time.Time
	Value    float64
	Category string
}

// Normalize parses raw records into a canonical observation list sorted
// ascending by (time, entity). Rows with unparseable dates or non-finite or
// negative values are dropped, not reported; externally sourced data is
// best-effort. Timestamps are snapped to the end of their calendar month and
// the last observation per entity-month wins. Returns ErrEmptyInput if
// nothing survives.
func Normalize(records []Record) ([]Observation, error) {
	type key struct {
		entity string
		time   time.Time
	}
	type candidate struct {
		obs Observation
		day time.Time
	}
	byKey := make(map[key]candidate, len(records))
	for _, r := range records {
		day, err := time.Parse(DateLayout, r.Date)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(r.Value, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			continue
		}
		if r.Name == "" {
			continue
		}
		category := r.Category
		if category == "" {
			category = DefaultCategory
		}
		k := key{r.Name, monthEnd(day)}
		// The latest calendar date within the month wins, regardless of
		// input order; equal dates fall back to input order.
		if prev, ok := byKey[k]; ok && day.Before(prev.day) {
			continue
		}
		byKey[k] = candidate{
			obs: Observation{
				Entity:   r.Name,
				Time:     k.time,
				Value:    v,
				Category: category,
			},
			day: day,
		}
	}
	if len(byKey) == 0 {
		return nil, ErrEmptyInput
	}
	obs := make([]Observation, 0, len(byKey))
	for _, c := range byKey {
		obs = append(obs, c.obs)
	}
	sort.Slice(obs, func(i, j int) bool {
		if !obs[i].Time.Equal(obs[j].Time) {
			return obs[i].Time.Before(obs[j].Time)
		}
		return obs[i].Entity < obs[j].Entity
	})
	return obs, nil
}

// Categories returns the sorted distinct categories present in obs.
func Categories(obs []Observation) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range obs {
		if _, ok := seen[o.Category]; ok {
			continue
		}
		seen[o.Category] = struct{}{}
		out = append(out, o.Category)
	}
	sort.Strings(out)
	return out
}

func monthEnd(t time.Time) time.Time {
	// First of next month, minus a day.
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}
