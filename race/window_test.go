package race_test

import (
	"errors"
	"testing"
	"time"

	"github.com/hyperscalers/marketcap-race/race"
)

func ob(entity string, year int, month time.Month, value float64, category string) race.Observation {
	end := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
	return race.Observation{Entity: entity, Time: end, Value: value, Category: category}
}

func TestWindowGroupsByTimestamp(t *testing.T) {
	obs := []race.Observation{
		ob("X", 2020, 1, 100, "Tech"),
		ob("Y", 2020, 1, 50, "Tech"),
		ob("X", 2020, 2, 150, "Tech"),
	}
	snaps, err := race.Window(obs, 0, nil)
	if err != nil {
		t.Fatalf("Window returned error: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}
	if len(snaps[0].Values) != 2 || snaps[0].Values["X"] != 100 || snaps[0].Values["Y"] != 50 {
		t.Fatalf("unexpected first snapshot: %v", snaps[0].Values)
	}
	if snaps[0].Time.After(snaps[1].Time) {
		t.Fatal("expected snapshots ascending by time")
	}
}

func TestWindowCategoryFilter(t *testing.T) {
	obs := []race.Observation{
		ob("X", 2020, 1, 100, "Tech"),
		ob("Y", 2020, 1, 50, "Auto"),
	}
	snaps, err := race.Window(obs, 0, []string{"Auto"})
	if err != nil {
		t.Fatalf("Window returned error: %v", err)
	}
	if len(snaps[0].Values) != 1 {
		t.Fatalf("expected only Auto entities, got %v", snaps[0].Values)
	}
	if _, ok := snaps[0].Values["Y"]; !ok {
		t.Fatal("expected Y to survive the category filter")
	}
}

func TestWindowEmptyCategoriesMeansAll(t *testing.T) {
	obs := []race.Observation{
		ob("X", 2020, 1, 100, "Tech"),
		ob("Y", 2020, 1, 50, "Auto"),
	}
	snaps, err := race.Window(obs, 0, nil)
	if err != nil {
		t.Fatalf("Window returned error: %v", err)
	}
	if len(snaps[0].Values) != 2 {
		t.Fatalf("expected all categories, got %v", snaps[0].Values)
	}
}

func TestWindowTrailingCutoff(t *testing.T) {
	obs := []race.Observation{
		ob("X", 2015, 1, 1, "Tech"),
		ob("X", 2018, 1, 2, "Tech"),
		ob("X", 2020, 1, 3, "Tech"),
	}
	snaps, err := race.Window(obs, 3, nil)
	if err != nil {
		t.Fatalf("Window returned error: %v", err)
	}
	// Latest snapshot is 2020-01; a 3-year window cuts at 2017-01-01.
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots inside the window, got %d", len(snaps))
	}
	if snaps[0].Time.Year() != 2018 {
		t.Fatalf("expected the 2018 snapshot first, got %v", snaps[0].Time)
	}
}

func TestWindowMonotonicity(t *testing.T) {
	var obs []race.Observation
	for year := 2010; year <= 2020; year++ {
		obs = append(obs, ob("X", year, 6, float64(year), "Tech"))
	}
	prev := 0
	for _, years := range []int{1, 2, 5, 8, 20} {
		snaps, err := race.Window(obs, years, nil)
		if err != nil {
			t.Fatalf("Window(%d) returned error: %v", years, err)
		}
		if len(snaps) < prev {
			t.Fatalf("window of %d years retained fewer snapshots (%d) than a smaller window (%d)", years, len(snaps), prev)
		}
		prev = len(snaps)
	}
	all, err := race.Window(obs, 0, nil)
	if err != nil {
		t.Fatalf("Window(0) returned error: %v", err)
	}
	if len(all) != 11 {
		t.Fatalf("unbounded window dropped snapshots: got %d of 11", len(all))
	}
}

func TestWindowNoData(t *testing.T) {
	obs := []race.Observation{ob("X", 2020, 1, 1, "Tech")}
	_, err := race.Window(obs, 0, []string{"NoSuchCategory"})
	if !errors.Is(err, race.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestSingleSnapshotDegeneratesToOneFrame(t *testing.T) {
	obs := []race.Observation{
		ob("X", 2020, 1, 100, "Tech"),
		ob("Y", 2020, 1, 50, "Tech"),
	}
	snaps, err := race.Window(obs, 0, nil)
	if err != nil {
		t.Fatalf("Window returned error: %v", err)
	}
	frames, err := race.Synthesize(snaps, 10, 4)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected a one-frame sequence from a single snapshot, got %d", len(frames))
	}
}
