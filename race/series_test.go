package race_test

import (
	"errors"
	"testing"
	"time"

	"github.com/hyperscalers/marketcap-race/race"
)

func TestNormalizeDropsMalformedRows(t *testing.T) {
	records := []race.Record{
		{Date: "2020-01-31", Name: "X", Value: "100", Category: "Tech"},
		{Date: "2020-01-31", Name: "Y", Value: "50", Category: "Tech"},
		{Date: "not-a-date", Name: "Z", Value: "10", Category: "Tech"},
		{Date: "2020-01-31", Name: "W", Value: "NaN", Category: "Tech"},
		{Date: "2020-01-31", Name: "V", Value: "-3", Category: "Tech"},
	}
	obs, err := race.Normalize(records)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations after dropping malformed rows, got %d", len(obs))
	}
	for _, o := range obs {
		if o.Entity != "X" && o.Entity != "Y" {
			t.Fatalf("unexpected entity survived: %q", o.Entity)
		}
	}
}

func TestNormalizeDefaultsCategory(t *testing.T) {
	obs, err := race.Normalize([]race.Record{
		{Date: "2020-01-31", Name: "X", Value: "1"},
	})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if obs[0].Category != race.DefaultCategory {
		t.Fatalf("expected category %q, got %q", race.DefaultCategory, obs[0].Category)
	}
}

func TestNormalizeSnapsToMonthEnd(t *testing.T) {
	obs, err := race.Normalize([]race.Record{
		{Date: "2020-02-14", Name: "X", Value: "1", Category: "Tech"},
	})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	want := time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC)
	if !obs[0].Time.Equal(want) {
		t.Fatalf("expected month end %v, got %v", want, obs[0].Time)
	}
}

func TestNormalizeKeepsLastObservationPerMonth(t *testing.T) {
	for name, records := range map[string][]race.Record{
		"ascending": {
			{Date: "2020-01-10", Name: "X", Value: "100", Category: "Tech"},
			{Date: "2020-01-20", Name: "X", Value: "120", Category: "Tech"},
		},
		"reversed": {
			{Date: "2020-01-20", Name: "X", Value: "120", Category: "Tech"},
			{Date: "2020-01-10", Name: "X", Value: "100", Category: "Tech"},
		},
	} {
		obs, err := race.Normalize(records)
		if err != nil {
			t.Fatalf("%s: Normalize returned error: %v", name, err)
		}
		if len(obs) != 1 {
			t.Fatalf("%s: expected 1 observation per entity-month, got %d", name, len(obs))
		}
		if obs[0].Value != 120 {
			t.Fatalf("%s: expected the 2020-01-20 observation (120) to win, got %v", name, obs[0].Value)
		}
	}
}

func TestNormalizeEqualDatesLastRowWins(t *testing.T) {
	obs, err := race.Normalize([]race.Record{
		{Date: "2020-01-20", Name: "X", Value: "100", Category: "Tech"},
		{Date: "2020-01-20", Name: "X", Value: "120", Category: "Tech"},
	})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(obs) != 1 || obs[0].Value != 120 {
		t.Fatalf("expected the later row to win on equal dates, got %+v", obs)
	}
}

func TestNormalizeSortsByTimeThenEntity(t *testing.T) {
	obs, err := race.Normalize([]race.Record{
		{Date: "2020-02-29", Name: "B", Value: "1", Category: "Tech"},
		{Date: "2020-01-31", Name: "B", Value: "1", Category: "Tech"},
		{Date: "2020-01-31", Name: "A", Value: "1", Category: "Tech"},
	})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	got := []string{obs[0].Entity, obs[1].Entity, obs[2].Entity}
	if got[0] != "A" || got[1] != "B" || got[2] != "B" {
		t.Fatalf("unexpected order: %v", got)
	}
	if obs[2].Time.Before(obs[1].Time) {
		t.Fatal("expected ascending timestamps")
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	for _, records := range [][]race.Record{
		nil,
		{{Date: "bogus", Name: "X", Value: "1"}},
	} {
		_, err := race.Normalize(records)
		if !errors.Is(err, race.ErrEmptyInput) {
			t.Fatalf("expected ErrEmptyInput, got %v", err)
		}
	}
}

func TestCategoriesSortedDistinct(t *testing.T) {
	obs := []race.Observation{
		{Entity: "X", Category: "Tech"},
		{Entity: "Y", Category: "Auto"},
		{Entity: "Z", Category: "Tech"},
	}
	got := race.Categories(obs)
	if len(got) != 2 || got[0] != "Auto" || got[1] != "Tech" {
		t.Fatalf("unexpected categories: %v", got)
	}
}
