package main

import (
	"strings"
	"testing"

	"github.com/hyperscalers/marketcap-race/race"
)

func TestDumpFrames(t *testing.T) {
	saved := config
	defer func() { config = saved }()
	config.TopN = 3
	config.WindowYears = 0
	config.Categories = ""

	obs, err := race.Normalize([]race.Record{
		{Date: "2020-01-31", Name: "NVIDIA", Value: "320", Category: "Chips"},
		{Date: "2020-01-31", Name: "Apple", Value: "1400", Category: "Devices"},
		{Date: "2020-02-29", Name: "NVIDIA", Value: "350", Category: "Chips"},
		{Date: "2020-02-29", Name: "Apple", Value: "1350", Category: "Devices"},
	})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	var out strings.Builder
	if err := dumpFrames(&out, obs); err != nil {
		t.Fatalf("dumpFrames returned error: %v", err)
	}
	got := out.String()
	for _, want := range []string{"January 2020", "February 2020", "NVIDIA", "Apple", "1400.0"} {
		if !strings.Contains(got, want) {
			t.Fatalf("dump output missing %q:\n%s", want, got)
		}
	}
}
