package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/hyperscalers/marketcap-race/race"
)

// dumpFrames prints the ranked top-N table for every exact snapshot, one
// table per month. Used when stdout is not a terminal or -dump is set.
func dumpFrames(w io.Writer, obs []race.Observation) error {
	snaps, err := race.Window(obs, config.WindowYears, splitCategories(config.Categories))
	if err != nil {
		return err
	}
	frames, err := race.Synthesize(snaps, config.TopN, 1)
	if err != nil {
		return err
	}

	for _, f := range frames {
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetStyle(table.StyleRounded)
		tw.SetTitle(f.Time.Format("January 2006"))
		tw.AppendHeader(table.Row{"Rank", "Name", "Value ($B)"})
		for _, e := range f.Visible() {
			tw.AppendRow(table.Row{e.Rank + 1, e.Entity, fmt.Sprintf("%.1f", e.Value)})
		}
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
			{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		})
		tw.Render()
		fmt.Fprintln(w)
	}
	return nil
}
