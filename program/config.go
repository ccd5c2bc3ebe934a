package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// fileConfig is the TOML shape of the optional config file. Every field is
// a pointer so that absent keys leave the flag defaults alone.
type fileConfig struct {
	Input         *string  `toml:"input"`
	TopN          *int     `toml:"top_n"`
	Steps         *int     `toml:"steps"`
	FrameDuration *string  `toml:"frame_duration"`
	WindowYears   *int     `toml:"window_years"`
	Categories    []string `toml:"categories"`
	AutoPlay      *bool    `toml:"autoplay"`
	ViewSplit     *int     `toml:"view_split"`
	PlotSpan      *int     `toml:"plot_span"`
	AltScreen     *bool    `toml:"alt_screen"`
	Stats         *bool    `toml:"stats"`
}

// applyConfigFile layers the TOML file under the command line: only values
// whose flags were not set explicitly are taken from the file.
func applyConfigFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if fc.Input != nil && !set["in"] {
		config.InputPath = *fc.Input
	}
	if fc.TopN != nil && !set["top"] {
		config.TopN = *fc.TopN
	}
	if fc.Steps != nil && !set["steps"] {
		config.Steps = *fc.Steps
	}
	if fc.FrameDuration != nil && !set["frame"] {
		d, err := time.ParseDuration(*fc.FrameDuration)
		if err != nil {
			return fmt.Errorf("parse config %s: frame_duration: %w", path, err)
		}
		config.FrameDuration = d
	}
	if fc.WindowYears != nil && !set["window-years"] {
		config.WindowYears = *fc.WindowYears
	}
	if len(fc.Categories) > 0 && !set["categories"] {
		config.Categories = joinCategories(fc.Categories)
	}
	if fc.AutoPlay != nil && !set["autoplay"] {
		config.AutoPlay = *fc.AutoPlay
	}
	if fc.ViewSplit != nil && !set["view-split"] {
		config.ViewSplit = *fc.ViewSplit
	}
	if fc.PlotSpan != nil && !set["plot-span"] {
		config.PlotSpan = *fc.PlotSpan
	}
	if fc.AltScreen != nil && !set["alt-screen"] {
		config.AltScreen = *fc.AltScreen
	}
	if fc.Stats != nil && !set["stats"] {
		config.StatsEnabled = *fc.Stats
	}
	return nil
}

func joinCategories(cats []string) string {
	out := ""
	for i, c := range cats {
		if i > 0 {
			out += ","
		}
		out += c
	}
	return out
}
