package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tui "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"

	"github.com/hyperscalers/marketcap-race/race"
)

type Config struct {
	// input
	InputPath  string
	ConfigPath string

	// synthesis
	TopN          int
	Steps         int
	FrameDuration time.Duration
	WindowYears   int
	Categories    string

	// render
	AutoPlay  bool
	Dump      bool
	ViewSplit int
	PlotSpan  int
	AltScreen bool

	StatsEnabled bool
	StatsWindow  int
}

var config = Config{
	TopN:          10,
	Steps:         10,
	FrameDuration: 250 * time.Millisecond,
	WindowYears:   0,
	Categories:    "",

	AutoPlay:  true,
	ViewSplit: 55,
	PlotSpan:  120,
	AltScreen: true,

	StatsEnabled: false,
	StatsWindow:  256,
}

func main() {
	log.SetOutput(os.Stdout)
	flag.StringVar(&config.InputPath, "in", config.InputPath, "Read the market cap CSV from this file instead of stdin")
	flag.StringVar(&config.ConfigPath, "config", config.ConfigPath, "Optional TOML config file; flags take precedence")
	flag.IntVar(&config.TopN, "top", config.TopN, "Show the top N entities (minimum 3)")
	flag.IntVar(&config.Steps, "steps", config.Steps, "Interpolation sub-frames per month (minimum 1)")
	flag.DurationVar(&config.FrameDuration, "frame", config.FrameDuration, "Transition duration per frame (e.g. 250ms)")
	flag.IntVar(&config.WindowYears, "window-years", config.WindowYears, "Trailing window in years (0 = full history)")
	flag.StringVar(&config.Categories, "categories", config.Categories, "Comma-separated category filter (empty = all)")
	flag.BoolVar(&config.AutoPlay, "autoplay", config.AutoPlay, "Start playing immediately")
	flag.BoolVar(&config.Dump, "dump", config.Dump, "Print ranked snapshot tables instead of animating")
	flag.IntVar(&config.ViewSplit, "view-split", config.ViewSplit, "Split the view at this % of the total screen width [20,80]")
	flag.IntVar(&config.PlotSpan, "plot-span", config.PlotSpan, "Number of recent frames kept in the value plot")
	flag.BoolVar(&config.AltScreen, "alt-screen", config.AltScreen, "Use the terminal alternate screen buffer")
	flag.BoolVar(&config.StatsEnabled, "stats", config.StatsEnabled, "Show playback pacing stats")
	flag.IntVar(&config.StatsWindow, "stats-window", config.StatsWindow, "Number of recent samples kept per metric")
	flag.Parse()

	if config.ConfigPath != "" {
		if err := applyConfigFile(config.ConfigPath); err != nil {
			log.Fatal(err)
		}
	}
	if err := validateAndNormalizeConfig(); err != nil {
		log.Fatal(err)
	}

	records, err := loadRecords(config.InputPath)
	if err != nil {
		log.Fatal(err)
	}
	obs, err := race.Normalize(records)
	if err != nil {
		log.Fatal(err)
	}

	if config.Dump || !term.IsTerminal(os.Stdout.Fd()) {
		if err := dumpFrames(os.Stdout, obs); err != nil {
			log.Fatal(err)
		}
		return
	}

	metrics := newFrameMetrics(config.StatsWindow)
	metrics.setEnabled(config.StatsEnabled)
	renderer := &uiRenderer{metrics: metrics}
	player, err := race.NewPlayer(obs, renderer, race.Options{
		TopN:             config.TopN,
		StepsPerInterval: config.Steps,
		FrameDuration:    config.FrameDuration,
		WindowYears:      config.WindowYears,
		Categories:       splitCategories(config.Categories),
	})
	if err != nil {
		log.Fatal(err)
	}

	categoryOf := make(map[string]string, len(obs))
	for _, o := range obs {
		categoryOf[o.Entity] = o.Category
	}

	m := newModel(player, metrics, categoryOf)
	opts := []tui.ProgramOption{tui.WithInputTTY()}
	if config.AltScreen {
		opts = append(opts, tui.WithAltScreen())
	}
	prog := tui.NewProgram(m, opts...)
	renderer.program = prog
	if _, err := prog.Run(); err != nil {
		log.Fatal(err)
	}
}

func validateAndNormalizeConfig() error {
	if config.TopN < 1 {
		return fmt.Errorf("-top must be >= 1")
	}
	if config.Steps < 1 {
		return fmt.Errorf("-steps must be >= 1")
	}
	if config.FrameDuration <= 0 {
		return fmt.Errorf("-frame must be > 0")
	}
	if config.WindowYears < 0 {
		return fmt.Errorf("-window-years must be >= 0")
	}
	if config.PlotSpan < 2 {
		return fmt.Errorf("-plot-span must be >= 2")
	}
	config.ViewSplit = max(20, config.ViewSplit)
	config.ViewSplit = min(80, config.ViewSplit)
	if config.StatsWindow < 16 {
		config.StatsWindow = 16
	}
	return nil
}

func splitCategories(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, c := range strings.Split(s, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
