package race

import (
	"fmt"
	"sync"
	"time"
)

// Playback floors. Mutators clamp to these instead of failing.
const (
	MinTopN          = 3
	MinFrameDuration = 25 * time.Millisecond
)

// Defaults applied when an Options field is zero.
const (
	DefaultTopN             = 10
	DefaultStepsPerInterval = 10
	DefaultFrameDuration    = 250 * time.Millisecond
)

// Renderer is the external collaborator that draws frames. RenderFrame must
// block until the frame's visual transition has completed; the player emits
// the next frame only after it returns, so transitions never overlap and no
// frame is skipped. transition is the duration the renderer should spend on
// the transition (the player's current speed setting).
type Renderer interface {
	RenderFrame(frame Frame, links *Links, transition time.Duration)
	Status(text string)
}

// FrameTimer is optionally implemented by renderers that want the frame's
// data timestamp announced before the frame is rendered.
type FrameTimer interface {
	FrameTimestamp(t time.Time)
}

// Options configures a Player. Zero fields take the defaults above;
// out-of-range fields are clamped, never rejected.
type Options struct {
	TopN             int
	StepsPerInterval int
	FrameDuration    time.Duration
	WindowYears      int      // 0 = unbounded history
	Categories       []string // empty = all categories
}

// Player drives frame advancement over a synthesized sequence. It owns all
// mutable playback state; there is no shared global. Exactly one Run loop
// may be active per Player. Mutators may be called from any goroutine while
// Run is blocked; they take effect at the next loop iteration, never
// mid-transition.
type Player struct {
	renderer Renderer
	obs      []Observation
	meta     []string

	mu   sync.Mutex
	cond *sync.Cond

	topN        int
	steps       int
	frameDur    time.Duration
	windowYears int
	categories  []string

	frames []Frame
	links  *Links

	cursor  int
	playing bool
	restart bool
	stopped bool
	dirty   bool
}

// NewPlayer builds the initial frame sequence for obs and returns a player
// positioned at frame 0, paused. Returns ErrEmptyInput when obs is empty
// and ErrNoData when the initial filters leave nothing to animate.
func NewPlayer(obs []Observation, renderer Renderer, opts Options) (*Player, error) {
	if len(obs) == 0 {
		return nil, ErrEmptyInput
	}
	if opts.TopN == 0 {
		opts.TopN = DefaultTopN
	}
	if opts.StepsPerInterval == 0 {
		opts.StepsPerInterval = DefaultStepsPerInterval
	}
	if opts.FrameDuration == 0 {
		opts.FrameDuration = DefaultFrameDuration
	}
	p := &Player{
		renderer:    renderer,
		obs:         obs,
		meta:        Categories(obs),
		topN:        max(opts.TopN, MinTopN),
		steps:       max(opts.StepsPerInterval, 1),
		frameDur:    max(opts.FrameDuration, MinFrameDuration),
		windowYears: max(opts.WindowYears, 0),
		categories:  opts.Categories,
	}
	p.cond = sync.NewCond(&p.mu)
	frames, links, err := p.build()
	if err != nil {
		return nil, err
	}
	p.frames, p.links = frames, links
	return p, nil
}

// Run is the playback loop. It blocks until Stop is called: suspended while
// paused, woken synchronously by Play/Restart/Stop, and blocked in
// RenderFrame while a transition is in flight. Stop and structural
// mutations are observed only at iteration boundaries, so an in-flight
// transition always completes first.
func (p *Player) Run() {
	p.mu.Lock()
	for {
		for !p.playing && !p.stopped {
			p.cond.Wait()
		}
		if p.stopped {
			p.mu.Unlock()
			p.renderer.Status("stopped")
			return
		}
		if p.dirty {
			p.dirty = false
			frames, links, err := p.build()
			if err != nil {
				// Keep the previous sequence; the filters select nothing.
				p.mu.Unlock()
				p.renderer.Status("no data for current filters")
				p.mu.Lock()
			} else {
				p.frames, p.links = frames, links
				p.cursor = 0
				n := len(frames)
				p.mu.Unlock()
				p.renderer.Status(fmt.Sprintf("resynthesized %d frames", n))
				p.mu.Lock()
			}
			continue
		}
		if p.restart {
			p.restart = false
			p.cursor = 0
		}
		if p.cursor >= len(p.frames) {
			p.playing = false
			p.mu.Unlock()
			p.renderer.Status("finished")
			p.mu.Lock()
			continue
		}
		frame := p.frames[p.cursor]
		links := p.links
		transition := p.frameDur
		p.mu.Unlock()

		if ft, ok := p.renderer.(FrameTimer); ok {
			ft.FrameTimestamp(frame.Time)
		}
		p.renderer.RenderFrame(frame, links, transition)

		p.mu.Lock()
		if !p.restart && !p.dirty {
			p.cursor++
		}
	}
}

// build recomputes the frame sequence from the source observations and the
// current filter parameters. Callers must have exclusive access to the
// parameter fields; pure computation.
func (p *Player) build() ([]Frame, *Links, error) {
	snaps, err := Window(p.obs, p.windowYears, p.categories)
	if err != nil {
		return nil, nil, err
	}
	frames, err := Synthesize(snaps, p.topN, p.steps)
	if err != nil {
		return nil, nil, err
	}
	return frames, Link(frames), nil
}

// Play resumes (or, from the end of the timeline, replays) the animation.
func (p *Player) Play() {
	p.mu.Lock()
	if p.cursor >= len(p.frames) {
		p.cursor = 0
	}
	p.playing = true
	p.mu.Unlock()
	p.cond.Broadcast()
}

// Pause suspends playback before the next frame step begins. A transition
// already in flight completes.
func (p *Player) Pause() {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
}

// Restart rewinds to frame 0 at the top of the next loop iteration without
// leaving the playing state.
func (p *Player) Restart() {
	p.mu.Lock()
	p.restart = true
	p.playing = true
	p.mu.Unlock()
	p.cond.Broadcast()
}

// Stop terminates the Run loop at the next iteration boundary. Terminal.
func (p *Player) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	p.cond.Broadcast()
}

// SetSpeed sets the per-frame transition duration, floor-clamped to
// MinFrameDuration. Takes effect for the next emitted frame.
func (p *Player) SetSpeed(d time.Duration) {
	d = max(d, MinFrameDuration)
	p.mu.Lock()
	p.frameDur = d
	p.mu.Unlock()
}

// SetTopN changes the visible cut, floor-clamped to MinTopN, and triggers a
// full resynthesis with the cursor reset to 0. Play/pause state is kept.
func (p *Player) SetTopN(k int) {
	k = max(k, MinTopN)
	p.mu.Lock()
	if k != p.topN {
		p.topN = k
		p.dirty = true
	}
	p.mu.Unlock()
}

// SetWindowYears changes the trailing window (0 = unbounded) and triggers a
// full resynthesis with the cursor reset to 0.
func (p *Player) SetWindowYears(years int) {
	years = max(years, 0)
	p.mu.Lock()
	if years != p.windowYears {
		p.windowYears = years
		p.dirty = true
	}
	p.mu.Unlock()
}

// SetCategories restricts the universe to the given categories (empty =
// all) and triggers a full resynthesis with the cursor reset to 0.
func (p *Player) SetCategories(categories []string) {
	p.mu.Lock()
	p.categories = append([]string(nil), categories...)
	p.dirty = true
	p.mu.Unlock()
}

// Categories returns the sorted distinct categories of the full input,
// regardless of the active filter.
func (p *Player) Categories() []string {
	return append([]string(nil), p.meta...)
}

// Playing reports whether the loop is advancing frames.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Position returns the current frame cursor and the sequence length.
func (p *Player) Position() (cursor, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor, len(p.frames)
}

// TopN returns the current visible cut.
func (p *Player) TopN() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.topN
}

// WindowYears returns the current trailing window (0 = unbounded).
func (p *Player) WindowYears() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.windowYears
}

// FrameDuration returns the current per-frame transition duration.
func (p *Player) FrameDuration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frameDur
}
