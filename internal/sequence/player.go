package sequence

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/ledfill/internal/pattern"
)

// NewPlayer constructs a Player with provided hooks.
func NewPlayer(h Hooks) *Player {
	return &Player{State: Idle, hooks: h}
}

// Validate checks that every clip has a known animation and a positive
// duration.
func (prog Program) Validate() error {
	if len(prog.Clips) == 0 {
		return errors.New("program has no clips")
	}
	for i, c := range prog.Clips {
		if c.DurationS <= 0 {
			return fmt.Errorf("clip %d (%s): duration must be positive", i, c.Name)
		}
		if _, err := pattern.Lookup(c.Animation); err != nil {
			return fmt.Errorf("clip %d (%s): %w", i, c.Name, err)
		}
	}
	return nil
}

// LoadProgram reads a YAML program from path.
func LoadProgram(path string) (Program, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Program{}, err
	}
	var prog Program
	if err := yaml.Unmarshal(b, &prog); err != nil {
		return Program{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := prog.Validate(); err != nil {
		return Program{}, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// DefaultProgram shows every animation for four seconds: the level rises
// to full, then drops back so trail variants show their decay. Cycle
// variants sweep the seed hue once per clip.
func DefaultProgram() Program {
	prog := Program{Version: "seq.v1", Loop: true}
	for _, v := range pattern.Variants() {
		c := Clip{
			Name:      v.String(),
			Animation: v.String(),
			DurationS: 4,
			Level: Keyed(
				Keyframe{T: 0, V: 0, Ease: "smooth"},
				Keyframe{T: 1.5, V: 1, Ease: "linear"},
				Keyframe{T: 2, V: 1, Ease: "cubic"},
				Keyframe{T: 2.5, V: 0.2},
			),
		}
		if strings.HasSuffix(v.String(), "-cycle") {
			c.Hue = Keyed(Keyframe{T: 0, V: 0}, Keyframe{T: 4, V: 360})
		}
		prog.Clips = append(prog.Clips, c)
	}
	return prog
}

// Load replaces the current program. Resets time and state to Idle.
func (p *Player) Load(prog Program) error {
	if err := prog.Validate(); err != nil {
		return err
	}
	p.prog = prog
	p.nowS = 0
	p.startS = 0
	p.idx = 0
	p.State = Idle
	return nil
}

// Start moves to Running and selects the current clip's animation.
func (p *Player) Start() {
	if p.State == Running || len(p.prog.Clips) == 0 {
		return
	}
	p.State = Running
	p.enter()
}

// Pause pauses playback.
func (p *Player) Pause() { p.State = Paused }

// Resume resumes playback.
func (p *Player) Resume() {
	if p.State == Paused {
		p.State = Running
	}
}

// Stop stops and resets to start.
func (p *Player) Stop() {
	p.State = Idle
	p.nowS = 0
	p.startS = 0
	p.idx = 0
}

// Elapsed is the position within the program in seconds.
func (p *Player) Elapsed() float64 { return p.nowS }

// Clip returns the active clip.
func (p *Player) Clip() (Clip, bool) {
	if len(p.prog.Clips) == 0 {
		return Clip{}, false
	}
	return p.prog.Clips[p.idx], true
}

// Seek jumps to absolute program time t. Clamps into [0, totalDur).
func (p *Player) Seek(t float64) {
	if len(p.prog.Clips) == 0 {
		return
	}
	if t < 0 {
		t = 0
	}
	total := p.totalDuration()
	if t >= total {
		t = math.Nextafter(total, -1)
	}
	acc := 0.0
	idx := 0
	for i, c := range p.prog.Clips {
		if t < acc+c.DurationS {
			idx = i
			break
		}
		acc += c.DurationS
	}
	p.idx = idx
	p.nowS = t
	p.startS = acc
	p.enter()
	p.emit(t - acc)
}

// Tick advances the sequencer by dt seconds and emits control hooks.
func (p *Player) Tick(dt float64) {
	if p.State != Running || len(p.prog.Clips) == 0 || dt <= 0 {
		return
	}
	p.nowS += dt

	clip := p.prog.Clips[p.idx]
	localT := p.nowS - p.startS
	p.emit(localT)

	if localT >= clip.DurationS {
		p.advanceClip()
	}
}

func (p *Player) emit(localT float64) {
	clip := p.prog.Clips[p.idx]
	if p.hooks.SetLevel != nil {
		p.hooks.SetLevel(clamp01(clip.Level.Eval(localT)))
	}
	if !clip.Hue.Empty() && p.hooks.SetHue != nil {
		p.hooks.SetHue(clip.Hue.Eval(localT))
	}
}

func (p *Player) enter() {
	if p.hooks.SetAnimation != nil {
		p.hooks.SetAnimation(p.prog.Clips[p.idx].Animation)
	}
}

func (p *Player) totalDuration() float64 {
	total := 0.0
	for _, c := range p.prog.Clips {
		total += c.DurationS
	}
	return total
}

func (p *Player) advanceClip() {
	p.startS += p.prog.Clips[p.idx].DurationS
	p.idx++
	if p.idx >= len(p.prog.Clips) {
		if !p.prog.Loop {
			p.idx = len(p.prog.Clips) - 1
			p.startS -= p.prog.Clips[p.idx].DurationS
			p.State = Idle
			return
		}
		p.nowS -= p.startS
		p.startS = 0
		p.idx = 0
	}
	p.enter()
}
