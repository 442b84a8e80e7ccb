package sequence

// Keyframe is a value at time T (seconds) with the easing that applies to
// the segment starting at this keyframe.
type Keyframe struct {
	T    float64 `yaml:"t"`
	V    float64 `yaml:"v"`
	Ease string  `yaml:"ease,omitempty"` // "linear","smooth","cubic"
}

// Envelope is a sorted list of keyframes; Eval(t) interpolates a value.
type Envelope struct {
	Keys []Keyframe
}

// Clip runs one animation for DurationS seconds. Level is the lit fraction
// of the strip over the clip, 0..1. Hue, when keyed, drives the seed hue of
// the cycle variants in degrees.
type Clip struct {
	Name      string   `yaml:"name"`
	Animation string   `yaml:"animation"`
	DurationS float64  `yaml:"duration_s"`
	Level     Envelope `yaml:"level"`
	Hue       Envelope `yaml:"hue,omitempty"`
}

// Program is a full sequence of clips.
type Program struct {
	Version string `yaml:"version"` // e.g., "seq.v1"
	Loop    bool   `yaml:"loop,omitempty"`
	Clips   []Clip `yaml:"clips"`
}

// PlayerState enumerates sequencer states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Paused  PlayerState = "paused"
)

// Hooks are callbacks into whatever owns the controller.
type Hooks struct {
	// SetAnimation selects the clip's animation by name.
	SetAnimation func(name string)
	// SetLevel receives the lit fraction every tick.
	SetLevel func(f float64)
	// SetHue receives the seed hue for clips with a hue envelope.
	SetHue func(deg float64)
}

// Player owns the current Program timeline and uses Hooks to drive the
// controller.
type Player struct {
	State PlayerState

	prog   Program
	nowS   float64 // position within program
	startS float64 // program time at which clip idx began
	idx    int     // current clip index

	hooks Hooks
}
