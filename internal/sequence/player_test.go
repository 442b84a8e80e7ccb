package sequence

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/coreman2200/ledfill/internal/pattern"
)

func TestEnvelopeEval(t *testing.T) {
	env := Keyed(
		Keyframe{T: 10, V: 10, Ease: "linear"},
		Keyframe{T: 0, V: 0, Ease: "linear"},
	)
	assert.Equal(t, 0.0, env.Eval(-1), "before start")
	assert.Equal(t, 0.0, env.Eval(0))
	assert.Equal(t, 5.0, env.Eval(5))
	assert.Equal(t, 10.0, env.Eval(10))
	assert.Equal(t, 10.0, env.Eval(11), "after end")

	assert.Equal(t, 0.0, Envelope{}.Eval(3))
	assert.Equal(t, 0.4, Keyed(Keyframe{T: 2, V: 0.4}).Eval(0))
}

func TestEnvelopeEase(t *testing.T) {
	for _, ease := range []string{"linear", "smooth", "cubic", "bogus"} {
		env := Keyed(Keyframe{T: 0, V: 0, Ease: ease}, Keyframe{T: 1, V: 1})
		assert.InDelta(t, 0.5, env.Eval(0.5), 1e-9, ease)
	}
	smooth := Keyed(Keyframe{T: 0, V: 0, Ease: "smooth"}, Keyframe{T: 1, V: 1})
	assert.Less(t, smooth.Eval(0.25), 0.25)
}

func TestEnvelopeYAML(t *testing.T) {
	var c Clip
	require.NoError(t, yaml.Unmarshal([]byte(`
name: ramp
animation: solid-trail
duration_s: 3
level: [{t: 2, v: 1}, {t: 0, v: 0}]
hue: 90
`), &c))
	assert.Equal(t, []Keyframe{{T: 0, V: 0}, {T: 2, V: 1}}, c.Level.Keys, "keys are sorted")
	assert.Equal(t, 90.0, c.Hue.Eval(1))

	out, err := yaml.Marshal(Clip{Name: "x", Animation: "rainbow", DurationS: 1, Level: Keyed(Keyframe{V: 1})})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hue")
}

func TestLoadProgram(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "show.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
version: seq.v1
loop: true
clips:
  - {name: a, animation: rainbow, duration_s: 2, level: 0.5}
  - {name: b, animation: solid_trail_double, duration_s: 1, level: [{t: 0, v: 1}, {t: 1, v: 0}]}
`), 0644))
	prog, err := LoadProgram(good)
	require.NoError(t, err)
	assert.True(t, prog.Loop)
	assert.Len(t, prog.Clips, 2)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`
clips:
  - {name: a, animation: sparkle, duration_s: 2}
`), 0644))
	_, err = LoadProgram(bad)
	assert.True(t, errors.Is(err, pattern.ErrUnknownVariant))

	assert.Error(t, Program{}.Validate())
	assert.Error(t, Program{Clips: []Clip{{Animation: "rainbow"}}}.Validate(), "zero duration")
}

type recorder struct {
	log    []string
	levels []float64
	hues   []float64
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		SetAnimation: func(name string) { r.log = append(r.log, name) },
		SetLevel:     func(f float64) { r.levels = append(r.levels, f) },
		SetHue:       func(h float64) { r.hues = append(r.hues, h) },
	}
}

func twoClips(loop bool) Program {
	return Program{
		Version: "seq.v1",
		Loop:    loop,
		Clips: []Clip{
			{Name: "A", Animation: "rainbow", DurationS: 2, Level: Keyed(Keyframe{T: 0, V: 0}, Keyframe{T: 2, V: 1})},
			{Name: "B", Animation: "solid-trail", DurationS: 2, Level: Keyed(Keyframe{V: 3}), Hue: Keyed(Keyframe{V: 200})},
		},
	}
}

func TestPlayerAdvancesClips(t *testing.T) {
	var r recorder
	p := NewPlayer(r.hooks())
	require.NoError(t, p.Load(twoClips(false)))

	p.Tick(1)
	assert.Empty(t, r.levels, "idle player ignores ticks")

	p.Start()
	p.Tick(1)
	p.Tick(1)
	assert.Equal(t, []string{"rainbow", "solid-trail"}, r.log)
	assert.Equal(t, []float64{0.5, 1}, r.levels)

	p.Tick(1)
	assert.Equal(t, 1.0, r.levels[2], "levels are clamped to [0,1]")
	assert.Equal(t, []float64{200}, r.hues)

	p.Tick(1)
	assert.Equal(t, Idle, p.State, "program ends without loop")
	c, ok := p.Clip()
	require.True(t, ok)
	assert.Equal(t, "B", c.Name)
}

func TestPlayerLoops(t *testing.T) {
	var r recorder
	p := NewPlayer(r.hooks())
	require.NoError(t, p.Load(twoClips(true)))
	p.Start()

	p.Tick(2)
	p.Tick(2.5)
	assert.Equal(t, Running, p.State)
	assert.Equal(t, []string{"rainbow", "solid-trail", "rainbow"}, r.log)
	assert.InDelta(t, 0.5, p.Elapsed(), 1e-9)

	p.Tick(0.5)
	assert.InDelta(t, 0.5, r.levels[len(r.levels)-1], 1e-9)
}

func TestPlayerPauseSeekStop(t *testing.T) {
	var r recorder
	p := NewPlayer(r.hooks())
	require.NoError(t, p.Load(twoClips(false)))
	p.Start()

	p.Pause()
	p.Tick(1)
	assert.Equal(t, 0.0, p.Elapsed())
	p.Resume()
	assert.Equal(t, Running, p.State)

	p.Seek(3)
	c, _ := p.Clip()
	assert.Equal(t, "B", c.Name)
	assert.Equal(t, "solid-trail", r.log[len(r.log)-1])

	p.Seek(99)
	assert.Less(t, p.Elapsed(), 4.0)

	p.Stop()
	assert.Equal(t, Idle, p.State)
	assert.Equal(t, 0.0, p.Elapsed())
}

func TestDefaultProgram(t *testing.T) {
	prog := DefaultProgram()
	require.NoError(t, prog.Validate())
	require.Len(t, prog.Clips, len(pattern.Variants()))
	for _, c := range prog.Clips {
		assert.Equal(t, strings.HasSuffix(c.Animation, "-cycle"), !c.Hue.Empty(), c.Name)
	}
}
