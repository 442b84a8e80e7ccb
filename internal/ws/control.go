package ws

import (
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledfill/internal/config"
	diag "github.com/coreman2200/ledfill/internal/diagnostics"
	"github.com/coreman2200/ledfill/internal/sequence"
)

type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ControlMsg is one message on /control. Absent fields are left alone.
type ControlMsg struct {
	Animation  *string  `json:"animation,omitempty"`
	Color      *RGB     `json:"color,omitempty"`
	SeedHue    *float64 `json:"seed_hue,omitempty"`
	Brightness *int     `json:"brightness,omitempty"`
	Progress   *int     `json:"progress,omitempty"`
	// Play pauses (false) or resumes (true) a loaded program.
	Play *bool `json:"play,omitempty"`
	// Seek jumps the loaded program to this many seconds from its start.
	Seek *float64 `json:"seek,omitempty"`
}

func (s *State) ApplyControl(msg ControlMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.Animation != nil && s.selectLocked(*msg.Animation) {
		s.pushDiag(diag.Diagnostic{Severity: diag.Info, Code: diag.AnimSelected, Summary: "Animation selected", Detail: *msg.Animation})
	}
	if msg.Color != nil {
		s.ctl.SetBaseColor(msg.Color.R, msg.Color.G, msg.Color.B)
	}
	if msg.SeedHue != nil {
		s.ctl.SetRainbowSeedHue(*msg.SeedHue)
	}
	if msg.Brightness != nil {
		if b := *msg.Brightness; b < 0 || b > 255 {
			s.pushDiag(diag.Diagnostic{
				Severity: diag.Warn, Code: diag.CtrlRange, Summary: "Brightness out of range",
				Evidence: map[string]any{"brightness": b},
			})
		} else if err := s.ctl.SetBrightness(uint8(b)); err != nil {
			s.pushDiag(diag.Diagnostic{Severity: diag.Err, Code: diag.DriverWrite, Summary: "Brightness not applied", Detail: err.Error()})
		}
	}
	if msg.Progress != nil {
		s.setProgressLocked(*msg.Progress)
	}
	if msg.Seek != nil {
		if s.player == nil {
			s.pushDiag(diag.Diagnostic{Severity: diag.Warn, Code: diag.CtrlRange, Summary: "No program to seek"})
		} else {
			s.player.Seek(*msg.Seek)
		}
	}
	if msg.Play != nil && s.player != nil {
		if *msg.Play {
			s.player.Resume()
		} else if s.player.State == sequence.Running {
			s.player.Pause()
		}
	}

	s.saveConfig()
}

// saveConfig writes the control-adjustable fields back to ConfigPath.
func (s *State) saveConfig() {
	if s.ConfigPath == "" || s.Config == nil {
		return
	}
	base := s.ctl.BaseColor()
	s.Config.Animation.Variant = s.ctl.Animation().String()
	s.Config.Brightness = int(s.ctl.Brightness())
	s.Config.Color = config.Color{R: base.R, G: base.G, B: base.B}
	s.Config.SeedHue = s.ctl.RainbowSeedHue()
	if err := config.Save(s.ConfigPath, s.Config); err != nil {
		log.Warn().Err(err).Str("path", s.ConfigPath).Msg("save config")
	}
}
