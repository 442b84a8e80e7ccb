// Package ws exposes a running controller over HTTP: a frame stream, a
// control socket, a diagnostics stream and a health endpoint.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledfill/internal/config"
	"github.com/coreman2200/ledfill/internal/controller"
	diag "github.com/coreman2200/ledfill/internal/diagnostics"
	"github.com/coreman2200/ledfill/internal/pattern"
	"github.com/coreman2200/ledfill/internal/sequence"
)

const writeWait = 200 * time.Millisecond

type State struct {
	mu  sync.Mutex
	FPS int

	// ConfigPath, when set, receives the config with control changes
	// applied after every control message.
	ConfigPath    string
	Config        *config.Config
	CurrentDriver string

	ctl       *controller.Controller
	player    *sequence.Player
	progress  int
	lastErr   string
	startTime time.Time

	connMu      sync.Mutex
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
}

func NewState(ctl *controller.Controller, fps int) *State {
	return &State{
		FPS:         fps,
		ctl:         ctl,
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
	}
}

// Mux routes the four endpoints.
func (s *State) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}

// Play starts prog as the progress source. Manual progress from control
// messages pauses it.
func (s *State) Play(prog sequence.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := sequence.NewPlayer(sequence.Hooks{
		SetAnimation: func(name string) { s.selectLocked(name) },
		SetLevel:     func(f float64) { s.progress = s.ctl.Level(f) },
		SetHue:       func(h float64) { s.ctl.SetRainbowSeedHue(h) },
	})
	if err := p.Load(prog); err != nil {
		return err
	}
	p.Start()
	s.player = p
	s.pushDiag(diag.Diagnostic{
		Severity: diag.Info, Code: diag.ProgramLoaded, Summary: "Program started",
		Evidence: map[string]any{"clips": len(prog.Clips), "loop": prog.Loop},
	})
	return nil
}

// SetProgress sets the manual progress used while no program runs.
func (s *State) SetProgress(p int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setProgressLocked(p)
}

func (s *State) setProgressLocked(p int) {
	if s.player != nil && s.player.State == sequence.Running {
		s.player.Pause()
	}
	s.progress = p
}

// Step advances the program by dt, renders one frame and broadcasts it.
func (s *State) Step(dt time.Duration) error {
	s.mu.Lock()
	if s.player != nil && s.player.State == sequence.Running {
		s.player.Tick(dt.Seconds())
		if s.player.State == sequence.Idle {
			s.pushDiag(diag.Diagnostic{Severity: diag.Info, Code: diag.ProgramDone, Summary: "Program complete"})
		}
	}
	err := s.ctl.Tick(s.progress)
	frameID := s.ctl.FrameID()
	rgb := s.ctl.Snapshot().Bytes()
	if err != nil {
		if msg := err.Error(); msg != s.lastErr {
			s.lastErr = msg
			s.pushDiag(diag.Diagnostic{
				Severity: diag.Err, Code: diag.DriverWrite, Summary: "Frame not delivered", Detail: msg,
				LikelyCauses:   []string{"strip unplugged", "OPC server unreachable"},
				SuggestedFixes: []string{"check wiring and power", "restart with -driver=sim"},
			})
		}
	} else {
		s.lastErr = ""
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.broadcastFrame(frameID, rgb)
	return nil
}

// RunRenderLoop calls Step at FPS until ctx is done. Driver errors are
// logged and the loop keeps going.
func (s *State) RunRenderLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(max(1, s.FPS)))
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := s.Step(now.Sub(last)); err != nil {
				log.Warn().Err(err).Msg("render step")
			}
			last = now
		}
	}
}

// Close stops the program and closes the controller's driver.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player != nil {
		s.player.Stop()
	}
	return s.ctl.Close()
}

func upgrader() websocket.Upgrader {
	return websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
}

func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.connMu.Lock()
	s.clients[conn] = true
	s.connMu.Unlock()
	go s.drain(conn, s.clients)
}

func (s *State) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	up := upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.connMu.Lock()
	s.diagClients[conn] = true
	s.connMu.Unlock()
	go s.drain(conn, s.diagClients)
}

// drain discards reads until the peer goes away, then unregisters conn.
func (s *State) drain(conn *websocket.Conn, set map[*websocket.Conn]bool) {
	defer func() {
		s.connMu.Lock()
		delete(set, conn)
		s.connMu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *State) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	up := upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ControlMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			s.mu.Lock()
			s.pushDiag(diag.Diagnostic{Severity: diag.Warn, Code: diag.CtrlBadJSON, Summary: "Control message ignored", Detail: err.Error()})
			s.mu.Unlock()
			continue
		}
		s.ApplyControl(msg)
		b, _ := json.Marshal(s.Status())
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.Status()
	s.mu.Lock()
	resp := map[string]any{
		"frame_id":   s.ctl.FrameID(),
		"uptime_s":   time.Since(s.startTime).Seconds(),
		"count":      st.Count,
		"fps":        s.FPS,
		"brightness": st.Brightness,
		"animation":  st.Animation,
		"driver":     s.CurrentDriver,
	}
	if s.lastErr != "" {
		resp["last_error"] = s.lastErr
	}
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Status is the reply to every control message.
type Status struct {
	Animation  string  `json:"animation"`
	Brightness uint8   `json:"brightness"`
	Color      RGB     `json:"color"`
	SeedHue    float64 `json:"seed_hue"`
	Count      int     `json:"count"`
	Progress   int     `json:"progress"`
	Peak       int     `json:"peak"`
	Program    string  `json:"program"`
	Driver     string  `json:"driver"`
}

func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := s.ctl.BaseColor()
	st := Status{
		Animation:  s.ctl.Animation().String(),
		Brightness: s.ctl.Brightness(),
		Color:      RGB{R: base.R, G: base.G, B: base.B},
		SeedHue:    s.ctl.RainbowSeedHue(),
		Count:      s.ctl.Count(),
		Progress:   s.progress,
		Peak:       s.ctl.Trail().Peak,
		Program:    string(sequence.Idle),
		Driver:     s.CurrentDriver,
	}
	if s.player != nil {
		st.Program = string(s.player.State)
	}
	return st
}

func (s *State) broadcastFrame(frameID uint64, rgb []byte) {
	type frame struct {
		T       int64  `json:"t"`
		FrameID uint64 `json:"frame_id"`
		RGB     []byte `json:"rgb"`
	}
	b, _ := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: frameID, RGB: rgb})
	s.connMu.Lock()
	defer s.connMu.Unlock()
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}

func (s *State) pushDiag(d diag.Diagnostic) {
	switch d.Severity {
	case diag.Err:
		log.Error().Str("code", d.Code).Str("detail", d.Detail).Msg(d.Summary)
	case diag.Warn:
		log.Warn().Str("code", d.Code).Str("detail", d.Detail).Msg(d.Summary)
	default:
		log.Info().Str("code", d.Code).Msg(d.Summary)
	}
	b, _ := json.Marshal(d)
	s.connMu.Lock()
	defer s.connMu.Unlock()
	for c := range s.diagClients {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}

func (s *State) selectLocked(name string) bool {
	v, err := pattern.Lookup(name)
	if err == nil {
		err = s.ctl.SelectAnimation(v)
	}
	if err != nil {
		s.pushDiag(diag.Diagnostic{
			Severity: diag.Warn, Code: diag.AnimUnknown, Summary: "Unknown animation",
			Detail:         fmt.Sprintf("keeping %s", s.ctl.Animation()),
			SuggestedFixes: []string{"use one of: " + fmt.Sprint(pattern.Names())},
			Evidence:       map[string]any{"name": name},
		})
		return false
	}
	return true
}
