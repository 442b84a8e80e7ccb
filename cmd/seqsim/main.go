// Command seqsim plays a program against the in-memory driver and prints
// one line per frame that changed, for checking programs without a strip.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledfill/internal/controller"
	"github.com/coreman2200/ledfill/internal/led"
	"github.com/coreman2200/ledfill/internal/pattern"
	"github.com/coreman2200/ledfill/internal/sequence"
	"github.com/coreman2200/ledfill/internal/strip"
)

func main() {
	var (
		programPath string
		fps         int
		count       int
		seconds     float64
	)
	flag.StringVar(&programPath, "program", "", "path to a YAML program (built-in tour if empty)")
	flag.IntVar(&fps, "fps", 30, "simulation frames per second")
	flag.IntVar(&count, "count", 30, "strip length")
	flag.Float64Var(&seconds, "seconds", 60, "stop after this much program time (looping programs)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	prog := sequence.DefaultProgram()
	if programPath != "" {
		var err error
		if prog, err = sequence.LoadProgram(programPath); err != nil {
			log.Fatal().Err(err).Msg("program")
		}
	}

	opts := controller.DefaultOptions()
	opts.Count = count
	opts.Brightness = 255
	drv := led.NewSim()
	ctl, err := controller.New(drv, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("controller")
	}

	progress := 0
	player := sequence.NewPlayer(sequence.Hooks{
		SetAnimation: func(name string) {
			v, err := pattern.Lookup(name)
			if err == nil {
				err = ctl.SelectAnimation(v)
			}
			if err != nil {
				log.Warn().Err(err).Msg("select animation")
			}
		},
		SetLevel: func(f float64) { progress = ctl.Level(f) },
		SetHue:   func(h float64) { ctl.SetRainbowSeedHue(h) },
	})
	if err := player.Load(prog); err != nil {
		log.Fatal().Err(err).Msg("load")
	}
	player.Start()

	dt := 1 / float64(max(1, fps))
	last := ""
	for t := 0.0; t < seconds && player.State == sequence.Running; t += dt {
		player.Tick(dt)
		if err := ctl.Tick(progress); err != nil {
			log.Fatal().Err(err).Msg("tick")
		}
		line := fmt.Sprintf("%-36s p=%-3d peak=%-3d |%s|", ctl.Animation(), progress, ctl.Trail().Peak, ascii(drv.Frame()))
		if line != last {
			fmt.Printf("t=%7.3f %s\n", t, line)
			last = line
		}
	}
	fmt.Printf("done at t=%.3f after %d frames\n", player.Elapsed(), ctl.FrameID())
}

// ascii draws dark pixels as '.', markers as '*' and anything else as '#'.
func ascii(buf strip.Buffer) string {
	var b strings.Builder
	for _, p := range buf {
		switch p {
		case strip.Black:
			b.WriteByte('.')
		case pattern.MarkerColor:
			b.WriteByte('*')
		default:
			b.WriteByte('#')
		}
	}
	return b.String()
}
