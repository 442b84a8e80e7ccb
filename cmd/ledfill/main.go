package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/ledfill/internal/config"
	"github.com/coreman2200/ledfill/internal/controller"
	"github.com/coreman2200/ledfill/internal/led"
	"github.com/coreman2200/ledfill/internal/sequence"
	"github.com/coreman2200/ledfill/internal/ws"
)

func main() {
	// ---- Flags (LEDFILL_* env vars work too; config file overrides both) ----
	flags := flag.NewFlagSet("ledfill", flag.ExitOnError)
	var (
		configPath = flags.String("config", "ledfill.yaml", "path to config file")
		driver     = flags.String("driver", "sim", "driver: sim | spi | opc | term")
		count      = flags.Int("count", 60, "number of LEDs on the strip")
		pin        = flags.Int("pin", 18, "data pin (BCM number)")
		colorOrder = flags.String("color-order", "GRB", "LED color order (e.g. GRB, RGB)")
		animation  = flags.String("animation", "rainbow", "starting animation")
		brightness = flags.Int("brightness", 128, "global brightness 0..255")
		fps        = flags.Int("fps", 60, "target frames per second")
		addr       = flags.String("addr", ":8080", "HTTP listen address")
		opcAddr    = flags.String("opc", "127.0.0.1:7890", "OPC server address for -driver=opc")
		source     = flags.String("source", "demo", "progress source: demo | stdin | control")
		program    = flags.String("program", "", "YAML program for -source=demo (built-in tour if empty)")
		logLevel   = flags.String("log-level", "info", "zerolog level")
	)
	if err := ff.Parse(flags, os.Args[1:], ff.WithEnvVarPrefix("LEDFILL")); err != nil {
		log.Fatal().Err(err).Msg("parse flags")
	}

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	if lvl, err := zerolog.ParseLevel(*logLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	// ---- Effective config: defaults, then flags, then the config file ----
	cfg := config.Default()
	cfg.Driver = *driver
	cfg.Count = *count
	cfg.Pin = *pin
	cfg.ColorOrder = *colorOrder
	cfg.Animation.Variant = *animation
	cfg.Brightness = *brightness
	cfg.OPC.Addr = *opcAddr
	cfg.HTTP.Addr = *addr

	if c, err := config.Overlay(*configPath, cfg); err == nil {
		cfg = c
	} else if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", *configPath).Msg("no config file; proceeding with flags")
		if err := cfg.Validate(); err != nil {
			log.Fatal().Err(err).Msg("invalid flags")
		}
	} else {
		log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
	}

	opts, err := cfg.Options()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	// ---- Driver selection: hardware failures fall back to SIM ----
	selected := cfg.Driver
	ctl, err := controller.New(newDriver(cfg), opts)
	if err != nil && selected != "sim" {
		log.Warn().Err(err).Str("driver", selected).Msg("driver init failed; falling back to SIM")
		selected = "sim"
		ctl, err = controller.New(led.NewSim(), opts)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("controller")
	}
	ctl.SetBaseColor(cfg.Color.R, cfg.Color.G, cfg.Color.B)
	ctl.SetRainbowSeedHue(cfg.SeedHue)

	// ---- State ----
	state := ws.NewState(ctl, *fps)
	state.ConfigPath = *configPath
	state.Config = cfg
	state.CurrentDriver = selected

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Progress source ----
	switch *source {
	case "demo":
		prog := sequence.DefaultProgram()
		if *program != "" {
			if prog, err = sequence.LoadProgram(*program); err != nil {
				log.Fatal().Err(err).Msg("program")
			}
		}
		if err := state.Play(prog); err != nil {
			log.Fatal().Err(err).Msg("program")
		}
	case "stdin":
		go func() {
			if err := sequence.ReadProgress(ctx, os.Stdin, state.SetProgress); err != nil {
				log.Error().Err(err).Msg("stdin progress")
			}
			log.Info().Msg("stdin closed; holding last progress")
		}()
	case "control":
	default:
		log.Fatal().Str("source", *source).Msg("unknown progress source")
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      withCORS(state.Mux()),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ---- Run render loop & server ----
	go state.RunRenderLoop(ctx)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("driver", selected).Str("animation", ctl.Animation().String()).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	if err := state.Close(); err != nil {
		log.Warn().Err(err).Msg("driver close")
	}
}

func newDriver(cfg *config.Config) led.Driver {
	switch cfg.Driver {
	case "spi":
		drv, err := led.NewSPI(cfg.SPI.Dev, physic.Frequency(cfg.SPI.FreqKHz)*physic.KiloHertz)
		if err != nil {
			log.Warn().Err(err).Str("driver", "spi").Str("dev", cfg.SPI.Dev).Msg("SPI open failed; using SIM")
			return led.NewSim()
		}
		return drv
	case "opc":
		return led.NewOPC(cfg.OPC.Addr, cfg.OPC.Channel)
	case "term":
		return led.NewTerm(nil)
	default:
		return led.NewSim()
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
