// Package session wires one interactive dots page: the runloop, the stage,
// the engine, the archive and the input overlay. Both front-ends build on
// it and only translate their own input and paint calls.
package session

import (
	"io"
	"log"
	"time"

	"github.com/san-kum/dotdrop/internal/archive"
	"github.com/san-kum/dotdrop/internal/config"
	"github.com/san-kum/dotdrop/internal/dots"
	"github.com/san-kum/dotdrop/internal/overlay"
	"github.com/san-kum/dotdrop/internal/stage"
)

type Session struct {
	Loop    *dots.Runloop
	Stage   *stage.Stage
	Archive *archive.Archive
	Overlay *overlay.Overlay
	Engine  *dots.Engine

	cfg     *config.Config
	log     *log.Logger
	watcher *config.Watcher
}

type Option func(*Session)

func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithArchive replaces the empty archive, for example with one loaded from
// a file.
func WithArchive(a *archive.Archive) Option {
	return func(s *Session) { s.Archive = a }
}

// WithWatcher applies every config the watcher reloads on the next pump.
func WithWatcher(w *config.Watcher) Option {
	return func(s *Session) { s.watcher = w }
}

func New(cfg *config.Config, vp dots.Size, opts ...Option) *Session {
	s := &Session{
		Loop:    dots.NewRunloop(),
		Archive: archive.New(nil),
		cfg:     cfg,
		log:     log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}

	t := cfg.Tuning()
	s.Stage = stage.New(vp, 2*t.Radius)
	s.Stage.SetDropZone(cfg.Zone())
	s.Overlay = overlay.New(s.Archive, s.log)
	s.Engine = dots.New(t, s.Loop, s.Stage,
		dots.WithListener(s.Overlay),
		dots.WithLogger(s.log),
		dots.WithSeed(cfg.Seed),
	)
	s.Overlay.Attach(s.Engine)
	return s
}

func (s *Session) Config() *config.Config { return s.cfg }

// Pump applies a pending reload, then runs due timers and frames at the
// host time now.
func (s *Session) Pump(now time.Duration) error {
	var err error
	if s.watcher != nil {
		var cfg *config.Config
		cfg, err = s.watcher.Poll()
		if cfg != nil {
			if applyErr := s.Apply(cfg); applyErr != nil {
				err = applyErr
			}
		}
	}
	s.Loop.Pump(now)
	return err
}

// Apply swaps in a new config. Live dots keep their size; later ones use
// the new radius.
func (s *Session) Apply(cfg *config.Config) error {
	if err := s.Engine.SetTuning(cfg.Tuning()); err != nil {
		return err
	}
	s.cfg = cfg
	s.Stage.SetElementSize(2 * cfg.Physics.Radius)
	s.Stage.SetDropZone(cfg.Zone())
	s.log.Printf("config reloaded")
	return nil
}

func (s *Session) Resize(vp dots.Size) { s.Stage.Resize(vp) }

// FloorLine is the y coordinate dots come to rest on.
func (s *Session) FloorLine() float64 {
	return s.Stage.Viewport().H - s.cfg.Layout.FloorMargin
}

// Close shuts the engine down and stops the watcher.
func (s *Session) Close() error {
	s.Engine.Shutdown()
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
