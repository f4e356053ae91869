// Package overlay implements the text entry shown over the field: a create
// prompt that drops a new word, and a describe prompt opened by clicking a
// dot.
package overlay

import (
	"errors"
	"io"
	"log"
	"strings"

	"github.com/san-kum/dotdrop/internal/archive"
	"github.com/san-kum/dotdrop/internal/dots"
)

var ErrDetached = errors.New("overlay: no engine attached")

type Mode int

const (
	ModeClosed Mode = iota
	ModeCreate
	ModeDescribe
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeDescribe:
		return "describe"
	default:
		return "closed"
	}
}

// Spawner is the part of the engine the overlay drives.
type Spawner interface {
	Create(label string, id dots.ID) (*dots.Body, error)
	SetFlag(id dots.ID, f dots.Flag, on bool) bool
}

type Overlay struct {
	archive *archive.Archive
	spawner Spawner
	log     *log.Logger

	mode   Mode
	target dots.ID
	word   string
	text   []rune

	descriptions map[dots.ID]string
}

func New(a *archive.Archive, logger *log.Logger) *Overlay {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Overlay{
		archive:      a,
		log:          logger,
		descriptions: make(map[dots.ID]string),
	}
}

// Attach sets the engine that Submit creates bodies on. The engine usually
// takes the overlay as its listener, so the two are wired after construction.
func (o *Overlay) Attach(s Spawner) { o.spawner = s }

func (o *Overlay) Mode() Mode      { return o.mode }
func (o *Overlay) Open() bool      { return o.mode != ModeClosed }
func (o *Overlay) Text() string    { return string(o.text) }
func (o *Overlay) Target() dots.ID { return o.target }
func (o *Overlay) Word() string    { return o.word }

func (o *Overlay) Description(id dots.ID) (string, bool) {
	d, ok := o.descriptions[id]
	return d, ok
}

func (o *Overlay) OpenCreate() {
	o.mode = ModeCreate
	o.target, o.word = "", ""
	o.text = o.text[:0]
}

// OpenDescribe edits the description of a dot, starting from the saved text.
func (o *Overlay) OpenDescribe(id dots.ID, label string) {
	o.mode = ModeDescribe
	o.target, o.word = id, label
	o.text = []rune(o.descriptions[id])
}

func (o *Overlay) Type(s string) {
	if o.mode == ModeClosed {
		return
	}
	o.text = append(o.text, []rune(s)...)
}

func (o *Overlay) Backspace() {
	if n := len(o.text); n > 0 && o.mode != ModeClosed {
		o.text = o.text[:n-1]
	}
}

// Newline inserts a line break. Words are single-line, so only the
// describe prompt accepts it.
func (o *Overlay) Newline() {
	if o.mode == ModeDescribe {
		o.text = append(o.text, '\n')
	}
}

func (o *Overlay) Close() {
	o.mode = ModeClosed
	o.target, o.word = "", ""
	o.text = o.text[:0]
}

// Submit commits the prompt and closes it. An empty create prompt does
// nothing; an empty describe prompt clears a saved description.
func (o *Overlay) Submit() error {
	defer o.Close()
	text := strings.TrimSpace(string(o.text))

	switch o.mode {
	case ModeCreate:
		if text == "" {
			return nil
		}
		if o.spawner == nil {
			return ErrDetached
		}
		e, err := o.archive.Add(text)
		if err != nil {
			return err
		}
		if _, err := o.spawner.Create(text, e.ID); err != nil {
			o.archive.Remove(e.ID)
			return err
		}
		o.log.Printf("created %q as %s (count %d)", text, e.ID, e.Count)

	case ModeDescribe:
		id := o.target
		_, saved := o.descriptions[id]
		switch {
		case text != "":
			o.descriptions[id] = text
			o.archive.Describe(id, text)
			o.setDescribed(id, true)
		case saved:
			delete(o.descriptions, id)
			o.archive.Describe(id, "")
			o.setDescribed(id, false)
		}
	}
	return nil
}

func (o *Overlay) setDescribed(id dots.ID, on bool) {
	if o.spawner != nil {
		o.spawner.SetFlag(id, dots.FlagDescribed, on)
	}
}

func (o *Overlay) BodyClicked(id dots.ID, label string) {
	o.OpenDescribe(id, label)
}

func (o *Overlay) BodyRemoved(id dots.ID) {
	delete(o.descriptions, id)
	o.archive.Remove(id)
	if o.mode == ModeDescribe && o.target == id {
		o.Close()
	}
	o.log.Printf("removed %s", id)
}
