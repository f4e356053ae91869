package gui

import (
	"bytes"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/san-kum/dotdrop/internal/config"
	"github.com/san-kum/dotdrop/internal/dots"
	"github.com/san-kum/dotdrop/internal/gui/input"
	"github.com/san-kum/dotdrop/internal/session"
)

// App is the ebiten front-end. Update pumps the session on every tick;
// the screen size is the simulation viewport.
type App struct {
	Ctrl  *input.Controller
	Font  *text.GoTextFaceSource
	Sound *Sound

	start   time.Time
	touchID ebiten.TouchID
	touched bool
	chars   []rune
	w, h    int
}

func NewApp(sess *session.Session, cfg *config.Config) (*App, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	a := &App{
		Ctrl:  input.NewController(sess, len(Palettes)),
		Font:  src,
		start: time.Now(),
		w:     cfg.Window.Width,
		h:     cfg.Window.Height,
	}
	if cfg.Window.Sound {
		if a.Sound, err = NewSound(); err != nil {
			return nil, fmt.Errorf("open audio: %w", err)
		}
	}
	return a, nil
}

// Run opens a resizable window and blocks until it is closed.
func Run(sess *session.Session, cfg *config.Config) error {
	app, err := NewApp(sess, cfg)
	if err != nil {
		return err
	}
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	defer sess.Close()
	if app.Sound != nil {
		defer app.Sound.Close()
	}
	return ebiten.RunGame(app)
}

func (a *App) Update() error {
	a.Ctrl.Update(a.pointer(), a.keys(), time.Since(a.start))
	if a.Sound != nil {
		a.Sound.Impact(a.Ctrl.TakeImpact())
	}
	return nil
}

// pointer merges the mouse and the first active touch. The pointer counts
// as outside when the cursor leaves the window or the window loses focus.
func (a *App) pointer() input.Pointer {
	if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 && !a.touched {
		a.touchID, a.touched = ids[0], true
		x, y := ebiten.TouchPosition(a.touchID)
		return input.Pointer{Pos: pt(x, y), Inside: true, Pressed: true}
	}
	if a.touched {
		if inpututil.IsTouchJustReleased(a.touchID) {
			a.touched = false
			x, y := inpututil.TouchPositionInPreviousTick(a.touchID)
			return input.Pointer{Pos: pt(x, y), Inside: true, Released: true}
		}
		x, y := ebiten.TouchPosition(a.touchID)
		return input.Pointer{Pos: pt(x, y), Inside: true}
	}

	x, y := ebiten.CursorPosition()
	return input.Pointer{
		Pos:      pt(x, y),
		Inside:   ebiten.IsFocused() && x >= 0 && y >= 0 && x < a.w && y < a.h,
		Pressed:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		Released: inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
	}
}

func (a *App) keys() input.Keys {
	a.chars = ebiten.AppendInputChars(a.chars[:0])
	return input.Keys{
		Chars:     a.chars,
		Enter:     inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter),
		Shift:     ebiten.IsKeyPressed(ebiten.KeyShift),
		Backspace: inpututil.IsKeyJustPressed(ebiten.KeyBackspace) || repeating(ebiten.KeyBackspace),
		Escape:    inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		Tab:       inpututil.IsKeyJustPressed(ebiten.KeyTab),
	}
}

// repeating reports key repeat after a short hold.
func repeating(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	return d > 30 && d%4 == 0
}

func pt(x, y int) dots.Vec { return dots.Vec{X: float64(x), Y: float64(y)} }

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != a.w || outsideHeight != a.h {
		a.w, a.h = outsideWidth, outsideHeight
		a.Ctrl.Sess.Resize(dots.Size{W: float64(a.w), H: float64(a.h)})
	}
	return a.w, a.h
}
