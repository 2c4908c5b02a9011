// Package session drives a binlist.List from input frames. It owns the
// prompts, the status line and the file commands, and has no dependency on
// the windowing backend.
package session

import (
	"errors"
	"math"
	"time"

	"binmap/internal/binlist"
	"binmap/internal/config"
	"binmap/internal/editor"
	"binmap/internal/platform"
	"binmap/internal/ui"

	"github.com/rs/zerolog"
)

// ErrQuit is returned by Handle when the user asked to leave.
var ErrQuit = errors.New("session: quit")

type Mode int

const (
	ModeBrowse Mode = iota
	ModeSearch
	ModeComment
)

const (
	statusDefault = 3 * time.Second
	maxQueryLen   = 3 * 64
	maxCommentLen = 256
	promptCaret   = "_"
)

type Options struct {
	Config    config.Config
	Theme     ui.Theme
	Clipboard binlist.ClipboardSink
	Picker    Picker
	Logger    zerolog.Logger
}

type Session struct {
	cfg    config.Config
	theme  ui.Theme
	list   *binlist.List
	picker Picker
	log    zerolog.Logger

	w, h   int
	scale  float32
	layout ui.Layout
	now    time.Time

	mode   Mode
	prompt *editor.State

	status      string
	statusUntil time.Time
	// statusFor holds the duration of a status set before the first frame.
	statusFor time.Duration

	path     string
	data     []byte
	dragging bool
}

func New(opts Options) *Session {
	theme := opts.Theme
	if theme == (ui.Theme{}) {
		theme = ui.DefaultTheme()
	}
	s := &Session{
		cfg:    opts.Config,
		theme:  theme,
		picker: opts.Picker,
		log:    opts.Logger.With().Str("component", "session").Logger(),
		scale:  1,
	}
	s.layout = ui.ComputeLayout(s.cfg.Window.Width, s.cfg.Window.Height, theme, s.scale, false)
	s.list = binlist.New(binlist.Options{
		Geometry:  s.cfg.Geometry(s.layout.List.W, s.layout.List.H),
		OnStatus:  s.setStatus,
		Clipboard: opts.Clipboard,
		Logger:    &opts.Logger,
	})
	s.w, s.h = s.cfg.Window.Width, s.cfg.Window.Height
	return s
}

func (s *Session) List() *binlist.List { return s.list }
func (s *Session) Layout() ui.Layout   { return s.layout }
func (s *Session) Mode() Mode          { return s.mode }
func (s *Session) Path() string        { return s.path }
func (s *Session) Theme() ui.Theme     { return s.theme }

// Status returns the current status text, empty once it has expired.
func (s *Session) Status() string { return s.status }

// PromptText is the prompt row content with a caret marker, or "" when no
// prompt is open.
func (s *Session) PromptText() string {
	switch s.mode {
	case ModeSearch:
		return "Find (hex): " + s.prompt.Display(promptCaret)
	case ModeComment:
		return "Comment: " + s.prompt.Display(promptCaret)
	}
	return ""
}

// Resize lays the window out again and resizes the list viewport.
func (s *Session) Resize(w, h int, scale float32) {
	s.w, s.h, s.scale = w, h, scale
	s.relayout()
}

func (s *Session) relayout() {
	s.layout = ui.ComputeLayout(s.w, s.h, s.theme, s.scale, s.mode != ModeBrowse)
	s.list.Resize(s.layout.List.W, s.layout.List.H)
}

func (s *Session) setStatus(text string, d time.Duration) {
	s.status = text
	if s.now.IsZero() {
		s.statusFor = d
		return
	}
	s.statusUntil = s.now.Add(d)
}

// Handle applies one frame of input.
func (s *Session) Handle(f platform.Frame, now time.Time) error {
	s.now = now
	if s.statusFor > 0 {
		s.statusUntil = now.Add(s.statusFor)
		s.statusFor = 0
	}
	if s.status != "" && !now.Before(s.statusUntil) {
		s.status = ""
	}
	if s.mode != ModeBrowse {
		s.handlePrompt(f)
		return nil
	}
	if f.JustPressed(platform.KeyEscape) {
		return ErrQuit
	}
	s.handlePointer(f)
	s.handleKeys(f)
	return nil
}

func (s *Session) handlePointer(f platform.Frame) {
	x, y := f.Cursor()
	area, track := s.layout.List, s.layout.Track
	scroll := s.list.Scroll()

	if f.CursorMoved() {
		if area.Contains(x, y) {
			s.list.PointerMove(x-area.X, y-area.Y)
		} else {
			s.list.PointerLeave()
		}
	}
	if f.Cur.WheelY != 0 && area.Contains(x, y) {
		s.list.ScrollLines(wheelLines(f.Cur.WheelY))
	}

	switch {
	case f.ButtonJustPressed(platform.MouseLeft):
		if scroll.Visible() && track.Contains(x, y) {
			s.dragging = true
			s.list.ScrollTo(scroll.ValueAt(y-track.Y, track.H))
		} else if area.Contains(x, y) {
			s.list.PointerDown(x-area.X, y-area.Y, f.Shift())
		}
	case f.ButtonPressed(platform.MouseLeft) && s.dragging && f.CursorMoved():
		s.list.ScrollTo(scroll.ValueAt(y-track.Y, track.H))
	case f.ButtonJustReleased(platform.MouseLeft):
		s.dragging = false
	}

	if f.ButtonJustPressed(platform.MouseRight) && area.Contains(x, y) {
		s.list.DeselectAll()
	}
}

// wheelLines converts a wheel delta to lines to scroll, positive meaning
// down. Any movement scrolls at least one line.
func wheelLines(dy float64) int {
	n := int(math.Round(-dy))
	if n == 0 {
		if dy > 0 {
			return -1
		}
		return 1
	}
	return n
}

var formatKeys = [...]struct {
	key    platform.Key
	format binlist.Format
}{
	{platform.Key1, binlist.FormatHex},
	{platform.Key2, binlist.FormatDecimal},
	{platform.Key3, binlist.FormatBinary},
	{platform.Key4, binlist.FormatASCII},
}

func (s *Session) handleKeys(f platform.Frame) {
	if f.Ctrl() {
		switch {
		case f.JustPressed(platform.KeyC):
			s.list.Copy()
		case f.JustPressed(platform.KeyF):
			s.openPrompt(ModeSearch)
		case f.JustPressed(platform.KeyM):
			s.openPrompt(ModeComment)
		case f.JustPressed(platform.KeyO):
			s.openWithPicker()
		case f.JustPressed(platform.KeyS):
			s.saveCurrentMap()
		}
	} else {
		switch {
		case f.JustPressed(platform.KeyEnter):
			s.list.AddLineBreak()
		case f.JustPressed(platform.KeyBackspace):
			s.list.RemoveLineBreak()
		}
		for _, fk := range formatKeys {
			if f.JustPressed(fk.key) {
				s.list.SetFormat(fk.format)
			}
		}
	}

	// F3 repeats on release so a held key searches once.
	if f.JustReleased(platform.KeyF3) {
		s.findNext()
	}

	switch {
	case f.JustPressed(platform.KeyPageDown):
		s.list.ScrollPage(1)
	case f.JustPressed(platform.KeyPageUp):
		s.list.ScrollPage(-1)
	case f.JustPressed(platform.KeyHome):
		s.list.ScrollTo(0)
	case f.JustPressed(platform.KeyEnd):
		s.list.ScrollTo(s.list.Len() - 1)
	}
}

func (s *Session) findNext() {
	if s.list.LastQuery() == nil {
		s.setStatus("Nothing to search for, press Ctrl+F.", time.Second)
		return
	}
	s.list.FindNext()
}
