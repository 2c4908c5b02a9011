// Package app runs the binmap window: it feeds ebiten input to a session and
// presents what the ui package paints.
package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"binmap/internal/clip"
	"binmap/internal/config"
	"binmap/internal/platform"
	"binmap/internal/platform/ebitenpoll"
	"binmap/internal/render"
	"binmap/internal/session"
	"binmap/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/rs/zerolog"
	"github.com/sqweek/dialog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
)

const fontSizePt = 12

type App struct {
	cfg     config.Config
	theme   ui.Theme
	session *session.Session
	input   *ebitenpoll.Backend
	tracker platform.Tracker
	log     zerolog.Logger

	frameBuffer *render.FrameBuffer
	canvas      *ebiten.Image
	face        font.Face

	title   string
	screenW int
	screenH int
}

func New(cfg config.Config, log zerolog.Logger) *App {
	face := loadFace(log)
	theme := themeForFace(ui.DefaultTheme(), face)
	a := &App{
		cfg:   cfg,
		theme: theme,
		input: ebitenpoll.New(),
		face:  face,
		log:   log.With().Str("component", "app").Logger(),
	}
	a.session = session.New(session.Options{
		Config:    cfg,
		Theme:     theme,
		Clipboard: clip.New(log),
		Picker:    dialogPicker{},
		Logger:    log,
	})
	return a
}

// Open loads path before the window starts.
func (a *App) Open(path string) error {
	return a.session.OpenFile(path)
}

func (a *App) Run() error {
	ebitenpoll.Apply(platform.WindowConfig{
		Title:       a.cfg.Window.Title,
		WidthPx:     a.cfg.Window.Width,
		HeightPx:    a.cfg.Window.Height,
		MinWidthPx:  a.cfg.Window.MinWidth,
		MinHeightPx: a.cfg.Window.MinHeight,
	})
	a.syncTitle()
	a.log.Debug().Str("input", a.input.Name()).Msg("starting game loop")
	if err := ebiten.RunGame(a); err != nil {
		return fmt.Errorf("run game loop: %w", err)
	}
	return nil
}

func (a *App) Update() error {
	w, h := a.currentViewportSize()
	a.session.Resize(w, h, 1)

	err := a.session.Handle(a.tracker.Poll(a.input), time.Now())
	if errors.Is(err, session.ErrQuit) {
		return ebiten.Termination
	}
	a.syncTitle()
	return err
}

func (a *App) Draw(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if a.frameBuffer == nil || a.frameBuffer.W != w || a.frameBuffer.H != h {
		a.frameBuffer = render.NewFrameBuffer(w, h)
		a.canvas = ebiten.NewImage(w, h)
	}

	layout := a.session.Layout()
	l := a.session.List()
	labels := ui.DrawList(a.frameBuffer, l, layout, a.theme)
	ui.DrawTrack(a.frameBuffer, l.Scroll(), layout.Track, a.theme)
	labels = append(labels, ui.DrawStatus(a.frameBuffer, layout, a.theme, a.statusLine(), a.session.PromptText())...)

	if tip := l.HoverText(); tip != "" && a.session.Mode() == session.ModeBrowse {
		x, y := ebiten.CursorPosition()
		labels = append(labels, ui.DrawTooltip(a.frameBuffer, tip, x, y, layout.List, a.theme)...)
	}

	a.canvas.WritePixels(a.frameBuffer.Pixels)
	screen.DrawImage(a.canvas, nil)

	for _, lb := range labels {
		text.Draw(screen, lb.Text, a.face, lb.X, lb.Y, lb.Color)
	}
}

func (a *App) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	outsideWidth = max(outsideWidth, a.cfg.Window.MinWidth)
	outsideHeight = max(outsideHeight, a.cfg.Window.MinHeight)
	a.screenW = outsideWidth
	a.screenH = outsideHeight
	return outsideWidth, outsideHeight
}

func (a *App) currentViewportSize() (int, int) {
	if a.screenW > 0 && a.screenH > 0 {
		return a.screenW, a.screenH
	}
	w, h := ebiten.WindowSize()
	if w <= 0 {
		w = a.cfg.Window.Width
	}
	if h <= 0 {
		h = a.cfg.Window.Height
	}
	return w, h
}

// statusLine prefers the timed status message and otherwise summarizes the
// open file.
func (a *App) statusLine() string {
	if s := a.session.Status(); s != "" {
		return s
	}
	l := a.session.List()
	if a.session.Path() == "" {
		return "No file open. Ctrl+O to open one."
	}
	return fmt.Sprintf("[ %s ] [ %d bytes ] [ %d selected ] [ offset 0x%X ]",
		filepath.Base(a.session.Path()), l.Len(), l.Selection().Len(), l.Start())
}

func (a *App) syncTitle() {
	title := a.cfg.Window.Title
	if p := a.session.Path(); p != "" {
		title = filepath.Base(p) + " - " + title
	}
	if title != a.title {
		ebiten.SetWindowTitle(title)
		a.title = title
	}
}

type dialogPicker struct{}

func (dialogPicker) OpenFile() (string, error) {
	path, err := dialog.File().Title("Open binary file").Load()
	if errors.Is(err, dialog.ErrCancelled) || (err == nil && path == "") {
		return "", session.ErrCancelled
	}
	if err != nil {
		return "", err
	}
	return filepath.Clean(path), nil
}

func loadFace(log zerolog.Logger) font.Face {
	f, err := opentype.Parse(gomono.TTF)
	if err != nil {
		log.Warn().Err(err).Msg("parse gomono, using basic font")
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: fontSizePt, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Warn().Err(err).Msg("create face, using basic font")
		return basicfont.Face7x13
	}
	return face
}

// themeForFace copies the glyph metrics of a monospace face into theme.
func themeForFace(theme ui.Theme, face font.Face) ui.Theme {
	if adv, ok := face.GlyphAdvance('0'); ok {
		theme.GlyphW = max((int(adv)+32)>>6, 1)
	}
	m := face.Metrics()
	theme.GlyphH = max(m.Height.Round(), 1)
	theme.GlyphAscent = m.Ascent.Round()
	return theme
}
