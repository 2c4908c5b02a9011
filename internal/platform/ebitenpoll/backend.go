package ebitenpoll

import (
	"binmap/internal/platform"

	"github.com/hajimehoshi/ebiten/v2"
)

var keyMap = map[platform.Key][]ebiten.Key{
	platform.KeyControl:   {ebiten.KeyControl, ebiten.KeyMeta},
	platform.KeyShift:     {ebiten.KeyShift},
	platform.KeyEscape:    {ebiten.KeyEscape},
	platform.KeyEnter:     {ebiten.KeyEnter, ebiten.KeyKPEnter},
	platform.KeyBackspace: {ebiten.KeyBackspace},
	platform.KeyDelete:    {ebiten.KeyDelete},
	platform.KeyLeft:      {ebiten.KeyArrowLeft},
	platform.KeyRight:     {ebiten.KeyArrowRight},
	platform.KeyHome:      {ebiten.KeyHome},
	platform.KeyEnd:       {ebiten.KeyEnd},
	platform.KeyPageUp:    {ebiten.KeyPageUp},
	platform.KeyPageDown:  {ebiten.KeyPageDown},
	platform.KeyF3:        {ebiten.KeyF3},
	platform.KeyC:         {ebiten.KeyC},
	platform.KeyF:         {ebiten.KeyF},
	platform.KeyM:         {ebiten.KeyM},
	platform.KeyO:         {ebiten.KeyO},
	platform.KeyS:         {ebiten.KeyS},
	platform.Key1:         {ebiten.Key1, ebiten.KeyKP1},
	platform.Key2:         {ebiten.Key2, ebiten.KeyKP2},
	platform.Key3:         {ebiten.Key3, ebiten.KeyKP3},
	platform.Key4:         {ebiten.Key4, ebiten.KeyKP4},
}

var buttonMap = map[platform.MouseButton]ebiten.MouseButton{
	platform.MouseLeft:  ebiten.MouseButtonLeft,
	platform.MouseRight: ebiten.MouseButtonRight,
}

// Backend samples ebiten's input state. It must be polled from the game's
// Update.
type Backend struct {
	chars []rune
}

func New() *Backend { return &Backend{chars: make([]rune, 0, 16)} }

func (b *Backend) Name() string { return "ebiten" }

func (b *Backend) Poll() platform.Snapshot {
	var s platform.Snapshot
	for k, keys := range keyMap {
		for _, ek := range keys {
			if ebiten.IsKeyPressed(ek) {
				s.SetKey(k, true)
				break
			}
		}
	}
	for mb, eb := range buttonMap {
		s.SetButton(mb, ebiten.IsMouseButtonPressed(eb))
	}
	s.CursorX, s.CursorY = ebiten.CursorPosition()
	_, s.WheelY = ebiten.Wheel()
	b.chars = ebiten.AppendInputChars(b.chars[:0])
	if len(b.chars) > 0 {
		s.Chars = append([]rune(nil), b.chars...)
	}
	return s
}

// Apply pushes window settings to ebiten.
func Apply(cfg platform.WindowConfig) {
	ebiten.SetWindowTitle(cfg.Title)
	if cfg.WidthPx > 0 && cfg.HeightPx > 0 {
		ebiten.SetWindowSize(cfg.WidthPx, cfg.HeightPx)
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	minW, minH := -1, -1
	if cfg.MinWidthPx > 0 {
		minW = cfg.MinWidthPx
	}
	if cfg.MinHeightPx > 0 {
		minH = cfg.MinHeightPx
	}
	ebiten.SetWindowSizeLimits(minW, minH, -1, -1)
}
