package ui

import (
	"fmt"
	"image/color"
	"strings"

	"binmap/internal/binlist"
	"binmap/internal/render"

	"github.com/rivo/uniseg"
)

type Rect struct {
	X int
	Y int
	W int
	H int
}

func (r Rect) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

type Layout struct {
	List   Rect
	Track  Rect
	Prompt Rect
	Status Rect
}

// ComputeLayout splits the window into the list area, the scroll track on
// its right, an optional prompt row and the status bar.
func ComputeLayout(w, h int, theme Theme, scale float32, prompt bool) Layout {
	if scale <= 0 {
		scale = 1
	}

	dp := func(v int) int { return int(float32(v) * scale) }

	statusH := dp(theme.StatusHeightDp)
	trackW := dp(theme.TrackWidthDp)
	promptH := 0
	if prompt {
		promptH = dp(theme.PromptHeightDp)
	}

	listH := max(h-statusH-promptH, 0)
	listW := max(w-trackW, 0)

	return Layout{
		List:   Rect{X: 0, Y: 0, W: listW, H: listH},
		Track:  Rect{X: listW, Y: 0, W: trackW, H: listH},
		Prompt: Rect{X: 0, Y: listH, W: w, H: promptH},
		Status: Rect{X: 0, Y: h - statusH, W: w, H: statusH},
	}
}

type LabelKind int

const (
	LabelItem LabelKind = iota
	LabelOffset
	LabelComment
	LabelStatus
	LabelTooltip
)

// Label is text to draw after the framebuffer has been presented. X and Y
// are the baseline origin in window coordinates.
type Label struct {
	Kind  LabelKind
	Text  string
	X     int
	Y     int
	Color color.RGBA
}

// DrawList paints the bound views of l into the list rect and returns the
// labels to draw over them.
func DrawList(fb render.Surface, l *binlist.List, layout Layout, theme Theme) []Label {
	area := layout.List
	g := l.Geometry()
	fb.FillRect(area.X, area.Y, area.W, area.H, theme.AppBackground)
	gutterW := min(g.MarginLeft-g.Space.X, area.W)
	fb.FillRect(area.X, area.Y, gutterW, area.H, theme.Gutter)

	views := l.Views()
	labels := make([]Label, 0, len(views)+8)
	commentX := area.X + g.Width - g.CommentColumn + g.Space.X
	commentCells := (g.CommentColumn - g.Space.X) / max(theme.GlyphW, 1)
	hovered := l.Hovered()

	for _, v := range views {
		r := v.Record
		if r == nil {
			continue
		}
		x, y := area.X+v.Rect.X, area.Y+v.Rect.Y
		bg, fg := theme.Row, theme.Text
		switch {
		case r.Active():
			bg, fg = theme.RowActive, theme.TextSelected
		case v.Selected:
			bg = theme.RowSelected
		}
		fb.FillRect(x, y, v.Rect.W, v.Rect.H, bg)
		if r == hovered {
			fb.BlendRect(x, y, v.Rect.W, v.Rect.H, theme.RowHover)
		}
		if r.LineBreak() {
			fb.FillRect(x, y, 2, v.Rect.H, r.Color())
			fb.FillRect(area.X, y-max(g.Space.Y/2, 1), gutterW, 1, theme.LineBreak)
		}

		txt := r.Text()
		tw := len(txt) * theme.GlyphW
		labels = append(labels, Label{
			Kind:  LabelItem,
			Text:  txt,
			X:     x + (v.Rect.W-tw)/2,
			Y:     baseline(y, v.Rect.H, theme),
			Color: fg,
		})

		if v.LineEnd < 0 {
			continue
		}
		labels = append(labels, Label{
			Kind:  LabelOffset,
			Text:  fmt.Sprintf("%08X", r.Offset()),
			X:     area.X + 4,
			Y:     baseline(y, v.Rect.H, theme),
			Color: theme.OffsetText,
		})
		if c := r.Comment(); c != "" {
			labels = append(labels, Label{
				Kind:  LabelComment,
				Text:  Truncate(c, commentCells),
				X:     commentX,
				Y:     baseline(y, v.Rect.H, theme),
				Color: theme.CommentText,
			})
		}
	}
	return labels
}

// DrawTrack paints the scroll track, its marks and the thumb. Nothing is
// drawn while the track is hidden.
func DrawTrack(fb render.Surface, s *binlist.Scroll, r Rect, theme Theme) {
	if !s.Visible() || r.W <= 0 || r.H <= 0 {
		return
	}
	fb.FillRect(r.X, r.Y, r.W, r.H, theme.Track)
	fb.FillRect(r.X, r.Y, 1, r.H, theme.Border)
	y, h := s.ThumbSpan(r.H)
	fb.FillRect(r.X+2, r.Y+y, r.W-4, h, theme.Thumb)
	markH := max(theme.MarkHeightDp, 1)
	for _, m := range s.Marks() {
		fb.FillRect(r.X+1, r.Y+s.MarkY(m.Offset, r.H), r.W-1, markH, m.Color)
	}
}

// DrawStatus paints the status bar and the prompt row. Their text is returned
// as labels.
func DrawStatus(fb render.Surface, layout Layout, theme Theme, status, prompt string) []Label {
	var labels []Label
	if layout.Prompt.H > 0 {
		p := layout.Prompt
		fb.FillRect(p.X, p.Y, p.W, p.H, theme.Prompt)
		fb.StrokeRect(p.X, p.Y, p.W, p.H, 1, theme.Border)
		labels = append(labels, Label{Kind: LabelStatus, Text: prompt, X: p.X + 8, Y: baseline(p.Y, p.H, theme), Color: theme.StatusText})
	}
	s := layout.Status
	fb.FillRect(s.X, s.Y, s.W, s.H, theme.StatusBar)
	fb.StrokeRect(s.X, s.Y, s.W, s.H, 1, theme.Border)
	if status != "" {
		labels = append(labels, Label{Kind: LabelStatus, Text: status, X: s.X + 8, Y: baseline(s.Y, s.H, theme), Color: theme.StatusText})
	}
	return labels
}

// DrawTooltip paints a box for text just below and right of (x, y), flipped
// so that it stays inside bounds. Each line of text becomes one label.
func DrawTooltip(fb render.Surface, text string, x, y int, bounds Rect, theme Theme) []Label {
	if text == "" {
		return nil
	}
	const pad = 6
	lines := strings.Split(text, "\n")
	cells := 0
	for _, ln := range lines {
		cells = max(cells, uniseg.StringWidth(ln))
	}
	lineH := theme.GlyphH + 2
	w := cells*theme.GlyphW + 2*pad
	h := len(lines)*lineH + 2*pad - 2

	bx, by := x+12, y+16
	if bx+w > bounds.X+bounds.W {
		bx = max(bounds.X, x-w-4)
	}
	if by+h > bounds.Y+bounds.H {
		by = max(bounds.Y, y-h-4)
	}

	fb.BlendRect(bx+2, by+2, w, h, theme.Shade)
	fb.BlendRect(bx, by, w, h, theme.Tooltip)
	fb.StrokeRect(bx, by, w, h, 1, theme.Border)

	labels := make([]Label, 0, len(lines))
	for i, ln := range lines {
		labels = append(labels, Label{
			Kind:  LabelTooltip,
			Text:  ln,
			X:     bx + pad,
			Y:     by + pad + i*lineH + theme.GlyphAscent,
			Color: theme.Text,
		})
	}
	return labels
}

func baseline(y, h int, theme Theme) int {
	return y + (h-theme.GlyphH)/2 + theme.GlyphAscent
}

// Truncate shortens s to at most cells monospace cells, cutting on grapheme
// cluster boundaries and ending with "~" when anything was dropped.
func Truncate(s string, cells int) string {
	if cells <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= cells {
		return s
	}
	out := make([]byte, 0, len(s))
	used := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		var cluster string
		var width int
		cluster, rest, width, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if used+width > cells-1 {
			break
		}
		out = append(out, cluster...)
		used += width
	}
	return string(out) + "~"
}
