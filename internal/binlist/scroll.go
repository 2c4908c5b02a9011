package binlist

import (
	"image/color"
	"maps"
	"slices"
)

const (
	ScrollStepSize = 100
	ScrollBarWidth = 14
	minThumbHeight = 12
)

type Mark struct {
	Offset int
	Color  color.RGBA
}

// Scroll keeps the window position, the track visibility and the per-offset
// marks drawn on the track.
type Scroll struct {
	value    int
	count    int
	visible  int
	shown    bool
	marks    map[int]color.RGBA
	onScroll func(int)
}

func newScroll(onScroll func(int)) *Scroll {
	return &Scroll{marks: map[int]color.RGBA{}, onScroll: onScroll}
}

func (s *Scroll) Value() int { return s.value }

// Max is the highest scroll value, count-1.
func (s *Scroll) Max() int { return max(s.count-1, 0) }

func (s *Scroll) Visible() bool { return s.shown }

func (s *Scroll) SetVisible(v bool) { s.shown = v }

// Layout records the store size and the number of views in the window.
func (s *Scroll) Layout(count, numVisible int) {
	s.count = max(count, 0)
	s.visible = max(numVisible, 0)
	if s.value > s.Max() {
		s.value = s.Max()
	}
}

// ScrollTo clamps target into [0, Max] and notifies the owner.
func (s *Scroll) ScrollTo(target int) {
	target = min(max(target, 0), s.Max())
	s.value = target
	if s.onScroll != nil {
		s.onScroll(target)
	}
}

func (s *Scroll) SetMark(offset int, c color.RGBA) { s.marks[offset] = c }

func (s *Scroll) ClearMark(offset int) { delete(s.marks, offset) }

func (s *Scroll) ClearMarks() { clear(s.marks) }

func (s *Scroll) HasMark(offset int) bool {
	_, ok := s.marks[offset]
	return ok
}

// Marks returns every mark in ascending offset order.
func (s *Scroll) Marks() []Mark {
	keys := slices.Sorted(maps.Keys(s.marks))
	out := make([]Mark, 0, len(keys))
	for _, k := range keys {
		out = append(out, Mark{Offset: k, Color: s.marks[k]})
	}
	return out
}

// shiftMarks moves marks after a removed offset down by one.
func (s *Scroll) shiftMarks(removed int) {
	if len(s.marks) == 0 {
		return
	}
	next := make(map[int]color.RGBA, len(s.marks))
	for off, c := range s.marks {
		switch {
		case off < removed:
			next[off] = c
		case off > removed:
			next[off-1] = c
		}
	}
	s.marks = next
}

// ThumbSpan returns the thumb position and height on a track of trackH
// pixels.
func (s *Scroll) ThumbSpan(trackH int) (int, int) {
	if s.count <= 0 || trackH <= 0 {
		return 0, trackH
	}
	h := trackH * s.visible / s.count
	h = min(max(h, minThumbHeight), trackH)
	span := trackH - h
	y := 0
	if s.Max() > 0 {
		y = span * s.value / s.Max()
	}
	return y, h
}

// MarkY maps an offset to a y coordinate on the track.
func (s *Scroll) MarkY(offset, trackH int) int {
	if s.count <= 0 || trackH <= 0 {
		return 0
	}
	return min(offset*trackH/s.count, trackH-1)
}

// ValueAt maps a y coordinate on the track back to a scroll value.
func (s *Scroll) ValueAt(y, trackH int) int {
	if trackH <= 0 {
		return 0
	}
	y = min(max(y, 0), trackH)
	return y * s.Max() / trackH
}
