package binlist

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrollToClampsAndNotifies(t *testing.T) {
	var got []int
	s := newScroll(func(v int) { got = append(got, v) })
	s.Layout(50, 10)

	s.ScrollTo(20)
	s.ScrollTo(500)
	s.ScrollTo(-1)

	assert.Equal(t, []int{20, 49, 0}, got)
	assert.Equal(t, 0, s.Value())
	assert.Equal(t, 49, s.Max())
}

func TestScrollMarksSorted(t *testing.T) {
	s := newScroll(nil)
	red := color.RGBA{R: 0xFF, A: 0xFF}
	blue := color.RGBA{B: 0xFF, A: 0xFF}
	s.SetMark(30, red)
	s.SetMark(4, blue)
	s.SetMark(30, blue)

	assert.Equal(t, []Mark{{Offset: 4, Color: blue}, {Offset: 30, Color: blue}}, s.Marks())

	s.ClearMark(4)
	assert.False(t, s.HasMark(4))
	s.ClearMarks()
	assert.Empty(t, s.Marks())
}

func TestScrollShiftMarks(t *testing.T) {
	s := newScroll(nil)
	c := color.RGBA{A: 0xFF}
	for _, off := range []int{1, 5, 9} {
		s.SetMark(off, c)
	}
	s.shiftMarks(5)

	assert.Equal(t, []Mark{{Offset: 1, Color: c}, {Offset: 8, Color: c}}, s.Marks())
}

func TestScrollTrackGeometry(t *testing.T) {
	s := newScroll(nil)
	s.Layout(101, 25)

	y, h := s.ThumbSpan(400)
	assert.Equal(t, 0, y)
	assert.Equal(t, 99, h)

	s.ScrollTo(100)
	y, h = s.ThumbSpan(400)
	assert.Equal(t, 400-99, y)
	assert.Equal(t, 99, h)

	assert.Equal(t, 0, s.MarkY(0, 400))
	assert.Equal(t, 198, s.MarkY(50, 400))
	assert.Equal(t, 399, s.MarkY(101, 400))

	assert.Equal(t, 50, s.ValueAt(200, 400))
	assert.Equal(t, 100, s.ValueAt(999, 400))
	assert.Equal(t, 0, s.ValueAt(-5, 400))
}

func TestScrollThumbHasMinimumHeight(t *testing.T) {
	s := newScroll(nil)
	s.Layout(100000, 10)

	_, h := s.ThumbSpan(300)
	assert.Equal(t, minThumbHeight, h)
}
