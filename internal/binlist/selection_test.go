package binlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type selectLog struct {
	calls []*Record
}

func (s *selectLog) record(r *Record) { s.calls = append(s.calls, r) }

func offsets(sel *Selection) []int {
	var out []int
	for r := range sel.All() {
		out = append(out, r.Offset())
	}
	return out
}

func TestSelectionOrderedByOffset(t *testing.T) {
	st := NewStore()
	for i := 0; i < 8; i++ {
		st.Append(NewRecord(byte(i), FormatHex))
	}
	sel := newSelection()
	for _, off := range []int{6, 2, 4, 2, 0} {
		sel.Add(st.At(off))
	}

	assert.Equal(t, []int{0, 2, 4, 6}, offsets(sel))
	assert.Equal(t, 0, sel.First().Offset())

	sel.Remove(st.At(0))
	assert.Equal(t, 2, sel.First().Offset())
	assert.False(t, st.At(0).Selected())
	assert.True(t, st.At(2).Selected())
}

func TestClickTogglesAndSetsAnchor(t *testing.T) {
	log := &selectLog{}
	l := New(Options{Geometry: testGeometry(), OnSelect: log.record})
	l.AddBytes([]byte{1, 2, 3, 4}, FormatHex)

	l.Click(l.Record(1), false)
	assert.Equal(t, l.Record(1), l.Anchor())
	assert.True(t, l.Record(1).Selected())
	assert.True(t, l.Record(1).Active())
	require.Equal(t, []*Record{l.Record(1)}, log.calls)

	// Clicking the anchor again toggles it off.
	l.Click(l.Record(1), false)
	assert.Nil(t, l.Anchor())
	assert.False(t, l.Record(1).Selected())
	assert.Equal(t, 0, l.Selection().Len())
	assert.Equal(t, []*Record{l.Record(1), nil}, log.calls)
}

func TestClickMovesAnchorAndClearsPreviousHighlight(t *testing.T) {
	log := &selectLog{}
	l := New(Options{Geometry: testGeometry(), OnSelect: log.record})
	l.AddBytes([]byte{1, 2, 3, 4}, FormatHex)

	l.Click(l.Record(0), false)
	l.Click(l.Record(3), false)

	assert.Equal(t, l.Record(3), l.Anchor())
	assert.False(t, l.Record(0).Active())
	assert.True(t, l.Record(0).Selected(), "previous anchor stays selected")
	assert.Equal(t, []int{0, 3}, offsets(l.Selection()))
	assert.Equal(t, []*Record{l.Record(0), nil, l.Record(3)}, log.calls)
}

func TestShiftClickSelectsRange(t *testing.T) {
	l := filledList(t, 20, testGeometry())

	l.Click(l.Record(3), false)
	l.Click(l.Record(8), true)

	assert.Equal(t, 6, l.Selection().Len())
	assert.Equal(t, []int{3, 4, 5, 6, 7, 8}, offsets(l.Selection()))
	assert.Equal(t, l.Record(8), l.Anchor())
	for i := 3; i <= 8; i++ {
		assert.True(t, l.Record(i).Selected(), "offset %d", i)
		assert.True(t, l.Views()[i].Selected, "view %d", i)
	}
}

func TestShiftClickBackwardsRange(t *testing.T) {
	l := filledList(t, 20, testGeometry())

	l.Click(l.Record(9), false)
	l.Click(l.Record(5), true)

	assert.Equal(t, []int{5, 6, 7, 8, 9}, offsets(l.Selection()))
	assert.Equal(t, 5, l.Selection().First().Offset())
}

func TestShiftClickOnlyAddsMissingRecords(t *testing.T) {
	l := filledList(t, 20, testGeometry())

	l.Click(l.Record(6), false)
	l.Click(l.Record(12), false)
	l.Click(l.Record(4), false)
	require.Equal(t, 3, l.Selection().Len())

	l.Click(l.Record(8), true)
	assert.Equal(t, []int{4, 5, 6, 7, 8, 12}, offsets(l.Selection()))
}

func TestShiftClickOnAnchorIsPlainToggle(t *testing.T) {
	l := filledList(t, 5, testGeometry())

	l.Click(l.Record(2), false)
	l.Click(l.Record(2), true)

	assert.Equal(t, 0, l.Selection().Len())
	assert.Nil(t, l.Anchor())
}

func TestShiftClickWithoutAnchorToggles(t *testing.T) {
	l := filledList(t, 5, testGeometry())

	l.Click(l.Record(4), true)

	assert.Equal(t, []int{4}, offsets(l.Selection()))
	assert.Equal(t, l.Record(4), l.Anchor())
}

func TestDeselectAll(t *testing.T) {
	log := &selectLog{}
	l := New(Options{Geometry: testGeometry(), OnSelect: log.record})
	l.AddBytes([]byte{1, 2, 3, 4, 5}, FormatHex)
	l.Click(l.Record(1), false)
	l.Click(l.Record(3), true)

	log.calls = nil
	l.DeselectAll()

	assert.Equal(t, 0, l.Selection().Len())
	assert.Nil(t, l.Anchor())
	assert.Nil(t, l.Selection().First())
	assert.Equal(t, []*Record{nil}, log.calls)
	for r := range l.Records() {
		assert.False(t, r.Selected())
		assert.False(t, r.Active())
	}
	for _, v := range l.Views() {
		assert.False(t, v.Selected)
	}
}

func TestClickIgnoresForeignRecord(t *testing.T) {
	l := filledList(t, 5, testGeometry())
	l.Click(NewRecord(9, FormatHex), false)
	l.Click(nil, false)

	assert.Equal(t, 0, l.Selection().Len())
}

func TestPointerDownDispatchesToRow(t *testing.T) {
	l := filledList(t, 10, testGeometry())

	// Second row, third item.
	assert.True(t, l.PointerDown(148+5, 26+5, false))
	assert.Equal(t, l.Record(7), l.Anchor())

	assert.False(t, l.PointerDown(5, 5, false), "left margin holds no rows")
}

func TestPointerHoverText(t *testing.T) {
	l := filledList(t, 40, testGeometry())
	l.PointerMove(124+1, 2+1)
	require.Equal(t, l.Record(1), l.Hovered())
	assert.Equal(t, "Address: 0x1 (1)\nValue: 0x01 (1)", l.HoverText())

	l.Click(l.Record(15), false)
	l.PointerMove(196+1, 2+1)
	assert.Equal(t, "Address: 0x4 (4)\nValue: 0x04 (4)\nRange: 0x4 -> 0xF = 12 bytes", l.HoverText())

	l.PointerLeave()
	assert.Nil(t, l.Hovered())
	assert.Empty(t, l.HoverText())
}

func TestRemoveItemReindexesSelection(t *testing.T) {
	l := filledList(t, 10, testGeometry())
	l.Click(l.Record(2), false)
	l.Click(l.Record(5), false)
	l.Click(l.Record(8), false)
	require.True(t, l.Annotate(6, FormatHex, true, ""))
	l.AddScrollMark(6, l.Record(6).Color())

	require.True(t, l.RemoveItem(l.Record(5)))

	assert.Equal(t, 9, l.Len())
	for i := 0; i < l.Len(); i++ {
		assert.Equal(t, i, l.Record(i).Offset())
	}
	assert.Equal(t, []int{2, 7}, offsets(l.Selection()))
	assert.Equal(t, l.Record(7), l.Anchor())
	assert.True(t, l.Scroll().HasMark(5))
	assert.False(t, l.Scroll().HasMark(6))

	assert.False(t, l.RemoveAt(42))
	assert.False(t, l.RemoveItem(NewRecord(0, FormatHex)))
}
