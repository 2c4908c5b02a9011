package binlist

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memClipboard struct {
	text string
	err  error
}

func (m *memClipboard) WriteText(text string) error {
	if m.err != nil {
		return m.err
	}
	m.text = text
	return nil
}

func TestCopyJoinsTokensWithLineBreaks(t *testing.T) {
	clip := &memClipboard{}
	status := &statusLog{}
	l := New(Options{Geometry: testGeometry(), Clipboard: clip, OnStatus: status.record})
	data := make([]byte, 12)
	data[5] = 0xA5
	data[9] = 0xA9
	l.AddBytes(data, FormatHex)
	require.True(t, l.Annotate(9, FormatHex, true, ""))

	l.Click(l.Record(9), false)
	l.Click(l.Record(5), false)

	require.True(t, l.Copy())
	assert.Equal(t, "A5 \nA9", clip.text)
	assert.Equal(t, "Copied 2 byte(s) to clipboard.", status.last())
	assert.Equal(t, 2*time.Second, status.dur[len(status.dur)-1])
}

func TestCopyUsesRecordFormat(t *testing.T) {
	clip := &memClipboard{}
	l := New(Options{Geometry: testGeometry(), Clipboard: clip})
	l.AddItem(NewRecord('A', FormatASCII))
	l.AddItem(NewRecord(0x07, FormatASCII))
	l.AddItem(NewRecord(200, FormatDecimal))
	l.AddItem(NewRecord(5, FormatBinary))
	for r := range l.Records() {
		l.Click(r, false)
	}

	require.True(t, l.Copy())
	assert.Equal(t, "A . 200 00000101", clip.text)
}

func TestCopyWithoutSelectionWarns(t *testing.T) {
	clip := &memClipboard{text: "untouched"}
	status := &statusLog{}
	l := New(Options{Geometry: testGeometry(), Clipboard: clip, OnStatus: status.record})
	l.AddBytes([]byte{1, 2}, FormatHex)

	assert.False(t, l.Copy())
	assert.Equal(t, "untouched", clip.text)
	assert.Equal(t, "No bytes selected!", status.last())
	assert.Equal(t, time.Second, status.dur[0])
}

func TestCopyReportsSinkFailure(t *testing.T) {
	clip := &memClipboard{err: errors.New("no display")}
	status := &statusLog{}
	l := New(Options{Geometry: testGeometry(), Clipboard: clip, OnStatus: status.record})
	l.AddBytes([]byte{1, 2}, FormatHex)
	l.Click(l.Record(0), false)

	assert.False(t, l.Copy())
	assert.Equal(t, "Copy failed: no display", status.last())
}

func TestClearResetsState(t *testing.T) {
	l := filledList(t, 30, testGeometry())
	l.Click(l.Record(4), false)
	require.True(t, l.AddLineBreak())
	require.Equal(t, 4, l.Search([]byte{4}, 0))

	l.Clear()

	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 0, l.Selection().Len())
	assert.Nil(t, l.Anchor())
	assert.Nil(t, l.LastQuery())
	assert.Equal(t, 0, l.LastMatch())
	assert.Empty(t, l.Scroll().Marks())
	assert.Equal(t, 0, l.Scroll().Value())
	assert.Equal(t, 0, l.Start())
	assert.Equal(t, 0, l.NumVisible())

	l.AddItem(NewRecord(0xFF, FormatHex))
	assert.Equal(t, 0, l.Record(0).Offset())
	l.AddItem(NewRecord(0xFE, FormatHex))
	assert.Equal(t, 1, l.Record(1).Offset())
}

func TestLineBreakToggleClearsCommentAndMarks(t *testing.T) {
	l := filledList(t, 10, testGeometry())
	l.Click(l.Record(6), false)
	require.True(t, l.SetComment("header"))
	l.Click(l.Record(3), false)

	require.True(t, l.AddLineBreak())
	r := l.Record(3)
	assert.True(t, r.LineBreak())
	assert.Empty(t, r.Comment())
	assert.Equal(t, []Mark{{Offset: 3, Color: r.Color()}}, l.Scroll().Marks())
	assert.Equal(t, DefaultMarginLeft, l.Views()[3].Rect.X, "break record starts at the left margin")

	require.True(t, l.SetComment("section"))
	assert.Equal(t, "section", r.Comment())
	assert.Equal(t, "header", l.Record(6).Comment())

	require.True(t, l.RemoveLineBreak())
	assert.False(t, r.LineBreak())
	assert.Empty(t, r.Comment())
	assert.Empty(t, l.Scroll().Marks())

	assert.False(t, l.RemoveLineBreak(), "nothing left to remove")
}

func TestLineBreakRejectedAtFirstRecord(t *testing.T) {
	l := filledList(t, 5, testGeometry())
	assert.False(t, l.AddLineBreak(), "no selection")

	l.Click(l.Record(0), false)
	assert.False(t, l.AddLineBreak())
	assert.False(t, l.Record(0).LineBreak())
	assert.Empty(t, l.Scroll().Marks())
}

func TestSetFormatRemarksLineBreaks(t *testing.T) {
	l := filledList(t, 10, testGeometry())
	l.Click(l.Record(4), false)
	require.True(t, l.AddLineBreak())
	l.Click(l.Record(6), true)

	l.SetFormat(FormatDecimal)

	for i := 4; i <= 6; i++ {
		assert.Equal(t, FormatDecimal, l.Record(i).Format())
	}
	assert.Equal(t, FormatHex, l.Record(3).Format())
	assert.Equal(t, []Mark{{Offset: 4, Color: formatColors[FormatDecimal]}}, l.Scroll().Marks())

	l.SetFormat(Format(42))
	assert.Equal(t, FormatDecimal, l.Record(4).Format())
}

func TestAddItemWithLineBreakMarksTrack(t *testing.T) {
	l := New(Options{Geometry: testGeometry()})
	l.AddItem(NewRecord(1, FormatHex))
	r := NewRecord(2, FormatHex)
	r.lineBreak = true
	l.AddItem(r)

	assert.True(t, l.Scroll().HasMark(1))
}

func TestScrollLinesAndPages(t *testing.T) {
	l := filledList(t, 100, testGeometry())

	l.ScrollLines(1)
	assert.Equal(t, 5, l.Start())
	l.ScrollLines(2)
	assert.Equal(t, 15, l.Start())
	l.ScrollLines(-10)
	assert.Equal(t, 0, l.Start())

	l.ScrollPage(1)
	assert.Equal(t, 20, l.Start())
	l.ScrollPage(100)
	assert.Equal(t, 99, l.Start())
	assert.Equal(t, 99, l.Scroll().Value())
}

func TestOnScrollClampsStart(t *testing.T) {
	l := filledList(t, 10, testGeometry())
	l.OnScroll(50)
	assert.Equal(t, 9, l.Start())
	l.OnScroll(-3)
	assert.Equal(t, 0, l.Start())
}

func TestAnnotateRestoresRecord(t *testing.T) {
	l := filledList(t, 10, testGeometry())
	l.Lock()
	require.True(t, l.Annotate(3, FormatBinary, true, "len"))
	require.True(t, l.Annotate(0, FormatASCII, true, "magic"))
	assert.False(t, l.Annotate(10, FormatHex, false, ""))
	assert.False(t, l.Annotate(2, Format(9), false, ""))
	l.Unlock()

	r := l.Record(3)
	assert.Equal(t, FormatBinary, r.Format())
	assert.True(t, r.LineBreak())
	assert.Equal(t, "len", r.Comment())
	assert.Equal(t, []Mark{{Offset: 3, Color: r.Color()}}, l.Scroll().Marks())

	assert.False(t, l.Record(0).LineBreak(), "offset 0 never breaks")
	assert.Equal(t, "magic", l.Record(0).Comment())
	assert.Equal(t, DefaultMarginLeft, l.Views()[3].Rect.X)
}

func TestHoverFollowsScrolledView(t *testing.T) {
	l := filledList(t, 30, testGeometry())
	l.PointerMove(105, 7)
	require.NotNil(t, l.Hovered())
	require.Equal(t, 0, l.Hovered().Offset())

	l.ScrollLines(2)
	l.PointerMove(105, 7)
	require.NotNil(t, l.Hovered())
	assert.Equal(t, 10, l.Hovered().Offset())
	assert.Equal(t, "Address: 0xA (10)\nValue: 0x0A (10)", l.HoverText())

	l.ScrollTo(29)
	l.PointerMove(105, 31)
	assert.Nil(t, l.Hovered(), "no view under the pointer")
	assert.Empty(t, l.HoverText())

	l.PointerMove(105, 7)
	l.Clear()
	assert.Nil(t, l.Hovered())
}
