package binlist

import (
	"fmt"
	"image/color"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type (
	// StatusFunc receives transient status text and how long to show it.
	StatusFunc func(text string, d time.Duration)
	// SelectFunc receives the new anchor, or nil when the anchor is cleared.
	SelectFunc func(r *Record)
)

type ClipboardSink interface {
	WriteText(text string) error
}

type Options struct {
	Geometry  Geometry
	OnStatus  StatusFunc
	OnSelect  SelectFunc
	Clipboard ClipboardSink
	Logger    *zerolog.Logger
}

// List is a virtualized, reflowing view over a byte store. Only the slice of
// records that fits the viewport is bound to views at any time.
type List struct {
	store  *Store
	views  *pool
	sel    *Selection
	scroll *Scroll
	cursor searchCursor
	geom   Geometry

	start  int
	anchor *Record
	locked bool
	dirty  bool

	onStatus StatusFunc
	onSelect SelectFunc
	clip     ClipboardSink
	log      zerolog.Logger
}

func New(opts Options) *List {
	g := opts.Geometry
	if g == (Geometry{}) {
		g = DefaultGeometry()
	}
	l := &List{
		store:    NewStore(),
		sel:      newSelection(),
		geom:     g,
		onStatus: opts.OnStatus,
		onSelect: opts.OnSelect,
		clip:     opts.Clipboard,
		log:      zerolog.Nop(),
	}
	if opts.Logger != nil {
		l.log = opts.Logger.With().Str("component", "binlist").Logger()
	}
	l.views = newPool(RowHandlers{
		Click: func(i int, shift bool) {
			if v := l.views.at(i); v != nil {
				l.Click(v.Record, shift)
			}
		},
		Enter: func(i int) { l.log.Trace().Int("view", i).Msg("hover") },
	})
	l.scroll = newScroll(l.OnScroll)
	return l
}

func (l *List) Len() int                   { return l.store.Len() }
func (l *List) Record(i int) *Record       { return l.store.At(i) }
func (l *List) Records() iter.Seq[*Record] { return l.store.All() }
func (l *List) Selection() *Selection      { return l.sel }
func (l *List) Scroll() *Scroll            { return l.scroll }
func (l *List) Geometry() Geometry         { return l.geom }
func (l *List) Start() int                 { return l.start }
func (l *List) Anchor() *Record            { return l.anchor }
func (l *List) Locked() bool               { return l.locked }
func (l *List) Dirty() bool                { return l.dirty }

// Views returns the bound views of the current window. The slice is reused
// by the next layout pass.
func (l *List) Views() []RowView { return l.views.views[:l.views.active] }

// NumVisible is the number of records bound to views.
func (l *List) NumVisible() int { return l.views.Len() }

// Lock defers relayout until Unlock.
func (l *List) Lock() { l.locked = true }

func (l *List) Unlock() {
	l.locked = false
	if l.dirty {
		l.Layout()
	}
}

func (l *List) requestLayout() {
	l.dirty = true
	if l.locked {
		return
	}
	l.Layout()
}

// Layout runs a reflow pass from the current window start.
func (l *List) Layout() {
	l.dirty = false
	n := reflow(l.store, l.views, l.geom, l.start)
	l.scroll.Layout(l.store.Len(), n)
	l.scroll.SetVisible(n != l.store.Len())
	l.log.Debug().Int("start", l.start).Int("visible", n).Int("count", l.store.Len()).Msg("layout")
}

func (l *List) AddItem(r *Record) {
	if r == nil {
		return
	}
	r.selected = false
	r.active = false
	l.store.Append(r)
	if r.lineBreak {
		l.scroll.SetMark(r.offset, r.Color())
	}
	l.requestLayout()
}

// AddBytes appends one record per byte as a single batch.
func (l *List) AddBytes(data []byte, f Format) {
	wasLocked := l.locked
	l.Lock()
	for _, b := range data {
		l.AddItem(NewRecord(b, f))
	}
	if !wasLocked {
		l.Unlock()
	}
}

// RemoveItem drops r from the store. Records after it move down one offset.
func (l *List) RemoveItem(r *Record) bool {
	if r == nil || l.store.At(r.offset) != r {
		return false
	}
	return l.RemoveAt(r.offset)
}

func (l *List) RemoveAt(offset int) bool {
	r := l.store.At(offset)
	if r == nil {
		return false
	}
	l.sel.Remove(r)
	if l.anchor == r {
		l.anchor = nil
	}
	l.store.Remove(offset)
	l.sel.reindex(offset)
	l.scroll.shiftMarks(offset)
	l.start = min(l.start, max(l.store.Len()-1, 0))
	l.requestLayout()
	return true
}

// Clear drops every record, the search cursor, the selection and the marks.
func (l *List) Clear() {
	l.store.Clear()
	l.cursor = searchCursor{}
	l.dirty = true
	l.DeselectAll()
	l.scroll.ClearMarks()
	l.scroll.Layout(0, 0)
	l.scroll.ScrollTo(0)
}

func (l *List) SetItemSize(p Point) {
	if p == l.geom.Item || p.X <= 0 || p.Y <= 0 {
		return
	}
	l.geom.Item = p
	l.requestLayout()
}

func (l *List) SetItemSpace(p Point) {
	if p == l.geom.Space || p.X < 0 || p.Y < 0 {
		return
	}
	l.geom.Space = p
	l.requestLayout()
}

func (l *List) Resize(w, h int) {
	if w == l.geom.Width && h == l.geom.Height {
		return
	}
	l.geom.Width = w
	l.geom.Height = h
	l.requestLayout()
}

// OnScroll moves the window start. It is the scroll track's callback.
func (l *List) OnScroll(start int) {
	start = min(max(start, 0), max(l.store.Len()-1, 0))
	l.start = start
	l.scroll.value = start
	l.requestLayout()
}

func (l *List) ScrollTo(target int) { l.scroll.ScrollTo(target) }

// ScrollLines scrolls by whole visual lines, using the length of the first
// line of the window.
func (l *List) ScrollLines(n int) {
	per := 1
	if v := l.views.at(0); v != nil && v.LineEnd >= 0 {
		per = v.LineEnd + 1
	}
	l.ScrollTo(l.start + n*per)
}

func (l *List) ScrollPage(n int) {
	l.ScrollTo(l.start + n*max(l.views.Len(), 1))
}

// Click applies a pointer click on r to the selection.
func (l *List) Click(r *Record, shift bool) {
	if r == nil || l.store.At(r.offset) != r {
		return
	}
	on := !l.sel.Contains(r)
	if l.anchor != nil && shift {
		lo, hi := min(l.anchor.offset, r.offset), max(l.anchor.offset, r.offset)
		if hi-lo > 0 {
			for i := lo; i <= hi; i++ {
				l.sel.Add(l.store.At(i))
			}
			on = true
			l.requestLayout()
		}
	}
	if l.anchor != nil {
		l.anchor.active = false
		l.notifySelect(nil)
	}
	if on {
		l.anchor = r
		r.active = true
		l.sel.Add(r)
		l.notifySelect(r)
	} else {
		r.active = false
		l.sel.Remove(r)
		l.anchor = nil
	}
	l.requestLayout()
}

func (l *List) DeselectAll() {
	if l.anchor != nil {
		l.anchor.active = false
		l.anchor = nil
	}
	l.sel.Clear()
	l.notifySelect(nil)
	l.requestLayout()
}

// SetFormat changes the format of every selected record.
func (l *List) SetFormat(f Format) {
	if !f.Valid() {
		return
	}
	for r := range l.sel.All() {
		r.setFormat(f)
		if r.lineBreak {
			l.scroll.SetMark(r.offset, r.Color())
		}
	}
	if l.sel.Len() > 0 {
		l.requestLayout()
	}
}

// AddLineBreak starts a new visual line at the first selected record. The
// first record of the store always starts a line and is left alone.
func (l *List) AddLineBreak() bool {
	r := l.sel.First()
	if r == nil || r.offset <= 0 {
		return false
	}
	r.lineBreak = true
	r.comment = ""
	l.scroll.SetMark(r.offset, r.Color())
	l.requestLayout()
	return true
}

func (l *List) RemoveLineBreak() bool {
	r := l.sel.First()
	if r == nil || !r.lineBreak {
		return false
	}
	r.lineBreak = false
	r.comment = ""
	l.scroll.ClearMark(r.offset)
	l.requestLayout()
	return true
}

// SetComment sets the comment of the first selected record.
func (l *List) SetComment(text string) bool {
	r := l.sel.First()
	if r == nil {
		return false
	}
	r.comment = text
	return true
}

// Annotate restores the format, line break and comment of one record, as
// read back from a saved map. The first record never takes a line break.
func (l *List) Annotate(offset int, f Format, lineBreak bool, comment string) bool {
	r := l.store.At(offset)
	if r == nil || !f.Valid() {
		return false
	}
	r.setFormat(f)
	r.lineBreak = lineBreak && offset > 0
	r.comment = comment
	if r.lineBreak {
		l.scroll.SetMark(offset, r.Color())
	} else {
		l.scroll.ClearMark(offset)
	}
	l.requestLayout()
	return true
}

func (l *List) AddScrollMark(offset int, c color.RGBA) {
	if l.store.At(offset) == nil {
		return
	}
	l.scroll.SetMark(offset, c)
}

// Search scans for query from the given offset and scrolls to a match.
func (l *List) Search(query []byte, from int) int {
	if len(query) == 0 {
		return NotFound
	}
	l.cursor.query = slices.Clone(query)
	at := scan(l.store, query, from)
	if at == NotFound {
		if from > 0 {
			l.status("Search reached the end.", time.Second)
		} else {
			l.status(fmt.Sprintf("No match found for query '%s'.", FormatQuery(query)), 2*time.Second)
		}
		l.log.Debug().Str("query", FormatQuery(query)).Int("from", from).Msg("search exhausted")
		return NotFound
	}
	l.cursor.last = at
	l.log.Debug().Str("query", FormatQuery(query)).Int("match", at).Msg("search hit")
	l.scroll.ScrollTo(at)
	return at
}

// FindNext repeats the last query one past the last match.
func (l *List) FindNext() int {
	if l.cursor.query == nil {
		return NotFound
	}
	return l.Search(l.cursor.query, l.cursor.last+1)
}

func (l *List) LastQuery() []byte { return slices.Clone(l.cursor.query) }

func (l *List) LastMatch() int { return l.cursor.last }

// CopyText joins the selected records' text with spaces. Records that start
// a line are prefixed with a newline.
func (l *List) CopyText() (string, int) {
	tokens := make([]string, 0, l.sel.Len())
	for r := range l.sel.All() {
		tok := r.Text()
		if r.lineBreak {
			tok = "\n" + tok
		}
		tokens = append(tokens, tok)
	}
	return strings.Join(tokens, " "), len(tokens)
}

func (l *List) Copy() bool {
	text, n := l.CopyText()
	if n == 0 {
		l.status("No bytes selected!", time.Second)
		return false
	}
	if l.clip != nil {
		if err := l.clip.WriteText(text); err != nil {
			l.log.Warn().Err(err).Msg("clipboard write failed")
			l.status("Copy failed: "+err.Error(), 2*time.Second)
			return false
		}
	}
	l.status(fmt.Sprintf("Copied %d byte(s) to clipboard.", n), 2*time.Second)
	return true
}

func (l *List) PointerMove(x, y int) { l.views.hover(x, y) }

// PointerDown dispatches a click to the view under (x, y).
func (l *List) PointerDown(x, y int, shift bool) bool {
	return l.views.click(x, y, shift)
}

func (l *List) PointerLeave() { l.views.hover(-1, -1) }

// Hovered is the record currently bound to the view under the pointer.
func (l *List) Hovered() *Record {
	if v := l.views.at(l.views.hovered); v != nil {
		return v.Record
	}
	return nil
}

// HoverText describes the hovered record and, when an anchor is set, the
// range between the two.
func (l *List) HoverText() string {
	r := l.Hovered()
	if r == nil {
		return ""
	}
	s := fmt.Sprintf("Address: 0x%X (%d)\nValue: 0x%02X (%d)", r.offset, r.offset, r.value, r.value)
	if a := l.anchor; a != nil && a != r {
		lo, hi := min(a.offset, r.offset), max(a.offset, r.offset)
		s += fmt.Sprintf("\nRange: 0x%X -> 0x%X = %d bytes", lo, hi, hi-lo+1)
	}
	return s
}

func (l *List) status(text string, d time.Duration) {
	if l.onStatus != nil {
		l.onStatus(text, d)
	}
}

func (l *List) notifySelect(r *Record) {
	if l.onSelect != nil {
		l.onSelect(r)
	}
}
