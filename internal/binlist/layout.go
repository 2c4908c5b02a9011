package binlist

const (
	DefaultMarginLeft    = 100
	DefaultMarginTop     = 2
	DefaultCommentColumn = 160
)

type Geometry struct {
	Width         int
	Height        int
	Item          Point
	Space         Point
	CommentColumn int
	MarginLeft    int
	MarginTop     int
}

func DefaultGeometry() Geometry {
	return Geometry{
		Width:         800,
		Height:        600,
		Item:          Point{X: 20, Y: 20},
		Space:         Point{X: 4, Y: 4},
		CommentColumn: DefaultCommentColumn,
		MarginLeft:    DefaultMarginLeft,
		MarginTop:     DefaultMarginTop,
	}
}

func (g Geometry) itemWidth(r *Record) int {
	return g.Item.X * r.format.Span()
}

// reflow binds records store[start:] to views, greedy left to right and top
// to bottom, and returns the number of views left bound.
//
// A record that would open a line below the viewport, or that is wider than
// the viewport, counts as placed without being bound. Whenever fewer records
// were placed than the store holds, the count is then reduced by one. That
// keeps every fully visible record bound on a truncated window and makes the
// scrollbar range come out as count-1.
func reflow(store *Store, p *pool, g Geometry, start int) int {
	n := store.Len()
	if n == 0 || start < 0 || start >= n {
		p.shrink(0)
		return 0
	}

	limit := g.Height - g.Item.Y - g.Space.Y
	right := g.Width - g.CommentColumn
	x, y := g.MarginLeft, g.MarginTop
	if y >= limit {
		p.shrink(0)
		return 0
	}

	bound := 0
	lineStart := 0
	overflow := false
	for i := start; i < n; i++ {
		rec := store.At(i)
		w := g.itemWidth(rec)
		if bound > 0 && (x+w+g.Space.X > right || rec.lineBreak) {
			ny := y + g.Item.Y + g.Space.Y
			if ny >= limit {
				overflow = true
				break
			}
			p.at(lineStart).LineEnd = bound - 1
			lineStart = bound
			x, y = g.MarginLeft, ny
		}
		if x+w > g.Width {
			overflow = true
			break
		}
		p.slot(bound).bind(rec, Rect{X: x, Y: y, W: w, H: g.Item.Y})
		x += w + g.Space.X
		bound++
	}
	if bound > 0 {
		p.at(lineStart).LineEnd = bound - 1
	}

	placed := bound
	if overflow {
		placed++
	}
	if placed > 0 && placed < n {
		placed--
	}
	consumed := min(placed, bound)
	p.shrink(consumed)
	return consumed
}
