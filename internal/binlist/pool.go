package binlist

type Point struct {
	X int
	Y int
}

type Rect struct {
	X int
	Y int
	W int
	H int
}

func (r Rect) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

// RowView is a pooled on-screen slot. Views are addressed by Index and are
// only valid until the next layout pass.
type RowView struct {
	Index    int
	Record   *Record
	Rect     Rect
	Selected bool
	// LineEnd is the index of the last view on the line this view starts,
	// or -1 when the view does not start a line.
	LineEnd int
}

func (v *RowView) bind(r *Record, rc Rect) {
	v.Record = r
	v.Rect = rc
	v.Selected = r.selected
	v.LineEnd = -1
}

func (v *RowView) detach() {
	v.Record = nil
	v.Rect = Rect{}
	v.Selected = false
	v.LineEnd = -1
}

// RowHandlers are invoked with a view index. They are fixed when the pool is
// built.
type RowHandlers struct {
	Click func(index int, shift bool)
	Enter func(index int)
	Leave func(index int)
}

// pool is an arena of RowViews. Slots grow on demand up to the largest
// window seen and are never freed individually.
type pool struct {
	views    []RowView
	active   int
	handlers RowHandlers
	hovered  int
}

func newPool(h RowHandlers) *pool {
	return &pool{handlers: h, hovered: -1}
}

func (p *pool) Len() int { return p.active }

func (p *pool) Cap() int { return len(p.views) }

// slot returns view i, growing the arena when needed.
func (p *pool) slot(i int) *RowView {
	for len(p.views) <= i {
		p.views = append(p.views, RowView{Index: len(p.views), LineEnd: -1})
	}
	if i >= p.active {
		p.active = i + 1
	}
	return &p.views[i]
}

func (p *pool) at(i int) *RowView {
	if i < 0 || i >= p.active {
		return nil
	}
	return &p.views[i]
}

// shrink detaches every slot at or above n.
func (p *pool) shrink(n int) {
	n = max(n, 0)
	for i := n; i < len(p.views); i++ {
		p.views[i].detach()
	}
	if n < p.active {
		p.active = n
	}
	if p.hovered >= p.active {
		p.hovered = -1
	}
	for i := 0; i < p.active; i++ {
		if p.views[i].LineEnd >= p.active {
			p.views[i].LineEnd = p.active - 1
		}
	}
}

func (p *pool) hitTest(x, y int) int {
	for i := 0; i < p.active; i++ {
		if p.views[i].Rect.Contains(x, y) {
			return i
		}
	}
	return -1
}

func (p *pool) hover(x, y int) {
	i := p.hitTest(x, y)
	if i == p.hovered {
		return
	}
	if p.hovered >= 0 && p.handlers.Leave != nil {
		p.handlers.Leave(p.hovered)
	}
	p.hovered = i
	if i >= 0 && p.handlers.Enter != nil {
		p.handlers.Enter(i)
	}
}

func (p *pool) click(x, y int, shift bool) bool {
	i := p.hitTest(x, y)
	if i < 0 {
		return false
	}
	if p.handlers.Click != nil {
		p.handlers.Click(i, shift)
	}
	return true
}
