package platform

type WindowConfig struct {
	Title       string
	WidthPx     int
	HeightPx    int
	MinWidthPx  int
	MinHeightPx int
}

type Key int

const (
	KeyUnknown Key = iota
	KeyControl
	KeyShift
	KeyEscape
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyF3
	KeyC
	KeyF
	KeyM
	KeyO
	KeyS
	Key1
	Key2
	Key3
	Key4
	keyCount
)

// Keys lists every key a Source is expected to report.
func Keys() []Key {
	out := make([]Key, 0, keyCount-1)
	for k := KeyUnknown + 1; k < keyCount; k++ {
		out = append(out, k)
	}
	return out
}

type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	buttonCount
)

// Snapshot is the raw input state sampled once per frame.
type Snapshot struct {
	keys    uint64
	buttons uint8

	CursorX int
	CursorY int
	WheelY  float64
	Chars   []rune
}

func (s *Snapshot) SetKey(k Key, down bool) {
	if k <= KeyUnknown || k >= keyCount {
		return
	}
	if down {
		s.keys |= 1 << uint(k)
	} else {
		s.keys &^= 1 << uint(k)
	}
}

func (s *Snapshot) SetButton(b MouseButton, down bool) {
	if b < 0 || b >= buttonCount {
		return
	}
	if down {
		s.buttons |= 1 << uint(b)
	} else {
		s.buttons &^= 1 << uint(b)
	}
}

func (s Snapshot) Key(k Key) bool {
	if k <= KeyUnknown || k >= keyCount {
		return false
	}
	return s.keys&(1<<uint(k)) != 0
}

func (s Snapshot) Button(b MouseButton) bool {
	if b < 0 || b >= buttonCount {
		return false
	}
	return s.buttons&(1<<uint(b)) != 0
}

// Frame pairs the current snapshot with the previous one so that edges can
// be detected.
type Frame struct {
	Cur  Snapshot
	Prev Snapshot
}

func (f Frame) Pressed(k Key) bool      { return f.Cur.Key(k) }
func (f Frame) JustPressed(k Key) bool  { return f.Cur.Key(k) && !f.Prev.Key(k) }
func (f Frame) JustReleased(k Key) bool { return !f.Cur.Key(k) && f.Prev.Key(k) }
func (f Frame) Ctrl() bool              { return f.Cur.Key(KeyControl) }
func (f Frame) Shift() bool             { return f.Cur.Key(KeyShift) }

func (f Frame) ButtonPressed(b MouseButton) bool { return f.Cur.Button(b) }

func (f Frame) ButtonJustPressed(b MouseButton) bool {
	return f.Cur.Button(b) && !f.Prev.Button(b)
}

func (f Frame) ButtonJustReleased(b MouseButton) bool {
	return !f.Cur.Button(b) && f.Prev.Button(b)
}

func (f Frame) Cursor() (int, int) { return f.Cur.CursorX, f.Cur.CursorY }

func (f Frame) CursorMoved() bool {
	return f.Cur.CursorX != f.Prev.CursorX || f.Cur.CursorY != f.Prev.CursorY
}

// Source samples the input devices.
type Source interface {
	Poll() Snapshot
}

// Tracker turns a stream of snapshots into frames.
type Tracker struct {
	prev Snapshot
}

func (t *Tracker) Next(cur Snapshot) Frame {
	f := Frame{Cur: cur, Prev: t.prev}
	t.prev = cur
	t.prev.Chars = nil
	t.prev.WheelY = 0
	return f
}

func (t *Tracker) Poll(src Source) Frame { return t.Next(src.Poll()) }

// Scripted replays a fixed list of snapshots. Once exhausted it keeps
// returning the last one without wheel or text input.
type Scripted struct {
	frames []Snapshot
	pos    int
}

func NewScripted(frames ...Snapshot) *Scripted {
	return &Scripted{frames: frames}
}

func (s *Scripted) Push(frames ...Snapshot) { s.frames = append(s.frames, frames...) }

func (s *Scripted) Poll() Snapshot {
	if len(s.frames) == 0 {
		return Snapshot{}
	}
	if s.pos < len(s.frames) {
		snap := s.frames[s.pos]
		s.pos++
		return snap
	}
	last := s.frames[len(s.frames)-1]
	last.Chars = nil
	last.WheelY = 0
	return last
}

// Press builds a snapshot with the given keys held.
func Press(keys ...Key) Snapshot {
	var s Snapshot
	for _, k := range keys {
		s.SetKey(k, true)
	}
	return s
}
