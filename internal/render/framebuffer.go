package render

import "image/color"

// Surface is what the list painter draws onto.
type Surface interface {
	Size() (int, int)
	Clear(c color.RGBA)
	FillRect(x, y, w, h int, c color.RGBA)
	BlendRect(x, y, w, h int, c color.RGBA)
	StrokeRect(x, y, w, h, line int, c color.RGBA)
}

type FrameBuffer struct {
	W      int
	H      int
	Pixels []uint8 // RGBA
}

func NewFrameBuffer(w, h int) *FrameBuffer {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &FrameBuffer{W: w, H: h, Pixels: make([]uint8, w*h*4)}
}

func (fb *FrameBuffer) Size() (int, int) { return fb.W, fb.H }

// At returns the pixel at (x, y), or transparent black outside the buffer.
func (fb *FrameBuffer) At(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= fb.W || y >= fb.H {
		return color.RGBA{}
	}
	i := (y*fb.W + x) * 4
	return color.RGBA{fb.Pixels[i], fb.Pixels[i+1], fb.Pixels[i+2], fb.Pixels[i+3]}
}

func (fb *FrameBuffer) Clear(c color.RGBA) {
	for i := 0; i < len(fb.Pixels); i += 4 {
		fb.Pixels[i+0] = c.R
		fb.Pixels[i+1] = c.G
		fb.Pixels[i+2] = c.B
		fb.Pixels[i+3] = c.A
	}
}

func (fb *FrameBuffer) clip(x, y, w, h int) (int, int, int, int, bool) {
	if w <= 0 || h <= 0 {
		return 0, 0, 0, 0, false
	}
	if x < 0 {
		w += x
		x = 0
	}
	if y < 0 {
		h += y
		y = 0
	}
	if x+w > fb.W {
		w = fb.W - x
	}
	if y+h > fb.H {
		h = fb.H - y
	}
	return x, y, w, h, w > 0 && h > 0
}

func (fb *FrameBuffer) FillRect(x, y, w, h int, c color.RGBA) {
	x, y, w, h, ok := fb.clip(x, y, w, h)
	if !ok {
		return
	}
	for row := 0; row < h; row++ {
		off := ((y+row)*fb.W + x) * 4
		for col := 0; col < w; col++ {
			idx := off + col*4
			fb.Pixels[idx+0] = c.R
			fb.Pixels[idx+1] = c.G
			fb.Pixels[idx+2] = c.B
			fb.Pixels[idx+3] = c.A
		}
	}
}

// BlendRect draws c over the existing pixels using its alpha.
func (fb *FrameBuffer) BlendRect(x, y, w, h int, c color.RGBA) {
	if c.A == 0xFF {
		fb.FillRect(x, y, w, h, c)
		return
	}
	x, y, w, h, ok := fb.clip(x, y, w, h)
	if !ok || c.A == 0 {
		return
	}
	a := uint32(c.A)
	inv := 255 - a
	for row := 0; row < h; row++ {
		off := ((y+row)*fb.W + x) * 4
		for col := 0; col < w; col++ {
			idx := off + col*4
			fb.Pixels[idx+0] = uint8((uint32(c.R)*a + uint32(fb.Pixels[idx+0])*inv) / 255)
			fb.Pixels[idx+1] = uint8((uint32(c.G)*a + uint32(fb.Pixels[idx+1])*inv) / 255)
			fb.Pixels[idx+2] = uint8((uint32(c.B)*a + uint32(fb.Pixels[idx+2])*inv) / 255)
			fb.Pixels[idx+3] = uint8(min(255, uint32(fb.Pixels[idx+3])+a))
		}
	}
}

func (fb *FrameBuffer) StrokeRect(x, y, w, h, line int, c color.RGBA) {
	if line <= 0 {
		line = 1
	}
	fb.FillRect(x, y, w, line, c)
	fb.FillRect(x, y+h-line, w, line, c)
	fb.FillRect(x, y, line, h, c)
	fb.FillRect(x+w-line, y, line, h, c)
}

func (fb *FrameBuffer) HLine(x, y, w int, c color.RGBA) { fb.FillRect(x, y, w, 1, c) }
func (fb *FrameBuffer) VLine(x, y, h int, c color.RGBA) { fb.FillRect(x, y, 1, h, c) }
