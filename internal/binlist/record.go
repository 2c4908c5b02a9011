package binlist

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

type Format uint8

const (
	FormatHex Format = iota
	FormatDecimal
	FormatBinary
	FormatASCII
)

var formatNames = [...]string{
	FormatHex:     "hex",
	FormatDecimal: "dec",
	FormatBinary:  "bin",
	FormatASCII:   "ascii",
}

// Scroll mark colors, one per format.
var formatColors = [...]color.RGBA{
	FormatHex:     {R: 0x2B, G: 0x57, B: 0x9A, A: 0xFF},
	FormatDecimal: {R: 0x11, G: 0x7A, B: 0x37, A: 0xFF},
	FormatBinary:  {R: 0x7A, G: 0x2D, B: 0xB8, A: 0xFF},
	FormatASCII:   {R: 0xA3, G: 0x15, B: 0x15, A: 0xFF},
}

func (f Format) Valid() bool { return int(f) < len(formatNames) }

func (f Format) String() string {
	if !f.Valid() {
		return "format(" + strconv.Itoa(int(f)) + ")"
	}
	return formatNames[f]
}

// Span is the width of a record in item units.
func (f Format) Span() int {
	if f == FormatBinary {
		return 2
	}
	return 1
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hex", "h", "":
		return FormatHex, nil
	case "dec", "decimal", "d":
		return FormatDecimal, nil
	case "bin", "binary", "b":
		return FormatBinary, nil
	case "ascii", "a", "char":
		return FormatASCII, nil
	}
	return FormatHex, fmt.Errorf("unknown format %q", s)
}

// Record is one byte of the store. Offset always equals the record's index.
// Selection state is owned by the List and only mirrored here.
type Record struct {
	offset    int
	value     byte
	format    Format
	lineBreak bool
	comment   string
	selected  bool
	active    bool
}

func NewRecord(value byte, format Format) *Record {
	if !format.Valid() {
		format = FormatHex
	}
	return &Record{value: value, format: format}
}

func (r *Record) Offset() int       { return r.offset }
func (r *Record) Value() byte       { return r.value }
func (r *Record) Format() Format    { return r.format }
func (r *Record) LineBreak() bool   { return r.lineBreak }
func (r *Record) Comment() string   { return r.comment }
func (r *Record) Selected() bool    { return r.selected }
func (r *Record) Active() bool      { return r.active }
func (r *Record) Color() color.RGBA { return formatColors[r.format] }

// Text renders the value in the record's format.
func (r *Record) Text() string {
	switch r.format {
	case FormatDecimal:
		return strconv.Itoa(int(r.value))
	case FormatBinary:
		return fmt.Sprintf("%08b", r.value)
	case FormatASCII:
		if r.value >= 0x20 && r.value < 0x7F {
			return string(rune(r.value))
		}
		return "."
	default:
		return fmt.Sprintf("%02X", r.value)
	}
}

func (r *Record) setFormat(f Format) {
	if f.Valid() {
		r.format = f
	}
}
