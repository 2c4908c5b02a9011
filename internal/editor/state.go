package editor

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// State is a single-line text field used by the comment and search prompts.
// Caret movement and deletion work on grapheme clusters.
type State struct {
	CaretByte int
	// MaxLen caps the text length in bytes. Zero means no limit.
	MaxLen int
	// Accept filters inserted runes. Nil accepts any printable rune.
	Accept func(r rune) bool

	text []byte
}

func NewState(initial string) *State {
	s := &State{}
	s.SetText(initial)
	return s
}

func (s *State) Text() string { return string(s.text) }
func (s *State) Len() int     { return len(s.text) }

// SetText replaces the text and moves the caret to its end.
func (s *State) SetText(text string) {
	s.text = s.text[:0]
	_ = s.insert(0, text)
	s.CaretByte = len(s.text)
}

func (s *State) Clear() {
	s.text = s.text[:0]
	s.CaretByte = 0
}

func (s *State) Normalize() {
	s.CaretByte = clampToBoundary(s.text, s.CaretByte)
}

func (s *State) MoveCaretLeft() {
	s.Normalize()
	s.CaretByte = previousBoundary(s.text, s.CaretByte)
}

func (s *State) MoveCaretRight() {
	s.Normalize()
	s.CaretByte = nextBoundary(s.text, s.CaretByte)
}

func (s *State) MoveCaretWordLeft() {
	s.Normalize()
	pos := s.CaretByte
	for pos > 0 {
		r, size := utf8.DecodeLastRune(s.text[:pos])
		if isWordRune(r) {
			break
		}
		pos -= max(size, 1)
	}
	for pos > 0 {
		r, size := utf8.DecodeLastRune(s.text[:pos])
		if !isWordRune(r) {
			break
		}
		pos -= max(size, 1)
	}
	s.CaretByte = clampToBoundary(s.text, pos)
}

func (s *State) MoveCaretWordRight() {
	s.Normalize()
	pos := s.CaretByte
	for pos < len(s.text) {
		r, size := utf8.DecodeRune(s.text[pos:])
		if isWordRune(r) {
			break
		}
		pos += max(size, 1)
	}
	for pos < len(s.text) {
		r, size := utf8.DecodeRune(s.text[pos:])
		if !isWordRune(r) {
			break
		}
		pos += max(size, 1)
	}
	s.CaretByte = clampToBoundary(s.text, pos)
}

func (s *State) MoveCaretToLineStart() { s.CaretByte = 0 }
func (s *State) MoveCaretToLineEnd()   { s.CaretByte = len(s.text) }

// InsertTextAtCaret inserts input at the caret. Line breaks and rejected
// runes are dropped. Input that would exceed MaxLen is cut at the last rune
// that fits.
func (s *State) InsertTextAtCaret(input string) error {
	if input == "" {
		return nil
	}
	if !utf8.ValidString(input) {
		return fmt.Errorf("input must be valid UTF-8")
	}
	s.Normalize()
	s.CaretByte = s.insert(s.CaretByte, input)
	return nil
}

func (s *State) insert(pos int, input string) int {
	var b strings.Builder
	for _, r := range input {
		if r == '\n' || r == '\r' || !s.accept(r) {
			continue
		}
		if s.MaxLen > 0 && len(s.text)+b.Len()+utf8.RuneLen(r) > s.MaxLen {
			break
		}
		b.WriteRune(r)
	}
	add := b.String()
	if add == "" {
		return pos
	}
	s.text = append(s.text[:pos], append([]byte(add), s.text[pos:]...)...)
	return pos + len(add)
}

func (s *State) accept(r rune) bool {
	if s.Accept != nil {
		return s.Accept(r)
	}
	return unicode.IsPrint(r)
}

func (s *State) Backspace() {
	s.Normalize()
	if s.CaretByte == 0 {
		return
	}
	start := previousBoundary(s.text, s.CaretByte)
	s.text = append(s.text[:start], s.text[s.CaretByte:]...)
	s.CaretByte = start
}

func (s *State) DeleteForward() {
	s.Normalize()
	if s.CaretByte >= len(s.text) {
		return
	}
	end := nextBoundary(s.text, s.CaretByte)
	s.text = append(s.text[:s.CaretByte], s.text[end:]...)
}

func (s *State) DeleteWordBackward() {
	s.Normalize()
	if s.CaretByte == 0 {
		return
	}
	start := previousWordBoundary(s.text, s.CaretByte)
	s.text = append(s.text[:start], s.text[s.CaretByte:]...)
	s.CaretByte = start
}

// Display returns the text with a caret marker at the caret position.
func (s *State) Display(caret string) string {
	s.Normalize()
	return string(s.text[:s.CaretByte]) + caret + string(s.text[s.CaretByte:])
}

// IsHexRune accepts the characters of a hex byte query.
func IsHexRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		return true
	case r == ' ', r == 'x', r == 'X':
		return true
	}
	return false
}

// clampToBoundary moves pos back to the nearest grapheme cluster boundary.
func clampToBoundary(text []byte, pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos >= len(text) {
		return len(text)
	}
	at := 0
	state := -1
	rest := text
	for len(rest) > 0 {
		var cluster []byte
		cluster, rest, _, state = uniseg.FirstGraphemeCluster(rest, state)
		if at+len(cluster) > pos {
			return at
		}
		at += len(cluster)
	}
	return at
}

func previousBoundary(text []byte, pos int) int {
	pos = clampToBoundary(text, pos)
	if pos == 0 {
		return 0
	}
	return clampToBoundary(text, pos-1)
}

func nextBoundary(text []byte, pos int) int {
	pos = clampToBoundary(text, pos)
	if pos >= len(text) {
		return len(text)
	}
	cluster, _, _, _ := uniseg.FirstGraphemeCluster(text[pos:], -1)
	return pos + max(len(cluster), 1)
}

func previousWordBoundary(text []byte, pos int) int {
	pos = clampToBoundary(text, pos)
	for pos > 0 {
		r, size := utf8.DecodeLastRune(text[:pos])
		if !unicode.IsSpace(r) {
			break
		}
		pos -= max(size, 1)
	}
	for pos > 0 {
		r, size := utf8.DecodeLastRune(text[:pos])
		if unicode.IsSpace(r) {
			break
		}
		pos -= max(size, 1)
	}
	return clampToBoundary(text, pos)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
