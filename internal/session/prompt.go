package session

import (
	"fmt"
	"strings"
	"time"

	"binmap/internal/binlist"
	"binmap/internal/editor"
	"binmap/internal/platform"
)

func (s *Session) openPrompt(m Mode) {
	switch m {
	case ModeSearch:
		s.prompt = editor.NewState(strings.TrimSpace(binlist.FormatQuery(s.list.LastQuery())))
		s.prompt.Accept = editor.IsHexRune
		s.prompt.MaxLen = maxQueryLen
	case ModeComment:
		r := s.list.Selection().First()
		if r == nil {
			s.setStatus("No bytes selected!", time.Second)
			return
		}
		s.prompt = editor.NewState(r.Comment())
		s.prompt.MaxLen = maxCommentLen
	default:
		return
	}
	s.mode = m
	s.dragging = false
	s.list.PointerLeave()
	s.relayout()
}

func (s *Session) closePrompt() {
	s.mode = ModeBrowse
	s.prompt = nil
	s.relayout()
}

func (s *Session) handlePrompt(f platform.Frame) {
	p := s.prompt
	ctrl := f.Ctrl()
	switch {
	case f.JustPressed(platform.KeyEscape):
		s.closePrompt()
		return
	case f.JustPressed(platform.KeyEnter):
		s.submitPrompt()
		return
	case f.JustPressed(platform.KeyBackspace):
		if ctrl {
			p.DeleteWordBackward()
		} else {
			p.Backspace()
		}
	case f.JustPressed(platform.KeyDelete):
		p.DeleteForward()
	case f.JustPressed(platform.KeyLeft):
		if ctrl {
			p.MoveCaretWordLeft()
		} else {
			p.MoveCaretLeft()
		}
	case f.JustPressed(platform.KeyRight):
		if ctrl {
			p.MoveCaretWordRight()
		} else {
			p.MoveCaretRight()
		}
	case f.JustPressed(platform.KeyHome):
		p.MoveCaretToLineStart()
	case f.JustPressed(platform.KeyEnd):
		p.MoveCaretToLineEnd()
	}
	if len(f.Cur.Chars) > 0 && !ctrl {
		if err := p.InsertTextAtCaret(string(f.Cur.Chars)); err != nil {
			s.log.Debug().Err(err).Msg("prompt input dropped")
		}
	}
}

func (s *Session) submitPrompt() {
	text := s.prompt.Text()
	switch s.mode {
	case ModeSearch:
		q, err := binlist.ParseQuery(text)
		if err != nil {
			s.setStatus("Invalid query: "+err.Error(), 2*time.Second)
			return
		}
		s.closePrompt()
		if at := s.list.Search(q, 0); at != binlist.NotFound {
			s.setStatus(fmt.Sprintf("Found '%s' at 0x%X.", binlist.FormatQuery(q), at), 2*time.Second)
		}
	case ModeComment:
		s.closePrompt()
		if s.list.SetComment(text) {
			s.setStatus("Comment updated.", time.Second)
		}
	}
}
