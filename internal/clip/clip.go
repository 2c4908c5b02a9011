// Package clip writes copied text to the system clipboard.
package clip

import (
	"errors"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	xclip "golang.design/x/clipboard"
)

var ErrUnavailable = errors.New("clip: no clipboard available")

type writer func(text string) error

// System writes through atotto/clipboard and falls back to
// golang.design/x/clipboard when the primary backend fails, for example
// when no xclip or xsel binary is installed.
type System struct {
	primary  writer
	fallback func() (writer, error)

	once    sync.Once
	backup  writer
	initErr error
	log     zerolog.Logger
}

func New(log zerolog.Logger) *System {
	return &System{
		primary:  clipboard.WriteAll,
		fallback: initNative,
		log:      log.With().Str("component", "clip").Logger(),
	}
}

func initNative() (writer, error) {
	if err := xclip.Init(); err != nil {
		return nil, err
	}
	return func(text string) error {
		xclip.Write(xclip.FmtText, []byte(text))
		return nil
	}, nil
}

func (s *System) WriteText(text string) error {
	err := s.primary(text)
	if err == nil {
		return nil
	}
	s.log.Debug().Err(err).Msg("primary clipboard failed, trying fallback")

	s.once.Do(func() {
		if s.fallback == nil {
			s.initErr = ErrUnavailable
			return
		}
		s.backup, s.initErr = s.fallback()
	})
	if s.initErr != nil {
		return fmt.Errorf("%w: %v; fallback: %v", ErrUnavailable, err, s.initErr)
	}
	return s.backup(text)
}

// Memory keeps the last written text. It serves headless runs and tests.
type Memory struct {
	mu   sync.Mutex
	text string
}

func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}
