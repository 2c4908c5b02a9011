package logging

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Sink is the process logger together with the file it writes to, if any.
type Sink struct {
	Logger zerolog.Logger
	file   *os.File
}

// Open parses level (empty means info) and points a JSON logger at path,
// appending across runs. An empty path logs to stderr.
func Open(level, path string) (*Sink, error) {
	lvl, err := zerolog.ParseLevel(cmp.Or(level, zerolog.InfoLevel.String()))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	s := &Sink{}
	out := os.Stderr
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create logs dir: %w", err)
		}
		if s.file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = s.file
	}
	s.Logger = zerolog.New(out).Level(lvl).With().Timestamp().Str("app", "binmap").Logger()
	return s, nil
}

func (s *Sink) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
