package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"binmap/internal/binlist"
	"binmap/pkg/binmap"
)

// MapExt is appended to a file's path to name its annotation map.
const MapExt = ".binmap"

var (
	// ErrCancelled is returned by a Picker when the user closed the dialog.
	ErrCancelled = errors.New("session: cancelled")
	ErrTooLarge  = errors.New("session: file too large")
	ErrNoFile    = errors.New("session: no file open")
)

// Picker asks the user for a file to open.
type Picker interface {
	OpenFile() (string, error)
}

func MapPath(path string) string { return path + MapExt }

// OpenFile loads path into the list and restores its annotation map when
// one sits next to it.
func (s *Session) OpenFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if limit := s.cfg.View.MaxFileSize; limit > 0 && info.Size() > limit {
		return fmt.Errorf("open %s: %w (%d bytes, limit %d)", path, ErrTooLarge, info.Size(), limit)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	s.load(data, s.cfg.Format())
	s.path = path
	s.log.Info().Str("path", path).Int("bytes", len(data)).Msg("file opened")

	name := filepath.Base(path)
	mp := MapPath(path)
	if _, err := os.Stat(mp); err == nil {
		if err := s.LoadMap(mp); err != nil {
			s.log.Warn().Err(err).Str("map", mp).Msg("annotation map not applied")
			s.setStatus(fmt.Sprintf("Opened %s, map not loaded: %v", name, err), statusDefault)
			return nil
		}
		s.setStatus(fmt.Sprintf("Opened %s with %s.", name, filepath.Base(mp)), statusDefault)
		return nil
	}
	s.setStatus(fmt.Sprintf("Opened %s (%d bytes).", name, len(data)), statusDefault)
	return nil
}

func (s *Session) load(data []byte, f binlist.Format) {
	s.data = data
	s.list.Lock()
	s.list.Clear()
	s.list.AddBytes(data, f)
	s.list.Unlock()
}

// Capture builds an annotation map from the records of l that differ from
// the default format or carry a line break or comment.
func Capture(l *binlist.List, source string, data []byte, def binlist.Format) *binmap.Map {
	m := binmap.New(source, data)
	m.Metadata.DefaultFormat = uint8(def)
	for r := range l.Records() {
		if r.Format() == def && !r.LineBreak() && r.Comment() == "" {
			continue
		}
		m.Add(binmap.Entry{
			Offset:    uint64(r.Offset()),
			Format:    uint8(r.Format()),
			LineBreak: r.LineBreak(),
			Comment:   r.Comment(),
		})
	}
	return m
}

// Apply writes the entries of m onto l. Entries past the end of l are
// skipped and counted.
func Apply(m *binmap.Map, l *binlist.List) (skipped int) {
	l.Lock()
	defer l.Unlock()
	for _, e := range m.Entries {
		if !l.Annotate(int(e.Offset), binlist.Format(e.Format), e.LineBreak, e.Comment) {
			skipped++
		}
	}
	return skipped
}

func (s *Session) SaveMap(path string) error {
	if s.path == "" {
		return ErrNoFile
	}
	m := Capture(s.list, filepath.Base(s.path), s.data, s.cfg.Format())
	opts := binmap.SaveOptions{
		Compression: s.cfg.Map.Compression,
		Encryption: binmap.EncryptionOptions{
			Enabled:  s.cfg.Map.Password != "",
			Password: s.cfg.Map.Password,
		},
	}
	if err := binmap.SaveWithOptions(path, m, opts); err != nil {
		return fmt.Errorf("save map %s: %w", path, err)
	}
	s.log.Info().Str("map", path).Int("entries", len(m.Entries)).Msg("map saved")
	return nil
}

// LoadMap reads the map at path and applies it to the open file. The map
// must have been made for the same bytes.
func (s *Session) LoadMap(path string) error {
	if s.path == "" {
		return ErrNoFile
	}
	m, err := binmap.LoadWithOptions(path, binmap.LoadOptions{Password: s.cfg.Map.Password})
	if err != nil {
		return fmt.Errorf("load map %s: %w", path, err)
	}
	if !m.Matches(s.data) {
		return fmt.Errorf("load map %s: %w", path, binmap.ErrSourceMismatch)
	}
	s.load(s.data, binlist.Format(m.Metadata.DefaultFormat))
	if skipped := Apply(m, s.list); skipped > 0 {
		s.log.Warn().Int("skipped", skipped).Str("map", path).Msg("map entries skipped")
	}
	return nil
}

func (s *Session) openWithPicker() {
	if s.picker == nil {
		return
	}
	path, err := s.picker.OpenFile()
	if errors.Is(err, ErrCancelled) {
		return
	}
	if err == nil {
		err = s.OpenFile(path)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("open failed")
		s.setStatus("Open failed: "+err.Error(), statusDefault)
	}
}

func (s *Session) saveCurrentMap() {
	if s.path == "" {
		s.setStatus("No file open.", time.Second)
		return
	}
	mp := MapPath(s.path)
	if err := s.SaveMap(mp); err != nil {
		s.log.Error().Err(err).Msg("save failed")
		s.setStatus("Save failed: "+err.Error(), statusDefault)
		return
	}
	s.setStatus("Saved "+filepath.Base(mp)+".", statusDefault)
}
