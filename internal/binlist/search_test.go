package binlist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusLog struct {
	text []string
	dur  []time.Duration
}

func (s *statusLog) record(text string, d time.Duration) {
	s.text = append(s.text, text)
	s.dur = append(s.dur, d)
}

func (s *statusLog) last() string {
	if len(s.text) == 0 {
		return ""
	}
	return s.text[len(s.text)-1]
}

func TestSearchFindsAndResumes(t *testing.T) {
	status := &statusLog{}
	l := New(Options{Geometry: testGeometry(), OnStatus: status.record})
	l.AddBytes([]byte{0x10, 0x41, 0x42, 0x99}, FormatHex)

	assert.Equal(t, 1, l.Search([]byte{0x41, 0x42}, 0))
	assert.Equal(t, 1, l.LastMatch())
	assert.Equal(t, 1, l.Start(), "match scrolls into view")
	assert.Empty(t, status.text)

	assert.Equal(t, NotFound, l.Search([]byte{0x41, 0x42}, 2))
	assert.Equal(t, "Search reached the end.", status.last())
	assert.Equal(t, time.Second, status.dur[len(status.dur)-1])
}

func TestSearchNoMatchReportsQuery(t *testing.T) {
	status := &statusLog{}
	l := New(Options{Geometry: testGeometry(), OnStatus: status.record})
	l.AddBytes([]byte{0x10, 0x41, 0x42, 0x99}, FormatHex)

	assert.Equal(t, NotFound, l.Search([]byte{0xAB, 0xCD}, 0))
	assert.Equal(t, "No match found for query 'AB CD '.", status.last())
	assert.Equal(t, 2*time.Second, status.dur[len(status.dur)-1])
}

func TestSearchMatchAtEndOfStore(t *testing.T) {
	l := New(Options{Geometry: testGeometry()})
	l.AddBytes([]byte{1, 2, 3, 4}, FormatHex)

	assert.Equal(t, 2, l.Search([]byte{3, 4}, 0))
	assert.Equal(t, 0, l.Search([]byte{1, 2, 3, 4}, 0))
}

func TestSearchDoesNotBacktrack(t *testing.T) {
	l := New(Options{Geometry: testGeometry()})
	l.AddBytes([]byte{1, 1, 1, 2}, FormatHex)

	assert.Equal(t, NotFound, l.Search([]byte{1, 1, 2}, 0))
	assert.Equal(t, 1, l.Search([]byte{1, 1, 2}, 1))
}

func TestSearchEmptyQueryIsInert(t *testing.T) {
	status := &statusLog{}
	l := New(Options{Geometry: testGeometry(), OnStatus: status.record})
	l.AddBytes([]byte{1, 2, 3}, FormatHex)

	assert.Equal(t, NotFound, l.Search(nil, 0))
	assert.Nil(t, l.LastQuery())
	assert.Empty(t, status.text)
}

func TestFindNextWalksMatches(t *testing.T) {
	status := &statusLog{}
	l := New(Options{Geometry: testGeometry(), OnStatus: status.record})
	l.AddBytes([]byte{7, 0xAA, 7, 0xAA, 0, 0xAA}, FormatHex)

	assert.Equal(t, NotFound, l.FindNext(), "no query yet")

	require.Equal(t, 1, l.Search([]byte{0xAA}, 0))
	assert.Equal(t, 3, l.FindNext())
	assert.Equal(t, 5, l.FindNext())
	assert.Equal(t, NotFound, l.FindNext())
	assert.Equal(t, "Search reached the end.", status.last())
	assert.Equal(t, 5, l.LastMatch(), "cursor stays on the last hit")
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		in      string
		want    []byte
		wantErr bool
	}{
		{in: "41 42", want: []byte{0x41, 0x42}},
		{in: "4142", want: []byte{0x41, 0x42}},
		{in: " 0x41ff ", want: []byte{0x41, 0xFF}},
		{in: "", wantErr: true},
		{in: "414", wantErr: true},
		{in: "zz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuery(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatQuery(t *testing.T) {
	assert.Equal(t, "41 42 ", FormatQuery([]byte{0x41, 0x42}))
	assert.Equal(t, "", FormatQuery(nil))
}
