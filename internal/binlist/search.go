package binlist

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// NotFound is returned by Search when the query does not occur.
const NotFound = -1

var ErrEmptyQuery = errors.New("binlist: empty query")

type searchCursor struct {
	query []byte
	last  int
}

// scan looks for query in store starting at from. A mismatch resets the run
// without re-testing the current byte, so a pattern that overlaps its own
// prefix can be missed (query 01 01 02 is not found in 01 01 01 02).
func scan(store *Store, query []byte, from int) int {
	if len(query) == 0 {
		return NotFound
	}
	from = max(from, 0)
	run := 0
	for i := from; i < store.Len(); i++ {
		if store.At(i).value == query[run] {
			run++
			if run == len(query) {
				return i - len(query) + 1
			}
			continue
		}
		run = 0
	}
	return NotFound
}

// FormatQuery renders a query as the status line shows it, "41 42 ".
func FormatQuery(query []byte) string {
	var sb strings.Builder
	for _, b := range query {
		fmt.Fprintf(&sb, "%02X ", b)
	}
	return sb.String()
}

// ParseQuery accepts hex pairs with optional whitespace, "41 42" or "4142".
func ParseQuery(text string) ([]byte, error) {
	compact := strings.Join(strings.Fields(text), "")
	compact = strings.TrimPrefix(strings.TrimPrefix(compact, "0x"), "0X")
	if compact == "" {
		return nil, ErrEmptyQuery
	}
	if len(compact)%2 != 0 {
		return nil, fmt.Errorf("parse query %q: odd number of hex digits", text)
	}
	out, err := hex.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("parse query %q: %w", text, err)
	}
	return out, nil
}
