// Package binmap reads and writes annotation maps: the display format, line
// breaks and comments a user attached to offsets of a binary file. The file
// bytes themselves are never stored, only their size and checksum.
package binmap

import (
	"bytes"
	"cmp"
	"compress/zlib"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"
)

const (
	MagicString      = "BINMAP-ANNOTATIONS"
	VersionV1        = uint16(1)
	FlagRandomAccess = uint16(1 << 0)

	// MaxFormat is the highest format code an entry may carry.
	MaxFormat = uint8(3)
	// EntriesPerBlock caps the entries stored in one annotation block.
	EntriesPerBlock = 1024

	magicLen    = len(MagicString)
	headerSize  = magicLen + 2 + 2 + 8 + 4
	tocEntSize  = 8 + 1 + 8 + 4 + 4
	metaBlockID = uint64(0)

	secureMagic      = "BINMAP-SECURE"
	secureVersionV1  = uint16(1)
	secureFlagComp   = uint16(1 << 0)
	secureFlagEnc    = uint16(1 << 1)
	secureSaltSize   = 16
	secureNonceSize  = 12
	secureHeaderSize = len(secureMagic) + 2 + 2 + secureSaltSize + secureNonceSize + 8
	kdfIterations    = 200000
	// deflateMaxRatio is the largest expansion a deflate stream allows.
	deflateMaxRatio = 1032
)

type EncryptionOptions struct {
	Enabled  bool
	Password string
}

type SaveOptions struct {
	Compression bool
	Encryption  EncryptionOptions
}

type LoadOptions struct {
	Password string
}

type EnvelopeInfo struct {
	Wrapped     bool
	Compressed  bool
	Encrypted   bool
	EnvelopeVer uint16
}

type BlockKind uint8

const (
	BlockKindMetadata    BlockKind = 0
	BlockKindAnnotations BlockKind = 1
)

type Map struct {
	Metadata Metadata
	Entries  []Entry
}

type Metadata struct {
	Source       string
	SourceSize   uint64
	SourceCRC32  uint32
	CreatedUnix  int64
	ModifiedUnix int64
	// DefaultFormat is the format of offsets without an entry.
	DefaultFormat uint8
}

// Entry annotates one offset. Offsets are unique and kept ascending.
type Entry struct {
	Offset    uint64
	Format    uint8
	LineBreak bool
	Comment   string
}

type tocEntry struct {
	ID     uint64
	Kind   BlockKind
	Offset uint64
	Length uint32
	CRC32  uint32
}

func (e tocEntry) end() uint64 { return e.Offset + uint64(e.Length) }

func (e tocEntry) appendTo(dst []byte) []byte {
	dst = appendU64(dst, e.ID)
	dst = append(dst, byte(e.Kind))
	dst = appendU64(dst, e.Offset)
	dst = appendU32(dst, e.Length)
	return appendU32(dst, e.CRC32)
}

func readTOCEntry(b []byte) tocEntry {
	le := binary.LittleEndian
	return tocEntry{
		ID:     le.Uint64(b),
		Kind:   BlockKind(b[8]),
		Offset: le.Uint64(b[9:]),
		Length: le.Uint32(b[17:]),
		CRC32:  le.Uint32(b[21:]),
	}
}

// block is an encoded payload waiting for its TOC entry.
type block struct {
	id      uint64
	kind    BlockKind
	payload []byte
}

var (
	ErrInvalidMagic      = errors.New("binmap: invalid magic")
	ErrUnsupportedVer    = errors.New("binmap: unsupported version")
	ErrMissingRandomFlag = errors.New("binmap: random-access flag required")
	ErrInvalidTOC        = errors.New("binmap: invalid toc")
	ErrInvalidBlockRange = errors.New("binmap: invalid block range")
	ErrOverlappingBlocks = errors.New("binmap: overlapping block ranges")
	ErrPasswordRequired  = errors.New("binmap: password required")
	ErrInvalidPassword   = errors.New("binmap: invalid password")
	ErrInvalidSecureFile = errors.New("binmap: invalid secure file")
	ErrSourceMismatch    = errors.New("binmap: map does not match source")
	ErrMapTooLarge       = errors.New("binmap: decompressed map too large")
)

// maxDecodedSize bounds a decompressed map payload.
var maxDecodedSize int64 = 256 << 20

// New returns an empty map describing data read from source.
func New(source string, data []byte) *Map {
	now := time.Now().Unix()
	return &Map{Metadata: Metadata{
		Source:       source,
		SourceSize:   uint64(len(data)),
		SourceCRC32:  crc32.ChecksumIEEE(data),
		CreatedUnix:  now,
		ModifiedUnix: now,
	}}
}

// Matches reports whether data is the file the map was made for.
func (m *Map) Matches(data []byte) bool {
	return m.Metadata.SourceSize == uint64(len(data)) && m.Metadata.SourceCRC32 == crc32.ChecksumIEEE(data)
}

// Add appends or replaces the entry for e.Offset, keeping entries ascending.
func (m *Map) Add(e Entry) {
	i, found := slices.BinarySearchFunc(m.Entries, e.Offset, func(x Entry, off uint64) int {
		return cmp.Compare(x.Offset, off)
	})
	if found {
		m.Entries[i] = e
		return
	}
	m.Entries = slices.Insert(m.Entries, i, e)
}

func Save(path string, m *Map) error {
	return SaveWithOptions(path, m, SaveOptions{})
}

func SaveWithOptions(path string, m *Map, opts SaveOptions) error {
	if m == nil {
		return errors.New("binmap: map is nil")
	}
	now := time.Now().Unix()
	if m.Metadata.CreatedUnix == 0 {
		m.Metadata.CreatedUnix = now
	}
	m.Metadata.ModifiedUnix = now

	if err := Validate(m); err != nil {
		return err
	}

	blob, err := encodeMap(m)
	if err != nil {
		return err
	}

	if opts.Encryption.Enabled && strings.TrimSpace(opts.Encryption.Password) == "" {
		return ErrPasswordRequired
	}

	if opts.Compression {
		blob, err = compressBytes(blob)
		if err != nil {
			return fmt.Errorf("compress map: %w", err)
		}
	}

	if opts.Compression || opts.Encryption.Enabled {
		blob, err = encodeSecureEnvelope(blob, opts)
		if err != nil {
			return err
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func Load(path string) (*Map, error) {
	return LoadWithOptions(path, LoadOptions{})
}

func LoadWithOptions(path string, opts LoadOptions) (*Map, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isSecureEnvelope(b) {
		b, err = decodeSecureEnvelope(b, opts)
		if err != nil {
			return nil, err
		}
	}
	m, err := decodeMap(b)
	if err != nil {
		return nil, err
	}
	if err := Validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

func InspectEnvelope(path string) (EnvelopeInfo, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return EnvelopeInfo{}, err
	}
	return inspectEnvelopeBytes(b)
}

func Validate(m *Map) error {
	if m == nil {
		return errors.New("binmap: map is nil")
	}
	if !utf8.ValidString(m.Metadata.Source) {
		return errors.New("binmap: source name must be valid UTF-8")
	}
	if m.Metadata.DefaultFormat > MaxFormat {
		return fmt.Errorf("binmap: default format %d is invalid", m.Metadata.DefaultFormat)
	}

	for i, e := range m.Entries {
		if i > 0 && e.Offset <= m.Entries[i-1].Offset {
			return fmt.Errorf("binmap: entry[%d] offset %d is not ascending", i, e.Offset)
		}
		if m.Metadata.SourceSize > 0 && e.Offset >= m.Metadata.SourceSize {
			return fmt.Errorf("binmap: entry offset %d outside source size %d", e.Offset, m.Metadata.SourceSize)
		}
		if e.Format > MaxFormat {
			return fmt.Errorf("binmap: entry offset %d has invalid format %d", e.Offset, e.Format)
		}
		if !utf8.ValidString(e.Comment) {
			return fmt.Errorf("binmap: entry offset %d comment is not valid UTF-8", e.Offset)
		}
	}
	return nil
}

func encodeMap(m *Map) ([]byte, error) {
	blocks := []block{{id: metaBlockID, kind: BlockKindMetadata, payload: encodeMetadata(m.Metadata)}}
	for start := 0; start < len(m.Entries); start += EntriesPerBlock {
		end := min(start+EntriesPerBlock, len(m.Entries))
		blocks = append(blocks, block{
			id:      uint64(len(blocks)),
			kind:    BlockKindAnnotations,
			payload: encodeAnnotations(m.Entries[start:end]),
		})
	}

	out := make([]byte, 0, headerSize+len(blocks)*tocEntSize)
	out = append(out, MagicString...)
	out = appendU16(out, VersionV1)
	out = appendU16(out, FlagRandomAccess)
	out = appendU64(out, uint64(headerSize))
	out = appendU32(out, uint32(len(blocks)))

	next := uint64(headerSize + len(blocks)*tocEntSize)
	for _, b := range blocks {
		e := tocEntry{
			ID:     b.id,
			Kind:   b.kind,
			Offset: next,
			Length: uint32(len(b.payload)),
			CRC32:  crc32.ChecksumIEEE(b.payload),
		}
		out = e.appendTo(out)
		next = e.end()
	}
	for _, b := range blocks {
		out = append(out, b.payload...)
	}
	return out, nil
}

func decodeMap(blob []byte) (*Map, error) {
	if len(blob) < headerSize || !bytes.HasPrefix(blob, []byte(MagicString)) {
		return nil, ErrInvalidMagic
	}
	le := binary.LittleEndian
	h := blob[magicLen:headerSize]
	if v := le.Uint16(h); v != VersionV1 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVer, v)
	}
	if le.Uint16(h[2:])&FlagRandomAccess == 0 {
		return nil, ErrMissingRandomFlag
	}

	tocOffset, tocCount := le.Uint64(h[4:]), uint64(le.Uint32(h[12:]))
	size := uint64(len(blob))
	if tocOffset > size || tocCount*tocEntSize > size-tocOffset {
		return nil, ErrInvalidTOC
	}
	toc := make([]tocEntry, tocCount)
	for i := range toc {
		toc[i] = readTOCEntry(blob[tocOffset+uint64(i)*tocEntSize:])
	}
	if err := checkBlockRanges(toc, size); err != nil {
		return nil, err
	}

	m := &Map{}
	sawMeta := false
	for _, e := range toc {
		payload := blob[e.Offset:e.end()]
		if crc32.ChecksumIEEE(payload) != e.CRC32 {
			return nil, fmt.Errorf("binmap: crc mismatch for block %d", e.ID)
		}

		switch e.Kind {
		case BlockKindMetadata:
			meta, err := decodeMetadata(payload)
			if err != nil {
				return nil, err
			}
			m.Metadata = meta
			sawMeta = true
		case BlockKindAnnotations:
			chunk, err := decodeAnnotations(payload)
			if err != nil {
				return nil, fmt.Errorf("binmap: block %d: %w", e.ID, err)
			}
			m.Entries = append(m.Entries, chunk...)
		default:
			// Unknown kinds stay skippable through the TOC.
		}
	}
	if !sawMeta {
		return nil, fmt.Errorf("%w: missing metadata block", ErrInvalidTOC)
	}

	slices.SortStableFunc(m.Entries, func(a, b Entry) int { return cmp.Compare(a.Offset, b.Offset) })
	return m, nil
}

// checkBlockRanges requires every block to lie inside the blob and no two
// blocks to share bytes.
func checkBlockRanges(toc []tocEntry, size uint64) error {
	sorted := slices.Clone(toc)
	slices.SortFunc(sorted, func(a, b tocEntry) int { return cmp.Compare(a.Offset, b.Offset) })
	for i, e := range sorted {
		if e.Offset > size || uint64(e.Length) > size-e.Offset {
			return ErrInvalidBlockRange
		}
		if i > 0 && e.Offset < sorted[i-1].end() {
			return ErrOverlappingBlocks
		}
	}
	return nil
}

func encodeMetadata(m Metadata) []byte {
	out := make([]byte, 0, 48+len(m.Source))
	out = appendString(out, m.Source)
	out = appendU64(out, m.SourceSize)
	out = appendU32(out, m.SourceCRC32)
	out = appendI64(out, m.CreatedUnix)
	out = appendI64(out, m.ModifiedUnix)
	out = append(out, m.DefaultFormat)
	return out
}

func decodeMetadata(b []byte) (Metadata, error) {
	var m Metadata
	var ok bool
	if m.Source, b, ok = readString(b); !ok {
		return m, errors.New("binmap: malformed metadata source")
	}
	if len(b) < 8+4+8+8 {
		return m, errors.New("binmap: malformed metadata fields")
	}
	m.SourceSize = binary.LittleEndian.Uint64(b[0:8])
	m.SourceCRC32 = binary.LittleEndian.Uint32(b[8:12])
	m.CreatedUnix = int64(binary.LittleEndian.Uint64(b[12:20]))
	m.ModifiedUnix = int64(binary.LittleEndian.Uint64(b[20:28]))
	if b = b[28:]; len(b) > 0 {
		m.DefaultFormat = b[0]
	}
	return m, nil
}

func encodeAnnotations(entries []Entry) []byte {
	out := make([]byte, 0, 4+len(entries)*16)
	out = appendU32(out, uint32(len(entries)))
	for _, e := range entries {
		out = appendU64(out, e.Offset)
		out = append(out, e.Format)
		flags := byte(0)
		if e.LineBreak {
			flags |= 1
		}
		out = append(out, flags)
		out = appendString(out, e.Comment)
	}
	return out
}

func decodeAnnotations(b []byte) ([]Entry, error) {
	if len(b) < 4 {
		return nil, errors.New("malformed annotation block")
	}
	count := int(binary.LittleEndian.Uint32(b[:4]))
	b = b[4:]
	if count > EntriesPerBlock {
		return nil, fmt.Errorf("annotation count %d exceeds %d", count, EntriesPerBlock)
	}
	out := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		if len(b) < 10 {
			return nil, fmt.Errorf("malformed annotation entry %d", i)
		}
		e := Entry{
			Offset:    binary.LittleEndian.Uint64(b[:8]),
			Format:    b[8],
			LineBreak: b[9]&1 != 0,
		}
		var ok bool
		if e.Comment, b, ok = readString(b[10:]); !ok {
			return nil, fmt.Errorf("malformed comment in entry %d", i)
		}
		out = append(out, e)
	}
	return out, nil
}

func appendString(dst []byte, s string) []byte {
	dst = appendU32(dst, uint32(len(s)))
	return append(dst, s...)
}

func readString(src []byte) (string, []byte, bool) {
	if len(src) < 4 {
		return "", nil, false
	}
	ln := int(binary.LittleEndian.Uint32(src[:4]))
	src = src[4:]
	if len(src) < ln {
		return "", nil, false
	}
	return string(src[:ln]), src[ln:], true
}

func appendU16(dst []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(dst, v)
}

func appendU32(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

func appendU64(dst []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, v)
}

func appendI64(dst []byte, v int64) []byte {
	return appendU64(dst, uint64(v))
}

// envelope is the header of a wrapped map: magic, version, flags, KDF salt,
// GCM nonce and payload length, followed by the payload.
type envelope struct {
	version uint16
	flags   uint16
	salt    [secureSaltSize]byte
	nonce   [secureNonceSize]byte
	length  uint64
}

func (e envelope) info() EnvelopeInfo {
	return EnvelopeInfo{
		Wrapped:     true,
		Compressed:  e.flags&secureFlagComp != 0,
		Encrypted:   e.flags&secureFlagEnc != 0,
		EnvelopeVer: e.version,
	}
}

func (e envelope) appendTo(dst []byte) []byte {
	dst = append(dst, secureMagic...)
	dst = appendU16(dst, e.version)
	dst = appendU16(dst, e.flags)
	dst = append(dst, e.salt[:]...)
	dst = append(dst, e.nonce[:]...)
	return appendU64(dst, e.length)
}

func isSecureEnvelope(b []byte) bool {
	return bytes.HasPrefix(b, []byte(secureMagic))
}

// parseEnvelope splits b into its envelope header and payload.
func parseEnvelope(b []byte) (envelope, []byte, error) {
	var e envelope
	if !isSecureEnvelope(b) || len(b) < secureHeaderSize {
		return e, nil, ErrInvalidSecureFile
	}
	h := b[len(secureMagic):secureHeaderSize]
	e.version = binary.LittleEndian.Uint16(h[0:2])
	if e.version != secureVersionV1 {
		return e, nil, fmt.Errorf("%w: secure envelope version %d", ErrUnsupportedVer, e.version)
	}
	e.flags = binary.LittleEndian.Uint16(h[2:4])
	h = h[4:]
	copy(e.salt[:], h[:secureSaltSize])
	copy(e.nonce[:], h[secureSaltSize:secureSaltSize+secureNonceSize])
	e.length = binary.LittleEndian.Uint64(h[secureSaltSize+secureNonceSize:])

	payload := b[secureHeaderSize:]
	if uint64(len(payload)) != e.length {
		return e, nil, ErrInvalidSecureFile
	}
	return e, payload, nil
}

func inspectEnvelopeBytes(b []byte) (EnvelopeInfo, error) {
	if !isSecureEnvelope(b) {
		return EnvelopeInfo{}, nil
	}
	e, _, err := parseEnvelope(b)
	if err != nil {
		return EnvelopeInfo{}, err
	}
	return e.info(), nil
}

func deriveGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, kdfIterations, 32, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encodeSecureEnvelope(payload []byte, opts SaveOptions) ([]byte, error) {
	e := envelope{version: secureVersionV1}
	if opts.Compression {
		e.flags |= secureFlagComp
	}
	if opts.Encryption.Enabled {
		e.flags |= secureFlagEnc
		if _, err := io.ReadFull(rand.Reader, e.salt[:]); err != nil {
			return nil, fmt.Errorf("read salt: %w", err)
		}
		if _, err := io.ReadFull(rand.Reader, e.nonce[:]); err != nil {
			return nil, fmt.Errorf("read nonce: %w", err)
		}
		gcm, err := deriveGCM(opts.Encryption.Password, e.salt[:])
		if err != nil {
			return nil, err
		}
		payload = gcm.Seal(nil, e.nonce[:], payload, nil)
	}
	e.length = uint64(len(payload))

	out := e.appendTo(make([]byte, 0, secureHeaderSize+len(payload)))
	return append(out, payload...), nil
}

func decodeSecureEnvelope(b []byte, opts LoadOptions) ([]byte, error) {
	e, payload, err := parseEnvelope(b)
	if err != nil {
		return nil, err
	}
	info := e.info()

	if info.Encrypted {
		if strings.TrimSpace(opts.Password) == "" {
			return nil, ErrPasswordRequired
		}
		gcm, err := deriveGCM(opts.Password, e.salt[:])
		if err != nil {
			return nil, err
		}
		if payload, err = gcm.Open(nil, e.nonce[:], payload, nil); err != nil {
			return nil, ErrInvalidPassword
		}
	}

	if info.Compressed {
		if payload, err = decompressBytes(payload); err != nil {
			return nil, fmt.Errorf("decompress map: %w", err)
		}
	}
	return payload, nil
}

func compressBytes(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(in); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressBytes(in []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	limit := min(int64(len(in))*deflateMaxRatio, maxDecodedSize)
	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, ErrMapTooLarge
	}
	return out, nil
}
