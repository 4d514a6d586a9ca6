package mimetype

import (
	"encoding/binary"
	"encoding/gob"
	"io"
)

// cacheSerialVersion is bumped whenever the wire layout of the cache DTOs
// below changes incompatibly. CacheAppVersion is informational only (it
// travels with the cache so a reader can log what built it) and does not by
// itself gate acceptance — only cacheSerialVersion does, per §6.
const (
	cacheSerialVersion int32  = 1
	CacheAppVersion    string = "1.0.0"
)

// cacheMimeType, cacheGlob, cacheMagic and cacheMagicMatcher are small
// exported mirrors of the domain types, used only as the wire shape for the
// gob-encoded binary cache body (§6): the domain types keep private fields
// for immutability, and gob requires exported fields to encode anything.
type cacheMimeType struct {
	Name            string
	Descriptions    map[string]string
	NamespaceURI    string
	LocalName       string
	Acronym         string
	ExpandedAcronym string
	GenericIcon     string
	Aliases         []string
	Globs           []cacheGlob
	Magics          []cacheMagic
	SuperTypes      []string
}

type cacheGlob struct {
	Weight        int32
	CaseSensitive bool
	Pattern       string
}

type cacheMagic struct {
	Priority int32
	Matchers []cacheMagicMatcher
}

type cacheMagicMatcher struct {
	Type        int32
	OffsetBegin int32
	OffsetEnd   int32
	Value       []byte
	Mask        []byte
	SubMatchers []cacheMagicMatcher
}

func mimeTypeToCache(t *MimeType) cacheMimeType {
	c := cacheMimeType{
		Name:            t.Name,
		Descriptions:    t.Descriptions,
		NamespaceURI:    t.NamespaceURI,
		LocalName:       t.LocalName,
		Acronym:         t.Acronym,
		ExpandedAcronym: t.ExpandedAcronym,
		GenericIcon:     t.GenericIcon,
		Aliases:         t.Aliases,
		SuperTypes:      t.SuperTypes,
	}
	for _, g := range t.Globs {
		c.Globs = append(c.Globs, globToCache(g))
	}
	for _, m := range t.Magics {
		c.Magics = append(c.Magics, magicToCache(m))
	}
	return c
}

func globToCache(g *Glob) cacheGlob {
	return cacheGlob{Weight: int32(g.Weight()), CaseSensitive: g.CaseSensitive(), Pattern: g.Pattern()}
}

func magicToCache(m *Magic) cacheMagic {
	c := cacheMagic{Priority: int32(m.Priority())}
	for _, mm := range m.Matchers() {
		c.Matchers = append(c.Matchers, matcherToCache(mm))
	}
	return c
}

func matcherToCache(m *MagicMatcher) cacheMagicMatcher {
	c := cacheMagicMatcher{
		Type:        int32(m.Type()),
		OffsetBegin: int32(m.OffsetBegin()),
		OffsetEnd:   int32(m.OffsetEnd()),
		Value:       m.Value(),
		Mask:        m.Mask(),
	}
	for _, sub := range m.SubMatchers() {
		c.SubMatchers = append(c.SubMatchers, matcherToCache(sub))
	}
	return c
}

func mimeTypeFromCache(c cacheMimeType) (*MimeType, error) {
	t := &MimeType{
		Name:            c.Name,
		Descriptions:    c.Descriptions,
		NamespaceURI:    c.NamespaceURI,
		LocalName:       c.LocalName,
		Acronym:         c.Acronym,
		ExpandedAcronym: c.ExpandedAcronym,
		GenericIcon:     c.GenericIcon,
		Aliases:         c.Aliases,
		SuperTypes:      c.SuperTypes,
	}
	if t.Descriptions == nil {
		t.Descriptions = make(map[string]string)
	}
	for _, g := range c.Globs {
		t.Globs = append(t.Globs, NewGlob(g.Pattern, int(g.Weight), g.CaseSensitive))
	}
	for _, m := range c.Magics {
		magic, err := magicFromCache(m)
		if err != nil {
			return nil, err
		}
		t.Magics = append(t.Magics, magic)
	}
	return t, nil
}

func magicFromCache(c cacheMagic) (*Magic, error) {
	matchers := make([]*MagicMatcher, 0, len(c.Matchers))
	for _, cm := range c.Matchers {
		m, err := matcherFromCache(cm)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	return NewMagic(matchers, int(c.Priority)), nil
}

func matcherFromCache(c cacheMagicMatcher) (*MagicMatcher, error) {
	if c.Type < 0 || int(c.Type) >= len(matcherTypeNames) {
		return nil, &InvalidCacheError{Reason: "magic matcher type index out of range"}
	}
	if c.OffsetBegin < 0 || c.OffsetEnd < c.OffsetBegin {
		return nil, &InvalidCacheError{Reason: "magic matcher offset range invalid"}
	}
	children := make([]*MagicMatcher, 0, len(c.SubMatchers))
	for _, sub := range c.SubMatchers {
		cm, err := matcherFromCache(sub)
		if err != nil {
			return nil, err
		}
		children = append(children, cm)
	}
	return NewMagicMatcher(MatcherType(c.Type), int(c.OffsetBegin), int(c.OffsetEnd), c.Value, c.Mask, children), nil
}

// WriteCache serializes repo's MimeTypes to w as a versioned binary cache:
// a fixed signature header (serial version + app version) followed by a
// gob-encoded body.
func WriteCache(w io.Writer, repo *Repository) error {
	if err := binary.Write(w, binary.BigEndian, cacheSerialVersion); err != nil {
		return &IoFailureError{Op: "write cache signature", Err: err}
	}
	if err := writeLengthPrefixedString(w, CacheAppVersion); err != nil {
		return &IoFailureError{Op: "write cache app version", Err: err}
	}

	dtos := make([]cacheMimeType, 0, len(repo.MimeTypes()))
	for _, t := range repo.MimeTypes() {
		dtos = append(dtos, mimeTypeToCache(t))
	}
	if err := gob.NewEncoder(w).Encode(dtos); err != nil {
		return &IoFailureError{Op: "encode cache body", Err: err}
	}
	return nil
}

// ReadCache deserializes a binary cache previously written by WriteCache. A
// signature mismatch or a truncated/malformed body is reported as an
// InvalidCacheError, which callers should treat as "discard and rebuild
// from the XML database" per §7.
func ReadCache(r io.Reader) (*Repository, error) {
	var serialVersion int32
	if err := binary.Read(r, binary.BigEndian, &serialVersion); err != nil {
		return nil, &InvalidCacheError{Reason: "premature end reading cache signature"}
	}
	if serialVersion != cacheSerialVersion {
		return nil, &InvalidCacheError{Reason: "cache signature version mismatch"}
	}
	if _, err := readLengthPrefixedString(r); err != nil {
		return nil, &InvalidCacheError{Reason: "premature end reading cache app version"}
	}

	var dtos []cacheMimeType
	if err := gob.NewDecoder(r).Decode(&dtos); err != nil {
		return nil, &InvalidCacheError{Reason: "malformed cache body: " + err.Error()}
	}
	mimeTypes := make([]*MimeType, 0, len(dtos))
	for _, dto := range dtos {
		t, err := mimeTypeFromCache(dto)
		if err != nil {
			return nil, err
		}
		mimeTypes = append(mimeTypes, t)
	}
	return NewRepository(mimeTypes), nil
}

func writeLengthPrefixedString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.BigEndian, int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readLengthPrefixedString(r io.Reader) (string, error) {
	var n int32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	if n < 0 {
		return "", &InvalidCacheError{Reason: "negative string length in cache signature"}
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
