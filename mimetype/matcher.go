package mimetype

import "encoding/binary"

// MatcherType identifies the wire width and byte-order interpretation of a
// MagicMatcher's value. Numeric values are always stored in big-endian
// canonical form regardless of type; the type only governs how the
// comparison bytes are read out of the test buffer at match time.
type MatcherType int

// The matcher type table. Index order matters: it is also the wire-format
// index used by the binary cache codec (§6 binary cache format).
const (
	TypeUnknown MatcherType = iota
	TypeString
	TypeHost16
	TypeHost32
	TypeBig16
	TypeBig32
	TypeLittle16
	TypeLittle32
	TypeByte
)

var matcherTypeNames = [...]string{
	"unknown", "string", "host16", "host32", "big16", "big32", "little16", "little32", "byte",
}

// String renders the matcher type the way the freedesktop XML spells it.
func (t MatcherType) String() string {
	if t < 0 || int(t) >= len(matcherTypeNames) {
		return "unknown"
	}
	return matcherTypeNames[t]
}

// ParseMatcherType maps a freedesktop match/@type attribute value to a
// MatcherType, reporting ok=false for anything unrecognized.
func ParseMatcherType(s string) (MatcherType, bool) {
	for i, name := range matcherTypeNames {
		if i != int(TypeUnknown) && name == s {
			return MatcherType(i), true
		}
	}
	return TypeUnknown, false
}

// hostIsBigEndian is evaluated once; host16/host32 reduce to the big-endian
// or little-endian branch depending on it.
var hostIsBigEndian = func() bool {
	buf := make([]byte, 2)
	binary.NativeEndian.PutUint16(buf, 0x0102)
	return buf[0] == 0x01
}()

// MagicMatcher is a single node in a magic pattern tree: a typed byte
// pattern tested at every offset in [offsetBegin, offsetEnd], optionally
// masked, with an ordered list of child matchers that refine a match.
//
// A node matches iff its own test passes AND (it has no children OR any
// child matches). maxReach is computed once at construction and cached.
type MagicMatcher struct {
	typ         MatcherType
	offsetBegin int
	offsetEnd   int
	value       []byte
	mask        []byte
	subMatchers []*MagicMatcher
	maxReach    int
}

// NewMagicMatcher builds a MagicMatcher and computes its maxReach.
func NewMagicMatcher(typ MatcherType, offsetBegin, offsetEnd int, value, mask []byte, subMatchers []*MagicMatcher) *MagicMatcher {
	m := &MagicMatcher{
		typ:         typ,
		offsetBegin: offsetBegin,
		offsetEnd:   offsetEnd,
		value:       value,
		mask:        mask,
		subMatchers: subMatchers,
	}
	m.maxReach = offsetEnd + len(value)
	for _, c := range subMatchers {
		if c.maxReach > m.maxReach {
			m.maxReach = c.maxReach
		}
	}
	return m
}

// Type, OffsetBegin, OffsetEnd, Value, Mask and SubMatchers expose the
// matcher's immutable fields.
func (m *MagicMatcher) Type() MatcherType            { return m.typ }
func (m *MagicMatcher) OffsetBegin() int             { return m.offsetBegin }
func (m *MagicMatcher) OffsetEnd() int               { return m.offsetEnd }
func (m *MagicMatcher) Value() []byte                { return m.value }
func (m *MagicMatcher) Mask() []byte                 { return m.mask }
func (m *MagicMatcher) SubMatchers() []*MagicMatcher { return m.subMatchers }

// MaxReach returns offsetEnd+len(value) maxed across the whole subtree; it
// is the number of leading bytes a caller must supply for this matcher (and
// everything below it) to be fully evaluable.
func (m *MagicMatcher) MaxReach() int { return m.maxReach }

// Matches reports whether this matcher (and, if required, one of its
// children) matches the first n bytes of buffer.
func (m *MagicMatcher) Matches(buffer []byte, n int) bool {
	if !m.ownTestMatches(buffer, n) {
		return false
	}
	if len(m.subMatchers) == 0 {
		return true
	}
	for _, c := range m.subMatchers {
		if c.Matches(buffer, n) {
			return true
		}
	}
	return false
}

func (m *MagicMatcher) ownTestMatches(buffer []byte, n int) bool {
	switch m.typ {
	case TypeString, TypeByte:
		return m.matchesBytes(buffer, n, 1)
	case TypeBig16, TypeHost16:
		if m.typ == TypeHost16 && !hostIsBigEndian {
			return m.matchesReversed(buffer, n, 2)
		}
		return m.matchesBytes(buffer, n, 2)
	case TypeBig32, TypeHost32:
		if m.typ == TypeHost32 && !hostIsBigEndian {
			return m.matchesReversed(buffer, n, 4)
		}
		return m.matchesBytes(buffer, n, 4)
	case TypeLittle16:
		return m.matchesReversed(buffer, n, 2)
	case TypeLittle32:
		return m.matchesReversed(buffer, n, 4)
	default:
		return false
	}
}

// matchesBytes tests the literal byte sequence (in stored order) at every
// offset in the matcher's range. width is purely documentary for
// string-typed matchers (value can be any length); for fixed-width numeric
// types it equals len(value).
func (m *MagicMatcher) matchesBytes(buffer []byte, n, width int) bool {
	if m.typ == TypeString || m.typ == TypeByte {
		width = len(m.value)
	}
	if width != len(m.value) || width == 0 {
		return false
	}
	last := m.offsetEnd
	if n-width < last {
		last = n - width
	}
	for o := m.offsetBegin; o <= last; o++ {
		if o < 0 {
			continue
		}
		if m.equalAt(buffer, o, width) {
			return true
		}
	}
	return false
}

// matchesReversed is like matchesBytes but compares the test buffer's bytes
// in reverse order against the stored (big-endian) value, realizing
// little-endian (and little-endian-resolved host) semantics.
func (m *MagicMatcher) matchesReversed(buffer []byte, n, width int) bool {
	if len(m.value) != width {
		return false
	}
	last := m.offsetEnd
	if n-width < last {
		last = n - width
	}
	for o := m.offsetBegin; o <= last; o++ {
		if o < 0 {
			continue
		}
		if m.equalAtReversed(buffer, o, width) {
			return true
		}
	}
	return false
}

func (m *MagicMatcher) equalAt(buffer []byte, offset, width int) bool {
	for i := 0; i < width; i++ {
		b := buffer[offset+i]
		if m.mask != nil {
			b &= m.mask[i]
		}
		if b != m.value[i] {
			return false
		}
	}
	return true
}

func (m *MagicMatcher) equalAtReversed(buffer []byte, offset, width int) bool {
	for i := 0; i < width; i++ {
		b := buffer[offset+width-1-i]
		if m.mask != nil {
			b &= m.mask[i]
		}
		if b != m.value[i] {
			return false
		}
	}
	return true
}
