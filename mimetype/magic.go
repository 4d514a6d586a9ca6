package mimetype

// MinPriority, MaxPriority and DefaultPriority bound and default a Magic's
// priority.
const (
	MinPriority     = 0
	MaxPriority     = 100
	DefaultPriority = 50
)

// Magic is an ordered, non-empty bag of top-level MagicMatchers sharing a
// single priority. A Magic matches content iff any of its matchers does;
// priority itself is advisory, consulted only by the Detector's
// confirmation pass, never by Matches.
type Magic struct {
	priority int
	matchers []*MagicMatcher
	maxReach int
}

// NewMagic builds a Magic, clamping priority into [MinPriority, MaxPriority].
func NewMagic(matchers []*MagicMatcher, priority int) *Magic {
	if priority < MinPriority {
		priority = MinPriority
	}
	if priority > MaxPriority {
		priority = MaxPriority
	}
	m := &Magic{priority: priority, matchers: matchers}
	for _, mm := range matchers {
		if mm.MaxReach() > m.maxReach {
			m.maxReach = mm.MaxReach()
		}
	}
	return m
}

// Priority returns the magic's arbitration priority.
func (m *Magic) Priority() int { return m.priority }

// Matchers returns the magic's top-level matchers.
func (m *Magic) Matchers() []*MagicMatcher { return m.matchers }

// MaxReach is the largest MaxReach across this magic's matcher trees.
func (m *Magic) MaxReach() int { return m.maxReach }

// Matches reports whether any top-level matcher matches the first n bytes
// of buffer.
func (m *Magic) Matches(buffer []byte, n int) bool {
	for _, matcher := range m.matchers {
		if matcher.Matches(buffer, n) {
			return true
		}
	}
	return false
}
