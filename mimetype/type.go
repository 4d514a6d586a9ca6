package mimetype

import "strings"

// supertypeResolver is the narrow slice of Repository that MimeType needs in
// order to walk into its supertypes: resolving a parent name back to its
// MimeType record. Passing this explicitly (rather than reaching for a
// package-level singleton the way the original does) keeps MimeType testable
// in isolation and keeps the dependency direction MimeType -> Repository
// explicit instead of circular-by-convention.
type supertypeResolver interface {
	Lookup(name string) (*MimeType, bool)
}

// MimeType is one record of the repository: a canonical name, its aliases,
// localized descriptions, optional XML-root hints, supertype names, the
// filename globs that suggest it, and the content magics that confirm it.
//
// A MimeType is immutable once built. Equality is by Name alone.
type MimeType struct {
	Name            string
	Aliases         []string
	Descriptions    map[string]string // locale ("" = default) -> text
	NamespaceURI    string
	LocalName       string
	Acronym         string
	ExpandedAcronym string
	GenericIcon     string
	SuperTypes      []string
	Globs           []*Glob
	Magics          []*Magic
}

// localeFallbackOrder is consulted, in order, after the caller's exact
// locale and its language-only prefix come up empty. Mirrors the original's
// current-locale -> language -> default -> en -> en_US -> en_GB chain,
// after which Description takes any remaining entry.
var localeFallbackOrder = []string{"", "en", "en_US", "en_GB"}

// Description resolves a human-readable description for locale, falling
// back through: the exact locale, the language-only prefix of the locale
// (e.g. "en" from "en_GB" when "en_GB" itself is absent — note the chain
// tries the full locale first, then language, then the fixed fallback
// list), the unlabeled default comment, "en", "en_US", "en_GB", and finally
// any one of the remaining descriptions. Descriptions is a map, so which
// one is returned in that last step is not defined when several remain.
func (t *MimeType) Description(locale string) string {
	if locale != "" {
		if d, ok := t.Descriptions[locale]; ok {
			return d
		}
		if i := strings.IndexAny(locale, "_-"); i > 0 {
			if d, ok := t.Descriptions[locale[:i]]; ok {
				return d
			}
		}
	}
	for _, fallback := range localeFallbackOrder {
		if d, ok := t.Descriptions[fallback]; ok {
			return d
		}
	}
	for _, d := range t.Descriptions {
		return d
	}
	return ""
}

// MatchesFilename reports whether any of this type's globs matches filename.
func (t *MimeType) MatchesFilename(filename string) bool {
	for _, g := range t.Globs {
		if g.Matches(filename) {
			return true
		}
	}
	return false
}

// MatchesContent reports whether any of this type's own magics match the
// first n bytes of buffer, falling through to the supertypes (resolved via
// repo) whenever the own-magics check didn't return true — whether because
// there were no magics of its own or because none of them matched. The
// supertype walk is cycle-guarded: a name already visited is treated as a
// non-match rather than revisited.
func (t *MimeType) MatchesContent(buffer []byte, n int, repo supertypeResolver) bool {
	return t.matchesContentVisited(buffer, n, repo, make(map[string]struct{}))
}

func (t *MimeType) matchesContentVisited(buffer []byte, n int, repo supertypeResolver, visited map[string]struct{}) bool {
	key := strings.ToLower(t.Name)
	if _, seen := visited[key]; seen {
		return false
	}
	visited[key] = struct{}{}

	for _, m := range t.Magics {
		if m.Matches(buffer, n) {
			return true
		}
	}
	for _, superName := range t.SuperTypes {
		if repo == nil {
			continue
		}
		super, ok := repo.Lookup(superName)
		if !ok {
			continue
		}
		if super.matchesContentVisited(buffer, n, repo, visited) {
			return true
		}
	}
	return false
}

// BestMagic returns the highest-priority own Magic that matches buffer and
// has priority >= minPriority; if this type has no matching magic of its
// own it recurses into its supertypes (cycle-guarded, as in MatchesContent)
// and returns the best of theirs. Ties among equal-priority matches are
// broken by first-encountered order. Returns nil if nothing qualifies.
func (t *MimeType) BestMagic(buffer []byte, n, minPriority int, repo supertypeResolver) *Magic {
	return t.bestMagicVisited(buffer, n, minPriority, repo, make(map[string]struct{}))
}

func (t *MimeType) bestMagicVisited(buffer []byte, n, minPriority int, repo supertypeResolver, visited map[string]struct{}) *Magic {
	key := strings.ToLower(t.Name)
	if _, seen := visited[key]; seen {
		return nil
	}
	visited[key] = struct{}{}

	var best *Magic
	for _, m := range t.Magics {
		if m.Priority() < minPriority {
			continue
		}
		if !m.Matches(buffer, n) {
			continue
		}
		if best == nil || m.Priority() > best.Priority() {
			best = m
		}
	}
	if best != nil {
		return best
	}
	for _, superName := range t.SuperTypes {
		if repo == nil {
			continue
		}
		super, ok := repo.Lookup(superName)
		if !ok {
			continue
		}
		if candidate := super.bestMagicVisited(buffer, n, minPriority, repo, visited); candidate != nil {
			if best == nil || candidate.Priority() > best.Priority() {
				best = candidate
			}
		}
	}
	return best
}
