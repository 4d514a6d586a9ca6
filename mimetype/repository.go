package mimetype

import (
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// globMetachars is the exact set of characters that disqualify a pattern
// from the "literal" or "extension" fast-path indices (§4.5).
const globMetachars = "*?{}![]^"

func containsGlobMetachar(s string) bool {
	return strings.ContainsAny(s, globMetachars)
}

// isExtensionPattern reports whether pattern is of the form "*.SUFFIX" where
// SUFFIX itself contains no glob metacharacter.
func isExtensionPattern(pattern string) (suffix string, ok bool) {
	if !strings.HasPrefix(pattern, "*.") {
		return "", false
	}
	rest := pattern[2:]
	if containsGlobMetachar(rest) {
		return "", false
	}
	return rest, true
}

// isLiteralPattern reports whether pattern contains no glob metacharacter at
// all.
func isLiteralPattern(pattern string) bool {
	return !containsGlobMetachar(pattern)
}

// globEntry pairs a Glob with the MimeType it suggests.
type globEntry struct {
	glob *Glob
	mime *MimeType
}

// Repository is the build-once, read-many collection of every MimeType
// known to this process, plus the four derived indices described in §3 and
// the global maxTestBytes.
type Repository struct {
	mimeTypes          []*MimeType
	nameIndex          map[string]*MimeType
	literalGlobIndex   map[string][]globEntry
	extensionGlobIndex map[string][]globEntry
	otherGlobList      []globEntry
	maxTestBytes       int
}

// NewRepository builds a Repository from an already-parsed, ordered list of
// MimeTypes (as produced by the XML or binary codec). Insertion order is
// preserved for deterministic iteration in DetectByContent.
func NewRepository(mimeTypes []*MimeType) *Repository {
	r := &Repository{
		mimeTypes:          mimeTypes,
		nameIndex:          make(map[string]*MimeType, len(mimeTypes)*2),
		literalGlobIndex:   make(map[string][]globEntry),
		extensionGlobIndex: make(map[string][]globEntry),
	}
	for _, t := range mimeTypes {
		r.addMimeType(t)
	}
	return r
}

func (r *Repository) addMimeType(t *MimeType) {
	r.indexName(t.Name, t)
	for _, alias := range t.Aliases {
		r.indexName(alias, t)
	}
	for _, g := range t.Globs {
		r.indexGlob(g, t)
	}
	for _, m := range t.Magics {
		if m.MaxReach() > r.maxTestBytes {
			r.maxTestBytes = m.MaxReach()
		}
	}
}

func (r *Repository) indexName(name string, t *MimeType) {
	key := strings.ToLower(name)
	if key == "" {
		return
	}
	if existing, ok := r.nameIndex[key]; ok && existing != t {
		log.WithField("name", key).
			WithField("previous", existing.Name).
			WithField("new", t.Name).
			Warn("mime name/alias collision, last-loaded entry wins")
	}
	r.nameIndex[key] = t
}

func (r *Repository) indexGlob(g *Glob, t *MimeType) {
	entry := globEntry{glob: g, mime: t}
	pattern := g.Pattern()
	if suffix, ok := isExtensionPattern(pattern); ok {
		r.extensionGlobIndex[suffix] = append(r.extensionGlobIndex[suffix], entry)
		return
	}
	if isLiteralPattern(pattern) {
		r.literalGlobIndex[pattern] = append(r.literalGlobIndex[pattern], entry)
		return
	}
	r.otherGlobList = append(r.otherGlobList, entry)
}

// MimeTypes returns the repository's full, ordered list of MimeTypes.
func (r *Repository) MimeTypes() []*MimeType { return r.mimeTypes }

// MaxTestBytes is the fewest leading content bytes a caller must supply for
// every magic rule in the repository to be fully evaluable.
func (r *Repository) MaxTestBytes() int { return r.maxTestBytes }

// Lookup resolves name or alias (case-insensitively) to its MimeType.
func (r *Repository) Lookup(name string) (*MimeType, bool) {
	t, ok := r.nameIndex[strings.ToLower(name)]
	return t, ok
}

// filenameResult accumulates the winning filename-glob candidates per the
// weight/length arbitration rule of §4.5.
type filenameResult struct {
	list       []*MimeType
	bestWeight int
	bestLength int
	seen       map[*MimeType]struct{}
}

func newFilenameResult() *filenameResult {
	return &filenameResult{bestWeight: -1, seen: make(map[*MimeType]struct{})}
}

func (r *filenameResult) compareAdd(g *Glob, t *MimeType) {
	w := g.Weight()
	l := len(g.Pattern())
	switch {
	case len(r.list) == 0:
		r.add(t)
		r.bestWeight = w
		r.bestLength = l
	case w > r.bestWeight:
		r.reset()
		r.add(t)
		r.bestWeight = w
		r.bestLength = l
	case w == r.bestWeight:
		if l > r.bestLength {
			r.reset()
			r.add(t)
			r.bestLength = l
		} else if l == r.bestLength {
			r.add(t)
		}
	}
}

func (r *filenameResult) add(t *MimeType) {
	if _, ok := r.seen[t]; ok {
		return
	}
	r.seen[t] = struct{}{}
	r.list = append(r.list, t)
}

func (r *filenameResult) reset() {
	r.list = nil
	r.seen = make(map[*MimeType]struct{})
}

// DetectByFilename applies the literal, extension and residual glob probes
// and weight/length arbitration of §4.5 against the basename of path,
// lowercased. The literal index is also probed with the basename as given,
// so a literal pattern containing upper-case letters matches its exact
// filename.
func (r *Repository) DetectByFilename(path string) []*MimeType {
	base := filepath.Base(path)
	fn := strings.ToLower(base)
	result := newFilenameResult()

	if base != fn {
		for _, e := range r.literalGlobIndex[base] {
			result.compareAdd(e.glob, e.mime)
		}
	}
	if entries, ok := r.literalGlobIndex[fn]; ok {
		for _, e := range entries {
			result.compareAdd(e.glob, e.mime)
		}
	}
	for i := 0; i < len(fn); i++ {
		if fn[i] != '.' {
			continue
		}
		ext := fn[i+1:]
		if entries, ok := r.extensionGlobIndex[ext]; ok {
			for _, e := range entries {
				result.compareAdd(e.glob, e.mime)
			}
		}
	}
	for _, e := range r.otherGlobList {
		if e.glob.Matches(fn) {
			result.compareAdd(e.glob, e.mime)
		}
	}
	return result.list
}

// DetectFirstName returns the first candidate of DetectByFilename, or nil.
func (r *Repository) DetectFirstName(path string) *MimeType {
	list := r.DetectByFilename(path)
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

// magicResult accumulates the winning content candidates per the priority
// arbitration rule of §4.5.
type magicResult struct {
	list         []*MimeType
	bestPriority int
	seen         map[*MimeType]struct{}
}

func newMagicResult() *magicResult {
	return &magicResult{bestPriority: -1, seen: make(map[*MimeType]struct{})}
}

func (r *magicResult) compareAdd(priority int, t *MimeType) {
	switch {
	case len(r.list) == 0:
		r.add(t)
		r.bestPriority = priority
	case priority > r.bestPriority:
		r.list = nil
		r.seen = make(map[*MimeType]struct{})
		r.add(t)
		r.bestPriority = priority
	case priority == r.bestPriority:
		r.add(t)
	}
}

func (r *magicResult) add(t *MimeType) {
	if _, ok := r.seen[t]; ok {
		return
	}
	r.seen[t] = struct{}{}
	r.list = append(r.list, t)
}

// DetectByContent scans every MimeType in insertion order, testing only
// magics whose priority is at least the current best, and arbitrates by
// priority (higher wipes the list, equal priority appends without
// duplicates).
func (r *Repository) DetectByContent(buffer []byte, n int) []*MimeType {
	result := newMagicResult()
	for _, t := range r.mimeTypes {
		for _, m := range t.Magics {
			if m.Priority() < result.bestPriority {
				continue
			}
			if m.Matches(buffer, n) {
				result.compareAdd(m.Priority(), t)
			}
		}
	}
	return result.list
}

// Detect is the heart of the system (§4.5): a single-candidate early-out
// over the filename hit, a magic-confirmation pass filtered through
// supertype walks, and a fallback to the single filename hit when magic
// confirms nothing.
func (r *Repository) Detect(filename string, buffer []byte, n int, alwaysCheckMagic bool) []*MimeType {
	nameList := r.DetectByFilename(filename)
	if len(nameList) == 0 {
		return r.DetectByContent(buffer, n)
	}
	if len(nameList) == 1 && !alwaysCheckMagic {
		return nameList
	}

	confirmed := newMagicResult()
	for _, t := range nameList {
		minPriority := confirmed.bestPriority
		if minPriority < MinPriority {
			minPriority = MinPriority
		}
		magic := t.BestMagic(buffer, n, minPriority, r)
		if magic != nil {
			confirmed.compareAdd(magic.Priority(), t)
		}
	}
	if len(confirmed.list) > 0 {
		return confirmed.list
	}
	if len(nameList) == 1 {
		return nameList
	}
	return nil
}
