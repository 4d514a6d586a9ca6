package mimetype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestMimeType(name string, globs []*Glob, magics []*Magic, superTypes ...string) *MimeType {
	return &MimeType{Name: name, Globs: globs, Magics: magics, SuperTypes: superTypes}
}

func TestRepositoryLookupIsCaseInsensitiveAndAliasAware(t *testing.T) {
	mt := newTestMimeType("text/x-example", nil, nil)
	mt.Aliases = []string{"text/x-example-alias"}
	repo := NewRepository([]*MimeType{mt})

	got, ok := repo.Lookup("Text/X-Example")
	require.True(t, ok)
	require.Equal(t, mt, got)

	got, ok = repo.Lookup("text/x-example-alias")
	require.True(t, ok)
	require.Equal(t, mt, got)
}

func TestRepositoryDetectByFilenamePrefersHigherWeight(t *testing.T) {
	low := newTestMimeType("application/x-low", []*Glob{NewGlob("*.conf", 40, false)}, nil)
	high := newTestMimeType("application/x-high", []*Glob{NewGlob("*.conf", 90, false)}, nil)
	repo := NewRepository([]*MimeType{low, high})

	result := repo.DetectByFilename("app.conf")
	require.Len(t, result, 1)
	require.Equal(t, "application/x-high", result[0].Name)
}

func TestRepositoryDetectByFilenamePrefersLongerPatternOnTie(t *testing.T) {
	short := newTestMimeType("application/x-short", []*Glob{NewGlob("*.gz", DefaultWeight, false)}, nil)
	long := newTestMimeType("application/x-long", []*Glob{NewGlob("*.tar.gz", DefaultWeight, false)}, nil)
	repo := NewRepository([]*MimeType{short, long})

	result := repo.DetectByFilename("archive.tar.gz")
	require.Len(t, result, 1)
	require.Equal(t, "application/x-long", result[0].Name)
}

func TestRepositoryDetectByFilenameHigherWeightLiteralBeatsGlobClass(t *testing.T) {
	generic := newTestMimeType("text/x-makefile-ish", []*Glob{NewGlob("[Mm]akefile", DefaultWeight, true)}, nil)
	literal := newTestMimeType("text/x-makefile", []*Glob{NewGlob("Makefile", DefaultWeight+10, true)}, nil)
	repo := NewRepository([]*MimeType{generic, literal})

	result := repo.DetectByFilename("Makefile")
	require.Len(t, result, 1)
	require.Equal(t, "text/x-makefile", result[0].Name)
}

func TestRepositoryDetectByFilenameOnlyLiteralMatches(t *testing.T) {
	literal := newTestMimeType("text/x-makefile", []*Glob{NewGlob("Makefile", DefaultWeight, true)}, nil)
	other := newTestMimeType("application/x-nothing-to-do-with-it", []*Glob{NewGlob("*.xyz", DefaultWeight, false)}, nil)
	repo := NewRepository([]*MimeType{literal, other})

	result := repo.DetectByFilename("Makefile")
	require.Len(t, result, 1)
	require.Equal(t, "text/x-makefile", result[0].Name)
}

func TestRepositoryDetectByContentPrefersHigherPriority(t *testing.T) {
	low := newTestMimeType("application/x-low", nil, []*Magic{
		NewMagic([]*MagicMatcher{NewMagicMatcher(TypeString, 0, 0, []byte("X"), nil, nil)}, 20),
	})
	high := newTestMimeType("application/x-high", nil, []*Magic{
		NewMagic([]*MagicMatcher{NewMagicMatcher(TypeString, 0, 0, []byte("X"), nil, nil)}, 80),
	})
	repo := NewRepository([]*MimeType{low, high})

	result := repo.DetectByContent([]byte("X"), 1)
	require.Len(t, result, 1)
	require.Equal(t, "application/x-high", result[0].Name)
}

func TestRepositoryDetectSingleFilenameCandidateShortCircuits(t *testing.T) {
	mt := newTestMimeType("text/x-example", []*Glob{NewGlob("*.example", DefaultWeight, false)}, nil)
	repo := NewRepository([]*MimeType{mt})

	result := repo.Detect("doc.example", nil, 0, false)
	require.Len(t, result, 1)
	require.Equal(t, "text/x-example", result[0].Name)
}

func TestRepositoryDetectConfirmsAmbiguousFilenameWithMagic(t *testing.T) {
	sameExt1 := newTestMimeType("application/x-one", []*Glob{NewGlob("*.dat", DefaultWeight, false)}, []*Magic{
		NewMagic([]*MagicMatcher{NewMagicMatcher(TypeString, 0, 0, []byte("ONE!"), nil, nil)}, DefaultPriority),
	})
	sameExt2 := newTestMimeType("application/x-two", []*Glob{NewGlob("*.dat", DefaultWeight, false)}, []*Magic{
		NewMagic([]*MagicMatcher{NewMagicMatcher(TypeString, 0, 0, []byte("TWO!"), nil, nil)}, DefaultPriority),
	})
	repo := NewRepository([]*MimeType{sameExt1, sameExt2})

	buffer := []byte("TWO!REST")
	result := repo.Detect("file.dat", buffer, len(buffer), false)
	require.Len(t, result, 1)
	require.Equal(t, "application/x-two", result[0].Name)
}

func TestRepositoryDetectGivesUpWhenAmbiguousAndUnconfirmed(t *testing.T) {
	sameExt1 := newTestMimeType("application/x-one", []*Glob{NewGlob("*.dat", DefaultWeight, false)}, nil)
	sameExt2 := newTestMimeType("application/x-two", []*Glob{NewGlob("*.dat", DefaultWeight, false)}, nil)
	repo := NewRepository([]*MimeType{sameExt1, sameExt2})

	result := repo.Detect("file.dat", []byte("whatever"), 8, false)
	require.Empty(t, result)
}

func TestRepositoryMaxTestBytesTracksDeepestMagicReach(t *testing.T) {
	mt := newTestMimeType("application/x-example", nil, []*Magic{
		NewMagic([]*MagicMatcher{NewMagicMatcher(TypeString, 100, 100, []byte("abcd"), nil, nil)}, DefaultPriority),
	})
	repo := NewRepository([]*MimeType{mt})
	require.Equal(t, 104, repo.MaxTestBytes())
}
