package mimetype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergePrefersFilenameHitConfirmedByContent(t *testing.T) {
	name, ok := Merge([]string{"text/x-a", "text/x-b"}, []string{"text/x-c", "text/x-b"})
	require.True(t, ok)
	require.Equal(t, "text/x-b", name)
}

func TestMergeFallsBackToFirstContentHit(t *testing.T) {
	name, ok := Merge([]string{"text/x-a"}, []string{"text/x-z"})
	require.True(t, ok)
	require.Equal(t, "text/x-z", name)
}

func TestMergeFallsBackToFirstFilenameHitWhenContentEmpty(t *testing.T) {
	name, ok := Merge([]string{"text/x-a", "text/x-b"}, nil)
	require.True(t, ok)
	require.Equal(t, "text/x-a", name)
}

func TestMergeFallsBackToFirstContentHitWhenFilenameEmpty(t *testing.T) {
	name, ok := Merge(nil, []string{"text/x-a"})
	require.True(t, ok)
	require.Equal(t, "text/x-a", name)
}

func TestMergeReportsNoCandidate(t *testing.T) {
	_, ok := Merge(nil, nil)
	require.False(t, ok)
}

func TestRepositoryDetectorDetectBytes(t *testing.T) {
	png := newTestMimeType("image/png", []*Glob{NewGlob("*.png", DefaultWeight, false)}, []*Magic{
		NewMagic([]*MagicMatcher{NewMagicMatcher(TypeString, 0, 0, []byte("\x89PNG"), nil, nil)}, DefaultPriority),
	})
	repo := NewRepository([]*MimeType{png})
	detector := NewRepositoryDetector(repo)

	buffer := []byte("\x89PNG\r\n\x1a\n")
	name, ok := detector.DetectBytes("photo.png", buffer, len(buffer))
	require.True(t, ok)
	require.Equal(t, "image/png", name)
}

func TestRepositoryDetectorDetectBytesDisagreeingExtensionFallsBackToContent(t *testing.T) {
	png := newTestMimeType("image/png", []*Glob{NewGlob("*.png", DefaultWeight, false)}, []*Magic{
		NewMagic([]*MagicMatcher{NewMagicMatcher(TypeString, 0, 0, []byte("\x89PNG"), nil, nil)}, DefaultPriority),
	})
	repo := NewRepository([]*MimeType{png})
	detector := NewRepositoryDetector(repo)

	buffer := []byte("\x89PNG\r\n\x1a\n")
	name, ok := detector.DetectBytes("photo.txt", buffer, len(buffer))
	require.True(t, ok)
	require.Equal(t, "image/png", name)
}

func TestRepositoryDetectorDetectSingle(t *testing.T) {
	png := newTestMimeType("image/png", []*Glob{NewGlob("*.png", DefaultWeight, false)}, nil)
	repo := NewRepository([]*MimeType{png})
	detector := NewRepositoryDetector(repo)

	mt, err := detector.DetectSingle("photo.png", nil, 0)
	require.NoError(t, err)
	require.NotNil(t, mt)
	require.Equal(t, "image/png", mt.Name)
}
