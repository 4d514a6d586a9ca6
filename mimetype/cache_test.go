package mimetype

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleRepository() *Repository {
	mt := &MimeType{
		Name:            "application/x-cached",
		Descriptions:    map[string]string{"": "a cached type", "de": "ein zwischengespeicherter Typ"},
		Acronym:         "XC",
		ExpandedAcronym: "X Cached",
		NamespaceURI:    "http://example.com/ns",
		LocalName:       "root",
		Aliases:         []string{"application/x-cached-old"},
		SuperTypes:      []string{"application/octet-stream"},
		Globs: []*Glob{
			NewGlob("*.xc", 55, false),
			NewGlob("XCACHED", DefaultWeight, true),
		},
		Magics: []*Magic{
			NewMagic([]*MagicMatcher{
				NewMagicMatcher(TypeString, 0, 0, []byte("XC!!"), nil, []*MagicMatcher{
					NewMagicMatcher(TypeByte, 4, 4, []byte{0x01}, []byte{0xff}, nil),
				}),
			}, 77),
		},
	}
	return NewRepository([]*MimeType{mt})
}

func TestCacheRoundTrip(t *testing.T) {
	repo := sampleRepository()

	var buf bytes.Buffer
	require.NoError(t, WriteCache(&buf, repo))

	decoded, err := ReadCache(&buf)
	require.NoError(t, err)
	require.Len(t, decoded.MimeTypes(), 1)

	got := decoded.MimeTypes()[0]
	want := repo.MimeTypes()[0]
	require.Equal(t, want.Name, got.Name)
	require.Equal(t, want.Descriptions, got.Descriptions)
	require.Equal(t, want.Aliases, got.Aliases)
	require.Equal(t, want.SuperTypes, got.SuperTypes)
	require.Len(t, got.Globs, 2)
	require.Equal(t, 55, got.Globs[0].Weight())
	require.True(t, got.Globs[1].CaseSensitive())
	require.Len(t, got.Magics, 1)
	require.Equal(t, 77, got.Magics[0].Priority())

	top := got.Magics[0].Matchers()[0]
	require.Equal(t, []byte("XC!!"), top.Value())
	require.Len(t, top.SubMatchers(), 1)
	require.Equal(t, []byte{0x01}, top.SubMatchers()[0].Value())

	require.Equal(t, repo.MaxTestBytes(), decoded.MaxTestBytes())
}

func TestReadCacheRejectsBadSignature(t *testing.T) {
	_, err := ReadCache(bytes.NewReader([]byte{0, 0, 0}))
	require.Error(t, err)
	var target *InvalidCacheError
	require.ErrorAs(t, err, &target)
}

func TestReadCacheRejectsVersionMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCache(&buf, sampleRepository()))

	raw := buf.Bytes()
	// Corrupt the serial version field (first 4 bytes, big-endian).
	corrupted := append([]byte{}, raw...)
	corrupted[3] ^= 0xff

	_, err := ReadCache(bytes.NewReader(corrupted))
	require.Error(t, err)
}

func TestReadCacheRejectsTruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCache(&buf, sampleRepository()))

	truncated := buf.Bytes()[:buf.Len()-5]
	_, err := ReadCache(bytes.NewReader(truncated))
	require.Error(t, err)
}
