package mimetype

import (
	"context"
	"io"
	"os"

	e "github.com/pkg/errors"
)

// Detector is the polymorphic facade described in §4.6/§9: a tagged variant
// over {RepositoryDetector, ExternalCommandDetector} behind one interface,
// rather than an inheritance hierarchy. Detect reads whatever it needs from
// path, combines a filename-derived guess and a content-derived guess via
// Merge, and returns a single winning name.
type Detector interface {
	Detect(ctx context.Context, path string) (name string, ok bool, err error)
}

// Merge implements the Detector merge rule of §4.6: prefer a filename hit
// that content also agrees with; otherwise fall back to the first content
// hit, or the first filename hit if content said nothing at all.
func Merge(filenameList, contentList []string) (string, bool) {
	if len(filenameList) == 0 && len(contentList) == 0 {
		return "", false
	}
	if len(filenameList) == 0 {
		return contentList[0], true
	}
	if len(contentList) == 0 {
		return filenameList[0], true
	}
	contentSet := make(map[string]struct{}, len(contentList))
	for _, c := range contentList {
		contentSet[c] = struct{}{}
	}
	for _, f := range filenameList {
		if _, ok := contentSet[f]; ok {
			return f, true
		}
	}
	return contentList[0], true
}

// RepositoryDetector is the default Detector: both its filename and its
// content guesses come from the same Repository.
type RepositoryDetector struct {
	repo *Repository
	// AlwaysCheckMagic is consulted only by DetectSingle's internal use of
	// Repository.Detect; Detect/DetectBytes/DetectReader always compute
	// independent filename/content lists and merge them per §4.6, which has
	// no alwaysCheckMagic parameter of its own.
	AlwaysCheckMagic bool
}

// NewRepositoryDetector builds a RepositoryDetector over repo.
func NewRepositoryDetector(repo *Repository) *RepositoryDetector {
	return &RepositoryDetector{repo: repo}
}

func namesOf(mimeTypes []*MimeType) []string {
	if len(mimeTypes) == 0 {
		return nil
	}
	names := make([]string, len(mimeTypes))
	for i, t := range mimeTypes {
		names[i] = t.Name
	}
	return names
}

// Detect extracts the basename from path, reads up to repo.MaxTestBytes
// leading bytes, and merges the filename and content guesses.
func (d *RepositoryDetector) Detect(ctx context.Context, path string) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, &IoFailureError{Op: "open file to sniff", Err: err}
	}
	defer f.Close()
	return d.DetectReader(path, f)
}

// DetectBytes merges the filename guess for filename with the content guess
// for the first n bytes of buffer.
func (d *RepositoryDetector) DetectBytes(filename string, buffer []byte, n int) (string, bool) {
	fl := namesOf(d.repo.DetectByFilename(filename))
	cl := namesOf(d.repo.DetectByContent(buffer, n))
	return Merge(fl, cl)
}

// DetectReader is like DetectBytes but reads the content prefix itself, up
// to repo.MaxTestBytes bytes, from r.
func (d *RepositoryDetector) DetectReader(filename string, r io.Reader) (string, bool, error) {
	buf := make([]byte, d.repo.MaxTestBytes())
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", false, &IoFailureError{Op: "read content to sniff", Err: err}
	}
	name, ok := d.DetectBytes(filename, buf, n)
	return name, ok, nil
}

// DetectSingle runs Repository.Detect — the §4.5 resolution algorithm, with
// its single-candidate early-out and supertype-aware magic confirmation —
// rather than the simpler independent-lists merge of §4.6. Use this when
// the caller wants the primary algorithm's exact semantics instead of the
// Detector facade's merge rule.
func (d *RepositoryDetector) DetectSingle(filename string, buffer []byte, n int) (*MimeType, error) {
	list := d.repo.Detect(filename, buffer, n, d.AlwaysCheckMagic)
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

var _ Detector = (*RepositoryDetector)(nil)

// wrapIoFailure is a small helper shared by Detector implementations that
// need to tag an I/O error with an operation label before propagating it.
func wrapIoFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	return e.Wrap(&IoFailureError{Op: op, Err: err}, op)
}
