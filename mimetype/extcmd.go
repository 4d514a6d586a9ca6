package mimetype

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultCommandTimeout bounds how long ExternalCommandDetector waits for
// the host 'file' command before giving up and reporting "no candidate".
const DefaultCommandTimeout = 5 * time.Second

// ExternalCommandDetector is the alternate Detector variant named in §6/§9:
// its filename path still goes through a Repository, but content detection
// is delegated to the host's 'file' binary rather than to the in-process
// magic matcher.
type ExternalCommandDetector struct {
	repo       *Repository
	Timeout    time.Duration
	WorkingDir string
}

// NewExternalCommandDetector builds an ExternalCommandDetector backed by
// repo for its filename-based guesses, with the default timeout.
func NewExternalCommandDetector(repo *Repository) *ExternalCommandDetector {
	return &ExternalCommandDetector{repo: repo, Timeout: DefaultCommandTimeout}
}

var _ Detector = (*ExternalCommandDetector)(nil)

// Detect runs 'file --mime-type --brief <path>' and merges its single
// answer with the repository's filename-based guess, per the §4.6 merge
// rule.
func (d *ExternalCommandDetector) Detect(ctx context.Context, path string) (string, bool, error) {
	fl := namesOf(d.repo.DetectByFilename(path))
	cl, err := d.guessFromContent(ctx, path)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("external mime command failed, falling back to filename guess only")
		cl = nil
	}
	name, ok := Merge(fl, cl)
	return name, ok, nil
}

func (d *ExternalCommandDetector) guessFromContent(ctx context.Context, path string) ([]string, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "file", "--mime-type", "--brief", path)
	if d.WorkingDir != "" {
		cmd.Dir = d.WorkingDir
	}
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		// Non-zero exit, a timeout, or any other I/O failure: treat as "no
		// candidate" per §6, not as a hard error that aborts detection.
		return nil, wrapIoFailure("invoke external mime command", err)
	}
	result := strings.TrimSpace(stdout.String())
	if result == "" {
		return nil, nil
	}
	return []string{result}, nil
}

// IsAvailable probes whether the 'file' binary can be found and actually
// runs, the way FileCommandMimeDetector.isAvailable() does in the original.
func IsAvailable() bool {
	if _, err := exec.LookPath("file"); err != nil {
		return false
	}
	cmd := exec.Command("file", "--mime-type", "--brief", ".")
	return cmd.Run() == nil
}
