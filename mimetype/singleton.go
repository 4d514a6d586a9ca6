package mimetype

import (
	"sync"

	e "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Loader builds a fresh Repository, typically from the XML database or a
// binary cache (see Codec). It is supplied by the caller rather than baked
// into the singleton so that this package stays independent of any
// particular config/storage wiring.
type Loader func() (*Repository, error)

var (
	instanceMu sync.RWMutex
	instance   *Repository
	initOnce   sync.Once
	initErr    error
)

// GetRepository returns the process-wide Repository singleton, building it
// on the first call via loader (guarded so concurrent first callers produce
// exactly one built instance) and returning the already-built instance on
// every subsequent call regardless of which loader they pass.
func GetRepository(loader Loader) (*Repository, error) {
	initOnce.Do(func() {
		log.Info("building mime repository for the first time")
		r, err := loader()
		if err != nil {
			initErr = e.Wrap(err, "failed to build mime repository")
			return
		}
		instanceMu.Lock()
		instance = r
		instanceMu.Unlock()
	})
	if initErr != nil {
		return nil, initErr
	}
	instanceMu.RLock()
	defer instanceMu.RUnlock()
	return instance, nil
}

// Rebuild replaces the singleton with a freshly built Repository, atomically
// swapping the shared reference under the write lock. It never mutates the
// previous instance: existing holders of the old *Repository keep reading a
// perfectly consistent (if now stale) snapshot.
func Rebuild(loader Loader) (*Repository, error) {
	r, err := loader()
	if err != nil {
		return nil, e.Wrap(err, "failed to rebuild mime repository")
	}
	instanceMu.Lock()
	instance = r
	instanceMu.Unlock()
	log.Info("mime repository rebuilt and swapped in")
	return r, nil
}

// resetForTesting clears the singleton state. Test-only; never called from
// production code paths.
func resetForTesting() {
	instanceMu.Lock()
	instance = nil
	instanceMu.Unlock()
	initOnce = sync.Once{}
	initErr = nil
}
