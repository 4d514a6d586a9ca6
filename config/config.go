// Package config declares the options this module reads from a YAML-backed
// configuration document and exposes them as a small typed wrapper around
// github.com/sahib/config.
package config

import (
	"io"
	"os"
	"strings"
	"sync"

	homedir "github.com/mitchellh/go-homedir"
	e "github.com/pkg/errors"
	"github.com/sahib/config"
)

// Options is a typed view over the mime.* keys declared in Defaults.
type Options struct {
	cfg *config.Config
}

// Open builds Options from r (a YAML document) against Defaults. A nil
// reader yields an Options backed entirely by defaults, via config.Open's
// own nil-decoder bootstrapping for a first run.
func Open(r io.Reader) (*Options, error) {
	var dec config.Decoder
	if r != nil {
		dec = config.NewYamlDecoder(r)
	}
	cfg, err := config.Open(dec, Defaults, config.StrictnessPanic)
	if err != nil {
		return nil, e.Wrap(err, "open config")
	}
	return &Options{cfg: cfg}, nil
}

// Load reads path if it exists, or falls back to pure defaults if it does
// not — a missing config file is not an error, it just means "use defaults".
func Load(path string) (*Options, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Open(nil)
		}
		return nil, e.Wrap(err, "open config file")
	}
	defer f.Close()
	return Open(f)
}

// Save writes the current option values back to path as YAML.
func (o *Options) Save(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return e.Wrap(err, "open config file for write")
	}
	defer f.Close()
	return e.Wrap(o.cfg.Save(config.NewYamlEncoder(f)), "save config")
}

func expandPath(raw string) string {
	if strings.Contains(raw, "${user.home}") {
		home, err := homedir.Dir()
		if err == nil {
			raw = strings.ReplaceAll(raw, "${user.home}", home)
		}
	}
	expanded, err := homedir.Expand(raw)
	if err != nil {
		return raw
	}
	return expanded
}

// Rebuild reports whether the cache should be ignored and the repository
// rebuilt from the XML database.
func (o *Options) Rebuild() bool { return o.cfg.Bool("mime.rebuild") }

// SaveCache reports whether a rebuilt repository should be persisted back
// to the cache path.
func (o *Options) SaveCache() bool { return o.cfg.Bool("mime.save") }

// CheckMagic is the default alwaysCheckMagic behavior for a Detector built
// from these options.
func (o *Options) CheckMagic() bool { return o.cfg.Bool("mime.check_magic") }

// SerializationPath is where the binary repository cache is stored, with
// "${user.home}"-flavored expansion resolved.
func (o *Options) SerializationPath() string { return expandPath(o.cfg.String("mime.serialization")) }

// DatabasePath is the path to the XML shared-mime-info database, with
// "${user.home}"-flavored expansion resolved.
func (o *Options) DatabasePath() string { return expandPath(o.cfg.String("mime.database")) }

// DefaultBinary is the fallback MIME type for unidentified binary content.
func (o *Options) DefaultBinary() string { return o.cfg.String("mime.default_binary") }

// DefaultText is the fallback MIME type for unidentified text content.
func (o *Options) DefaultText() string { return o.cfg.String("mime.default_text") }

var (
	globalMu   sync.RWMutex
	globalPath string
	globalOnce sync.Once
	globalOpts *Options
	globalErr  error
)

// SetPath configures the config file path Get() will lazily load on its
// first call. Calling it after Get() has already initialized has no effect
// on the singleton — use Rebuild-style explicit reconstruction instead.
func SetPath(path string) {
	globalMu.Lock()
	globalPath = path
	globalMu.Unlock()
}

// Get returns the process-wide Options singleton, loading it from the path
// set via SetPath (or pure defaults, if none was set) on first use. This
// mirrors the double-checked-locking lazy singleton used for the mime
// repository, with its own independent lock.
func Get() (*Options, error) {
	globalOnce.Do(func() {
		globalMu.RLock()
		path := globalPath
		globalMu.RUnlock()

		var opts *Options
		var err error
		if path == "" {
			opts, err = Open(nil)
		} else {
			opts, err = Load(path)
		}
		if err != nil {
			globalErr = e.Wrap(err, "load global config")
			return
		}
		globalOpts = opts
	})
	if globalErr != nil {
		return nil, globalErr
	}
	return globalOpts, nil
}
