package config

import "github.com/sahib/config"

// Defaults declares the options this package recognizes, in the
// DefaultMapping/DefaultEntry idiom: a default value, a one-line doc string
// and whether changing the option needs a process restart to take effect.
// None of them do — they're picked up again on the next rebuild.
var Defaults = config.DefaultMapping{
	"mime": config.DefaultMapping{
		"rebuild": config.DefaultEntry{
			Default:      false,
			NeedsRestart: false,
			Docs:         "Ignore the binary cache and rebuild the repository from the XML database",
		},
		"save": config.DefaultEntry{
			Default:      true,
			NeedsRestart: false,
			Docs:         "Persist the binary cache after a rebuild",
		},
		"check_magic": config.DefaultEntry{
			Default:      false,
			NeedsRestart: false,
			Docs:         "Default value for a Detector's alwaysCheckMagic behavior",
		},
		"serialization": config.DefaultEntry{
			Default:      "${user.home}/.cache/mimedetect/repository.cache",
			NeedsRestart: false,
			Docs:         "Where to store and load the binary repository cache",
		},
		"database": config.DefaultEntry{
			Default:      "/usr/share/mime",
			NeedsRestart: false,
			Docs:         "Path to the freedesktop shared-mime-info XML database",
		},
		"default_binary": config.DefaultEntry{
			Default:      "application/octet-stream",
			NeedsRestart: false,
			Docs:         "Fallback MIME type offered to consumers for unidentified binary content",
		},
		"default_text": config.DefaultEntry{
			Default:      "text/plain",
			NeedsRestart: false,
			Docs:         "Fallback MIME type offered to consumers for unidentified text content",
		},
	},
}
