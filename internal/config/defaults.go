package config

const (
	defaultLogFormat = "console"
	defaultLogLevel  = "warn"
	defaultReadme    = true
	defaultMarker    = "(1)"
)

var defaultSubfolders = []string{"src", "assets", "tests", "docs"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LockDir: defaultLockDir(),
		},
		Dedupe: Dedupe{
			Marker:    defaultMarker,
			Recursive: true,
		},
		Scaffold: Scaffold{
			Subfolders: append([]string(nil), defaultSubfolders...),
			Readme:     defaultReadme,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
