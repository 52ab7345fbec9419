package domain

// Config holds the optional tool configuration loaded from glhost.yaml.
// The zero value is a fully working default.
type Config struct {
	// Patchelf overrides the runpath editing tool invoked for staged libraries.
	// Empty means "patchelf" resolved on PATH.
	Patchelf string `yaml:"patchelf"`

	// ExtraRunpathDirs are appended to the runpath of every staged library,
	// after the cache's own lib directory. Used to point the staged drivers at
	// a compatible C runtime when the wrapped binary ships its own libc.
	ExtraRunpathDirs []string `yaml:"extra_runpath_dirs"`

	// ExtraPatterns are additional library name regexes staged as generic
	// shared objects.
	ExtraPatterns []string `yaml:"extra_patterns"`

	// CatchAll stages every unmatched shared object found next to a vendor
	// library as a generic entry, instead of discarding it.
	CatchAll bool `yaml:"catch_all"`
}
