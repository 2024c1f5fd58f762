package config

const SourceFileExt = ".skyr"

// ProjectFileName is looked up in the working directory (and upward)
// when --config is not given.
const ProjectFileName = "skyr.yaml"

// Engine limits. MaxSteps of 0 means unlimited; the CLI applies
// DefaultMaxSteps so a runaway comprehension cannot hang a build.
const (
	DefaultMaxCallDepth = 1000
	DefaultMaxSteps     = 10_000_000
)
