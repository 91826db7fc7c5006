package rematch

import (
	"github.com/coregx/rematch/nfa"
	"github.com/coregx/rematch/syntax"
)

// Config controls how a pattern is parsed and compiled.
//
// Example:
//
//	config := rematch.DefaultConfig()
//	config.CaseInsensitive = true
//	config.MaxProgramSize = 5000
//	p, err := rematch.CompileWithConfig(`hello (\w+)`, config)
type Config struct {
	// Literal treats the pattern as literal text with no metacharacters.
	Literal bool

	// CaseInsensitive matches letters regardless of case, as (?i) does.
	CaseInsensitive bool

	// DotNL lets '.' match '\n', as (?s) does.
	DotNL bool

	// MultiLine makes '^' and '$' match at line boundaries, as (?m) does.
	MultiLine bool

	// NeverCapture parses every group as non-capturing. Group 0 is still
	// reported.
	NeverCapture bool

	// MaxProgramSize is the largest number of states either compiled
	// program may have. Patterns over the limit fail with ErrResourceLimit.
	// Default: 100000.
	MaxProgramSize int

	// MaxNestingDepth limits how deeply groups may nest. Default: 1000.
	MaxNestingDepth int

	// EnablePrefilter rejects inputs that lack a literal every match
	// requires before the NFA runs. Default: true.
	EnablePrefilter bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxProgramSize:  nfa.DefaultMaxStates,
		MaxNestingDepth: syntax.DefaultMaxDepth,
		EnablePrefilter: true,
	}
}

// Validate checks that the configuration values are within their ranges.
func (c Config) Validate() error {
	if c.MaxProgramSize < 1 || c.MaxProgramSize > 10_000_000 {
		return &ConfigError{
			Field:   "MaxProgramSize",
			Message: "must be between 1 and 10,000,000",
		}
	}
	if c.MaxNestingDepth < 1 || c.MaxNestingDepth > 100_000 {
		return &ConfigError{
			Field:   "MaxNestingDepth",
			Message: "must be between 1 and 100,000",
		}
	}
	return nil
}

func (c Config) flags() syntax.Flags {
	var f syntax.Flags
	if c.Literal {
		f |= syntax.Literal
	}
	if c.CaseInsensitive {
		f |= syntax.FoldCase
	}
	if c.DotNL {
		f |= syntax.DotNL
	}
	if c.MultiLine {
		f |= syntax.MultiLine
	}
	if c.NeverCapture {
		f |= syntax.NeverCapture
	}
	return f
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "regexp: invalid config: " + e.Field + ": " + e.Message
}
