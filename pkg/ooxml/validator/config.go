package validator

import "github.com/vortex/ooxml-validator/pkg/ooxml/finding"

// Config is the Validator's build-time configuration: which format
// version gates version-restricted checks, how many findings to keep
// before truncating, and which of the two validation passes to run.
// It is assembled from defaults plus any Option the caller supplies to
// New — this is request-scoped library configuration, not a
// process-wide settings file, so functional options fit better than an
// env-loaded config struct.
type Config struct {
	FormatVersion      finding.FormatVersion
	MaxErrors          int
	SchemaValidation   bool
	SemanticValidation bool
	Logger             Logger
}

func defaultConfig() Config {
	return Config{
		FormatVersion:      finding.DefaultFormatVersion,
		MaxErrors:          0,
		SchemaValidation:   true,
		SemanticValidation: true,
		Logger:             stdLogger{},
	}
}

// Option mutates a Config during New. Later options override earlier
// ones when they touch the same field.
type Option func(*Config)

// WithFormatVersion sets which release's version-restricted checks are
// active. The zero value (unset) falls back to finding.DefaultFormatVersion.
func WithFormatVersion(v finding.FormatVersion) Option {
	return func(c *Config) {
		if v != "" {
			c.FormatVersion = v
		}
	}
}

// WithMaxErrors caps the number of findings a single Validate call
// accumulates before truncating, per finding.Accumulator's semantics. A
// value of zero or less means unlimited.
func WithMaxErrors(n int) Option {
	return func(c *Config) { c.MaxErrors = n }
}

// WithSchemaValidation toggles the content-model/attribute-type pass.
func WithSchemaValidation(enabled bool) Option {
	return func(c *Config) { c.SchemaValidation = enabled }
}

// WithSemanticValidation toggles the Schematron-derived constraint pass.
func WithSemanticValidation(enabled bool) Option {
	return func(c *Config) { c.SemanticValidation = enabled }
}

// WithLogger overrides the default standard-library-backed Logger,
// letting a caller route the validator's two one-shot log events (the
// schematron coverage warning and truncation notice) through slog or
// any other logging setup instead.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}
