package types

// StoreConfig holds settings for the snapshot store.
// Per prd003-snapshot-store R1.1.
type StoreConfig struct {
	// DBPath is the SQLite database file (default "pubcite.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}

// AnnotateConfig holds settings for the annotate command.
// Per prd004-cli R2.1-R2.4.
type AnnotateConfig struct {
	// Sanitize controls whether annotated markup is passed through the
	// allow-list sanitizer before output (default true).
	Sanitize bool `json:"sanitize" yaml:"sanitize"`

	// OutputPath is where annotated markup is written; empty means stdout.
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`

	// Verbose enables per-citation diagnostics on stderr.
	Verbose bool `json:"verbose" yaml:"verbose"`
}

// Config groups all pubcite settings for config-file unmarshaling.
type Config struct {
	Store    StoreConfig    `json:"store" yaml:"store"`
	Annotate AnnotateConfig `json:"annotate" yaml:"annotate"`
}
