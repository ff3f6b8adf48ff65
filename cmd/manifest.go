package cmd

// manifest models the YAML schema consumed by "rks run". It captures the
// report metadata, optional connection defaults for the access point, and
// the ordered list of commands to execute in one session.
type manifest struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Device      deviceDefaults `yaml:"device,omitempty"`
	Commands    []commandEntry `yaml:"commands"`
}

// deviceDefaults describes the access point when not provided via CLI flags.
// CLI flags and RKS_* variables take precedence over these defaults when set.
type deviceDefaults struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port,omitempty"`
	User string `yaml:"user"`
}
