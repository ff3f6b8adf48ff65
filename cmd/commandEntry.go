package cmd

type commandEntry struct {
	// "command" is preferred; "cmd" also accepted during unmarshal
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	// Optional display title for the report entry
	Title string `yaml:"title,omitempty"`
	// Shell the command runs in: vendor (rkscli) or general
	Mode string `yaml:"mode"`
	// Optional per-command timeout like "30s"; overrides global if set
	Timeout string `yaml:"timeout,omitempty"`
	// Send without waiting for the prompt to return
	NoWait bool `yaml:"no_wait,omitempty"`
}
