package cmd

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlUnmarshalImpl is separated for clarity/testability
func yamlUnmarshalImpl(b []byte, out any) error {
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("yaml unmarshal: %w", err)
	}
	return nil
}

// UnmarshalYAML supports both "command" and "cmd" keys, and "shell" as an
// alias for "mode".
func (c *commandEntry) UnmarshalYAML(value *yaml.Node) error {
	var aux struct {
		Command string   `yaml:"command"`
		Cmd     string   `yaml:"cmd"`
		Args    []string `yaml:"args"`
		Title   string   `yaml:"title"`
		Mode    string   `yaml:"mode"`
		Shell   string   `yaml:"shell"`
		Timeout string   `yaml:"timeout"`
		NoWait  bool     `yaml:"no_wait"`
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	c.Command = aux.Command
	if c.Command == "" {
		c.Command = aux.Cmd
	}
	c.Mode = aux.Mode
	if c.Mode == "" {
		c.Mode = aux.Shell
	}
	c.Args = aux.Args
	c.Title = aux.Title
	c.Timeout = aux.Timeout
	c.NoWait = aux.NoWait
	return nil
}
