package cmd

import (
	"bufio"
	"bytes"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlReport is the top-level structure serialized to the output YAML file:
// manifest metadata, the device identity read at the start of the session,
// and the per-command results in manifest order.
type yamlReport struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Generated   string          `yaml:"generated"`
	Session     string          `yaml:"session,omitempty"`
	Device      yamlDevice      `yaml:"device"`
	Planned     []string        `yaml:"planned,omitempty"`
	Results     []yamlCmdResult `yaml:"results,omitempty"`
}

// yamlDevice captures which access point was driven and what it reported
// about itself. Errors holds identity lookups that failed without aborting
// the run.
type yamlDevice struct {
	Host    string   `yaml:"host"`
	Version string   `yaml:"version,omitempty"`
	Serial  string   `yaml:"serial,omitempty"`
	Errors  []string `yaml:"errors,omitempty"`
}

// yamlCmdResult records the outcome of a single command execution.
type yamlCmdResult struct {
	Title   string `yaml:"title,omitempty"`
	Command string `yaml:"command"`
	Mode    string `yaml:"mode"`
	Timeout string `yaml:"timeout,omitempty"`
	NoWait  bool   `yaml:"no_wait,omitempty"`
	Error   string `yaml:"error,omitempty"`
	Output  string `yaml:"output"`
}

// newYAMLReport constructs a report seeded with manifest metadata and a
// generated timestamp.
func newYAMLReport(mf *manifest, host string) *yamlReport {
	return &yamlReport{
		Name:        mf.Name,
		Description: mf.Description,
		Generated:   time.Now().Format(time.RFC3339),
		Device:      yamlDevice{Host: host},
	}
}

// setIdentity records the version and serial lookups. A failed lookup is
// kept as an error string instead of a value.
func (r *yamlReport) setIdentity(version string, versionErr error, serial string, serialErr error) {
	r.Device.Version = version
	r.Device.Serial = serial
	for _, err := range []error{versionErr, serialErr} {
		if err != nil {
			r.Device.Errors = append(r.Device.Errors, err.Error())
		}
	}
}

// addResult appends a command result.
func (r *yamlReport) addResult(res yamlCmdResult) {
	r.Results = append(r.Results, res)
}

// writeYAMLReport serializes the report to YAML with indentation and writes to
// the provided writer in a buffered manner for efficiency.
func writeYAMLReport(w io.Writer, r *yamlReport) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		_ = enc.Close()
		return err
	}
	_ = enc.Close()
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(buf.Bytes()); err != nil {
		return err
	}
	return bw.Flush()
}
