package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// writeCommandSection writes one command's results
func writeCommandSection(w io.Writer, res yamlCmdResult) error {
	bw := bufio.NewWriter(w)
	_, _ = fmt.Fprintln(bw, strings.Repeat("-", 80))
	if res.Title != "" {
		_, _ = fmt.Fprintf(bw, "Title: %s\n", res.Title)
	}
	_, _ = fmt.Fprintf(bw, "Command: %s\n", res.Command)
	_, _ = fmt.Fprintf(bw, "Mode: %s\n", res.Mode)
	if res.Timeout != "" {
		_, _ = fmt.Fprintf(bw, "Timeout: %s\n", res.Timeout)
	}
	if res.NoWait {
		_, _ = fmt.Fprintln(bw, "No Wait: true")
	}
	if res.Error != "" {
		_, _ = fmt.Fprintf(bw, "Error: %s\n", res.Error)
	}
	_, _ = fmt.Fprintln(bw, "Output:")
	_, _ = fmt.Fprintln(bw, "---8<---")
	_, _ = bw.WriteString(res.Output)
	if !strings.HasSuffix(res.Output, "\n") {
		_, _ = bw.WriteString("\n")
	}
	_, _ = fmt.Fprintln(bw, "---8<---")
	return bw.Flush()
}

// writeTextReport renders the report in the plain text layout.
func writeTextReport(w io.Writer, r *yamlReport) error {
	if err := writeHeader(w, r); err != nil {
		return err
	}
	for _, res := range r.Results {
		if err := writeCommandSection(w, res); err != nil {
			return err
		}
	}
	if len(r.Planned) > 0 {
		_, _ = fmt.Fprintln(w, strings.Repeat("-", 80))
		_, _ = fmt.Fprintln(w, "Planned:")
		for _, l := range r.Planned {
			_, _ = fmt.Fprintln(w, l)
		}
	}
	return nil
}

// writeReport dispatches on the --format value.
func writeReport(w io.Writer, format string, r *yamlReport) error {
	if format == "text" {
		return writeTextReport(w, r)
	}
	return writeYAMLReport(w, r)
}
