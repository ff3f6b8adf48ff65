package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// writeHeader writes the report metadata and device identity for the text
// report format.
func writeHeader(w io.Writer, r *yamlReport) error {
	bw := bufio.NewWriter(w)
	_, _ = fmt.Fprintf(bw, "Name: %s\n", r.Name)
	_, _ = fmt.Fprintf(bw, "Description: %s\n", r.Description)
	_, _ = fmt.Fprintf(bw, "Generated: %s\n", r.Generated)
	_, _ = fmt.Fprintf(bw, "Device: %s\n", r.Device.Host)
	if r.Device.Version != "" {
		_, _ = fmt.Fprintf(bw, "Version: %s\n", r.Device.Version)
	}
	if r.Device.Serial != "" {
		_, _ = fmt.Fprintf(bw, "Serial: %s\n", r.Device.Serial)
	}
	for _, e := range r.Device.Errors {
		_, _ = fmt.Fprintf(bw, "Identity Error: %s\n", e)
	}
	_, _ = fmt.Fprintf(bw, "Command Count: %d\n", len(r.Results))
	_, _ = fmt.Fprintln(bw, strings.Repeat("=", 80))
	return bw.Flush()
}
