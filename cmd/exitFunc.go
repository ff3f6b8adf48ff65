package cmd

import "os"

// exitFunc is replaced in tests to capture the exit code instead of
// terminating the process.
var exitFunc = os.Exit
