// ABOUTME: Help display for the scratchpen CLI with grouped flags, examples, and environment status.
// ABOUTME: Provides printHelp for usage output and envStatus for configured variables.
package main

import (
	"fmt"
	"io"
	"os"
)

// printHelp writes a formatted help message to w, including usage patterns,
// grouped flags, examples, and environment status.
func printHelp(w io.Writer, ver string) {
	fmt.Fprintf(w, "scratchpen %s — local browser playground for HTML, CSS, JS, Python, and Markdown\n", ver)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  scratchpen                       Start the playground server")
	fmt.Fprintln(w, "  scratchpen -watch <dir>          Mirror a directory into a pad while serving")
	fmt.Fprintln(w, "  scratchpen -tui                  Serve with the terminal activity console")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Server Flags:")
	fmt.Fprintln(w, "  -port <port>          Listen port on 127.0.0.1 (default: 3475)")
	fmt.Fprintln(w, "  -bind <addr>          Full bind address, overrides -port")
	fmt.Fprintln(w, "  -data-dir <dir>       Snapshot database directory (default: $XDG_DATA_HOME/scratchpen)")
	fmt.Fprintln(w, "  -delay <ms>           Preview debounce delay in milliseconds (default: 400)")
	fmt.Fprintln(w, "  -no-persist           Disable snapshot persistence")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Other:")
	fmt.Fprintln(w, "  -watch <dir>          Watch a directory and mirror changed files into a pad")
	fmt.Fprintln(w, "  -tui                  Run with the interactive terminal console")
	fmt.Fprintln(w, "  -version              Print version and exit")
	fmt.Fprintln(w, "  -help                 Show this help")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  scratchpen")
	fmt.Fprintln(w, "  scratchpen -port 8080")
	fmt.Fprintln(w, "  scratchpen -watch ./site -tui")
	fmt.Fprintln(w, "  scratchpen -delay 150 -no-persist")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  SCRATCHPEN_BIND             %s\n", envStatus("SCRATCHPEN_BIND"))
	fmt.Fprintf(w, "  SCRATCHPEN_DATA_DIR         %s\n", envStatus("SCRATCHPEN_DATA_DIR"))
	fmt.Fprintf(w, "  SCRATCHPEN_ALLOW_REMOTE     %s\n", envStatus("SCRATCHPEN_ALLOW_REMOTE"))
	fmt.Fprintf(w, "  SCRATCHPEN_RENDER_DELAY_MS  %s\n", envStatus("SCRATCHPEN_RENDER_DELAY_MS"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Flags take precedence over environment variables.")
}

// envStatus returns "[set]" if the named environment variable is non-empty,
// or "[not set]" otherwise.
func envStatus(key string) string {
	if os.Getenv(key) != "" {
		return "[set]"
	}
	return "[not set]"
}
