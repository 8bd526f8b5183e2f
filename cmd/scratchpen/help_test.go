// ABOUTME: Test suite for the help output.
// ABOUTME: Verifies usage sections, flags, and environment status rendering.

package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintHelpContainsSections(t *testing.T) {
	var buf bytes.Buffer
	printHelp(&buf, "1.2.3")
	out := buf.String()

	for _, want := range []string{
		"scratchpen 1.2.3",
		"Usage:",
		"Server Flags:",
		"-port",
		"-watch",
		"-tui",
		"Examples:",
		"SCRATCHPEN_BIND",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected help to contain %q", want)
		}
	}
}

func TestEnvStatus(t *testing.T) {
	t.Setenv("SCRATCHPEN_HELP_TEST", "x")
	if got := envStatus("SCRATCHPEN_HELP_TEST"); got != "[set]" {
		t.Errorf("expected [set], got %q", got)
	}
	if got := envStatus("SCRATCHPEN_HELP_TEST_MISSING"); got != "[not set]" {
		t.Errorf("expected [not set], got %q", got)
	}
}
