package deps

import (
	"os"
	"path/filepath"
	"testing"

	"subsyncarr/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for unset command: %q", results[2].Detail)
	}
}

func TestRequirementsMarkDisabledEnginesOptional(t *testing.T) {
	cfg := config.Default()
	cfg.Sync.IncludeEngines = []string{"alass"}
	cfg.Engines.AlassBinary = "/opt/alass/alass-cli"

	reqs := Requirements(&cfg)
	if len(reqs) != 4 {
		t.Fatalf("expected 4 requirements, got %d", len(reqs))
	}
	byName := map[string]Requirement{}
	for _, req := range reqs {
		byName[req.Name] = req
	}
	if byName["ffprobe"].Optional {
		t.Fatal("ffprobe must be required")
	}
	if byName["alass"].Optional || byName["alass"].Command != "/opt/alass/alass-cli" {
		t.Fatalf("unexpected alass requirement: %#v", byName["alass"])
	}
	if !byName["ffsubsync"].Optional || !byName["autosubsync"].Optional {
		t.Fatal("disabled engines should be optional")
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "ffprobe", Available: false},
		{Name: "alass", Available: true},
		{Name: "autosubsync", Available: false, Optional: true},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0] != "ffprobe" {
		t.Fatalf("unexpected missing list: %v", missing)
	}
}
