package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewFriedmanCmd tests the friedman command creation.
func TestNewFriedmanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewFriedmanCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "friedman <data.csv>" {
			t.Errorf("expected use 'friedman <data.csv>', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("requires exactly one argument", func(t *testing.T) {
		t.Parallel()
		if cmd.Args == nil {
			t.Error("expected Args validator")
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
	})

	t.Run("has markdown flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("markdown")
		if flag == nil {
			t.Fatal("expected markdown flag")
		}
		if flag.Shorthand != "m" {
			t.Errorf("expected shorthand 'm', got %q", flag.Shorthand)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has column range flags", func(t *testing.T) {
		t.Parallel()
		start := cmd.Flags().Lookup("start-col")
		if start == nil {
			t.Fatal("expected start-col flag")
		}
		if start.DefValue != "-1" {
			t.Errorf("expected default '-1', got %q", start.DefValue)
		}
		end := cmd.Flags().Lookup("end-col")
		if end == nil {
			t.Fatal("expected end-col flag")
		}
		if end.DefValue != "-1" {
			t.Errorf("expected default '-1', got %q", end.DefValue)
		}
	})

	t.Run("has decimals flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("decimals")
		if flag == nil {
			t.Fatal("expected decimals flag")
		}
		if flag.DefValue != "4" {
			t.Errorf("expected default '4', got %q", flag.DefValue)
		}
	})

	t.Run("has history flags", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("history") == nil {
			t.Error("expected history flag")
		}
		if cmd.Flags().Lookup("history-dir") == nil {
			t.Error("expected history-dir flag")
		}
	})
}

// TestFriedmanCmdEndToEnd runs the friedman command against a small CSV
// and checks the written report and comparisons file.
func TestFriedmanCmdEndToEnd(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "study.csv")
	data := "paciente,evaluacion,dolor\n" +
		"p1,1,1\np1,2,2\np1,3,3\n" +
		"p2,1,1\np2,2,2\np2,3,2\n" +
		"p3,1,2\np3,2,2\np3,3,3\n"
	if err := os.WriteFile(csvPath, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(dir, ".clinstat")
	cfg := "defaults:\n  patient-column: paciente\n  round-column: evaluacion\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0600); err != nil {
		t.Fatal(err)
	}

	reportPath := filepath.Join(dir, "results.txt")
	comparisonsPath := filepath.Join(dir, "comparisons.csv")

	var buf bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{
		"friedman", csvPath,
		"-c", cfgPath,
		"-o", reportPath,
		"--comparisons", comparisonsPath,
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	report, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if !strings.Contains(string(report), "FRIEDMAN TEST RESULTS") {
		t.Errorf("expected report header, got:\n%s", report)
	}
	if !strings.Contains(string(report), "dolor") {
		t.Errorf("expected variable name in report, got:\n%s", report)
	}

	comparisons, err := os.ReadFile(comparisonsPath)
	if err != nil {
		t.Fatalf("failed to read comparisons file: %v", err)
	}
	if !strings.Contains(string(comparisons), "p_value") {
		t.Errorf("expected comparisons header, got:\n%s", comparisons)
	}
}

// TestFriedmanCmdMissingInput verifies that a nonexistent input file fails.
func TestFriedmanCmdMissingInput(t *testing.T) {
	var buf bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"friedman", filepath.Join(t.TempDir(), "missing.csv")})

	if err := root.Execute(); err == nil {
		t.Error("expected error for missing input file")
	}
}
