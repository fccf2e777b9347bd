package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history" {
			t.Errorf("expected use 'history', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has limit flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("limit")
		if flag == nil {
			t.Fatal("expected limit flag")
		}
		if flag.Shorthand != "n" {
			t.Errorf("expected shorthand 'n', got %q", flag.Shorthand)
		}
		if flag.DefValue != "20" {
			t.Errorf("expected default '20', got %q", flag.DefValue)
		}
	})

	t.Run("has history-dir flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("history-dir") == nil {
			t.Error("expected history-dir flag")
		}
	})
}

// TestHistoryCmdNoDatabase verifies the friendly error when no run has
// ever been archived in the given directory.
func TestHistoryCmdNoDatabase(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"history", "--history-dir", t.TempDir()})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected error for empty history directory")
	}
	if !strings.Contains(err.Error(), "no run history found") {
		t.Errorf("expected friendly error message, got %q", err.Error())
	}
}

// TestHistoryCmdListsArchivedRuns archives a run with --history and then
// lists it with the history command.
func TestHistoryCmdListsArchivedRuns(t *testing.T) {
	dir := t.TempDir()
	historyDir := filepath.Join(dir, "history")

	csvPath := filepath.Join(dir, "study.csv")
	data := "paciente,evaluacion,dolor\n" +
		"p1,1,1\np1,2,2\np1,3,3\n" +
		"p2,1,1\np2,2,2\np2,3,2\n" +
		"p3,1,2\np3,2,2\np3,3,3\n"
	if err := os.WriteFile(csvPath, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(dir, ".clinstat")
	if err := os.WriteFile(cfgPath, []byte("defaults: {}\n"), 0600); err != nil {
		t.Fatal(err)
	}

	// Archive one run.
	var analyzeBuf bytes.Buffer
	analyze := NewRootCmd()
	analyze.SetOut(&analyzeBuf)
	analyze.SetErr(&analyzeBuf)
	analyze.SetArgs([]string{
		"friedman", csvPath,
		"-c", cfgPath,
		"-o", filepath.Join(dir, "results.txt"),
		"--history", "--history-dir", historyDir,
	})
	if err := analyze.Execute(); err != nil {
		t.Fatalf("friedman Execute() error = %v", err)
	}

	// List it back.
	var buf bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"history", "--history-dir", historyDir})
	if err := root.Execute(); err != nil {
		t.Fatalf("history Execute() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "friedman") {
		t.Errorf("expected archived run kind in output, got:\n%s", output)
	}
	if !strings.Contains(output, "study.csv") {
		t.Errorf("expected input path in output, got:\n%s", output)
	}
	if !strings.Contains(output, "ID\tDATE\tTEST") && !strings.Contains(output, "ID ") {
		t.Errorf("expected table header in output, got:\n%s", output)
	}
}
