// =============================================================================
// commands_test.go - Tests for the exec, tree and journal Subcommands
// =============================================================================

package main

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// =============================================================================
// exec
// =============================================================================

func TestExecPrintsReply(t *testing.T) {
	host, bridge := startHost(t)
	out, _, err := runCLI(t, "", "--socket", bridge.Path(), "exec", "GetWidth")
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if out != "1920\n" {
		t.Errorf("exec printed %q", out)
	}
	if got := host.Lines(); !slices.Equal(got, []string{"tv_GetWidth"}) {
		t.Errorf("sent %v", got)
	}
}

func TestExecJoinsArguments(t *testing.T) {
	host, bridge := startHost(t)
	if _, _, err := runCLI(t, "", "--socket", bridge.Path(), "exec", "ClipName", "102", `"Shot A"`); err != nil {
		t.Fatalf("exec: %v", err)
	}
	out, _, err := runCLI(t, "", "--socket", bridge.Path(), "exec", "ClipName", "102")
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if out != `"Shot A"`+"\n" {
		t.Errorf("clip name reply = %q", out)
	}
	if host.Count("tv_ClipName") != 2 {
		t.Errorf("sent %v", host.Lines())
	}
}

func TestExecUndo(t *testing.T) {
	host, bridge := startHost(t)
	out, _, err := runCLI(t, "", "--socket", bridge.Path(), "exec", "--undo", "add ink", "LayerCreate", "ink")
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if strings.TrimSpace(out) != "104" {
		t.Errorf("exec printed %q", out)
	}
	if steps := host.UndoSteps(); !slices.Equal(steps, []string{"add ink"}) {
		t.Errorf("undo steps = %v", steps)
	}
}

func TestExecHostError(t *testing.T) {
	_, bridge := startHost(t)
	_, _, err := runCLI(t, "", "--socket", bridge.Path(), "exec", "tv_Bogus")
	if err == nil || !strings.Contains(err.Error(), "unknown command tv_Bogus") {
		t.Errorf("exec error = %v", err)
	}
}

func TestExecRequiresCommand(t *testing.T) {
	if _, _, err := runCLI(t, "", "exec"); err == nil {
		t.Error("expected an error without a command")
	}
}

func TestExecConnectionRefused(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.sock")
	if _, _, err := runCLI(t, "", "--socket", missing, "exec", "GetWidth"); err == nil {
		t.Error("expected a dial error")
	}
}

// =============================================================================
// tree
// =============================================================================

func TestTree(t *testing.T) {
	_, bridge := startHost(t)
	out, _, err := runCLI(t, "", "--socket", bridge.Path(), "tree")
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	want := "project P0001  " + testProjectPath + "\n" +
		"  scene 103\n" +
		"    clip 102  Untitled\n" +
		"      layer 101  Layer 1\n"
	if out != want {
		t.Errorf("tree output:\n%s\nwant:\n%s", out, want)
	}
}

func TestTreeFollowsChanges(t *testing.T) {
	_, bridge := startHost(t)
	if _, _, err := runCLI(t, "", "--socket", bridge.Path(), "exec", "LayerCreate", "ink"); err != nil {
		t.Fatal(err)
	}
	out, _, err := runCLI(t, "", "--socket", bridge.Path(), "tree", "--current")
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if !strings.Contains(out, "layer 104  ink\n") || !strings.Contains(out, "layer 101  Layer 1\n") {
		t.Errorf("tree output:\n%s", out)
	}
}

// =============================================================================
// journal
// =============================================================================

func TestJournalRecordsAndLists(t *testing.T) {
	_, bridge := startHost(t)
	db := filepath.Join(t.TempDir(), "journal.db")

	if _, _, err := runCLI(t, "", "--socket", bridge.Path(), "--journal", db, "exec", "GetWidth"); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if _, _, err := runCLI(t, "", "--socket", bridge.Path(), "--journal", db, "exec", "tv_Bogus"); err == nil {
		t.Fatal("expected tv_Bogus to fail")
	}

	out, _, err := runCLI(t, "", "--journal", db, "journal")
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got:\n%s", out)
	}
	if !strings.Contains(lines[0], "tv_Bogus") || !strings.Contains(lines[0], "! ") {
		t.Errorf("newest entry should be the failure: %q", lines[0])
	}
	if !strings.Contains(lines[1], "tv_GetWidth") || !strings.Contains(lines[1], "→ 1920") {
		t.Errorf("oldest entry should be tv_GetWidth: %q", lines[1])
	}

	out, _, err = runCLI(t, "", "--journal", db, "journal", "--limit", "1")
	if err != nil {
		t.Fatalf("journal --limit: %v", err)
	}
	if n := strings.Count(strings.TrimSpace(out), "\n"); n != 0 {
		t.Errorf("--limit 1 printed:\n%s", out)
	}
}

func TestJournalEmpty(t *testing.T) {
	out, _, err := runCLI(t, "", "--journal", filepath.Join(t.TempDir(), "journal.db"), "journal")
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if out != "No commands recorded.\n" {
		t.Errorf("journal printed %q", out)
	}
}

func TestJournalNotConfigured(t *testing.T) {
	_, _, err := runCLI(t, "", "journal")
	if err == nil || !strings.Contains(err.Error(), "no journal configured") {
		t.Errorf("journal error = %v", err)
	}
}
