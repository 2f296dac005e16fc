package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "igfollowers/pkg/errors"
	"igfollowers/pkg/ui"
)

var fixedNow = time.Date(2024, 2, 1, 9, 0, 0, 0, time.Local)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// runCommand executes igdiff and returns its stdout
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := ui.Out
	ui.Out = &bytes.Buffer{}
	t.Cleanup(func() { ui.Out = prev })

	var stdout bytes.Buffer
	cmd := newRootCmd(func() time.Time { return fixedNow })
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestDiffPrintsReport(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.txt", "alice\nbob\ncarol\n")
	newPath := writeFile(t, dir, "new.txt", "carol\nalice\ndave\n")

	stdout, err := runCommand(t, oldPath, newPath, "-q")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Follower Difference Report Generated: 2024-02-01 09:00:00")
	assert.Contains(t, stdout, "  - OLD Snapshot: "+oldPath+" (3 followers)")
	assert.Contains(t, stdout, "Total Lost Followers (Unfollowed): 1")
	assert.Contains(t, stdout, "Net Change in Follower Count:    +0 (Total: 3)")
	assert.Contains(t, stdout, "\nbob\n")
	assert.Contains(t, stdout, "\ndave\n")
}

func TestDiffMissingFile(t *testing.T) {
	dir := t.TempDir()
	newPath := writeFile(t, dir, "new.txt", "alice\n")
	missing := filepath.Join(dir, "followers_20240101_000000.txt")

	stdout, err := runCommand(t, missing, newPath, "-q")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypeInput))
	assert.Contains(t, err.Error(), missing)
	assert.Empty(t, stdout, "no report on failure")
}

func TestDiffWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.txt", "")
	newPath := writeFile(t, dir, "new.txt", "x\ny\n")
	output := filepath.Join(dir, "difference.txt")

	stdout, err := runCommand(t, oldPath, newPath, "--output", output, "-q")
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, stdout, string(data))
	assert.Contains(t, stdout, "(none) - no followers were lost.")
	assert.Contains(t, stdout, "Net Change in Follower Count:    +2 (Total: 2)")
}

func TestDiffLatest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "followers_20240101_090000.txt", "alice\n")
	writeFile(t, dir, "followers_20240301_090000.txt", "alice\nbob\ncarol\n")
	writeFile(t, dir, "followers_20240201_090000.txt", "alice\nbob\n")

	stdout, err := runCommand(t, "--latest", "--dir", dir, "-q")
	require.NoError(t, err)
	assert.Contains(t, stdout, "OLD Snapshot: "+filepath.Join(dir, "followers_20240201_090000.txt")+" (2 followers)")
	assert.Contains(t, stdout, "NEW Snapshot: "+filepath.Join(dir, "followers_20240301_090000.txt")+" (3 followers)")
	assert.Contains(t, stdout, "Total New Followers:             1")
}

func TestDiffArgs(t *testing.T) {
	dir := t.TempDir()

	stdout, err := runCommand(t, "only-one.txt")
	require.Error(t, err)
	assert.Empty(t, stdout, "usage is not printed on bad arguments")

	_, err = runCommand(t, "--latest", "a.txt", "b.txt")
	require.Error(t, err)

	_, err = runCommand(t, "--latest", "--dir", dir, "-q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 0")
}
