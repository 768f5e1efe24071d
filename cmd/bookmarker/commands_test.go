package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookmarker/internal/codec"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := out
	out = buf
	t.Cleanup(func() { out = prev })
	return buf
}

func useMemoryStore(t *testing.T) {
	t.Helper()
	t.Setenv("BOOKMARKER_STORE", "memory")
	t.Setenv("BOOKMARKER_LOG_LEVEL", "error")
	t.Setenv("BOOKMARKER_PRETTY_LOG", "false")
}

func TestResetRequiresConfirmation(t *testing.T) {
	err := resetCommand().Run(context.Background(), []string{"reset"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestCommandsRequireArguments(t *testing.T) {
	assert.Error(t, deleteCommand().Run(context.Background(), []string{"delete"}))
	assert.Error(t, importCommand().Run(context.Background(), []string{"import"}))
}

func TestFormatFor(t *testing.T) {
	f, err := formatFor("", "/tmp/bookmarks.csv")
	require.NoError(t, err)
	assert.Equal(t, codec.FormatCSV, f)

	f, err = formatFor("html", "/tmp/bookmarks.csv")
	require.NoError(t, err)
	assert.Equal(t, codec.FormatHTML, f)

	_, err = formatFor("", "/tmp/bookmarks")
	assert.Error(t, err)
}

func TestImportThenExport(t *testing.T) {
	useMemoryStore(t)
	buf := captureOutput(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(src, []byte(`[{"title":"Go","url":"https://go.dev"}]`), 0o644))

	require.NoError(t, importCommand().Run(context.Background(), []string{"import", src}))
	assert.Contains(t, buf.String(), "imported 1 bookmarks")

	// Each invocation opens a fresh in-memory store.
	buf.Reset()
	require.NoError(t, exportCommand().Run(context.Background(), []string{"export", "--format", "json"}))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestCategories(t *testing.T) {
	useMemoryStore(t)
	buf := captureOutput(t)

	require.NoError(t, categoriesCommand().Run(context.Background(), []string{"categories", "add", "deep", "reading"}))
	assert.Contains(t, buf.String(), "deep reading")
}
