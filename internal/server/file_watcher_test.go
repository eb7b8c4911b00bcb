package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcherReportsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "system.txt")
	other := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(watched, []byte("v1"), 0o600))
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o600))

	changes := make(chan []string, 4)
	w := NewFileWatcher("test", []string{watched, "", watched}, 20*time.Millisecond,
		func(files []string) { changes <- files }, testLogger)
	assert.Equal(t, []string{watched}, w.WatchedFiles())

	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
	assert.True(t, w.IsRunning())
	assert.Error(t, w.Start())

	require.NoError(t, os.WriteFile(other, []byte("y"), 0o600))
	require.NoError(t, os.WriteFile(watched, []byte("v2"), 0o600))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(watched, future, future))

	select {
	case files := <-changes:
		assert.Equal(t, []string{watched}, files)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the change")
	}

	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
	assert.NoError(t, w.Stop())
}

func TestFileWatcherRequiresFiles(t *testing.T) {
	w := NewFileWatcher("empty", nil, 0, func([]string) {}, testLogger)
	assert.Error(t, w.Start())
}
