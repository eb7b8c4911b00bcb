package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatRegular(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "answer.txt")
	require.NoError(t, os.WriteFile(small, []byte("short answer"), 0600))

	info, err := StatRegular(small, 1024)
	require.NoError(t, err)
	assert.EqualValues(t, 12, info.Size())
	_, err = StatRegular(small, 0)
	assert.NoError(t, err)

	_, err = StatRegular(small, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "larger than the 4 B limit")

	_, err = StatRegular("", 0)
	assert.ErrorContains(t, err, "cannot be empty")
	_, err = StatRegular(filepath.Join(dir, "missing.txt"), 0)
	assert.ErrorContains(t, err, "does not exist")
	assert.ErrorIs(t, err, fs.ErrNotExist)
	_, err = StatRegular(dir, 0)
	assert.ErrorContains(t, err, "not a regular file")
}

func TestPrepareOutputPath(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "out.md")

	require.NoError(t, PrepareOutputPath(nested))
	assert.DirExists(t, filepath.Dir(nested))
	assert.NoError(t, PrepareOutputPath(""))
	assert.Error(t, PrepareOutputPath(dir))
}

func TestIsAnswerFile(t *testing.T) {
	assert.True(t, IsAnswerFile("solution.GO"))
	assert.True(t, IsAnswerFile("notes.md"))
	assert.False(t, IsAnswerFile("photo.png"))
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", HumanSize(512))
	assert.Equal(t, "1.0 KB", HumanSize(1024))
	assert.Equal(t, "1.5 MB", HumanSize(1536*1024))
}
