package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// answerExtensions are the file types accepted as typed answers
var answerExtensions = []string{".txt", ".md", ".markdown", ".text", ".go", ".py", ".js", ".ts", ".java", ".sql", ".sh"}

// StatRegular returns the file info of a regular file no larger than maxSize
// bytes. A maxSize of zero disables the size check.
func StatRegular(filename string, maxSize int64) (fs.FileInfo, error) {
	if filename == "" {
		return nil, fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	switch {
	case os.IsNotExist(err):
		return nil, fmt.Errorf("file does not exist: %s: %w", filename, fs.ErrNotExist)
	case err != nil:
		return nil, fmt.Errorf("cannot access file %s: %w", filename, err)
	case !info.Mode().IsRegular():
		return nil, fmt.Errorf("not a regular file: %s", filename)
	case maxSize > 0 && info.Size() > maxSize:
		return nil, fmt.Errorf("file %s is %s, larger than the %s limit",
			filename, HumanSize(info.Size()), HumanSize(maxSize))
	}
	return info, nil
}

// PrepareOutputPath rejects directory targets and creates missing parent
// directories. An empty path means stdout and is always accepted.
func PrepareOutputPath(filename string) error {
	if filename == "" {
		return nil
	}
	if info, err := os.Stat(filename); err == nil && info.IsDir() {
		return fmt.Errorf("output path is a directory: %s", filename)
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("cannot create directory %s: %w", dir, err)
		}
	}
	return nil
}

// IsAnswerFile reports whether the file has a text or source code extension
func IsAnswerFile(filename string) bool {
	return slices.Contains(answerExtensions, strings.ToLower(filepath.Ext(filename)))
}

// HumanSize renders a byte count with a binary unit suffix
func HumanSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
