package common

import (
	"fmt"
	"io"
	"io/fs"
	"os"

	"interviewcoach/internal/errors"
	"interviewcoach/internal/utils"
)

// FileProcessor reads answer files and writes command output
type FileProcessor struct {
	logger  *errors.Logger
	maxSize int64
}

// NewFileProcessor creates a file processor that rejects inputs larger than maxSize bytes
func NewFileProcessor(logger *errors.Logger, maxSize int64) *FileProcessor {
	return &FileProcessor{logger: logger, maxSize: maxSize}
}

// ReadAnswerFile reads a typed answer. Size and file kind problems are
// validation errors; a missing file or a failed open or read is an io error.
func (fp *FileProcessor) ReadAnswerFile(filename string) (string, error) {
	info, err := utils.StatRegular(filename, fp.maxSize)
	if errors.Is(err, fs.ErrNotExist) {
		return "", errors.NewIOError(errors.ErrCodeFileNotFound,
			fmt.Sprintf("Answer file not found: %s", filename), err)
	}
	if err != nil {
		return "", errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid answer file %s", filename), err)
	}
	if !utils.IsAnswerFile(filename) {
		fp.warn("Answer file may not be a text file", "filename", filename)
	}

	f, err := os.Open(filename)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot open answer file: %s", filename), err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fp.warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	// The file may grow between stat and read
	limit := info.Size()
	if fp.maxSize > 0 {
		limit = fp.maxSize
	}
	content, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read answer file: %s", filename), err)
	}
	if fp.maxSize > 0 && int64(len(content)) > fp.maxSize {
		return "", errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Answer file %s exceeds %s", filename, utils.HumanSize(fp.maxSize)), nil)
	}
	return string(content), nil
}

// WriteOutput writes rendered output, creating parent directories as needed
func (fp *FileProcessor) WriteOutput(filename, content string) error {
	if err := utils.PrepareOutputPath(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}
	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}

func (fp *FileProcessor) warn(msg string, args ...any) {
	if fp.logger != nil {
		fp.logger.Warn(msg, args...)
	}
}
