package common

import (
	"fmt"
	"io"

	"interviewcoach/internal/errors"
	"interviewcoach/internal/formatters"
)

// CommandConfig holds the output settings shared by one-shot commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
	MaxFileSize  int64
}

// OutputHandler renders results and sends them to stdout or a file
type OutputHandler struct {
	files    *FileProcessor
	registry *formatters.FormatterRegistry
	stdout   io.Writer
	logger   *errors.Logger
}

// NewOutputHandler creates an output handler that prints to stdout when no file is set
func NewOutputHandler(registry *formatters.FormatterRegistry, stdout io.Writer, logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		files:    NewFileProcessor(logger, 0),
		registry: registry,
		stdout:   stdout,
		logger:   logger,
	}
}

// HandleOutput renders data in the configured format and writes it out
func (oh *OutputHandler) HandleOutput(data any, cfg CommandConfig) error {
	rendered, err := oh.registry.Format(data, cfg.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", cfg.OutputFormat), err)
	}

	if cfg.OutputFile == "" {
		_, err = fmt.Fprintln(oh.stdout, rendered)
		return err
	}
	if err := oh.files.WriteOutput(cfg.OutputFile, rendered); err != nil {
		return err
	}
	oh.logger.Info("Output written", "file", cfg.OutputFile, "format", cfg.OutputFormat)
	return nil
}
