package server

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"interviewcoach/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches a fixed set of files and calls onChange with the files
// that actually changed, after a debounce delay.
type FileWatcher struct {
	mu sync.Mutex

	name  string
	files []string

	lastModTime map[string]time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	onChange func(changed []string)
	logger   *errors.Logger

	running bool
}

// NewFileWatcher creates a watcher. Empty paths are ignored.
func NewFileWatcher(name string, files []string, debounceDelay time.Duration, onChange func([]string), logger *errors.Logger) *FileWatcher {
	if debounceDelay <= 0 {
		debounceDelay = time.Second
	}

	var watched []string
	for _, f := range files {
		if f == "" {
			continue
		}
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		if !slices.Contains(watched, f) {
			watched = append(watched, f)
		}
	}

	return &FileWatcher{
		name:          name,
		files:         watched,
		lastModTime:   make(map[string]time.Time),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		onChange:      onChange,
		logger:        logger,
	}
}

// Start begins watching
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.running {
		return fmt.Errorf("%s watcher is already running", fw.name)
	}
	if len(fw.files) == 0 {
		return fmt.Errorf("%s watcher has no files to watch", fw.name)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	fw.fsWatcher = watcher

	for _, file := range fw.files {
		if stat, err := os.Stat(file); err == nil {
			fw.lastModTime[file] = stat.ModTime()
		}
	}

	// Directories rather than files, so atomic renames are seen.
	dirs := make([]string, 0, len(fw.files))
	for _, file := range fw.files {
		dir := filepath.Dir(file)
		if slices.Contains(dirs, dir) {
			continue
		}
		dirs = append(dirs, dir)
		if err := fw.fsWatcher.Add(dir); err != nil {
			fw.logger.Warn("Failed to watch directory", "watcher", fw.name, "directory", dir, "error", err)
		}
	}

	fw.running = true
	go fw.watchLoop()

	fw.logger.Info("File watcher started",
		"watcher", fw.name,
		"files", fw.files,
		"debounce_delay", fw.debounceDelay)
	return nil
}

// Stop stops the watcher
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return nil
	}
	close(fw.stopChan)
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.running = false
	fw.mu.Unlock()

	if err := fw.fsWatcher.Close(); err != nil {
		fw.logger.LogError(err, "Failed to close file system watcher", "watcher", fw.name)
		return err
	}

	fw.logger.Info("File watcher stopped", "watcher", fw.name)
	return nil
}

func (fw *FileWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-fw.fsWatcher.Events:
			if !ok {
				return
			}
			if fw.shouldProcessEvent(event) {
				fw.scheduleReload()
			}

		case err, ok := <-fw.fsWatcher.Errors:
			if !ok {
				return
			}
			fw.logger.LogError(err, "File watcher error", "watcher", fw.name)

		case <-fw.reloadChan:
			if changed := fw.changedFiles(); len(changed) > 0 {
				fw.logger.Info("Watched files changed", "watcher", fw.name, "files", changed)
				fw.onChange(changed)
			}

		case <-fw.stopChan:
			return
		}
	}
}

func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil {
		name = event.Name
	}
	if !slices.Contains(fw.files, name) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// changedFiles returns watched files whose modification time moved forward
func (fw *FileWatcher) changedFiles() []string {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	var changed []string
	for _, file := range fw.files {
		stat, err := os.Stat(file)
		if err != nil {
			continue
		}
		last, seen := fw.lastModTime[file]
		if !seen || stat.ModTime().After(last) {
			fw.lastModTime[file] = stat.ModTime()
			changed = append(changed, file)
		}
	}
	return changed
}

func (fw *FileWatcher) scheduleReload() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.debounceDelay, func() {
		select {
		case fw.reloadChan <- struct{}{}:
		default:
		}
	})
}

// IsRunning reports whether the watcher is active
func (fw *FileWatcher) IsRunning() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.running
}

// WatchedFiles returns the absolute paths being watched
func (fw *FileWatcher) WatchedFiles() []string {
	return slices.Clone(fw.files)
}
