package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Prompt kinds
const (
	PromptSystem = "system"
	PromptUser   = "user"
)

type promptKey struct {
	operation string
	kind      string
}

type loadedPrompt struct {
	content string
	path    string
}

// PromptStore holds prompt bodies read from files. It is safe for concurrent
// use and can be refreshed while the server is running.
type PromptStore struct {
	mu      sync.RWMutex
	prompts map[promptKey]loadedPrompt
}

// NewPromptStore creates an empty prompt store
func NewPromptStore() *PromptStore {
	return &PromptStore{prompts: make(map[promptKey]loadedPrompt)}
}

// Get returns the loaded prompt for an operation, or "" when none was loaded
func (s *PromptStore) Get(operation, kind string) string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prompts[promptKey{operation, kind}].content
}

// Set stores prompt content for an operation
func (s *PromptStore) Set(operation, kind, content, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts[promptKey{operation, kind}] = loadedPrompt{content: content, path: path}
}

// Len returns the number of loaded prompts
func (s *PromptStore) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.prompts)
}

// Files returns the distinct file paths backing loaded prompts, sorted
func (s *PromptStore) Files() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var files []string
	for _, p := range s.prompts {
		if p.path != "" && !seen[p.path] {
			seen[p.path] = true
			files = append(files, p.path)
		}
	}
	sort.Strings(files)
	return files
}

// ReloadFile re-reads path and updates every prompt loaded from it.
// It returns the number of prompts updated. On error the previous content is kept.
func (s *PromptStore) ReloadFile(path string) (int, error) {
	content, err := readPromptFile(path)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	updated := 0
	for key, p := range s.prompts {
		if p.path == path {
			s.prompts[key] = loadedPrompt{content: content, path: path}
			updated++
		}
	}
	return updated, nil
}

// LoadPrompts reads every configured prompt file into a new PromptStore.
// Operation-specific files take precedence over global ones.
func (c *Config) LoadPrompts() (*PromptStore, error) {
	store := NewPromptStore()

	var missing []string
	for _, op := range []string{OperationGenerate, OperationEvaluate} {
		opCfg, err := c.GetOperationConfig(op)
		if err != nil {
			return nil, err
		}
		systemFile, userFile := opCfg.CustomPrompts.PromptFiles(op)
		for kind, file := range map[string]string{PromptSystem: systemFile, PromptUser: userFile} {
			if file == "" {
				continue
			}
			absPath, err := filepath.Abs(file)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", op, kind, file, err)
			}
			content, err := readPromptFile(absPath)
			if err != nil {
				missing = append(missing, err.Error())
				continue
			}
			store.Set(op, kind, content, absPath)
			log.Printf("[CONFIG] Loaded %s %s prompt from file: %s (%d characters)", op, kind, absPath, len(content))
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("prompt file validation failed:\n%s", strings.Join(missing, "\n"))
	}

	if store.Len() == 0 {
		log.Println("[CONFIG] No custom prompt files loaded - using configured or built-in prompts")
	}
	return store, nil
}

func readPromptFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("prompt file not found: %s", path)
		}
		return "", fmt.Errorf("failed to read prompt file '%s': %w", path, err)
	}
	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("prompt file '%s' is empty", path)
	}
	return trimmed, nil
}
