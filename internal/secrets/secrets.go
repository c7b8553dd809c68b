// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
//
// Supported key files: huggingface-api-key, openai-api-key.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/apa-formatter/pkg/types"
)

// Key file names.
const (
	HuggingFaceKey = "huggingface-api-key"
	OpenAIKey      = "openai-api-key"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// ApplyCleanup sets cfg.APIKey from the key file matching cfg.Provider when
// no key is configured already.
func ApplyCleanup(cfg *types.CleanupConfig, secrets map[string]string) {
	if cfg.APIKey != "" {
		return
	}
	switch cfg.Provider {
	case types.CleanupHuggingFace:
		cfg.APIKey = secrets[HuggingFaceKey]
	case types.CleanupOpenAI:
		cfg.APIKey = secrets[OpenAIKey]
	}
}
