package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// defaultPromptDir is the subdirectory within the user's home directory.
const defaultPromptDir = ".config/inkwell/prompts"

// ErrPromptNotFound is returned when no prompt file exists at the resolved path.
var ErrPromptNotFound = errors.New("prompt file not found")

// ResolvePromptPath returns configuredPath when absolute, otherwise the file
// under ~/.config/inkwell/prompts named configuredPath (or defaultFilename).
func ResolvePromptPath(configuredPath, defaultFilename string) (string, error) {
	if filepath.IsAbs(configuredPath) {
		return configuredPath, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	filename := configuredPath
	if filename == "" {
		filename = defaultFilename
	}
	return filepath.Join(homeDir, defaultPromptDir, filename), nil
}

// LoadPromptContent resolves the path for a prompt template and reads its content.
func LoadPromptContent(configuredPath, defaultFilename string) (string, error) {
	finalPath, err := ResolvePromptPath(configuredPath, defaultFilename)
	if err != nil {
		return "", err
	}

	promptBytes, err := os.ReadFile(finalPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w at '%s'", ErrPromptNotFound, finalPath)
		}
		return "", fmt.Errorf("failed to read prompt file '%s': %w", finalPath, err)
	}
	return string(promptBytes), nil
}
