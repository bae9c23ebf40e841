package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"devmon/internal/models"
)

// SettingsService reads the developer's editor settings file (VSCode
// settings.json), tolerating the JSON-with-comments dialect the editor
// writes.
type SettingsService struct {
	path string
}

var settingsService *SettingsService

// InitSettingsService resolves the settings location. An empty override uses
// the OS-specific default.
func InitSettingsService(override string) *SettingsService {
	path := override
	if path == "" {
		path = DefaultSettingsPath()
	}
	settingsService = &SettingsService{path: path}
	return settingsService
}

// GetSettingsService returns the initialized settings service.
func GetSettingsService() *SettingsService {
	return settingsService
}

// DefaultSettingsPath returns the per-OS VSCode user settings location.
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "Code", "User", "settings.json")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Code", "User", "settings.json")
	default:
		return filepath.Join(home, ".config", "Code", "User", "settings.json")
	}
}

// Load reads and decodes the settings file. A missing file yields empty
// settings, not an error; a malformed one is an error.
func (s *SettingsService) Load() (*models.EditorSettings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &models.EditorSettings{
				Path:   s.path,
				Exists: false,
				Values: map[string]any{},
			}, nil
		}
		return nil, fmt.Errorf("failed to read editor settings: %w", err)
	}

	values := map[string]any{}
	if err := json.Unmarshal(StripComments(data), &values); err != nil {
		return nil, fmt.Errorf("failed to parse editor settings: %w", err)
	}

	return &models.EditorSettings{
		Path:   s.path,
		Exists: true,
		Values: values,
	}, nil
}

// StripComments removes // line comments and /* */ block comments from
// JSON-with-comments input while preserving string contents, including
// escaped quotes and comment-like sequences inside strings. Line comments
// keep their terminating newline so decode errors still point at the right
// line.
func StripComments(data []byte) []byte {
	const (
		stateCode = iota
		stateString
		stateStringEscape
		stateLineComment
		stateBlockComment
	)

	out := make([]byte, 0, len(data))
	state := stateCode

	for i := 0; i < len(data); i++ {
		c := data[i]

		switch state {
		case stateCode:
			switch {
			case c == '"':
				state = stateString
				out = append(out, c)
			case c == '/' && i+1 < len(data) && data[i+1] == '/':
				state = stateLineComment
				i++
			case c == '/' && i+1 < len(data) && data[i+1] == '*':
				state = stateBlockComment
				i++
			default:
				out = append(out, c)
			}

		case stateString:
			out = append(out, c)
			if c == '\\' {
				state = stateStringEscape
			} else if c == '"' {
				state = stateCode
			}

		case stateStringEscape:
			out = append(out, c)
			state = stateString

		case stateLineComment:
			if c == '\n' {
				state = stateCode
				out = append(out, c)
			}

		case stateBlockComment:
			if c == '*' && i+1 < len(data) && data[i+1] == '/' {
				state = stateCode
				i++
			}
		}
	}

	return out
}
