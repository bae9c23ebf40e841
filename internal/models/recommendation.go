package models

import "time"

// Recommendation is the markdown advice returned by the generative AI
// provider for one snapshot.
type Recommendation struct {
	Markdown    string    `json:"markdown"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}

// EditorSettings is the decoded editor configuration with the path it was
// loaded from. Values is empty when the settings file does not exist.
type EditorSettings struct {
	Path   string         `json:"path"`
	Exists bool           `json:"exists"`
	Values map[string]any `json:"values"`
}
