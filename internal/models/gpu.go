package models

// GPUStatus identifies the first reported graphics controller
type GPUStatus struct {
	Model     string `json:"model"`
	Vendor    string `json:"vendor,omitempty"`
	VRAMBytes uint64 `json:"vram_bytes"`
}
