package models

// CPUIdentity identifies the host CPU
type CPUIdentity struct {
	Manufacturer string `json:"manufacturer"`
	Brand        string `json:"brand"`
}
