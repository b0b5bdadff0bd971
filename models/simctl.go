package models

// SimctlRecord is a single device entry as it appears under a runtime in
// `simctl list devices -j` output. Pointer fields tell an absent or null
// key apart from a zero value.
type SimctlRecord struct {
	Name        *string `json:"name"`
	IsAvailable *bool   `json:"isAvailable"`
	UDID        *string `json:"udid"`
}

// SimctlDevice is a device picked out of the listing, together with the
// runtime key it was listed under.
type SimctlDevice struct {
	Runtime     string `json:"runtime"`
	Name        string `json:"name"`
	IsAvailable bool   `json:"isAvailable"`
	UDID        string `json:"udid"`
}
