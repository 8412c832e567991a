package domain

// Preferences is what the preferences form submits. Values are forwarded as typed.
type Preferences struct {
	TripType string `json:"tripType"`
	Budget   string `json:"budget"`
}

type Recommendations struct {
	Recommendations []string `json:"recommendations"`
}
