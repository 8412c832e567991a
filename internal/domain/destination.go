package domain

type Destination struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	State       string   `json:"state"`
	Description string   `json:"description,omitempty"`
	AvgRating   *float64 `json:"avgRating,omitempty"`
	EstCost     *float64 `json:"estCost,omitempty"` // MYR per trip, nil when unknown
}

type Rating struct {
	UserID string `json:"userId"`
	Place  string `json:"place"`
	Score  int    `json:"rating"`
}

func (r Rating) Valid() bool { return r.Score >= 1 && r.Score <= 5 }
