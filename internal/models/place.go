package models

// Coordinates is a WGS84 lat/lng pair. Both fields are always present
// together; a partial coordinate is treated as absent upstream.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CandidatePlace is a point of interest returned by the nearby-place search,
// before walking-time filtering. Its lifetime is one search request.
type CandidatePlace struct {
	Name     string        `json:"name"`
	Location Coordinates   `json:"location"`
	Category PlaceCategory `json:"category"`
}

// ReachablePlace is a candidate whose walking time from the search origin is
// within the user's travel budget.
type ReachablePlace struct {
	CandidatePlace
	WalkingMinutes float64 `json:"walkingMinutes"`
	MarkerColor    string  `json:"markerColor"`
}
