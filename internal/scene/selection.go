package scene

// Selection holds the selected location or journey. At most one is set.
type Selection struct {
	LocationID string `json:"locationId,omitempty"`
	JourneyID  string `json:"journeyId,omitempty"`
}

// SelectLocation selects a location and clears any journey.
func SelectLocation(id string) Selection {
	return Selection{LocationID: id}
}

// SelectJourney selects a journey and clears any location.
func SelectJourney(id string) Selection {
	return Selection{JourneyID: id}
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return s.LocationID == "" && s.JourneyID == ""
}

// Hover is the entity under the pointer, if any.
type Hover struct {
	LocationID string `json:"locationId,omitempty"`
	JourneyID  string `json:"journeyId,omitempty"`
}
