// pkg/core/timeline.go
package core

// IntervalKind separates paid work from volunteering in the timeline.
type IntervalKind string

const (
	IntervalWork      IntervalKind = "work"
	IntervalVolunteer IntervalKind = "volunteer"
)

// WorkInterval is one position held at an organization.
// StartDate and EndDate use "MM/YYYY" or "YYYY"; EndDate may also be "current".
type WorkInterval struct {
	Kind         IntervalKind `json:"kind" yaml:"kind"`
	Position     string       `json:"position" yaml:"position"`
	Organization string       `json:"organization" yaml:"organization"`
	StartDate    string       `json:"startDate" yaml:"startDate"`
	EndDate      string       `json:"endDate" yaml:"endDate"`
}
