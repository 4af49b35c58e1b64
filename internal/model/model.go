package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&ContentRevision{},
	&Location{},
	&Journey{},
}

// ContentRevision records one SaveGlobe call
type ContentRevision struct {
	gorm.Model
	Locations int    `json:"locations"`
	Journeys  int    `json:"journeys"`
	Checksum  string `json:"checksum" gorm:"size:64;index:idx_revision_checksum"`
}

func (*ContentRevision) TableName() string {
	return "content_revisions"
}

// Location is a persisted map location. Latitude and Longitude are the
// source of truth; Position is the same point in EPSG:3857.
type Location struct {
	LocationID  string         `json:"id" gorm:"primaryKey;size:64"`
	RevisionID  uint           `json:"revisionId" gorm:"index:idx_location_revision_id"`
	SortOrder   int            `json:"sortOrder"`
	Name        string         `json:"name" gorm:"size:127"`
	Country     string         `json:"country" gorm:"size:127;index:idx_location_country"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	Position    geom.Point     `json:"position"`
	Type        string         `json:"type" gorm:"size:32;index:idx_location_type"`
	Title       string         `json:"title" gorm:"size:255"`
	Description string         `json:"description"`
	Date        string         `json:"date" gorm:"size:64"`
	Images      datatypes.JSON `json:"images"`
	JourneyID   string         `json:"journeyId" gorm:"size:64"`
	Tags        datatypes.JSON `json:"tags"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (*Location) TableName() string {
	return "locations"
}

// Journey is a persisted route. Stops holds the ordered location IDs; Route
// is the EPSG:3857 line through the stops that resolved.
type Journey struct {
	JourneyID   string          `json:"id" gorm:"primaryKey;size:64"`
	RevisionID  uint            `json:"revisionId" gorm:"index:idx_journey_revision_id"`
	SortOrder   int             `json:"sortOrder"`
	Name        string          `json:"name" gorm:"size:127"`
	Description string          `json:"description"`
	Date        string          `json:"date" gorm:"size:64"`
	Color       string          `json:"color" gorm:"size:16"`
	Stops       datatypes.JSON  `json:"stops"`
	Images      datatypes.JSON  `json:"images"`
	Route       geom.LineString `json:"-"`
	LengthKm    float64         `json:"lengthKm"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (*Journey) TableName() string {
	return "journeys"
}
