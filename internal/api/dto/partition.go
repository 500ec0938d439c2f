package dto

import (
	"time"

	"github.com/paulmach/orb/geojson"
)

// PartitionRequest selects one strategy; fields of other strategies are ignored.
type PartitionRequest struct {
	Strategy string `json:"strategy"`

	// cluster
	K    int     `json:"k"`
	Seed *uint64 `json:"seed"`

	// grid; bbox is [min_lng, min_lat, max_lng, max_lat] and defaults to the outlets' envelope
	Rows int         `json:"rows"`
	Cols int         `json:"cols"`
	BBox *[4]float64 `json:"bbox"`

	// hierarchy
	Region string `json:"region"`
	Level  string `json:"level"`

	AssignOutlets bool `json:"assign_outlets"`
	Persist       bool `json:"persist"`
}

type PartitionResponse struct {
	RunID     string    `json:"run_id"`
	Strategy  string    `json:"strategy"`
	CreatedAt time.Time `json:"created_at"`
	Persisted bool      `json:"persisted"`
	// Omitted when no sector was produced.
	Bounds              *[4]float64                `json:"bounds,omitempty"`
	SectorCount         int                        `json:"sector_count"`
	Message             string                     `json:"message,omitempty"`
	UnassignedOutletIDs []string                   `json:"unassigned_outlet_ids,omitempty"`
	Sectors             *geojson.FeatureCollection `json:"sectors"`
}
