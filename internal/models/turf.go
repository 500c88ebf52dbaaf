package models

import (
	"encoding/json"

	"github.com/paulmach/orb/geojson"
)

// Description is the human-readable part of a turf.
type Description struct {
	Name    string `json:"name"`
	Details string `json:"details"`
}

// Turf is an organization-owned unit composed of census tract GEOIDs.
// Backed by table `main_turf`; OrganizationID is nil for guest-scoped
// turfs and immutable after creation.
type Turf struct {
	ID             int         `json:"id" db:"id"`
	Tracts         []string    `json:"tracts" db:"tracts"`
	Description    Description `json:"description" db:"description"`
	OrganizationID *int        `json:"organization_id,omitempty" db:"organization_id"`

	// Derived on every read from the live tract list, never stored.
	Geometry *GeometryProjection `json:"geometry,omitempty"`
}

// GeometryProjection is the unioned, validity-repaired geometry of a
// turf's member tracts plus its bounding envelope. A turf whose tract
// list is empty (or references only unknown GEOIDs) has no projection.
type GeometryProjection struct {
	Geometry json.RawMessage `json:"geometry"`
	Envelope [4]float64      `json:"envelope"` // min_lon, min_lat, max_lon, max_lat
}

// NewGeometryProjection decodes a unioned GeoJSON geometry and derives
// its envelope. Returns nil for an empty geometry or one that does not
// parse; the caller treats that as "no projection", not an error.
func NewGeometryProjection(geometryJSON []byte) *GeometryProjection {
	if len(geometryJSON) == 0 {
		return nil
	}
	geom, err := geojson.UnmarshalGeometry(geometryJSON)
	if err != nil || geom.Geometry() == nil {
		return nil
	}
	bound := geom.Geometry().Bound()
	return &GeometryProjection{
		Geometry: json.RawMessage(geometryJSON),
		Envelope: [4]float64{bound.Min.Lon(), bound.Min.Lat(), bound.Max.Lon(), bound.Max.Lat()},
	}
}
