package fencer

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/geojson"
	"github.com/tidwall/geojson/geometry"
)

type feature struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Geometry   json.RawMessage   `json:"geometry"`
	Properties map[string]string `json:"properties"`
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

func Poly(ring Ring) *geojson.Polygon {
	exterior := make([]geometry.Point, 0, len(ring)+1)
	for _, p := range ring {
		exterior = append(exterior, p.geometry())
	}
	if len(exterior) > 0 {
		exterior = append(exterior, exterior[0])
	}
	return geojson.NewPolygon(geometry.NewPoly(exterior, nil, nil))
}

// EncodeGeoJSON renders polygons as a GeoJSON FeatureCollection with the
// polygon identifier as the feature id.
func EncodeGeoJSON(polygons []Polygon) string {
	fc := featureCollection{
		Type:     "FeatureCollection",
		Features: make([]feature, len(polygons)),
	}
	for i, polygon := range polygons {
		fc.Features[i] = feature{
			Type:       "Feature",
			ID:         polygon.ID.String(),
			Geometry:   json.RawMessage(Poly(polygon.Ring).JSON()),
			Properties: map[string]string{},
		}
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return `{"type":"FeatureCollection","features":[]}`
	}
	return string(data)
}

// RingFromGeoJSON reads the exterior ring of a GeoJSON Polygon. Holes are
// dropped and a closing vertex equal to the first one is removed.
func RingFromGeoJSON(data string) (Ring, error) {
	object, err := geojson.Parse(data, geojson.DefaultParseOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	polygon, ok := object.(*geojson.Polygon)
	if !ok {
		return nil, fmt.Errorf("%w: want GeoJSON Polygon, got %T", ErrInvalidGeometry, object)
	}
	exterior := polygon.Base().Exterior
	n := exterior.NumPoints()
	ring := make(Ring, 0, n)
	for i := 0; i < n; i++ {
		p := exterior.PointAt(i)
		ring = append(ring, NewPoint(p.X, p.Y))
	}
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	if err := ring.Validate(); err != nil {
		return nil, err
	}
	return ring, nil
}
