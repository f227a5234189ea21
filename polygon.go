package fencer

import (
	"fmt"
	"math"

	"github.com/rs/xid"
	"github.com/tidwall/geojson/geometry"
)

// MinRingSize is the smallest number of vertices a ring may carry.
const MinRingSize = 3

// Point is a geographic coordinate stored as (longitude, latitude).
type Point struct {
	lng float64
	lat float64
}

func NewPoint(lng, lat float64) Point {
	return Point{lng: lng, lat: lat}
}

func (p Point) Lng() float64 {
	return p.lng
}

func (p Point) Lat() float64 {
	return p.lat
}

func (p Point) String() string {
	return fmt.Sprintf("Point{Lng:%v, Lat:%v}", p.lng, p.lat)
}

func (p Point) valid() bool {
	return !math.IsNaN(p.lng) && !math.IsInf(p.lng, 0) &&
		!math.IsNaN(p.lat) && !math.IsInf(p.lat, 0)
}

func (p Point) geometry() geometry.Point {
	return geometry.Point{X: p.lng, Y: p.lat}
}

// Ring is an implicitly closed polygon boundary. The last vertex connects
// back to the first one, so a ring never repeats its first vertex.
// Self-intersecting rings are accepted as is; containment for them is undefined.
type Ring []Point

func (r Ring) Validate() error {
	if len(r) < MinRingSize {
		return fmt.Errorf("%w: ring has %d vertices, want at least %d",
			ErrInvalidGeometry, len(r), MinRingSize)
	}
	for i, p := range r {
		if !p.valid() {
			return fmt.Errorf("%w: vertex %d has non-finite coordinates", ErrInvalidGeometry, i)
		}
	}
	return nil
}

func (r Ring) Bounding() (bbox geometry.Rect) {
	for i, p := range r {
		point := p.geometry()
		if i == 0 {
			bbox.Min = point
			bbox.Max = point
			continue
		}
		if point.X < bbox.Min.X {
			bbox.Min.X = point.X
		} else if point.X > bbox.Max.X {
			bbox.Max.X = point.X
		}
		if point.Y < bbox.Min.Y {
			bbox.Min.Y = point.Y
		} else if point.Y > bbox.Max.Y {
			bbox.Max.Y = point.Y
		}
	}
	return
}

func (r Ring) clone() Ring {
	if r == nil {
		return nil
	}
	ring := make(Ring, len(r))
	copy(ring, r)
	return ring
}

type PolygonID string

func NewPolygonID() PolygonID {
	return PolygonID(xid.New().String())
}

func PolygonIDFromString(s string) (PolygonID, error) {
	if len(s) == 0 {
		return "", fmt.Errorf("fencer/polygon: got empty polygon id")
	}
	id, err := xid.FromString(s)
	if err != nil {
		return "", fmt.Errorf("fencer/polygon: invalid polygon id %q: %v", s, err)
	}
	return PolygonID(id.String()), nil
}

func (id PolygonID) String() string {
	return string(id)
}

type Polygon struct {
	ID   PolygonID
	Ring Ring
}

func (p Polygon) Bounding() geometry.Rect {
	return p.Ring.Bounding()
}

func (p Polygon) String() string {
	return fmt.Sprintf("Polygon{ID:%s, Vertices:%d}", p.ID, len(p.Ring))
}

func (p Polygon) clone() Polygon {
	return Polygon{ID: p.ID, Ring: p.Ring.clone()}
}
