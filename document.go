package fencer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Paths where a remote document may keep its polygon list, in lookup order.
var polygonPaths = []string{
	"data.attributes.polygon",
	"data.polygon",
	"polygon",
}

type document struct {
	Data documentData `json:"data"`
}

type documentData struct {
	Polygon []documentPolygon `json:"polygon"`
}

type documentPolygon struct {
	ID      string   `json:"id"`
	LatLngs []latLng `json:"latlngs"`
}

// latLng keeps the stored {lat, lng} order; Point is (lng, lat).
type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// EncodeDocument renders polygons as the remote store document.
func EncodeDocument(polygons []Polygon) ([]byte, error) {
	doc := document{
		Data: documentData{
			Polygon: make([]documentPolygon, len(polygons)),
		},
	}
	for i, polygon := range polygons {
		latlngs := make([]latLng, len(polygon.Ring))
		for j, p := range polygon.Ring {
			latlngs[j] = latLng{Lat: p.lat, Lng: p.lng}
		}
		doc.Data.Polygon[i] = documentPolygon{
			ID:      polygon.ID.String(),
			LatLngs: latlngs,
		}
	}
	return json.Marshal(doc)
}

// DecodeDocument parses a remote store document. An empty payload or a
// document without a polygon list decodes to no polygons.
func DecodeDocument(data []byte) ([]Polygon, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: payload is not valid JSON", ErrMalformedData)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: payload must be an object, got %s", ErrMalformedData, root.Type)
	}
	var list gjson.Result
	for _, path := range polygonPaths {
		if list = root.Get(path); list.Exists() {
			break
		}
	}
	if !list.Exists() || list.Type == gjson.Null {
		return nil, nil
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: polygon list must be an array, got %s", ErrMalformedData, list.Type)
	}
	items := list.Array()
	polygons := make([]Polygon, 0, len(items))
	seen := make(map[PolygonID]struct{}, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, fmt.Errorf("%w: polygon %d must be an object", ErrMalformedData, i)
		}
		latlngs := item.Get("latlngs")
		if !latlngs.Exists() {
			return nil, fmt.Errorf("%w: polygon %d has no latlngs", ErrMalformedData, i)
		}
		ring, err := parseVertices(latlngs)
		if err != nil {
			return nil, fmt.Errorf("%w: polygon %d: %v", ErrMalformedData, i, err)
		}
		if len(ring) < MinRingSize {
			return nil, fmt.Errorf("%w: polygon %d has %d vertices", ErrMalformedData, i, len(ring))
		}
		id := documentPolygonID(item.Get("id"), seen)
		seen[id] = struct{}{}
		polygons = append(polygons, Polygon{ID: id, Ring: ring})
	}
	return polygons, nil
}

// documentPolygonID keeps a stored identifier only when it is one of ours.
// Foreign ids, such as numbers handed out by a map widget, are replaced.
func documentPolygonID(res gjson.Result, seen map[PolygonID]struct{}) PolygonID {
	if res.Type == gjson.String {
		if id, err := PolygonIDFromString(res.String()); err == nil {
			if _, dup := seen[id]; !dup {
				return id
			}
		}
	}
	return NewPolygonID()
}
