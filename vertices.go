package fencer

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
)

// ParseVertices decodes a drawn vertex list into a ring.
//
// Two shapes are accepted: an array of {lat,lng} objects and an object keyed
// by decimal indexes ({"0":{lat,lng},"1":...}) which is what spreading an
// array into an object leaves behind. Both are read through the same path,
// so creation and edit events yield identical rings.
func ParseVertices(raw []byte) (Ring, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: vertices are not valid JSON", ErrInvalidGeometry)
	}
	ring, err := parseVertices(gjson.ParseBytes(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	if err := ring.Validate(); err != nil {
		return nil, err
	}
	return ring, nil
}

func parseVertices(res gjson.Result) (Ring, error) {
	switch {
	case res.IsArray():
		items := res.Array()
		ring := make(Ring, 0, len(items))
		for i, item := range items {
			p, err := parseLatLng(item)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %v", i, err)
			}
			ring = append(ring, p)
		}
		return ring, nil
	case res.IsObject():
		return parseIndexedVertices(res)
	default:
		return nil, fmt.Errorf("vertices must be an array or an indexed object, got %s", res.Type)
	}
}

type indexedVertex struct {
	index int
	point Point
}

func parseIndexedVertices(res gjson.Result) (Ring, error) {
	var (
		vertices []indexedVertex
		err      error
	)
	res.ForEach(func(key, value gjson.Result) bool {
		index, convErr := strconv.Atoi(key.String())
		if convErr != nil || index < 0 {
			err = fmt.Errorf("vertex key %q is not an index", key.String())
			return false
		}
		p, parseErr := parseLatLng(value)
		if parseErr != nil {
			err = fmt.Errorf("vertex %d: %v", index, parseErr)
			return false
		}
		vertices = append(vertices, indexedVertex{index: index, point: p})
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(vertices, func(i, j int) bool {
		return vertices[i].index < vertices[j].index
	})
	ring := make(Ring, len(vertices))
	for i, v := range vertices {
		if v.index != i {
			return nil, fmt.Errorf("vertex indexes are not contiguous at %d", v.index)
		}
		ring[i] = v.point
	}
	return ring, nil
}

func parseLatLng(res gjson.Result) (Point, error) {
	if !res.IsObject() {
		return Point{}, fmt.Errorf("want {lat,lng} object, got %s", res.Type)
	}
	lat := res.Get("lat")
	lng := res.Get("lng")
	if lat.Type != gjson.Number {
		return Point{}, fmt.Errorf("lat is not a number")
	}
	if lng.Type != gjson.Number {
		return Point{}, fmt.Errorf("lng is not a number")
	}
	p := NewPoint(lng.Float(), lat.Float())
	if !p.valid() {
		return Point{}, fmt.Errorf("coordinates are not finite")
	}
	return p, nil
}
