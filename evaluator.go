package fencer

// Contains reports whether p lies inside ring using the even-odd ray cast.
//
// A horizontal ray is cast from p towards +lng and every crossed edge flips
// the result. The wrap-around edge from the last vertex to the first one takes
// part in the count. Points exactly on a vertex or on a horizontal edge have
// no guaranteed answer, and degenerate rings give undefined results; the
// function never fails and always returns a boolean.
func Contains(p Point, ring Ring) bool {
	n := len(ring)
	if n == 0 {
		return false
	}
	inside := false
	x, y := p.lng, p.lat
	x1, y1 := ring[n-1].lng, ring[n-1].lat
	for i := 0; i < n; i++ {
		x2, y2 := ring[i].lng, ring[i].lat
		if (y < y1) != (y < y2) && x < x1+(x2-x1)*(y-y1)/(y2-y1) {
			inside = !inside
		}
		x1, y1 = x2, y2
	}
	return inside
}

// ContainsAny evaluates polygons in order and returns the identifier of the
// first one that contains p.
func ContainsAny(p Point, polygons []Polygon) (PolygonID, bool) {
	for i := 0; i < len(polygons); i++ {
		if Contains(p, polygons[i].Ring) {
			return polygons[i].ID, true
		}
	}
	return "", false
}
