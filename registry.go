package fencer

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tidwall/geojson/geometry"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

type State int

const (
	// Unsynced means the local snapshot may differ from the remote document.
	Unsynced State = iota
	// Synced means the local snapshot equals the last loaded or committed document.
	Synced
)

func (s State) String() string {
	switch s {
	case Synced:
		return "synced"
	case Unsynced:
		return "unsynced"
	default:
		return "unknown state"
	}
}

type Option func(*Registry)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Registry owns the polygon snapshot and keeps it in step with a Store.
//
// A Registry is not safe for concurrent use. Callers that share one between
// goroutines must serialize access themselves. Only Load and Commit talk to
// the store; the other operations work on memory only.
type Registry struct {
	store  Store
	logger *zap.Logger
	state  State
	seq    uint64
	order  []PolygonID
	arena  map[PolygonID]*entry
	index  *rtree.RTree
}

type entry struct {
	seq     uint64
	polygon Polygon
	bbox    geometry.Rect
}

func NewRegistry(store Store, opts ...Option) *Registry {
	r := &Registry{
		store:  store,
		logger: zap.NewNop(),
		state:  Unsynced,
		arena:  make(map[PolygonID]*entry),
		index:  &rtree.RTree{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load replaces the local snapshot with the remote document. On failure the
// previous snapshot and state are kept.
func (r *Registry) Load(ctx context.Context) ([]Polygon, error) {
	data, err := r.store.Fetch(ctx)
	if err != nil {
		err = remoteError("fetch", err)
		r.logger.Warn("registry: load failed", zap.Error(err))
		return nil, err
	}
	polygons, err := DecodeDocument(data)
	if err != nil {
		r.logger.Warn("registry: load failed", zap.Error(err))
		return nil, err
	}
	r.reset()
	for _, polygon := range polygons {
		r.insert(polygon)
	}
	r.state = Synced
	r.logger.Info("registry: snapshot loaded",
		zap.Int("polygons", len(r.order)),
		zap.Stringer("state", r.state))
	return r.Snapshot(), nil
}

// Commit overwrites the remote document with the local snapshot. The local
// snapshot is never modified by Commit.
func (r *Registry) Commit(ctx context.Context) error {
	data, err := EncodeDocument(r.Snapshot())
	if err != nil {
		return fmt.Errorf("fencer/registry: encode snapshot: %v", err)
	}
	if err := r.store.Put(ctx, data); err != nil {
		err = remoteError("put", err)
		r.logger.Warn("registry: commit failed",
			zap.Int("polygons", len(r.order)),
			zap.Error(err))
		return err
	}
	r.state = Synced
	r.logger.Info("registry: snapshot committed",
		zap.Int("polygons", len(r.order)),
		zap.Int("bytes", len(data)))
	return nil
}

func (r *Registry) Create(vertices []Point) (PolygonID, error) {
	ring := Ring(vertices).clone()
	if err := ring.Validate(); err != nil {
		return "", err
	}
	polygon := Polygon{ID: NewPolygonID(), Ring: ring}
	r.insert(polygon)
	r.state = Unsynced
	r.logger.Debug("registry: polygon created",
		zap.Stringer("id", polygon.ID),
		zap.Int("vertices", len(ring)))
	return polygon.ID, nil
}

// Edit replaces the ring of the polygon wholesale.
func (r *Registry) Edit(id PolygonID, vertices []Point) error {
	e, ok := r.arena[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	ring := Ring(vertices).clone()
	if err := ring.Validate(); err != nil {
		return err
	}
	r.unindex(e)
	e.polygon.Ring = ring
	e.bbox = ring.Bounding()
	r.reindex(e)
	r.state = Unsynced
	r.logger.Debug("registry: polygon edited",
		zap.Stringer("id", id),
		zap.Int("vertices", len(ring)))
	return nil
}

func (r *Registry) Delete(id PolygonID) error {
	e, ok := r.arena[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.unindex(e)
	delete(r.arena, id)
	for i := 0; i < len(r.order); i++ {
		if r.order[i] == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.state = Unsynced
	r.logger.Debug("registry: polygon deleted", zap.Stringer("id", id))
	return nil
}

// ValidateAddress returns the first polygon, in snapshot order, that contains p.
func (r *Registry) ValidateAddress(p Point) (PolygonID, bool) {
	if !p.valid() {
		return "", false
	}
	var candidates []*entry
	pt := p.geometry()
	r.index.Search(
		[2]float64{pt.X, pt.Y},
		[2]float64{pt.X, pt.Y},
		func(_, _ [2]float64, value interface{}) bool {
			if e, ok := value.(*entry); ok {
				candidates = append(candidates, e)
			}
			return true
		},
	)
	if len(candidates) == 0 {
		return "", false
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].seq < candidates[j].seq
	})
	polygons := make([]Polygon, len(candidates))
	for i, e := range candidates {
		polygons[i] = e.polygon
	}
	return ContainsAny(p, polygons)
}

func (r *Registry) Lookup(id PolygonID) (Polygon, error) {
	e, ok := r.arena[id]
	if !ok {
		return Polygon{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.polygon.clone(), nil
}

// Snapshot returns a copy of all polygons in insertion order.
func (r *Registry) Snapshot() []Polygon {
	polygons := make([]Polygon, len(r.order))
	for i, id := range r.order {
		polygons[i] = r.arena[id].polygon.clone()
	}
	return polygons
}

func (r *Registry) GeoJSON() string {
	return EncodeGeoJSON(r.Snapshot())
}

func (r *Registry) State() State {
	return r.state
}

func (r *Registry) Len() int {
	return len(r.order)
}

func (r *Registry) reset() {
	r.order = r.order[:0]
	r.arena = make(map[PolygonID]*entry)
	r.index = &rtree.RTree{}
}

func (r *Registry) insert(polygon Polygon) {
	r.seq++
	e := &entry{
		seq:     r.seq,
		polygon: polygon,
		bbox:    polygon.Bounding(),
	}
	r.arena[polygon.ID] = e
	r.order = append(r.order, polygon.ID)
	r.reindex(e)
}

func (r *Registry) reindex(e *entry) {
	r.index.Insert(
		[2]float64{e.bbox.Min.X, e.bbox.Min.Y},
		[2]float64{e.bbox.Max.X, e.bbox.Max.Y},
		e,
	)
}

func (r *Registry) unindex(e *entry) {
	r.index.Delete(
		[2]float64{e.bbox.Min.X, e.bbox.Min.Y},
		[2]float64{e.bbox.Max.X, e.bbox.Max.Y},
		e,
	)
}

func remoteError(op string, err error) error {
	if errors.Is(err, ErrRemoteUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrRemoteUnavailable, op, err)
}
