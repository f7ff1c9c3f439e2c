package viz

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Trails keeps the most recent positions of each body, keyed by ID.
type Trails struct {
	limit int
	paths map[uint64][]r3.Vec
}

func NewTrails(limit int) *Trails {
	if limit < 1 {
		limit = 1
	}
	return &Trails{limit: limit, paths: make(map[uint64][]r3.Vec)}
}

// Record appends the current position of every body. Bodies missing from
// the frame lose their trail.
func (t *Trails) Record(bodies []dynamo.Body) {
	seen := make(map[uint64]struct{}, len(bodies))
	for _, b := range bodies {
		seen[b.ID] = struct{}{}
		path := append(t.paths[b.ID], b.Position)
		if len(path) > t.limit {
			path = path[len(path)-t.limit:]
		}
		t.paths[b.ID] = path
	}
	for id := range t.paths {
		if _, ok := seen[id]; !ok {
			delete(t.paths, id)
		}
	}
}

func (t *Trails) Path(id uint64) []r3.Vec { return t.paths[id] }
func (t *Trails) Len() int                { return len(t.paths) }

func (t *Trails) Clear() { clear(t.paths) }
