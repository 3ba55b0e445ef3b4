// Package canvas owns the mutable spatial state of the concept map: live
// node positions, measured node sizes, the viewport (pan and zoom), the
// node drag session, and the Controller that routes pointer, touch and
// wheel input to them.
//
// Nothing here is safe for concurrent use. Every type is owned by one event
// loop; mutual exclusion between pan and drag is structural (the Controller
// decides which one a gesture belongs to) rather than lock-based.
package canvas

import (
	"fmt"
	"math"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// Positions is the live node key -> canvas coordinate map. The layout
// engine seeds it, the drag controller writes it, renderers read it.
type Positions struct {
	m map[string]model.Point
}

// NewPositions copies initial into a new position map.
func NewPositions(initial map[string]model.Point) *Positions {
	p := &Positions{m: make(map[string]model.Point, len(initial))}
	for k, v := range initial {
		p.m[k] = v
	}
	return p
}

// Get returns the position of key.
func (p *Positions) Get(key string) (model.Point, bool) {
	pt, ok := p.m[key]
	return pt, ok
}

// Has reports whether key has a position.
func (p *Positions) Has(key string) bool {
	_, ok := p.m[key]
	return ok
}

// Set stores the position of key.
func (p *Positions) Set(key string, pt model.Point) {
	p.m[key] = pt
}

// Len returns the number of positioned nodes.
func (p *Positions) Len() int { return len(p.m) }

// Keys returns the positioned keys, sorted.
func (p *Positions) Keys() []string {
	keys := make([]string, 0, len(p.m))
	for k := range p.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of the map.
func (p *Positions) Snapshot() map[string]model.Point {
	out := make(map[string]model.Point, len(p.m))
	for k, v := range p.m {
		out[k] = v
	}
	return out
}

// Reconcile adapts the map to a new key set after a dataset reload: keys in
// fresh that already have a position keep it, new keys take the fresh
// position, and keys no longer present are dropped. It returns the keys
// that were added.
func (p *Positions) Reconcile(fresh map[string]model.Point) []string {
	var added []string
	next := make(map[string]model.Point, len(fresh))
	for k, pt := range fresh {
		if old, ok := p.m[k]; ok {
			next[k] = old
			continue
		}
		next[k] = pt
		added = append(added, k)
	}
	p.m = next
	sort.Strings(added)
	return added
}

// Replace overwrites every position, as after an explicit re-layout.
func (p *Positions) Replace(all map[string]model.Point) {
	p.m = make(map[string]model.Point, len(all))
	for k, v := range all {
		p.m[k] = v
	}
}

// MarshalJSON encodes the map as {"key": {"x": .., "y": ..}}. Coordinates
// must be finite.
func (p *Positions) MarshalJSON() ([]byte, error) {
	for k, v := range p.m {
		if !finite(v.X) || !finite(v.Y) {
			return nil, fmt.Errorf("position of %q is not finite: (%v, %v)", k, v.X, v.Y)
		}
	}
	return json.Marshal(p.m)
}

// UnmarshalJSON decodes the format written by MarshalJSON.
func (p *Positions) UnmarshalJSON(data []byte) error {
	m := make(map[string]model.Point)
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	p.m = m
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
