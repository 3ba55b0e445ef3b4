package canvas

import "github.com/vanderheijden86/conceptmap/pkg/model"

// Sizes holds node sizes measured by a renderer after it has drawn them.
// Measurements arrive late (or never); Get always answers, substituting the
// fallback size for nodes that have not been measured.
type Sizes struct {
	m        map[string]model.Size
	fallback model.Size
}

// NewSizes creates an empty size table with the given fallback.
func NewSizes(fallback model.Size) *Sizes {
	return &Sizes{m: make(map[string]model.Size), fallback: fallback}
}

// Measure records the rendered size of key. Zero or negative sizes are
// ignored so a failed measurement never shrinks a node to nothing.
func (s *Sizes) Measure(key string, size model.Size) {
	if size.IsZero() {
		return
	}
	s.m[key] = size
}

// Get returns the measured size of key or the fallback.
func (s *Sizes) Get(key string) model.Size {
	if size, ok := s.m[key]; ok {
		return size
	}
	return s.fallback
}

// Measured reports whether key has a real measurement.
func (s *Sizes) Measured(key string) bool {
	_, ok := s.m[key]
	return ok
}

// Fallback returns the size used for unmeasured nodes.
func (s *Sizes) Fallback() model.Size { return s.fallback }

// Forget drops all measurements, as when a renderer with different units
// takes over.
func (s *Sizes) Forget() {
	s.m = make(map[string]model.Size)
}
