package groundcover

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// TileKeyAttribute is the name of the attribute that carries a feature's tile
// key.
const TileKeyAttribute = "tilekey"

// A Feature is the multipoint of accepted instances of one tile.
type Feature struct {
	TileKey string
	Points  []Point
}

// A FeatureSink accepts one multipoint feature per tile. Emit may be called
// concurrently. Close must be called exactly once, even if no features were
// emitted.
type FeatureSink interface {
	Emit(key TileKey, points []Point) error
	Close() error
}

// A MemorySink collects features in memory.
type MemorySink struct {
	mutex    sync.Mutex
	features []Feature
	closed   bool
}

// NewMemorySink returns a new MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(key TileKey, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return errSinkClosed
	}
	s.features = append(s.features, Feature{
		TileKey: key.String(),
		Points:  slices.Clone(points),
	})
	return nil
}

func (s *MemorySink) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return errSinkClosed
	}
	s.closed = true
	return nil
}

// Features returns the features emitted so far, in emission order.
func (s *MemorySink) Features() []Feature {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return slices.Clone(s.features)
}

// Closed returns whether s has been closed.
func (s *MemorySink) Closed() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.closed
}

// Output formats understood by NewSink.
const (
	FormatShapefile = "shapefile"
	FormatGeoJSON   = "geojson"
)

// NewSink creates a FeatureSink writing to filename. If format is empty it is
// derived from filename's extension.
func NewSink(filename, format string) (FeatureSink, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".shp":
			format = FormatShapefile
		case ".geojson", ".json":
			format = FormatGeoJSON
		default:
			return nil, fmt.Errorf("%s: cannot determine output format", filename)
		}
	}
	switch format {
	case FormatShapefile:
		return NewShapefileSink(filename)
	case FormatGeoJSON:
		return NewGeoJSONSink(filename)
	default:
		return nil, fmt.Errorf("%s: unknown output format", format)
	}
}
