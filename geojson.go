package groundcover

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// A GeoJSONSink collects features into a GeoJSON FeatureCollection that is
// written when the sink is closed.
type GeoJSONSink struct {
	mutex             sync.Mutex
	filename          string
	featureCollection *geojson.FeatureCollection
}

// NewGeoJSONSink returns a new GeoJSONSink writing to filename. The
// directory of filename must exist.
func NewGeoJSONSink(filename string) (*GeoJSONSink, error) {
	if _, err := os.Stat(filepath.Dir(filename)); err != nil {
		return nil, err
	}
	return &GeoJSONSink{
		filename:          filename,
		featureCollection: geojson.NewFeatureCollection(),
	}, nil
}

func (s *GeoJSONSink) Emit(key TileKey, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	multiPoint := make(orb.MultiPoint, len(points))
	for i, point := range points {
		multiPoint[i] = orb.Point{point.X, point.Y}
	}
	feature := geojson.NewFeature(multiPoint)
	feature.Properties[TileKeyAttribute] = key.String()

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.featureCollection == nil {
		return errSinkClosed
	}
	s.featureCollection.Append(feature)
	return nil
}

// Close writes the FeatureCollection to a temporary file and renames it over
// s's filename.
func (s *GeoJSONSink) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.featureCollection == nil {
		return errSinkClosed
	}
	featureCollection := s.featureCollection
	s.featureCollection = nil

	data, err := featureCollection.MarshalJSON()
	if err != nil {
		return err
	}
	tempFile, err := os.CreateTemp(filepath.Dir(s.filename), filepath.Base(s.filename)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tempFile.Name())
	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}
	return os.Rename(tempFile.Name(), s.filename)
}
