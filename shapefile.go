package groundcover

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	shp "github.com/jonas-p/go-shp"
)

var errSinkClosed = errors.New("sink closed")

// tileKeyFieldLength is the width of the tilekey column.
const tileKeyFieldLength = 32

// A ShapefileSink writes features to an ESRI shapefile of MULTIPOINT shapes
// with a single tilekey string attribute.
type ShapefileSink struct {
	mutex  sync.Mutex
	base   string
	writer *shp.Writer
}

// NewShapefileSink creates the shapefile filename, which must have a .shp
// extension.
func NewShapefileSink(filename string) (*ShapefileSink, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".shp") {
		return nil, fmt.Errorf("%s: shapefile name must end in .shp", filename)
	}
	writer, err := shp.Create(filename, shp.MULTIPOINT)
	if err != nil {
		return nil, err
	}
	if err := writer.SetFields([]shp.Field{
		shp.StringField(TileKeyAttribute, tileKeyFieldLength),
	}); err != nil {
		writer.Close()
		return nil, err
	}
	return &ShapefileSink{
		base:   filename[:len(filename)-len(".shp")],
		writer: writer,
	}, nil
}

func (s *ShapefileSink) Emit(key TileKey, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	shpPoints := make([]shp.Point, len(points))
	for i, point := range points {
		shpPoints[i] = shp.Point{X: point.X, Y: point.Y}
	}
	multiPoint := &shp.MultiPoint{
		Box:       shp.BBoxFromPoints(shpPoints),
		NumPoints: int32(len(shpPoints)),
		Points:    shpPoints,
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.writer == nil {
		return errSinkClosed
	}
	row := s.writer.Write(multiPoint)
	return s.writer.WriteAttribute(int(row), 0, key.String())
}

func (s *ShapefileSink) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.writer == nil {
		return errSinkClosed
	}
	s.writer.Close()
	s.writer = nil
	// The writer names the attribute table without a dot before its extension.
	if err := os.Rename(s.base+"dbf", s.base+".dbf"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
