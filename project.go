package groundcover

import "github.com/twpayne/go-proj/v10"

// A ProjectingSink reprojects points from WGS84 into another CRS before
// passing them to an underlying sink.
type ProjectingSink struct {
	sink FeatureSink
	pj   *proj.PJ
}

// NewProjectingSink returns a new ProjectingSink that writes to sink in the
// CRS targetCRS, for example "epsg:3857".
func NewProjectingSink(sink FeatureSink, targetCRS string) (*ProjectingSink, error) {
	pj, err := proj.NewCRSToCRS(SRSWGS84, targetCRS, nil)
	if err != nil {
		return nil, err
	}
	return &ProjectingSink{
		sink: sink,
		pj:   pj,
	}, nil
}

func (s *ProjectingSink) Emit(key TileKey, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	// EPSG:4326 has latitude first.
	coords := make([][]float64, len(points))
	for i, point := range points {
		coords[i] = []float64{point.Y, point.X, point.Z}
	}
	if err := s.pj.ForwardFloat64Slices(coords); err != nil {
		return err
	}
	projectedPoints := make([]Point, len(coords))
	for i, coord := range coords {
		projectedPoints[i] = Point{X: coord[0], Y: coord[1], Z: coord[2]}
	}
	return s.sink.Emit(key, projectedPoints)
}

func (s *ProjectingSink) Close() error {
	defer s.pj.Destroy()
	return s.sink.Close()
}
