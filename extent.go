package groundcover

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// SRSWGS84 is the spatial reference of geographic extents.
const SRSWGS84 = "epsg:4326"

// A GeoExtent is an axis-aligned rectangle in a named spatial reference.
type GeoExtent struct {
	SRS  string
	XMin float64
	YMin float64
	XMax float64
	YMax float64
}

// NewGeoExtent returns a new WGS84 GeoExtent.
func NewGeoExtent(xMin, yMin, xMax, yMax float64) GeoExtent {
	return GeoExtent{
		SRS:  SRSWGS84,
		XMin: xMin,
		YMin: yMin,
		XMax: xMax,
		YMax: yMax,
	}
}

// NewGeoExtentFromBound returns a new WGS84 GeoExtent covering bound.
func NewGeoExtentFromBound(bound orb.Bound) GeoExtent {
	return NewGeoExtent(bound.Min.X(), bound.Min.Y(), bound.Max.X(), bound.Max.Y())
}

func (e GeoExtent) Width() float64 {
	return e.XMax - e.XMin
}

func (e GeoExtent) Height() float64 {
	return e.YMax - e.YMin
}

// Valid returns whether e has a positive area.
func (e GeoExtent) Valid() bool {
	return e.XMax > e.XMin && e.YMax > e.YMin &&
		!math.IsNaN(e.XMin) && !math.IsNaN(e.YMin) && !math.IsNaN(e.XMax) && !math.IsNaN(e.YMax)
}

// Contains returns whether (x, y) is inside e, edges included.
func (e GeoExtent) Contains(x, y float64) bool {
	return e.XMin <= x && x <= e.XMax && e.YMin <= y && y <= e.YMax
}

// Intersects returns whether e and other share a region of positive area.
func (e GeoExtent) Intersects(other GeoExtent) bool {
	return e.Intersection(other).Valid()
}

// Intersection returns the overlap of e and other. The result is not valid if
// they do not overlap.
func (e GeoExtent) Intersection(other GeoExtent) GeoExtent {
	return GeoExtent{
		SRS:  e.SRS,
		XMin: max(e.XMin, other.XMin),
		YMin: max(e.YMin, other.YMin),
		XMax: min(e.XMax, other.XMax),
		YMax: min(e.YMax, other.YMax),
	}
}

// Bound returns e as an orb.Bound.
func (e GeoExtent) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{e.XMin, e.YMin},
		Max: orb.Point{e.XMax, e.YMax},
	}
}

func (e GeoExtent) String() string {
	return fmt.Sprintf("%s[%g %g %g %g]", e.SRS, e.XMin, e.YMin, e.XMax, e.YMax)
}
