package groundcover

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb/maptile"
)

var ErrUnknownProfile = errors.New("unknown profile")

// maxMercatorLatitude is the northern limit of the spherical mercator root
// tile.
const maxMercatorLatitude = 85.0511287798066

// A Profile is a quadtree tiling scheme over the globe.
type Profile interface {
	Name() string
	Extent() GeoExtent
	TileExtent(key TileKey) GeoExtent
	IntersectingTiles(extent GeoExtent, lod uint32) []TileKey
}

// ProfileByName returns the profile with the given name.
func ProfileByName(name string) (Profile, error) {
	switch name {
	case "", GlobalGeodetic.Name():
		return GlobalGeodetic, nil
	case SphericalMercator.Name():
		return SphericalMercator, nil
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownProfile)
	}
}

// GlobalGeodetic is the WGS84 lon/lat profile with two root tiles.
var GlobalGeodetic Profile = globalGeodetic{}

// SphericalMercator is the web mercator profile with one root tile.
var SphericalMercator Profile = sphericalMercator{}

type globalGeodetic struct{}

func (globalGeodetic) Name() string {
	return "global-geodetic"
}

func (globalGeodetic) Extent() GeoExtent {
	return NewGeoExtent(-180, -90, 180, 90)
}

func (globalGeodetic) tileSize(lod uint32) (float64, float64) {
	height := 180 / math.Ldexp(1, int(lod))
	return height, height
}

func (p globalGeodetic) TileExtent(key TileKey) GeoExtent {
	width, height := p.tileSize(key.LOD)
	xMin := -180 + float64(key.X)*width
	yMax := 90 - float64(key.Y)*height
	return NewGeoExtent(xMin, yMax-height, xMin+width, yMax)
}

func (p globalGeodetic) IntersectingTiles(extent GeoExtent, lod uint32) []TileKey {
	extent = extent.Intersection(p.Extent())
	if !extent.Valid() {
		return nil
	}
	width, height := p.tileSize(lod)
	tilesAcross := 2 << lod
	tilesDown := 1 << lod
	x0 := clampIndex(math.Floor((extent.XMin+180)/width), tilesAcross)
	x1 := clampIndex(math.Ceil((extent.XMax+180)/width)-1, tilesAcross)
	y0 := clampIndex(math.Floor((90-extent.YMax)/height), tilesDown)
	y1 := clampIndex(math.Ceil((90-extent.YMin)/height)-1, tilesDown)
	return rowMajorKeys(lod, x0, y0, x1, y1)
}

type sphericalMercator struct{}

func (sphericalMercator) Name() string {
	return "spherical-mercator"
}

func (sphericalMercator) Extent() GeoExtent {
	return NewGeoExtent(-180, -maxMercatorLatitude, 180, maxMercatorLatitude)
}

func (sphericalMercator) TileExtent(key TileKey) GeoExtent {
	return NewGeoExtentFromBound(maptile.New(key.X, key.Y, maptile.Zoom(key.LOD)).Bound())
}

func (p sphericalMercator) IntersectingTiles(extent GeoExtent, lod uint32) []TileKey {
	extent = extent.Intersection(p.Extent())
	if !extent.Valid() {
		return nil
	}
	tilesAcross := 1 << lod
	left, top := mercatorTileIndex(extent.XMin, extent.YMax, lod)
	right, bottom := mercatorTileIndex(extent.XMax, extent.YMin, lod)
	x0 := clampIndex(math.Floor(left), tilesAcross)
	y0 := clampIndex(math.Floor(top), tilesAcross)
	x1 := clampIndex(math.Floor(right), tilesAcross)
	y1 := clampIndex(math.Floor(bottom), tilesAcross)

	// Tiles that only touch the extent's east or south edge do not intersect.
	if x1 > x0 && p.TileExtent(TileKey{LOD: lod, X: uint32(x1), Y: uint32(y1)}).XMin >= extent.XMax {
		x1--
	}
	if y1 > y0 && p.TileExtent(TileKey{LOD: lod, X: uint32(x1), Y: uint32(y1)}).YMax <= extent.YMin {
		y1--
	}
	return rowMajorKeys(lod, x0, y0, x1, y1)
}

// mercatorTileIndex returns the fractional XYZ tile index of (lon, lat).
func mercatorTileIndex(lon, lat float64, lod uint32) (float64, float64) {
	n := math.Ldexp(1, int(lod))
	x := (lon + 180) / 360 * n
	sinLat := math.Sin(lat * math.Pi / 180)
	y := (0.5 - math.Log((1+sinLat)/(1-sinLat))/(4*math.Pi)) * n
	return x, y
}

func clampIndex(index float64, n int) int {
	return int(max(0, min(index, float64(n-1))))
}

func rowMajorKeys(lod uint32, x0, y0, x1, y1 int) []TileKey {
	if x1 < x0 || y1 < y0 {
		return nil
	}
	keys := make([]TileKey, 0, (x1-x0+1)*(y1-y0+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			keys = append(keys, TileKey{LOD: lod, X: uint32(x), Y: uint32(y)})
		}
	}
	return keys
}
