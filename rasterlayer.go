package groundcover

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultFilenameTemplate is the default layout of a raster layer's files.
const DefaultFilenameTemplate = "{z}/{x}/{y}.tif"

// A TileFilenameFunc returns the filename of the raster for a tile key.
type TileFilenameFunc func(TileKey) string

// A RasterLayer is a set of TIFF rasters, one per tile at the layer's data
// level of detail. Requests for deeper tiles are served from the ancestor's
// raster with a sub-region transform.
type RasterLayer struct {
	mutex            sync.Mutex
	id               string
	fsys             fs.FS
	profile          Profile
	dataLOD          uint32
	tileFilenameFunc TileFilenameFunc
	missingRasters   sync.Map
	cacheSize        int
	rasterCache      *lru.Cache[TileKey, *geoTIFFRaster]
}

// A RasterLayerOption sets an option on a RasterLayer.
type RasterLayerOption func(*RasterLayer)

// NewRasterLayer returns a new RasterLayer with the given options.
func NewRasterLayer(id string, options ...RasterLayerOption) (*RasterLayer, error) {
	l := &RasterLayer{
		id:               id,
		profile:          GlobalGeodetic,
		tileFilenameFunc: FilenameTemplateFunc(DefaultFilenameTemplate),
		cacheSize:        32,
	}
	for _, option := range options {
		option(l)
	}
	if l.fsys == nil {
		return nil, fmt.Errorf("%s: no filesystem", id)
	}

	var err error
	l.rasterCache, err = lru.NewWithEvict(l.cacheSize, func(key TileKey, value *geoTIFFRaster) {
		rasterCacheEvictions.Inc()
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func WithCacheSize(cacheSize int) RasterLayerOption {
	return func(l *RasterLayer) {
		l.cacheSize = cacheSize
	}
}

func WithDataLOD(dataLOD uint32) RasterLayerOption {
	return func(l *RasterLayer) {
		l.dataLOD = dataLOD
	}
}

func WithFS(fsys fs.FS) RasterLayerOption {
	return func(l *RasterLayer) {
		l.fsys = fsys
	}
}

func WithFilenameTemplate(template string) RasterLayerOption {
	return WithTileFilenameFunc(FilenameTemplateFunc(template))
}

func WithLayerProfile(profile Profile) RasterLayerOption {
	return func(l *RasterLayer) {
		l.profile = profile
	}
}

func WithTileFilenameFunc(tileFilenameFunc TileFilenameFunc) RasterLayerOption {
	return func(l *RasterLayer) {
		l.tileFilenameFunc = tileFilenameFunc
	}
}

// FilenameTemplateFunc returns a TileFilenameFunc that replaces {z}, {x},
// and {y} in template with the tile key's LOD, column, and row.
func FilenameTemplateFunc(template string) TileFilenameFunc {
	return func(key TileKey) string {
		return strings.NewReplacer(
			"{z}", strconv.FormatUint(uint64(key.LOD), 10),
			"{x}", strconv.FormatUint(uint64(key.X), 10),
			"{y}", strconv.FormatUint(uint64(key.Y), 10),
		).Replace(template)
	}
}

// ID returns l's identifier.
func (l *RasterLayer) ID() string {
	return l.id
}

// TileRaster returns the raster covering the tile at key and the transform
// from the tile into it. It returns nil if the layer has no data for key.
func (l *RasterLayer) TileRaster(ctx context.Context, key TileKey) (*TileRaster, error) {
	if key.LOD < l.dataLOD {
		// Coarser tiles than the data are not resampled.
		return nil, nil
	}
	dataKey := key.Ancestor(l.dataLOD)
	raster, err := l.getRasterCached(dataKey)
	if err != nil {
		return nil, err
	}
	if raster == nil {
		return nil, nil
	}
	rasterExtent := raster.extent
	if !raster.georeferenced {
		rasterExtent = l.profile.TileExtent(dataKey)
	}
	return &TileRaster{
		Raster:    raster.raster,
		Transform: TransformBetween(l.profile.TileExtent(key), rasterExtent),
	}, nil
}

// getRaster reads and decodes the raster for dataKey. It returns nil if
// there is no file for dataKey.
func (l *RasterLayer) getRaster(dataKey TileKey) (*geoTIFFRaster, error) {
	filename := l.tileFilenameFunc(dataKey)
	data, err := fs.ReadFile(l.fsys, filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		l.missingRasters.Store(dataKey, struct{}{})
		missingRasterCacheMisses.Inc()
		return nil, nil
	case err != nil:
		return nil, err
	}
	raster, err := decodeGeoTIFF(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", l.id, filename, err)
	}
	return raster, nil
}

// getRasterCached returns the raster for dataKey, using the cache if
// possible.
func (l *RasterLayer) getRasterCached(dataKey TileKey) (*geoTIFFRaster, error) {
	if _, ok := l.missingRasters.Load(dataKey); ok {
		missingRasterCacheHits.Inc()
		return nil, nil
	}

	if raster, ok := l.rasterCache.Get(dataKey); ok {
		rasterCacheHits.Inc()
		return raster, nil
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if _, ok := l.missingRasters.Load(dataKey); ok {
		missingRasterCacheHits.Inc()
		return nil, nil
	}

	if raster, ok := l.rasterCache.Get(dataKey); ok {
		rasterCacheHits.Inc()
		return raster, nil
	}

	rasterCacheMisses.Inc()

	raster, err := l.getRaster(dataKey)
	if err != nil || raster == nil {
		return nil, err
	}

	l.rasterCache.Add(dataKey, raster)

	return raster, nil
}
