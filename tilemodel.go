package groundcover

import (
	"context"
	"fmt"
	"strings"

	"github.com/maypok86/otter/v2"
)

// DefaultTileModelCacheSize is the default number of tile models a LayerSet
// keeps.
const DefaultTileModelCacheSize = 256

// A TileModel holds the rasters available for one tile, by layer ID.
type TileModel struct {
	Key     TileKey
	Extent  GeoExtent
	Rasters map[string]*TileRaster
}

// Raster returns the raster of the layer with the given ID.
func (m *TileModel) Raster(layerID string) (*TileRaster, bool) {
	if m == nil || layerID == "" {
		return nil, false
	}
	raster, ok := m.Rasters[layerID]
	return raster, ok && raster != nil
}

// A TileModelProvider returns the rasters of the requested layers for a tile.
// Layers without data for the tile are omitted from the model.
type TileModelProvider interface {
	TileModel(ctx context.Context, key TileKey, layerIDs []string) (*TileModel, error)
}

// A LayerSet is a TileModelProvider backed by RasterLayers. Recently used
// tile models are cached and concurrent requests for the same model share a
// single load.
type LayerSet struct {
	profile        Profile
	layers         map[string]*RasterLayer
	tileModelCache *otter.Cache[tileModelKey, *TileModel]
}

// A tileModelKey identifies a tile model by tile and requested layers.
type tileModelKey struct {
	key      TileKey
	layerIDs string
}

// NewLayerSet returns a new LayerSet over layers in profile.
func NewLayerSet(profile Profile, layers ...*RasterLayer) (*LayerSet, error) {
	s := &LayerSet{
		profile: profile,
		layers:  make(map[string]*RasterLayer, len(layers)),
	}
	for _, layer := range layers {
		if _, ok := s.layers[layer.ID()]; ok {
			return nil, fmt.Errorf("%s: duplicate layer", layer.ID())
		}
		s.layers[layer.ID()] = layer
	}
	var err error
	s.tileModelCache, err = otter.New(&otter.Options[tileModelKey, *TileModel]{
		MaximumSize: DefaultTileModelCacheSize,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Layer returns the layer with the given ID.
func (s *LayerSet) Layer(id string) (*RasterLayer, bool) {
	layer, ok := s.layers[id]
	return layer, ok
}

func (s *LayerSet) TileModel(ctx context.Context, key TileKey, layerIDs []string) (*TileModel, error) {
	for _, layerID := range layerIDs {
		if _, ok := s.layers[layerID]; !ok {
			return nil, fmt.Errorf("%s: unknown layer", layerID)
		}
	}
	cacheKey := tileModelKey{
		key:      key,
		layerIDs: strings.Join(layerIDs, "\x00"),
	}
	return s.tileModelCache.Get(ctx, cacheKey, otter.LoaderFunc[tileModelKey, *TileModel](func(ctx context.Context, cacheKey tileModelKey) (*TileModel, error) {
		tileModelCacheMisses.Inc()
		return s.loadTileModel(ctx, key, layerIDs)
	}))
}

// loadTileModel reads the rasters of layerIDs for key.
func (s *LayerSet) loadTileModel(ctx context.Context, key TileKey, layerIDs []string) (*TileModel, error) {
	model := &TileModel{
		Key:     key,
		Extent:  s.profile.TileExtent(key),
		Rasters: make(map[string]*TileRaster, len(layerIDs)),
	}
	for _, layerID := range layerIDs {
		raster, err := s.layers[layerID].TileRaster(ctx, key)
		if err != nil {
			return nil, err
		}
		if raster != nil {
			model.Rasters[layerID] = raster
		}
	}
	return model, nil
}
