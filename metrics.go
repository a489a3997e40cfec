package groundcover

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	missingRasterCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groundcover_missing_raster_cache_hits_total",
		Help: "The total number of hits on the missing raster cache",
	})
	missingRasterCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groundcover_missing_raster_cache_misses_total",
		Help: "The total number of misses on the missing raster cache",
	})
	rasterCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groundcover_raster_cache_hits_total",
		Help: "The total number of hits on the raster cache",
	})
	rasterCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groundcover_raster_cache_misses_total",
		Help: "The total number of misses on the raster cache",
	})
	rasterCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groundcover_raster_cache_evictions_total",
		Help: "The total number of evictions from the raster cache",
	})
	tileModelCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groundcover_tile_model_cache_misses_total",
		Help: "The total number of tile models loaded from raster layers",
	})
	tilesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groundcover_tiles_processed_total",
		Help: "The total number of tiles sampled",
	})
	tilesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groundcover_tiles_skipped_total",
		Help: "The total number of tiles skipped for missing land cover",
	})
	pointsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groundcover_points_emitted_total",
		Help: "The total number of accepted instances written",
	})
	slotsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groundcover_slots_rejected_total",
		Help: "The total number of instance slots rejected, by reason",
	}, []string{"reason"})
)
