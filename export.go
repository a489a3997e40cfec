package groundcover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidExtent     = errors.New("invalid extent")
	ErrMissingDictionary = errors.New("no land cover dictionary")
)

// An Exporter samples a ground cover layer over every tile intersecting an
// extent and writes the accepted instances to a FeatureSink.
type Exporter struct {
	profile           Profile
	gridSize          int
	noise             *NoiseField
	workers           int
	logger            *slog.Logger
	progressFunc      func(done, total int)
	tileModelProvider TileModelProvider
	landCoverLayer    string
	dictionary        *LandCoverDictionary
}

// An ExporterOption sets an option on an Exporter.
type ExporterOption func(*Exporter)

// NewExporter returns a new Exporter with the given options.
func NewExporter(options ...ExporterOption) *Exporter {
	e := &Exporter{
		profile:  GlobalGeodetic,
		gridSize: DefaultGridSize,
		workers:  1,
		logger:   slog.Default(),
	}
	for _, option := range options {
		option(e)
	}
	if e.noise == nil {
		e.noise = NewNoiseField(DefaultNoiseSize, 0)
	}
	return e
}

func WithDictionary(dictionary *LandCoverDictionary) ExporterOption {
	return func(e *Exporter) {
		e.dictionary = dictionary
	}
}

func WithGridSize(gridSize int) ExporterOption {
	return func(e *Exporter) {
		e.gridSize = max(gridSize, 1)
	}
}

// WithLandCoverLayer sets the ID of the land cover classification layer. An
// empty ID disables the land cover test.
func WithLandCoverLayer(layerID string) ExporterOption {
	return func(e *Exporter) {
		e.landCoverLayer = layerID
	}
}

func WithLogger(logger *slog.Logger) ExporterOption {
	return func(e *Exporter) {
		e.logger = logger
	}
}

func WithNoiseField(noise *NoiseField) ExporterOption {
	return func(e *Exporter) {
		e.noise = noise
	}
}

func WithProfile(profile Profile) ExporterOption {
	return func(e *Exporter) {
		e.profile = profile
	}
}

// WithProgressFunc sets a function called after each tile with the number of
// tiles done and the total number of tiles.
func WithProgressFunc(progressFunc func(done, total int)) ExporterOption {
	return func(e *Exporter) {
		e.progressFunc = progressFunc
	}
}

func WithTileModelProvider(tileModelProvider TileModelProvider) ExporterOption {
	return func(e *Exporter) {
		e.tileModelProvider = tileModelProvider
	}
}

// WithWorkers sets the number of tiles sampled concurrently. Output order
// does not depend on the number of workers.
func WithWorkers(workers int) ExporterOption {
	return func(e *Exporter) {
		e.workers = max(workers, 1)
	}
}

// A tileResult is the outcome of sampling one tile.
type tileResult struct {
	key     TileKey
	points  []Point
	skipped bool
}

// Export samples layer over every tile intersecting extent and emits one
// feature per tile with accepted instances to sink. It returns the number of
// points emitted. The caller owns sink and must close it.
func (e *Exporter) Export(ctx context.Context, extent GeoExtent, layer *Layer, sink FeatureSink) (int, error) {
	if layer == nil {
		return 0, ErrNoLayer
	}
	if e.landCoverLayer != "" && e.dictionary == nil {
		return 0, ErrMissingDictionary
	}
	if (e.landCoverLayer != "" || layer.MaskLayer != "") && e.tileModelProvider == nil {
		return 0, errors.New("no tile model provider")
	}

	keys := e.profile.IntersectingTiles(extent, layer.LOD)
	if len(keys) == 0 {
		return 0, fmt.Errorf("%s: %w", extent, ErrInvalidExtent)
	}

	groundCover, ok := layer.DefaultGroundCover()
	if !ok {
		e.logger.Warn("no default ground cover", "layer", layer.Name)
	} else if err := groundCover.Validate(); err != nil {
		return 0, err
	}

	sampler := NewSampler(e.gridSize, e.noise)
	var classifier *Classifier
	if e.landCoverLayer != "" {
		classifier = &Classifier{
			Dictionary:  e.dictionary,
			GroundCover: groundCover,
		}
	}
	var layerIDs []string
	if e.landCoverLayer != "" {
		layerIDs = append(layerIDs, e.landCoverLayer)
	}
	if layer.MaskLayer != "" {
		layerIDs = append(layerIDs, layer.MaskLayer)
	}

	sampleTile := func(ctx context.Context, key TileKey) (tileResult, error) {
		result := tileResult{key: key}
		if groundCover == nil {
			return result, nil
		}
		tc := &SlotContext{
			Key:         key,
			Extent:      e.profile.TileExtent(key),
			GroundCover: groundCover,
			Classifier:  classifier,
		}
		if len(layerIDs) > 0 {
			model, err := e.tileModelProvider.TileModel(ctx, key, layerIDs)
			if err != nil {
				return result, fmt.Errorf("%s: %w", key, err)
			}
			if model == nil {
				result.skipped = true
				return result, nil
			}
			if e.landCoverLayer != "" {
				landCover, ok := model.Raster(e.landCoverLayer)
				if !ok {
					e.logger.Warn("no land cover raster", "tilekey", key)
					result.skipped = true
					return result, nil
				}
				tc.LandCover = landCover
			}
			if mask, ok := model.Raster(layer.MaskLayer); ok {
				tc.Mask = mask
			}
		}
		points, rejections := sampler.SampleTile(tc)
		for rejection, count := range rejections {
			slotsRejected.WithLabelValues(rejection.String()).Add(float64(count))
		}
		result.points = points
		return result, nil
	}

	count := 0
	done := 0
	emit := func(result tileResult) error {
		done++
		if result.skipped {
			tilesSkipped.Inc()
		} else {
			tilesProcessed.Inc()
		}
		if err := sink.Emit(result.key, result.points); err != nil {
			return fmt.Errorf("%s: %w", result.key, err)
		}
		count += len(result.points)
		pointsEmitted.Add(float64(len(result.points)))
		e.logger.Debug("tile", "tilekey", result.key, "points", len(result.points))
		if e.progressFunc != nil {
			e.progressFunc(done, len(keys))
		}
		return nil
	}

	if e.workers == 1 {
		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return count, err
			}
			result, err := sampleTile(ctx, key)
			if err != nil {
				return count, err
			}
			if err := emit(result); err != nil {
				return count, err
			}
		}
		return count, nil
	}

	// Sample concurrently, emit in enumeration order.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	resultChs := make([]chan tileResult, len(keys))
	for i := range resultChs {
		resultChs[i] = make(chan tileResult, 1)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers + 1) // One slot is used by the dispatcher.
	g.Go(func() error {
		for i, key := range keys {
			if err := gctx.Err(); err != nil {
				return err
			}
			g.Go(func() error {
				result, err := sampleTile(gctx, key)
				if err != nil {
					return err
				}
				resultChs[i] <- result
				return nil
			})
		}
		return nil
	})
	var emitErr error
FOR:
	for _, resultCh := range resultChs {
		if emitErr = ctx.Err(); emitErr != nil {
			break
		}
		select {
		case result := <-resultCh:
			if emitErr = emit(result); emitErr != nil {
				cancel()
				break FOR
			}
		case <-gctx.Done():
			emitErr = context.Cause(gctx)
			break FOR
		}
	}
	if err := g.Wait(); err != nil && emitErr == nil {
		return count, err
	}
	return count, emitErr
}
