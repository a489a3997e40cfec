package groundcover_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	groundcover "github.com/twpayne/go-groundcover"
)

const testGridSize = 16

func newTestSlotContext(fill float64) *groundcover.SlotContext {
	return &groundcover.SlotContext{
		Key:    groundcover.TileKey{LOD: 8, X: 80, Y: 74},
		Extent: groundcover.NewGeoExtent(-123.75, 37.265625, -123.046875, 37.96875),
		GroundCover: &groundcover.GroundCover{
			Name: "trees",
			Fill: fill,
			Biomes: []groundcover.Biome{
				{Name: "woodland", Classes: []string{"forest"}},
			},
		},
	}
}

func newTestSampler() *groundcover.Sampler {
	return groundcover.NewSampler(testGridSize, groundcover.NewNoiseField(32, 1))
}

func TestSamplerFill(t *testing.T) {
	sampler := newTestSampler()

	points, rejections := sampler.SampleTile(newTestSlotContext(1))
	assert.Equal(t, testGridSize*testGridSize, len(points))
	assert.Equal(t, 0, rejections[groundcover.RejectedFill])

	points, rejections = sampler.SampleTile(newTestSlotContext(0))
	assert.Equal(t, 0, len(points))
	assert.Equal(t, testGridSize*testGridSize, rejections[groundcover.RejectedFill])
}

func TestSamplerFillMonotonic(t *testing.T) {
	sampler := newTestSampler()
	var previous []groundcover.Point
	for _, fill := range []float64{0, 0.25, 0.5, 0.75, 1} {
		points, _ := sampler.SampleTile(newTestSlotContext(fill))
		assert.True(t, len(points) >= len(previous), "fill %g", fill)
		accepted := make(map[groundcover.Point]struct{}, len(points))
		for _, point := range points {
			accepted[point] = struct{}{}
		}
		for _, point := range previous {
			_, ok := accepted[point]
			assert.True(t, ok, "fill %g", fill)
		}
		previous = points
	}
}

func TestSamplerPointsInExtent(t *testing.T) {
	tc := newTestSlotContext(1)
	points, _ := newTestSampler().SampleTile(tc)
	for _, point := range points {
		assert.True(t, tc.Extent.Contains(point.X, point.Y), "%v", point)
	}
}

func TestSamplerDeterministic(t *testing.T) {
	expected, _ := newTestSampler().SampleTile(newTestSlotContext(0.5))
	actual, _ := newTestSampler().SampleTile(newTestSlotContext(0.5))
	assert.Equal(t, expected, actual)
}

func TestSamplerJitter(t *testing.T) {
	tc := newTestSlotContext(1)
	sampler := newTestSampler()
	jittered := false
	for row := range testGridSize {
		for s := range testGridSize {
			instance, rejection := sampler.EvaluateSlot(tc, s, row)
			assert.Equal(t, groundcover.Accepted, rejection)
			centerX := tc.Extent.XMin + (float64(s)+0.5)/testGridSize*tc.Extent.Width()
			halfSpacing := 0.5 / testGridSize * tc.Extent.Width()
			assert.True(t, instance.Point.X >= centerX-halfSpacing-1e-9)
			assert.True(t, instance.Point.X < centerX+halfSpacing+1e-9)
			if instance.Point.X != centerX {
				jittered = true
			}
			assert.True(t, instance.Density > 0 && instance.Density <= 1)
		}
	}
	assert.True(t, jittered)
}

func TestSamplerMask(t *testing.T) {
	sampler := newTestSampler()
	unmasked, _ := sampler.SampleTile(newTestSlotContext(0.75))

	tc := newTestSlotContext(0.75)
	tc.Mask = &groundcover.TileRaster{
		Raster:    groundcover.NewConstantRaster(0),
		Transform: groundcover.IdentityTransform,
	}
	points, _ := sampler.SampleTile(tc)
	assert.Equal(t, unmasked, points)

	tc.Mask.Raster = groundcover.NewConstantRaster(1)
	points, rejections := sampler.SampleTile(tc)
	assert.Equal(t, 0, len(points))
	assert.Equal(t, len(unmasked), rejections[groundcover.RejectedMask])

	// A mask covering the west half removes only western points.
	tc.Mask.Raster = groundcover.NewGridRaster(2, 1, 1, []float32{1, 0})
	points, _ = sampler.SampleTile(tc)
	assert.True(t, len(points) < len(unmasked))
	accepted := make(map[groundcover.Point]struct{}, len(unmasked))
	for _, point := range unmasked {
		accepted[point] = struct{}{}
	}
	for _, point := range points {
		_, ok := accepted[point]
		assert.True(t, ok)
	}
}

func TestSamplerLandCover(t *testing.T) {
	sampler := newTestSampler()
	classifier := &groundcover.Classifier{
		Dictionary: newTestDictionary(t),
	}

	for _, tc := range []struct {
		name          string
		raw           float32
		expectedCount int
	}{
		{name: "forest", raw: 10, expectedCount: testGridSize * testGridSize},
		{name: "water", raw: 20},
		{name: "unknown", raw: 42},
	} {
		t.Run(tc.name, func(t *testing.T) {
			slotContext := newTestSlotContext(1)
			classifier.GroundCover = slotContext.GroundCover
			slotContext.Classifier = classifier
			slotContext.LandCover = &groundcover.TileRaster{
				Raster:    groundcover.NewConstantRaster(tc.raw),
				Transform: groundcover.IdentityTransform,
			}
			points, rejections := sampler.SampleTile(slotContext)
			assert.Equal(t, tc.expectedCount, len(points))
			assert.Equal(t, testGridSize*testGridSize-tc.expectedCount, rejections[groundcover.RejectedLandCover])
		})
	}

	// Land cover without a classifier rejects every slot.
	slotContext := newTestSlotContext(1)
	slotContext.LandCover = &groundcover.TileRaster{
		Raster:    groundcover.NewConstantRaster(10),
		Transform: groundcover.IdentityTransform,
	}
	points, _ := sampler.SampleTile(slotContext)
	assert.Equal(t, 0, len(points))
}

func TestSamplerNoGroundCover(t *testing.T) {
	tc := newTestSlotContext(1)
	tc.GroundCover = nil
	points, rejections := newTestSampler().SampleTile(tc)
	assert.Zero(t, points)
	assert.Zero(t, rejections)
}

func TestRejectionString(t *testing.T) {
	assert.Equal(t, "accepted", groundcover.Accepted.String())
	assert.Equal(t, "fill", groundcover.RejectedFill.String())
	assert.Equal(t, "landcover", groundcover.RejectedLandCover.String())
	assert.Equal(t, "mask", groundcover.RejectedMask.String())
}
