package groundcover

import "math"

// DefaultGridSize is the default number of instance slots along each side of
// a tile.
const DefaultGridSize = 128

// jitterFrequency decorrelates the jitter from the noise field's period.
const jitterFrequency = 5.5

// A Rejection is the outcome of evaluating an instance slot.
type Rejection int

const (
	Accepted Rejection = iota
	RejectedFill
	RejectedLandCover
	RejectedMask
)

func (r Rejection) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectedFill:
		return "fill"
	case RejectedLandCover:
		return "landcover"
	case RejectedMask:
		return "mask"
	default:
		return "unknown"
	}
}

// A SlotContext is everything needed to evaluate the instance slots of one
// tile. LandCover and Mask are optional; a nil raster disables its test.
// Classifier is required when LandCover is set.
type SlotContext struct {
	Key         TileKey
	Extent      GeoExtent
	GroundCover *GroundCover
	Classifier  *Classifier
	LandCover   *TileRaster
	Mask        *TileRaster
}

// A Sampler places vegetation instances on a regular grid of slots per tile,
// jittered and filtered by noise.
type Sampler struct {
	GridSize int
	Noise    *NoiseField
}

// NewSampler returns a new Sampler.
func NewSampler(gridSize int, noise *NoiseField) *Sampler {
	return &Sampler{
		GridSize: gridSize,
		Noise:    noise,
	}
}

// An Instance is an accepted vegetation instance.
type Instance struct {
	Point Point
	// Density is the smooth noise value relative to the ground cover's fill,
	// in [0,1].
	Density float64
}

// EvaluateSlot returns the instance in slot (s, t) and whether it was
// accepted. The returned instance is only meaningful if the rejection is
// Accepted.
func (sm *Sampler) EvaluateSlot(tc *SlotContext, s, t int) (Instance, Rejection) {
	n := float64(sm.GridSize)
	halfSpacingX, halfSpacingY := 0.5/n, 0.5/n
	tileX := halfSpacingX + float64(s)/n
	tileY := halfSpacingY + float64(t)/n

	var u, v float64
	if sm.GridSize > 1 {
		u = float64(s) / (n - 1)
		v = float64(t) / (n - 1)
	}
	noise := sm.Noise.Sample(u, v)

	tileX += (fract(noise[NoiseRandom]*jitterFrequency)*2 - 1) * halfSpacingX
	tileY += (fract(noise[NoiseRandom2]*jitterFrequency)*2 - 1) * halfSpacingY

	density := noise[NoiseSmooth]
	if density > tc.GroundCover.Fill {
		return Instance{}, RejectedFill
	} else if density > 0 {
		density /= tc.GroundCover.Fill
	}

	if tc.LandCover != nil {
		if tc.Classifier == nil || !tc.Classifier.Accepts(tc.LandCover.Sample(u, v)[0]) {
			return Instance{}, RejectedLandCover
		}
	}

	if tc.Mask != nil {
		if tc.Mask.Sample(u, v)[0] > 0 {
			return Instance{}, RejectedMask
		}
	}

	return Instance{
		Point: Point{
			X: tc.Extent.XMin + tileX*tc.Extent.Width(),
			Y: tc.Extent.YMin + tileY*tc.Extent.Height(),
		},
		Density: density,
	}, Accepted
}

// SampleTile returns the accepted instances of all of the tile's slots, in
// row-major order, and the number of slots rejected for each reason.
func (sm *Sampler) SampleTile(tc *SlotContext) ([]Point, map[Rejection]int) {
	if tc.GroundCover == nil {
		return nil, nil
	}
	var points []Point
	rejections := make(map[Rejection]int)
	for t := range sm.GridSize {
		for s := range sm.GridSize {
			instance, rejection := sm.EvaluateSlot(tc, s, t)
			if rejection != Accepted {
				rejections[rejection]++
				continue
			}
			points = append(points, instance.Point)
		}
	}
	return points, rejections
}

// fract returns the fractional part of x, keeping the sign of x.
func fract(x float64) float64 {
	return math.Mod(x, 1)
}
