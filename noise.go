package groundcover

import (
	"math"
	"math/rand/v2"
)

// DefaultNoiseSize is the width and height of the default noise field.
const DefaultNoiseSize = 256

// A NoiseChannel is a channel of a NoiseField.
type NoiseChannel int

const (
	// NoiseSmooth is coherent noise used for fill density.
	NoiseSmooth NoiseChannel = iota
	// NoiseRandom is white noise used for horizontal jitter.
	NoiseRandom
	// NoiseRandom2 is white noise used for vertical jitter.
	NoiseRandom2
	// NoiseClumpy is high frequency coherent noise.
	NoiseClumpy

	noiseChannels = 4
)

// A NoiseField is a square four channel image of values in [0,1] addressed
// by normalized coordinates that wrap around at the edges. The smooth channel
// is never zero.
type NoiseField struct {
	size   int
	texels []float32
}

// NewNoiseField returns a new NoiseField of the given size. Fields created
// with the same size and seed are identical.
func NewNoiseField(size int, seed uint64) *NoiseField {
	size = max(size, 1)
	f := &NoiseField{
		size:   size,
		texels: make([]float32, noiseChannels*size*size),
	}

	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	smooth := newSimplex(r)
	clumpy := newSimplex(r)

	smoothValues := make([]float64, size*size)
	clumpyValues := make([]float64, size*size)
	for y := range size {
		for x := range size {
			i := x + y*size
			u, v := float64(x)/float64(size), float64(y)/float64(size)
			smoothValues[i] = smooth.fractal(u*4, v*4, 4)
			clumpyValues[i] = clumpy.fractal(u*32, v*32, 2)
			f.texels[noiseChannels*i+int(NoiseRandom)] = r.Float32()
			f.texels[noiseChannels*i+int(NoiseRandom2)] = r.Float32()
		}
	}
	normalize(smoothValues)
	normalize(clumpyValues)
	for i := range size * size {
		// Smooth values are quantized to (0,1] so that a zero fill rejects
		// every slot.
		f.texels[noiseChannels*i+int(NoiseSmooth)] = float32((1 + 254*smoothValues[i]) / 255)
		f.texels[noiseChannels*i+int(NoiseClumpy)] = float32(clumpyValues[i] * clumpyValues[i])
	}

	return f
}

// NewNoiseFieldFromTexels returns a NoiseField using texels, which must
// contain four channels for each of size*size texels in row-major order.
func NewNoiseFieldFromTexels(size int, texels []float32) *NoiseField {
	if size <= 0 || len(texels) != noiseChannels*size*size {
		panic("invalid noise texels")
	}
	return &NoiseField{
		size:   size,
		texels: texels,
	}
}

// Size returns f's width and height.
func (f *NoiseField) Size() int {
	return f.size
}

// Sample returns the nearest texel to (u, v).
func (f *NoiseField) Sample(u, v float64) RasterSample {
	return f.texel(f.index(u), f.index(v))
}

// SampleBilinear returns the bilinear interpolation of the four texels
// surrounding (u, v).
func (f *NoiseField) SampleBilinear(u, v float64) RasterSample {
	x := wrap(u)*float64(f.size) - 0.5
	y := wrap(v)*float64(f.size) - 0.5
	x0, y0 := math.Floor(x), math.Floor(y)
	return bilinear(
		f.texel(f.wrapIndex(int(x0)), f.wrapIndex(int(y0))),
		f.texel(f.wrapIndex(int(x0)+1), f.wrapIndex(int(y0))),
		f.texel(f.wrapIndex(int(x0)), f.wrapIndex(int(y0)+1)),
		f.texel(f.wrapIndex(int(x0)+1), f.wrapIndex(int(y0)+1)),
		x-x0, y-y0,
	)
}

// Channel returns a single channel of the nearest texel to (u, v).
func (f *NoiseField) Channel(u, v float64, channel NoiseChannel) float64 {
	return f.Sample(u, v)[channel]
}

func (f *NoiseField) index(u float64) int {
	return min(int(wrap(u)*float64(f.size)), f.size-1)
}

func (f *NoiseField) wrapIndex(i int) int {
	i %= f.size
	if i < 0 {
		i += f.size
	}
	return i
}

func (f *NoiseField) texel(x, y int) RasterSample {
	i := noiseChannels * (x + y*f.size)
	return RasterSample{
		float64(f.texels[i+0]),
		float64(f.texels[i+1]),
		float64(f.texels[i+2]),
		float64(f.texels[i+3]),
	}
}

// wrap returns the fractional part of u in [0,1).
func wrap(u float64) float64 {
	return u - math.Floor(u)
}

// normalize rescales values linearly into [0,1].
func normalize(values []float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, value := range values {
		lo = min(lo, value)
		hi = max(hi, value)
	}
	if hi <= lo {
		for i := range values {
			values[i] = 0
		}
		return
	}
	for i, value := range values {
		values[i] = (value - lo) / (hi - lo)
	}
}
