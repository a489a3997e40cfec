package groundcover

import (
	"image"
	"image/color"
)

// A RasterSample is a four channel pixel value. Channel 0 carries the scalar
// classification, mask, or fill value.
type RasterSample [4]float64

// A Raster is an image addressed by normalized coordinates. (0, 0) is the
// south-west corner and (1, 1) the north-east corner.
type Raster interface {
	Sample(u, v float64) RasterSample
	Size() (int, int)
}

// A TextureTransform maps tile-normalized coordinates into a raster's
// normalized coordinates with a scale and a translation.
type TextureTransform struct {
	ScaleU  float64
	ScaleV  float64
	OffsetU float64
	OffsetV float64
}

// IdentityTransform maps tile coordinates to the same raster coordinates.
var IdentityTransform = TextureTransform{ScaleU: 1, ScaleV: 1}

// TransformBetween returns the TextureTransform that maps normalized
// coordinates in tile into normalized coordinates in raster.
func TransformBetween(tile, raster GeoExtent) TextureTransform {
	return TextureTransform{
		ScaleU:  tile.Width() / raster.Width(),
		ScaleV:  tile.Height() / raster.Height(),
		OffsetU: (tile.XMin - raster.XMin) / raster.Width(),
		OffsetV: (tile.YMin - raster.YMin) / raster.Height(),
	}
}

// Apply returns (u, v) transformed by t.
func (t TextureTransform) Apply(u, v float64) (float64, float64) {
	return t.ScaleU*u + t.OffsetU, t.ScaleV*v + t.OffsetV
}

// A TileRaster is a raster together with the transform from a tile's
// normalized coordinates into it.
type TileRaster struct {
	Raster    Raster
	Transform TextureTransform
}

// Sample returns the sample at tile-normalized coordinates (u, v).
func (r *TileRaster) Sample(u, v float64) RasterSample {
	return r.Raster.Sample(r.Transform.Apply(u, v))
}

// An ImageRaster is a Raster backed by an image. Samples are raw channel
// values: 0..255 for 8 bit images and 0..65535 for 16 bit images. Sampling
// uses the nearest pixel and clamps at the edges.
type ImageRaster struct {
	image image.Image
}

// NewImageRaster returns a new ImageRaster.
func NewImageRaster(img image.Image) *ImageRaster {
	return &ImageRaster{
		image: img,
	}
}

func (r *ImageRaster) Size() (int, int) {
	bounds := r.image.Bounds()
	return bounds.Dx(), bounds.Dy()
}

func (r *ImageRaster) Sample(u, v float64) RasterSample {
	bounds := r.image.Bounds()
	x := bounds.Min.X + pixelIndex(u, bounds.Dx())
	y := bounds.Min.Y + pixelIndex(1-v, bounds.Dy())
	switch img := r.image.(type) {
	case *image.Gray:
		value := float64(img.GrayAt(x, y).Y)
		return RasterSample{value, value, value, 255}
	case *image.Gray16:
		value := float64(img.Gray16At(x, y).Y)
		return RasterSample{value, value, value, 65535}
	case *image.Paletted:
		value := float64(img.ColorIndexAt(x, y))
		return RasterSample{value, value, value, 255}
	case *image.RGBA64, *image.NRGBA64:
		c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
		return RasterSample{float64(c.R), float64(c.G), float64(c.B), float64(c.A)}
	default:
		c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
		return RasterSample{float64(c.R), float64(c.G), float64(c.B), float64(c.A)}
	}
}

// A GridRaster is a Raster backed by float32 values in memory, stored in
// row-major order from the northern row.
type GridRaster struct {
	width    int
	height   int
	channels int
	values   []float32
}

// NewGridRaster returns a new GridRaster. values must hold width*height
// pixels of channels values each.
func NewGridRaster(width, height, channels int, values []float32) *GridRaster {
	if width <= 0 || height <= 0 || channels < 1 || channels > 4 || len(values) != width*height*channels {
		panic("invalid grid raster dimensions")
	}
	return &GridRaster{
		width:    width,
		height:   height,
		channels: channels,
		values:   values,
	}
}

// NewConstantRaster returns a 1x1 GridRaster whose every sample is value.
func NewConstantRaster(value float32) *GridRaster {
	return NewGridRaster(1, 1, 1, []float32{value})
}

func (r *GridRaster) Size() (int, int) {
	return r.width, r.height
}

func (r *GridRaster) Sample(u, v float64) RasterSample {
	x := pixelIndex(u, r.width)
	y := pixelIndex(1-v, r.height)
	i := r.channels * (x + y*r.width)
	var sample RasterSample
	for c := range r.channels {
		sample[c] = float64(r.values[i+c])
	}
	return sample
}

// pixelIndex returns the index of the pixel containing normalized coordinate
// u in a row of n pixels, clamped to the row.
func pixelIndex(u float64, n int) int {
	i := int(u * float64(n))
	switch {
	case u < 0 || i < 0:
		return 0
	case i >= n:
		return n - 1
	default:
		return i
	}
}
