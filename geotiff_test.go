package groundcover

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/alecthomas/assert/v2"
	xtiff "golang.org/x/image/tiff"
)

func TestGeoTIFFExtent(t *testing.T) {
	wgs84 := &ParsedGeoKeys{
		Params: map[GeoKey]int{
			GeoKeyGTModelType:  ModelTypeGeographic,
			GeoKeyGTRasterType: RasterPixelIsArea,
			GeoKeyGeodeticCRS:  geodeticCRSWGS84,
		},
	}
	wgs84PixelIsPoint := &ParsedGeoKeys{
		Params: map[GeoKey]int{
			GeoKeyGTModelType:  ModelTypeGeographic,
			GeoKeyGTRasterType: RasterPixelIsPoint,
			GeoKeyGeodeticCRS:  geodeticCRSWGS84,
		},
	}
	projected := &ParsedGeoKeys{
		Params: map[GeoKey]int{
			GeoKeyGTModelType: ModelTypeProjected,
		},
	}

	for _, tc := range []struct {
		name           string
		width          int
		height         int
		pixelScale     []float64
		tiepoint       []float64
		parsedGeoKeys  *ParsedGeoKeys
		expected       GeoExtent
		expectedErr    error
		expectedAnyErr bool
	}{
		{
			name:          "pixel_is_area",
			width:         4,
			height:        2,
			pixelScale:    []float64{0.5, 0.5, 0},
			tiepoint:      []float64{0, 0, 0, -10, 20, 0},
			parsedGeoKeys: wgs84,
			expected:      NewGeoExtent(-10, 19, -8, 20),
		},
		{
			name:          "pixel_is_point",
			width:         4,
			height:        2,
			pixelScale:    []float64{0.5, 0.5, 0},
			tiepoint:      []float64{0, 0, 0, -10, 20, 0},
			parsedGeoKeys: wgs84PixelIsPoint,
			expected:      NewGeoExtent(-10.25, 19.25, -8.25, 20.25),
		},
		{
			name:          "projected",
			width:         4,
			height:        2,
			pixelScale:    []float64{0.5, 0.5, 0},
			tiepoint:      []float64{0, 0, 0, -10, 20, 0},
			parsedGeoKeys: projected,
			expectedErr:   errors.ErrUnsupported,
		},
		{
			name:          "missing_tiepoint",
			width:         4,
			height:        2,
			pixelScale:    []float64{0.5, 0.5, 0},
			parsedGeoKeys: wgs84,
			expectedErr:   errors.ErrUnsupported,
		},
		{
			name:           "empty",
			pixelScale:     []float64{0.5, 0.5, 0},
			tiepoint:       []float64{0, 0, 0, -10, 20, 0},
			parsedGeoKeys:  wgs84,
			expectedAnyErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := geoTIFFExtent(tc.width, tc.height, tc.pixelScale, tc.tiepoint, tc.parsedGeoKeys)
			switch {
			case tc.expectedErr != nil:
				assert.IsError(t, err, tc.expectedErr)
			case tc.expectedAnyErr:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, actual)
			}
		})
	}
}

func TestDecodeGeoTIFFWithoutGeoreference(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 3, 2))
	img.SetGray16(2, 0, color.Gray16{Y: 1234})
	var buffer bytes.Buffer
	assert.NoError(t, xtiff.Encode(&buffer, img, nil))

	raster, err := decodeGeoTIFF(buffer.Bytes())
	assert.NoError(t, err)
	assert.False(t, raster.georeferenced)
	width, height := raster.raster.Size()
	assert.Equal(t, 3, width)
	assert.Equal(t, 2, height)
	assert.Equal(t, 1234, raster.raster.Sample(1, 1)[0])
}
