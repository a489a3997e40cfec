package groundcover

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/google/tiff"
	_ "github.com/google/tiff/bigtiff"
	_ "github.com/google/tiff/geotiff"
	xtiff "golang.org/x/image/tiff"
)

// A geoTIFFIFD is a struct into which github.com/google/tiff can unmarshal the
// georeferencing tags of an IFD.
type geoTIFFIFD struct {
	ModelPixelScaleTag []float64 `tiff:"field,tag=33550"`
	ModelTiepointTag   []float64 `tiff:"field,tag=33922"`
	GeoKeyDirectoryTag []uint16  `tiff:"field,tag=34735"`
	GeoDoubleParamsTag []float64 `tiff:"field,tag=34736"`
	GeoASCIIParamsTag  string    `tiff:"field,tag=34737"`
}

// A geoTIFFRaster is a decoded TIFF and, if it is georeferenced, its extent.
type geoTIFFRaster struct {
	raster        Raster
	extent        GeoExtent
	georeferenced bool
}

// decodeGeoTIFF decodes the TIFF in data. Georeferencing tags are optional
// but, if present, must describe a north-up WGS84 raster.
func decodeGeoTIFF(data []byte) (*geoTIFFRaster, error) {
	img, err := xtiff.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	r := &geoTIFFRaster{
		raster: NewImageRaster(img),
	}

	tiffTIFF, err := tiff.Parse(bytes.NewReader(data), tiff.GetTagSpace("GeoTIFF"), nil)
	if err != nil {
		return nil, err
	}
	if len(tiffTIFF.IFDs()) == 0 {
		return nil, errors.New("no IFDs")
	}
	var ifd geoTIFFIFD
	if err := tiff.UnmarshalIFD(tiffTIFF.IFDs()[0], &ifd); err != nil {
		return nil, err
	}
	if ifd.ModelPixelScaleTag == nil && ifd.ModelTiepointTag == nil {
		return r, nil
	}

	parsedGeoKeys, err := ParseGeoKeys(ifd.GeoKeyDirectoryTag, ifd.GeoDoubleParamsTag, []byte(ifd.GeoASCIIParamsTag))
	if err != nil {
		return nil, fmt.Errorf("geokeys: %w", err)
	}
	width, height := r.raster.Size()
	r.extent, err = geoTIFFExtent(width, height, ifd.ModelPixelScaleTag, ifd.ModelTiepointTag, parsedGeoKeys)
	if err != nil {
		return nil, err
	}
	r.georeferenced = true
	return r, nil
}

// geoTIFFExtent returns the extent of a width by height raster from its
// ModelPixelScale and ModelTiepoint tags.
func geoTIFFExtent(width, height int, pixelScale, tiepoint []float64, parsedGeoKeys *ParsedGeoKeys) (GeoExtent, error) {
	if !parsedGeoKeys.IsWGS84() {
		return GeoExtent{}, errors.ErrUnsupported
	}
	if len(pixelScale) != 3 || len(tiepoint) != 6 {
		return GeoExtent{}, errors.ErrUnsupported
	}
	scaleX, scaleY := pixelScale[0], pixelScale[1]
	if scaleX <= 0 || scaleY <= 0 {
		return GeoExtent{}, errors.ErrUnsupported
	}
	i, j := tiepoint[0], tiepoint[1]
	x, y := tiepoint[3], tiepoint[4]
	if parsedGeoKeys.PixelIsPoint() {
		// The tiepoint is the center of its pixel.
		i += 0.5
		j += 0.5
	}
	xMin := x - i*scaleX
	yMax := y + j*scaleY
	extent := NewGeoExtent(xMin, yMax-float64(height)*scaleY, xMin+float64(width)*scaleX, yMax)
	if !extent.Valid() {
		return GeoExtent{}, fmt.Errorf("%s: invalid extent", extent)
	}
	return extent, nil
}
