package groundcover

import "errors"

var errParse = errors.New("parse error")

// GeoTIFF tags that hold GeoKey parameters, used as GeoKey locations.
const (
	tagGeoDoubleParams = 34736
	tagGeoASCIIParams  = 34737
)

type GeoKey uint16

const (
	GeoKeyGTModelType  GeoKey = 1024
	GeoKeyGTRasterType GeoKey = 1025
	GeoKeyGTCitation   GeoKey = 1026

	GeoKeyGeodeticCRS   GeoKey = 2048
	GeoKeyGeogCitation  GeoKey = 2049
	GeoKeyGeodeticDatum GeoKey = 2050
	GeoKeyPrimeMeridian GeoKey = 2051
	GeoKeyAngularUnits  GeoKey = 2054
	GeoKeyEllipsoid     GeoKey = 2056
	GeoKeySemiMajorAxis GeoKey = 2057
	GeoKeyInvFlattening GeoKey = 2059

	GeoKeyProjectedCRS GeoKey = 3072
)

// Values of GeoKeyGTModelType.
const (
	ModelTypeProjected  = 1
	ModelTypeGeographic = 2
)

// Values of GeoKeyGTRasterType.
const (
	RasterPixelIsArea  = 1
	RasterPixelIsPoint = 2
)

// Values of GeoKeyGeodeticCRS accepted as WGS84 lon/lat.
const (
	geodeticCRSWGS84 = 4326
	userDefined      = 32767
)

// A ParsedGeoKeys holds the values of a GeoKey directory, split by where the
// values are stored.
type ParsedGeoKeys struct {
	Params       map[GeoKey]int
	DoubleParams map[GeoKey]float64
	ASCIIParams  map[GeoKey]string
}

// ParseGeoKeys parses a GeoKey directory and its parameter tags.
func ParseGeoKeys(directory []uint16, doubleParams []float64, asciiParams []byte) (*ParsedGeoKeys, error) {
	if len(directory) < 4 {
		return nil, errParse
	}

	keyDirectoryVersion, keyRevision, minorRevision := directory[0], directory[1], directory[2]
	if keyDirectoryVersion != 1 || keyRevision != 1 || (minorRevision != 0 && minorRevision != 1) {
		return nil, errParse
	}
	numberOfKeys := int(directory[3])
	if len(directory) != 4+4*numberOfKeys {
		return nil, errParse
	}

	parsedGeoKeys := &ParsedGeoKeys{
		Params:       make(map[GeoKey]int),
		DoubleParams: make(map[GeoKey]float64),
		ASCIIParams:  make(map[GeoKey]string),
	}
	for i := range numberOfKeys {
		entry := directory[4+4*i : 4+4*(i+1)]
		key := GeoKey(entry[0])
		location, count, valueOffset := int(entry[1]), int(entry[2]), int(entry[3])
		switch location {
		case 0:
			if count != 1 {
				return nil, errParse
			}
			parsedGeoKeys.Params[key] = valueOffset
		case tagGeoDoubleParams:
			if count != 1 {
				return nil, errors.ErrUnsupported
			}
			if valueOffset >= len(doubleParams) {
				return nil, errParse
			}
			parsedGeoKeys.DoubleParams[key] = doubleParams[valueOffset]
		case tagGeoASCIIParams:
			if valueOffset+count > len(asciiParams) {
				return nil, errParse
			}
			parsedGeoKeys.ASCIIParams[key] = string(asciiParams[valueOffset : valueOffset+count])
		default:
			return nil, errors.ErrUnsupported
		}
	}
	return parsedGeoKeys, nil
}

// IsWGS84 returns whether k describes a WGS84 geographic coordinate system.
// A missing geodetic CRS is assumed to be WGS84.
func (k *ParsedGeoKeys) IsWGS84() bool {
	if modelType, ok := k.Params[GeoKeyGTModelType]; !ok || modelType != ModelTypeGeographic {
		return false
	}
	switch crs, ok := k.Params[GeoKeyGeodeticCRS]; {
	case !ok:
		return true
	case crs == geodeticCRSWGS84:
		return true
	case crs == userDefined:
		semiMajorAxis, ok := k.DoubleParams[GeoKeySemiMajorAxis]
		return ok && semiMajorAxis == 6378137
	default:
		return false
	}
}

// PixelIsPoint returns whether raster coordinates refer to pixel centers.
func (k *ParsedGeoKeys) PixelIsPoint() bool {
	return k.Params[GeoKeyGTRasterType] == RasterPixelIsPoint
}
