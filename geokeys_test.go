package groundcover

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestParseGeoKeys(t *testing.T) {
	directory := []uint16{
		1, 1, 0, 7,
		1024, 0, 1, 2,
		1025, 0, 1, 1,
		1026, 34737, 7, 0,
		2048, 0, 1, 4326,
		2049, 34737, 7, 7,
		2054, 0, 1, 9102,
		2057, 34736, 1, 0,
	}
	doubleParams := []float64{6378137}
	asciiParams := []byte("WGS 84|WGS 84|")

	actual, err := ParseGeoKeys(directory, doubleParams, asciiParams)
	assert.NoError(t, err)
	assert.Equal(t, &ParsedGeoKeys{
		Params: map[GeoKey]int{
			GeoKeyGTModelType:  ModelTypeGeographic,
			GeoKeyGTRasterType: RasterPixelIsArea,
			GeoKeyGeodeticCRS:  4326,
			GeoKeyAngularUnits: 9102,
		},
		DoubleParams: map[GeoKey]float64{
			GeoKeySemiMajorAxis: 6378137,
		},
		ASCIIParams: map[GeoKey]string{
			GeoKeyGTCitation:   "WGS 84|",
			GeoKeyGeogCitation: "WGS 84|",
		},
	}, actual)
	assert.True(t, actual.IsWGS84())
	assert.False(t, actual.PixelIsPoint())
}

func TestParseGeoKeys_Errors(t *testing.T) {
	for _, tc := range []struct {
		name        string
		directory   []uint16
		expectedErr error
	}{
		{
			name:        "short",
			directory:   []uint16{1, 1, 0},
			expectedErr: errParse,
		},
		{
			name:        "bad_version",
			directory:   []uint16{2, 1, 0, 0},
			expectedErr: errParse,
		},
		{
			name:        "bad_count",
			directory:   []uint16{1, 1, 0, 2, 1024, 0, 1, 2},
			expectedErr: errParse,
		},
		{
			name:        "double_out_of_range",
			directory:   []uint16{1, 1, 0, 1, 2057, 34736, 1, 3},
			expectedErr: errParse,
		},
		{
			name:        "unknown_location",
			directory:   []uint16{1, 1, 0, 1, 1024, 12345, 1, 0},
			expectedErr: errors.ErrUnsupported,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseGeoKeys(tc.directory, nil, nil)
			assert.IsError(t, err, tc.expectedErr)
		})
	}
}

func TestParsedGeoKeys_IsWGS84(t *testing.T) {
	for _, tc := range []struct {
		name     string
		keys     *ParsedGeoKeys
		expected bool
	}{
		{
			name: "projected",
			keys: &ParsedGeoKeys{Params: map[GeoKey]int{
				GeoKeyGTModelType:  ModelTypeProjected,
				GeoKeyProjectedCRS: 3035,
			}},
		},
		{
			name: "etrs89",
			keys: &ParsedGeoKeys{Params: map[GeoKey]int{
				GeoKeyGTModelType: ModelTypeGeographic,
				GeoKeyGeodeticCRS: 4258,
			}},
		},
		{
			name: "implicit",
			keys: &ParsedGeoKeys{Params: map[GeoKey]int{
				GeoKeyGTModelType: ModelTypeGeographic,
			}},
			expected: true,
		},
		{
			name: "user_defined",
			keys: &ParsedGeoKeys{
				Params: map[GeoKey]int{
					GeoKeyGTModelType: ModelTypeGeographic,
					GeoKeyGeodeticCRS: userDefined,
				},
				DoubleParams: map[GeoKey]float64{
					GeoKeySemiMajorAxis: 6378137,
				},
			},
			expected: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.keys.IsWGS84())
		})
	}
}
