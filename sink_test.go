package groundcover_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	groundcover "github.com/twpayne/go-groundcover"
)

var testFeatures = []groundcover.Feature{
	{
		TileKey: "8/80/74",
		Points: []groundcover.Point{
			{X: -123.5, Y: 37.5},
			{X: -123.25, Y: 37.75},
		},
	},
	{
		TileKey: "8/81/74",
		Points: []groundcover.Point{
			{X: -122.75, Y: 37.5},
		},
	},
}

func emitTestFeatures(t *testing.T, sink groundcover.FeatureSink) {
	t.Helper()
	for _, feature := range testFeatures {
		key, err := groundcover.ParseTileKey(feature.TileKey)
		assert.NoError(t, err)
		assert.NoError(t, sink.Emit(key, feature.Points))
	}
	assert.NoError(t, sink.Emit(groundcover.TileKey{LOD: 8, X: 82, Y: 74}, nil))
}

func TestMemorySink(t *testing.T) {
	sink := groundcover.NewMemorySink()
	emitTestFeatures(t, sink)
	assert.Equal(t, testFeatures, sink.Features())
	assert.False(t, sink.Closed())
	assert.NoError(t, sink.Close())
	assert.True(t, sink.Closed())
	assert.Error(t, sink.Close())
	assert.Error(t, sink.Emit(groundcover.TileKey{}, testFeatures[0].Points))
}

func TestGeoJSONSink(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "groundcover.geojson")
	sink, err := groundcover.NewGeoJSONSink(filename)
	assert.NoError(t, err)
	emitTestFeatures(t, sink)
	assert.NoError(t, sink.Close())

	data, err := os.ReadFile(filename)
	assert.NoError(t, err)
	featureCollection, err := geojson.UnmarshalFeatureCollection(data)
	assert.NoError(t, err)
	assert.Equal(t, len(testFeatures), len(featureCollection.Features))
	for i, feature := range featureCollection.Features {
		assert.Equal(t, testFeatures[i].TileKey, feature.Properties.MustString(groundcover.TileKeyAttribute))
		multiPoint, ok := feature.Geometry.(orb.MultiPoint)
		assert.True(t, ok)
		assert.Equal(t, len(testFeatures[i].Points), len(multiPoint))
		for j, point := range multiPoint {
			assert.Equal(t, testFeatures[i].Points[j].X, point.X())
			assert.Equal(t, testFeatures[i].Points[j].Y, point.Y())
		}
	}
}

func TestGeoJSONSinkEmpty(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "empty.geojson")
	sink, err := groundcover.NewGeoJSONSink(filename)
	assert.NoError(t, err)
	assert.NoError(t, sink.Close())

	data, err := os.ReadFile(filename)
	assert.NoError(t, err)
	featureCollection, err := geojson.UnmarshalFeatureCollection(data)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(featureCollection.Features))
}

func TestShapefileSink(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "groundcover.shp")
	sink, err := groundcover.NewShapefileSink(filename)
	assert.NoError(t, err)
	emitTestFeatures(t, sink)
	assert.NoError(t, sink.Close())
	assert.Error(t, sink.Close())

	_, err = os.Stat(filepath.Join(filepath.Dir(filename), "groundcover.dbf"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(filename), "groundcoverdbf"))
	assert.IsError(t, err, os.ErrNotExist)

	reader, err := shp.Open(filename)
	assert.NoError(t, err)
	defer reader.Close()

	fields := reader.Fields()
	assert.Equal(t, 1, len(fields))
	assert.Equal(t, groundcover.TileKeyAttribute, strings.TrimRight(string(fields[0].Name[:]), "\x00"))

	i := 0
	for reader.Next() {
		row, shape := reader.Shape()
		multiPoint, ok := shape.(*shp.MultiPoint)
		assert.True(t, ok)
		assert.Equal(t, len(testFeatures[i].Points), len(multiPoint.Points))
		for j, point := range multiPoint.Points {
			assert.Equal(t, testFeatures[i].Points[j].X, point.X)
			assert.Equal(t, testFeatures[i].Points[j].Y, point.Y)
		}
		assert.Equal(t, testFeatures[i].TileKey, strings.Trim(reader.ReadAttribute(row, 0), " \x00"))
		i++
	}
	assert.Equal(t, len(testFeatures), i)
}

func TestNewShapefileSinkRequiresShpExtension(t *testing.T) {
	_, err := groundcover.NewShapefileSink(filepath.Join(t.TempDir(), "groundcover.dbf"))
	assert.Error(t, err)
}

func TestNewSink(t *testing.T) {
	dir := t.TempDir()
	for _, tc := range []struct {
		filename    string
		format      string
		expectedErr bool
	}{
		{filename: "a.shp"},
		{filename: "b.geojson"},
		{filename: "c.json"},
		{filename: "d.out", format: groundcover.FormatGeoJSON},
		{filename: "e.out", expectedErr: true},
		{filename: "f.shp", format: "kml", expectedErr: true},
	} {
		t.Run(tc.filename, func(t *testing.T) {
			sink, err := groundcover.NewSink(filepath.Join(dir, tc.filename), tc.format)
			if tc.expectedErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.NoError(t, sink.Close())
		})
	}
}

func TestProjectingSink(t *testing.T) {
	memorySink := groundcover.NewMemorySink()
	sink, err := groundcover.NewProjectingSink(memorySink, "epsg:3857")
	assert.NoError(t, err)
	assert.NoError(t, sink.Emit(groundcover.TileKey{LOD: 1, X: 2, Y: 0}, []groundcover.Point{
		{X: 0, Y: 0},
		{X: 180, Y: 0},
	}))
	assert.NoError(t, sink.Close())
	assert.True(t, memorySink.Closed())

	features := memorySink.Features()
	assert.Equal(t, 1, len(features))
	assert.Equal(t, "1/2/0", features[0].TileKey)
	for i, expected := range []groundcover.Point{
		{X: 0, Y: 0},
		{X: 20037508.342789244, Y: 0},
	} {
		actual := features[0].Points[i]
		assert.True(t, math.Abs(expected.X-actual.X) < 1e-3, "%v", actual)
		assert.True(t, math.Abs(expected.Y-actual.Y) < 1e-3, "%v", actual)
	}
}
