package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/twpayne/go-groundcover"
)

func run() (err error) {
	layerName := flag.String("layer", "", "ground cover layer name")
	extents := flag.String("extents", "", "extent to export as swlon,swlat,nelon,nelat")
	out := flag.String("out", "groundcover.shp", "output filename")
	format := flag.String("format", "", "output format, shapefile or geojson (default from -out)")
	outSRS := flag.String("out-srs", "", "output CRS (default WGS84)")
	gridSize := flag.Int("grid", groundcover.DefaultGridSize, "instance slots along each side of a tile")
	seed := flag.Uint64("seed", 0, "noise field seed")
	noiseSize := flag.Int("noise-size", groundcover.DefaultNoiseSize, "noise field size")
	workers := flag.Int("workers", runtime.GOMAXPROCS(0), "number of tiles sampled concurrently")
	cacheDir := flag.String("cache-dir", defaultCacheDir(), "directory for fetched layer sources")
	metricsAddr := flag.String("metrics-addr", "", "address to serve metrics on")
	verbose := flag.Bool("v", false, "verbose")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var extent groundcover.GeoExtent
	switch {
	case flag.NArg() == 1 && *extents != "":
		extent, err = parseExtent(strings.Split(*extents, ","))
	case flag.NArg() == 5 && *extents == "":
		extent, err = parseExtent(flag.Args()[1:])
	default:
		return errors.New("syntax: exportgroundcover [flags] config.yaml [swlon swlat nelon nelat]")
	}
	if err != nil {
		return err
	}

	config, err := groundcover.LoadConfig(flag.Arg(0))
	if err != nil {
		return err
	}
	layer, err := config.GroundCoverLayer(*layerName)
	if err != nil {
		return err
	}
	profile, err := groundcover.ProfileByName(config.Profile)
	if err != nil {
		return err
	}
	dictionary, err := config.Dictionary()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error("metrics server", "error", err)
			}
		}()
	}

	layerSet, err := config.NewLayerSet(ctx, *cacheDir)
	if err != nil {
		return err
	}

	var sink groundcover.FeatureSink
	sink, err = groundcover.NewSink(*out, *format)
	if err != nil {
		return err
	}
	if *outSRS != "" {
		projectingSink, err := groundcover.NewProjectingSink(sink, *outSRS)
		if err != nil {
			return errors.Join(err, sink.Close())
		}
		sink = projectingSink
	}
	defer func() {
		err = errors.Join(err, sink.Close())
	}()

	exporter := groundcover.NewExporter(
		groundcover.WithProfile(profile),
		groundcover.WithGridSize(*gridSize),
		groundcover.WithNoiseField(groundcover.NewNoiseField(*noiseSize, *seed)),
		groundcover.WithWorkers(*workers),
		groundcover.WithLogger(log),
		groundcover.WithTileModelProvider(layerSet),
		groundcover.WithLandCoverLayer(config.LandCoverLayer),
		groundcover.WithDictionary(dictionary),
		groundcover.WithProgressFunc(func(done, total int) {
			fmt.Fprintf(os.Stderr, "\r%d/%d", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		}),
	)

	log.Info("exporting", "layer", layer.Name, "lod", layer.LOD, "extent", extent)
	count, err := exporter.Export(ctx, extent, layer, sink)
	if err != nil {
		return err
	}
	log.Info("exported", "points", count, "out", *out)
	return nil
}

func parseExtent(args []string) (groundcover.GeoExtent, error) {
	if len(args) != 4 {
		return groundcover.GeoExtent{}, fmt.Errorf("%s: extent must have four values", strings.Join(args, ","))
	}
	var values [4]float64
	for i, arg := range args {
		value, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			return groundcover.GeoExtent{}, err
		}
		values[i] = value
	}
	return groundcover.NewGeoExtent(values[0], values[1], values[2], values[3]), nil
}

func defaultCacheDir() string {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(userCacheDir, "groundcover")
}

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
