package groundcover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	get "github.com/hashicorp/go-getter"
	"gopkg.in/yaml.v3"
)

const defaultRasterCacheSize = 32

// A Config describes a map: its profile, its raster layers, and its ground
// cover layers.
type Config struct {
	Profile             string              `yaml:"profile"`
	LandCoverDictionary []LandCoverClass    `yaml:"landcover_dictionary"`
	LandCoverLayer      string              `yaml:"landcover_layer"`
	Layers              []RasterLayerConfig `yaml:"layers"`
	GroundCover         []Layer             `yaml:"groundcover"`

	dir string
}

// A RasterLayerConfig describes a raster layer stored either in a local
// directory or at a remote source fetched on first use.
type RasterLayerConfig struct {
	ID               string `yaml:"id"`
	Path             string `yaml:"path"`
	Source           string `yaml:"source"`
	LOD              uint32 `yaml:"lod"`
	FilenameTemplate string `yaml:"filename_template"`
	CacheSize        int    `yaml:"cache_size"`
}

// LoadConfig reads, parses, and validates the config at path. Relative layer
// paths are resolved against the directory containing path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.dir = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate applies defaults to c and checks its consistency.
func (c *Config) Validate() error {
	if c.Profile == "" {
		c.Profile = GlobalGeodetic.Name()
	}
	if _, err := ProfileByName(c.Profile); err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	if _, err := NewLandCoverDictionary(c.LandCoverDictionary); err != nil {
		return fmt.Errorf("landcover_dictionary: %w", err)
	}

	layerIDs := make(map[string]struct{}, len(c.Layers))
	for i := range c.Layers {
		layer := &c.Layers[i]
		if layer.ID == "" {
			return fmt.Errorf("layers[%d].id must be set", i)
		}
		if _, ok := layerIDs[layer.ID]; ok {
			return fmt.Errorf("layers[%d].id %s is a duplicate", i, layer.ID)
		}
		layerIDs[layer.ID] = struct{}{}
		switch {
		case layer.Path == "" && layer.Source == "":
			return fmt.Errorf("layers[%d]: one of path or source must be set", i)
		case layer.Path != "" && layer.Source != "":
			return fmt.Errorf("layers[%d]: only one of path or source may be set", i)
		}
		if layer.FilenameTemplate == "" {
			layer.FilenameTemplate = DefaultFilenameTemplate
		}
		if layer.CacheSize <= 0 {
			layer.CacheSize = defaultRasterCacheSize
		}
	}

	if c.LandCoverLayer != "" {
		if _, ok := layerIDs[c.LandCoverLayer]; !ok {
			return fmt.Errorf("landcover_layer: %s: unknown layer", c.LandCoverLayer)
		}
	}

	if len(c.GroundCover) == 0 {
		return fmt.Errorf("groundcover cannot be empty")
	}
	names := make(map[string]struct{}, len(c.GroundCover))
	for i := range c.GroundCover {
		layer := &c.GroundCover[i]
		if layer.Name == "" {
			return fmt.Errorf("groundcover[%d].name must be set", i)
		}
		if _, ok := names[layer.Name]; ok {
			return fmt.Errorf("groundcover[%d].name %s is a duplicate", i, layer.Name)
		}
		names[layer.Name] = struct{}{}
		if layer.MaskLayer != "" {
			if _, ok := layerIDs[layer.MaskLayer]; !ok {
				return fmt.Errorf("groundcover[%d].mask_layer: %s: unknown layer", i, layer.MaskLayer)
			}
		}
		for j, zone := range layer.Zones {
			if zone.GroundCover == nil {
				continue
			}
			if err := zone.GroundCover.Validate(); err != nil {
				return fmt.Errorf("groundcover[%d].zones[%d]: %w", i, j, err)
			}
		}
	}
	return nil
}

// Dictionary returns c's land cover dictionary, or nil if c defines no
// classes.
func (c *Config) Dictionary() (*LandCoverDictionary, error) {
	if len(c.LandCoverDictionary) == 0 {
		return nil, nil
	}
	return NewLandCoverDictionary(c.LandCoverDictionary)
}

// GroundCoverLayer returns c's ground cover layer with the given name. If name
// is empty and c has exactly one ground cover layer, that layer is returned.
func (c *Config) GroundCoverLayer(name string) (*Layer, error) {
	if name == "" && len(c.GroundCover) == 1 {
		return &c.GroundCover[0], nil
	}
	return FindLayer(c.GroundCover, name)
}

// NewLayerSet opens c's raster layers. Layers with a remote source are
// fetched into a subdirectory of cacheDir unless already present.
func (c *Config) NewLayerSet(ctx context.Context, cacheDir string) (*LayerSet, error) {
	profile, err := ProfileByName(c.Profile)
	if err != nil {
		return nil, err
	}
	rasterLayers := make([]*RasterLayer, 0, len(c.Layers))
	for _, layerConfig := range c.Layers {
		dir, err := c.layerDir(ctx, layerConfig, cacheDir)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", layerConfig.ID, err)
		}
		rasterLayer, err := NewRasterLayer(layerConfig.ID,
			WithFS(os.DirFS(dir)),
			WithLayerProfile(profile),
			WithDataLOD(layerConfig.LOD),
			WithFilenameTemplate(layerConfig.FilenameTemplate),
			WithCacheSize(layerConfig.CacheSize),
		)
		if err != nil {
			return nil, err
		}
		rasterLayers = append(rasterLayers, rasterLayer)
	}
	return NewLayerSet(profile, rasterLayers...)
}

func (c *Config) layerDir(ctx context.Context, layerConfig RasterLayerConfig, cacheDir string) (string, error) {
	if layerConfig.Source == "" {
		if filepath.IsAbs(layerConfig.Path) {
			return layerConfig.Path, nil
		}
		return filepath.Join(c.dir, layerConfig.Path), nil
	}

	if cacheDir == "" {
		return "", fmt.Errorf("%s: no cache directory", layerConfig.Source)
	}
	dir := filepath.Join(cacheDir, layerConfig.ID)
	if _, err := os.Stat(dir); err == nil {
		return dir, nil
	}
	pwd, err := filepath.Abs(c.dir)
	if err != nil {
		return "", err
	}
	client := &get.Client{
		Ctx:  ctx,
		Src:  layerConfig.Source,
		Dst:  dir,
		Pwd:  pwd,
		Mode: get.ClientModeAny,
	}
	if err := client.Get(); err != nil {
		return "", fmt.Errorf("fetch %s: %w", layerConfig.Source, err)
	}
	return dir, nil
}
