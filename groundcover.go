// Package groundcover exports procedural ground cover vegetation over a tiled
// terrain as points, one per surviving vegetation instance.
package groundcover

import (
	"errors"
	"fmt"
	"slices"
)

var ErrNoLayer = errors.New("ground cover layer not found")

// A Point is a geographic coordinate with an elevation.
type Point struct {
	X float64
	Y float64
	Z float64
}

// A Biome ties land cover classes to eligibility for vegetation placement.
type Biome struct {
	Name    string   `yaml:"name"`
	Classes []string `yaml:"classes"`
}

// A GroundCover is a procedural vegetation layer with a target fill and the
// biomes it grows in.
type GroundCover struct {
	Name   string  `yaml:"name"`
	Fill   float64 `yaml:"fill"`
	Biomes []Biome `yaml:"biomes"`
}

// Biome returns the first of g's biomes that lists class.
func (g *GroundCover) Biome(class *LandCoverClass) (*Biome, bool) {
	if class == nil {
		return nil, false
	}
	for i := range g.Biomes {
		if slices.Contains(g.Biomes[i].Classes, class.Name) {
			return &g.Biomes[i], true
		}
	}
	return nil, false
}

// Validate checks g's fill.
func (g *GroundCover) Validate() error {
	if !(g.Fill >= 0 && g.Fill <= 1) {
		return fmt.Errorf("ground cover %s: fill %g outside [0,1]", g.Name, g.Fill)
	}
	return nil
}

// A Zone is a region with its own ground cover.
type Zone struct {
	Name        string       `yaml:"name"`
	GroundCover *GroundCover `yaml:"groundcover"`
}

// A Layer is a named ground cover layer, generated at a fixed level of
// detail.
type Layer struct {
	Name      string `yaml:"name"`
	LOD       uint32 `yaml:"lod"`
	MaskLayer string `yaml:"mask_layer"`
	Zones     []Zone `yaml:"zones"`
}

// DefaultGroundCover returns the ground cover of l's first zone. Only the
// first zone is consulted.
func (l *Layer) DefaultGroundCover() (*GroundCover, bool) {
	if len(l.Zones) == 0 || l.Zones[0].GroundCover == nil {
		return nil, false
	}
	return l.Zones[0].GroundCover, true
}

// FindLayer returns the layer in layers with the given name.
func FindLayer(layers []Layer, name string) (*Layer, error) {
	for i := range layers {
		if layers[i].Name == name {
			return &layers[i], nil
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNoLayer)
}
