package groundcover

import (
	"fmt"
	"slices"
)

// A LandCoverClass is a named land cover category with an integer code.
type LandCoverClass struct {
	Name  string `yaml:"name"`
	Value int    `yaml:"value"`
}

// A LandCoverDictionary decodes raw classification values into classes.
type LandCoverDictionary struct {
	classes       []LandCoverClass
	classByValue  map[int]*LandCoverClass
	classesByName map[string]*LandCoverClass
}

// NewLandCoverDictionary returns a new LandCoverDictionary. Values and names
// must be unique.
func NewLandCoverDictionary(classes []LandCoverClass) (*LandCoverDictionary, error) {
	d := &LandCoverDictionary{
		classes:       slices.Clone(classes),
		classByValue:  make(map[int]*LandCoverClass, len(classes)),
		classesByName: make(map[string]*LandCoverClass, len(classes)),
	}
	for i := range d.classes {
		class := &d.classes[i]
		if class.Name == "" {
			return nil, fmt.Errorf("land cover class %d: missing name", class.Value)
		}
		if _, ok := d.classByValue[class.Value]; ok {
			return nil, fmt.Errorf("land cover class %s: duplicate value %d", class.Name, class.Value)
		}
		if _, ok := d.classesByName[class.Name]; ok {
			return nil, fmt.Errorf("land cover class %s: duplicate name", class.Name)
		}
		d.classByValue[class.Value] = class
		d.classesByName[class.Name] = class
	}
	return d, nil
}

// ClassByValue returns the class with the given code.
func (d *LandCoverDictionary) ClassByValue(value int) (*LandCoverClass, bool) {
	class, ok := d.classByValue[value]
	return class, ok
}

// ClassByName returns the class with the given name.
func (d *LandCoverDictionary) ClassByName(name string) (*LandCoverClass, bool) {
	class, ok := d.classesByName[name]
	return class, ok
}

// Classes returns all of d's classes in definition order.
func (d *LandCoverDictionary) Classes() []LandCoverClass {
	return slices.Clone(d.classes)
}

// A Classifier decodes classification samples and checks them against a
// ground cover's biomes.
type Classifier struct {
	Dictionary  *LandCoverDictionary
	GroundCover *GroundCover
}

// Classify returns the class for the raw classification value. The value is
// truncated to an integer code.
func (c *Classifier) Classify(raw float64) (*LandCoverClass, bool) {
	if c.Dictionary == nil {
		return nil, false
	}
	return c.Dictionary.ClassByValue(int(raw))
}

// Compatible returns the biome of c's ground cover that accepts class.
func (c *Classifier) Compatible(class *LandCoverClass) (*Biome, bool) {
	if c.GroundCover == nil {
		return nil, false
	}
	return c.GroundCover.Biome(class)
}

// Accepts returns whether raw decodes to a class that has a biome.
func (c *Classifier) Accepts(raw float64) bool {
	class, ok := c.Classify(raw)
	if !ok {
		return false
	}
	_, ok = c.Compatible(class)
	return ok
}
