package groundcover

import (
	"fmt"
	"strconv"
	"strings"
)

// A TileKey identifies a tile of a quadtree tiling scheme at a level of
// detail. Rows are counted from the north.
type TileKey struct {
	LOD uint32
	X   uint32
	Y   uint32
}

// ParseTileKey parses a string returned by [TileKey.String].
func ParseTileKey(s string) (TileKey, error) {
	fields := strings.Split(s, "/")
	if len(fields) != 3 {
		return TileKey{}, fmt.Errorf("%s: invalid tile key", s)
	}
	var values [3]uint32
	for i, field := range fields {
		value, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			return TileKey{}, fmt.Errorf("%s: invalid tile key: %w", s, err)
		}
		values[i] = uint32(value)
	}
	return TileKey{LOD: values[0], X: values[1], Y: values[2]}, nil
}

// Ancestor returns k's ancestor at lod. If lod is not shallower than k's LOD
// then k is returned.
func (k TileKey) Ancestor(lod uint32) TileKey {
	if lod >= k.LOD {
		return k
	}
	d := k.LOD - lod
	return TileKey{LOD: lod, X: k.X >> d, Y: k.Y >> d}
}

// Parent returns k's parent. The parent of a root tile is itself.
func (k TileKey) Parent() TileKey {
	if k.LOD == 0 {
		return k
	}
	return k.Ancestor(k.LOD - 1)
}

// String returns k as lod/x/y.
func (k TileKey) String() string {
	return strconv.FormatUint(uint64(k.LOD), 10) + "/" +
		strconv.FormatUint(uint64(k.X), 10) + "/" +
		strconv.FormatUint(uint64(k.Y), 10)
}
