package groundcover

import (
	"math"
	"math/rand/v2"
)

// Gradient directions for 2D simplex noise.
var grad2 = [8][2]float64{
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
}

// A simplex generates 2D simplex noise in [-1, 1] from a seeded permutation.
type simplex struct {
	perm [512]int
}

func newSimplex(r *rand.Rand) *simplex {
	s := &simplex{}
	p := r.Perm(256)
	for i := range s.perm {
		s.perm[i] = p[i&255]
	}
	return s
}

// fractal sums octaves of noise at doubling frequency and halving amplitude.
func (s *simplex) fractal(x, y float64, octaves int) float64 {
	sum, amplitude, frequency := 0.0, 1.0, 1.0
	for range octaves {
		sum += amplitude * s.noise(x*frequency, y*frequency)
		amplitude *= 0.5
		frequency *= 2
	}
	return sum
}

func (s *simplex) noise(x, y float64) float64 {
	const (
		f2 = 0.36602540378443864676 // (sqrt(3) - 1) / 2
		g2 = 0.21132486540518711775 // (3 - sqrt(3)) / 6
	)

	skew := (x + y) * f2
	i := int(math.Floor(x + skew))
	j := int(math.Floor(y + skew))
	unskew := float64(i+j) * g2
	x0 := x - (float64(i) - unskew)
	y0 := y - (float64(j) - unskew)

	i1, j1 := 0, 1
	if x0 > y0 {
		i1, j1 = 1, 0
	}

	x1 := x0 - float64(i1) + g2
	y1 := y0 - float64(j1) + g2
	x2 := x0 - 1 + 2*g2
	y2 := y0 - 1 + 2*g2

	ii, jj := i&255, j&255
	n0 := s.corner(s.perm[ii+s.perm[jj]], x0, y0)
	n1 := s.corner(s.perm[ii+i1+s.perm[jj+j1]], x1, y1)
	n2 := s.corner(s.perm[ii+1+s.perm[jj+1]], x2, y2)

	return 70 * (n0 + n1 + n2)
}

func (s *simplex) corner(hash int, x, y float64) float64 {
	t := 0.5 - x*x - y*y
	if t < 0 {
		return 0
	}
	g := grad2[hash&7]
	t *= t
	return t * t * (g[0]*x + g[1]*y)
}
