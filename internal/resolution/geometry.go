package resolution

import (
	"math"

	"github.com/ctessum/geom"
)

const geomEpsilon = 1e-12

// Point is a vertex in the plane.
type Point struct {
	X float64
	Y float64
}

// Polygon is a simple polygon given by its vertices in order. The closing
// edge from the last vertex back to the first is implicit. Either winding
// order is accepted.
type Polygon []Point

// Area returns the enclosed area.
func (p Polygon) Area() float64 {
	if len(p) < 3 {
		return 0
	}
	return p.geom().Area()
}

func (p Polygon) geom() geom.Polygon {
	ring := make(geom.Path, len(p))
	for i, pt := range p {
		ring[i] = geom.Point{X: pt.X, Y: pt.Y}
	}
	return geom.Polygon{ring}
}

type bounds struct{ minX, minY, maxX, maxY float64 }

func (p Polygon) bounds() bounds {
	b := bounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, pt := range p {
		b.minX, b.maxX = math.Min(b.minX, pt.X), math.Max(b.maxX, pt.X)
		b.minY, b.maxY = math.Min(b.minY, pt.Y), math.Max(b.maxY, pt.Y)
	}
	return b
}

func (b bounds) overlaps(o bounds) bool {
	return b.minX < o.maxX && o.minX < b.maxX && b.minY < o.maxY && o.minY < b.maxY
}

// IntersectionArea returns the area shared by a and b. Neither polygon needs
// to be convex.
func IntersectionArea(a, b Polygon) float64 {
	if len(a) < 3 || len(b) < 3 || !a.bounds().overlaps(b.bounds()) {
		return 0
	}
	shared := a.geom().Intersection(b.geom())
	if len(shared.Polygons()) == 0 {
		return 0
	}
	area := shared.Area()
	if area < geomEpsilon {
		return 0
	}
	return area
}
