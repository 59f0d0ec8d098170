package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func unitSquare() Quad {
	return Quad{
		TopLeft:     Point{0, 0},
		TopRight:    Point{100, 0},
		BottomLeft:  Point{0, 100},
		BottomRight: Point{100, 100},
	}
}

func TestMap_Corners(t *testing.T) {
	q := unitSquare()
	assert.Equal(t, Point{0, 0}, q.Map(0, 0))
	assert.Equal(t, Point{100, 0}, q.Map(1, 0))
	assert.Equal(t, Point{0, 100}, q.Map(0, 1))
	assert.Equal(t, Point{100, 100}, q.Map(1, 1))
}

func TestMap_Center(t *testing.T) {
	q := unitSquare()
	c := q.Map(0.5, 0.5)
	assert.InDelta(t, 50, c.X, 1e-9)
	assert.InDelta(t, 50, c.Y, 1e-9)
}

func TestMap_Shear(t *testing.T) {
	q := Quad{
		TopLeft:     Point{10, 0},
		TopRight:    Point{110, 0},
		BottomLeft:  Point{0, 100},
		BottomRight: Point{100, 100},
	}
	p := q.Map(0, 0.5)
	assert.InDelta(t, 5, p.X, 1e-9)
	assert.InDelta(t, 50, p.Y, 1e-9)
}
