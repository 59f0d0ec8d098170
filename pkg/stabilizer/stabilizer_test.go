package stabilizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bubblesheet/omr-core/pkg/geom"
	"github.com/bubblesheet/omr-core/pkg/marker"
)

func baseQuad() marker.Quad {
	return marker.Quad{
		TopLeft:     geom.Point{X: 10, Y: 10},
		TopRight:    geom.Point{X: 500, Y: 12},
		BottomLeft:  geom.Point{X: 12, Y: 700},
		BottomRight: geom.Point{X: 498, Y: 698},
	}
}

func jitter(q marker.Quad, dx, dy float64) marker.Quad {
	shift := func(p geom.Point) geom.Point { return geom.Point{X: p.X + dx, Y: p.Y + dy} }
	return marker.Quad{
		TopLeft:     shift(q.TopLeft),
		TopRight:    shift(q.TopRight),
		BottomLeft:  shift(q.BottomLeft),
		BottomRight: shift(q.BottomRight),
	}
}

func TestUpdate_SeedsOnFirstDetection(t *testing.T) {
	s := Update(State{}, baseQuad(), true)
	assert.True(t, s.HasQuad)
	assert.Equal(t, 1, s.StableFrames)
	assert.False(t, s.Locked)
}

func TestUpdate_LocksAfterThreeStableFrames(t *testing.T) {
	s := State{}
	q := baseQuad()
	for i := 0; i < 10; i++ {
		s = Update(s, jitter(q, 1, 1), true)
	}
	assert.True(t, s.Locked)
	assert.Equal(t, maxStableFrames, s.StableFrames)
}

func TestUpdate_DeadzoneRejectsSubPixelDrift(t *testing.T) {
	s := Update(State{}, baseQuad(), true)
	s = Update(s, jitter(baseQuad(), 0.4, 0.3), true)
	s = Update(s, jitter(baseQuad(), -0.3, 0.4), true)
	require := baseQuad()
	assert.Equal(t, require, s.Quad)
}

func TestUpdate_LargeJumpBlendsAndUnlocks(t *testing.T) {
	s := State{}
	q := baseQuad()
	for i := 0; i < 5; i++ {
		s = Update(s, q, true)
	}
	assert.True(t, s.Locked)

	farAway := jitter(q, 200, 200)
	s = Update(s, farAway, true)
	assert.False(t, s.Locked)
	assert.Equal(t, 0, s.StableFrames)
	assert.NotEqual(t, q, s.Quad)
	assert.NotEqual(t, farAway, s.Quad)
}

func TestUpdate_OcclusionHoldsThenDrops(t *testing.T) {
	s := State{}
	q := baseQuad()
	for i := 0; i < 5; i++ {
		s = Update(s, q, true)
	}
	held := s.Quad
	for i := 0; i < 10 && s.HasQuad; i++ {
		s = Update(s, marker.Quad{}, false)
	}
	assert.False(t, s.HasQuad)
	_ = held
}
