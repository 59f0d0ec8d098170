package pixelimage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFrame_Gray(t *testing.T) {
	buf := make([]byte, 10*5)
	for i := range buf {
		buf[i] = byte(i)
	}
	pi, err := FromFrame(buf, 10, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, KindGray, pi.Kind)
	assert.Equal(t, byte(3), pi.At(3, 0))
	assert.Equal(t, byte(13), pi.At(3, 1))
}

func TestFromFrame_BadLength(t *testing.T) {
	_, err := FromFrame(make([]byte, 5), 10, 5, 1)
	assert.Error(t, err)
}

func TestFromFrame_BadChannels(t *testing.T) {
	_, err := FromFrame(make([]byte, 30), 10, 3, 3)
	assert.Error(t, err)
}

func TestTooSmall(t *testing.T) {
	small := New(KindGray, 100, 300)
	assert.True(t, small.TooSmall())
	big := New(KindGray, 300, 300)
	assert.False(t, big.TooSmall())
}

func TestAt_OutOfBounds(t *testing.T) {
	pi := New(KindGray, 4, 4)
	assert.Equal(t, byte(0), pi.At(-1, 0))
	assert.Equal(t, byte(0), pi.At(10, 10))
}
