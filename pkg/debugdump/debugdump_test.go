package debugdump

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bubblesheet/omr-core/pkg/marker"
)

func TestDumper_DisabledIsNoop(t *testing.T) {
	d := Dumper{}
	err := d.Plane(1, "gray", make([]byte, 100), 10, 10)
	require.NoError(t, err)

	entries, err := os.ReadDir(".")
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "-gray.jpg")
	}
}

func TestDumper_PlaneWritesFile(t *testing.T) {
	dir := t.TempDir()
	d := Dumper{Dir: dir}
	gray := make([]byte, 20*20)
	for i := range gray {
		gray[i] = byte(i % 255)
	}
	require.NoError(t, d.Plane(42, "gray", gray, 20, 20))

	_, err := os.Stat(filepath.Join(dir, "42-gray.jpg"))
	assert.NoError(t, err)
}

func TestDumper_AnnotatedWritesFile(t *testing.T) {
	dir := t.TempDir()
	d := Dumper{Dir: dir}
	gray := make([]byte, 40*40)
	q := marker.FullImageQuad(40, 40)
	require.NoError(t, d.Annotated(7, "annotated", gray, 40, 40, q, true))

	_, err := os.Stat(filepath.Join(dir, "7-annotated.jpg"))
	assert.NoError(t, err)
}
