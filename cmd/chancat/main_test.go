package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjoshuak/go-chancat/imageio"
	"github.com/mrjoshuak/go-chancat/raster"
)

var testExtent = raster.NewExtent2D(0, 0, 12, 8)

func writeInput(t *testing.T, dir, name string, typ raster.ElementType, pixel ...float64) string {
	t.Helper()
	img, err := raster.NewImage(raster.Metadata{Extent: testExtent, Type: typ, Components: len(pixel)})
	require.NoError(t, err)
	img.Fill(pixel...)
	path := filepath.Join(dir, name)
	require.NoError(t, imageio.WriteFile(path, img, imageio.DefaultEncodeOptions()))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--log-level", "none"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireEveryPixel(t *testing.T, img *raster.Image, want []float64) {
	t.Helper()
	require.Equal(t, len(want), img.Components())
	for i := 0; i < img.Extent().NumPixels(); i++ {
		for c, w := range want {
			require.Equal(t, w, img.Float64(i*len(want)+c), "pixel %d component %d", i, c)
		}
	}
}

func TestConcatCommand(t *testing.T) {
	dir := t.TempDir()
	luma := writeInput(t, dir, "luma.rst", raster.Uint8, 5)
	rgb := writeInput(t, dir, "rgb.rst", raster.Uint8, 1, 2, 3)
	out := filepath.Join(dir, "out.rst")

	stdout, _, err := execute(t, "concat", "--workers", "3", "--tiles", "5", "-o", out, luma, rgb)
	require.NoError(t, err)
	assert.Contains(t, stdout, "uint8 x4")

	img, err := imageio.ReadFile(out)
	require.NoError(t, err)
	requireEveryPixel(t, img, []float64{5, 1, 2, 3})
}

func TestConcatCommandEmptyConnection(t *testing.T) {
	dir := t.TempDir()
	luma := writeInput(t, dir, "luma.rst", raster.Float32, 0.5)
	out := filepath.Join(dir, "out.rst")

	_, _, err := execute(t, "concat", "--compression", "none", "-o", out, "_", luma, "_")
	require.NoError(t, err)

	img, err := imageio.ReadFile(out)
	require.NoError(t, err)
	requireEveryPixel(t, img, []float64{0.5})
}

func TestConcatCommandTypeMismatch(t *testing.T) {
	dir := t.TempDir()
	a := writeInput(t, dir, "a.rst", raster.Uint8, 5)
	b := writeInput(t, dir, "b.rst", raster.Float32, 2)
	out := filepath.Join(dir, "out.rst")

	_, stderr, err := execute(t, "concat", "--tiles", "1", "-o", out, a, b)
	require.NoError(t, err)
	assert.Contains(t, stderr, "input 1 has element type float32, output has uint8")

	img, err := imageio.ReadFile(out)
	require.NoError(t, err)
	requireEveryPixel(t, img, []float64{5, 0})

	_, _, err = execute(t, "concat", "--strict", "--stats", "-o", out, a, b)
	assert.ErrorIs(t, err, errInputsFailed)
}

func TestConcatCommandErrors(t *testing.T) {
	dir := t.TempDir()
	a := writeInput(t, dir, "a.rst", raster.Uint8, 5)

	_, _, err := execute(t, "concat", a)
	assert.ErrorContains(t, err, "missing output file")

	_, _, err = execute(t, "concat", "-o", filepath.Join(dir, "o.rst"), filepath.Join(dir, "missing.rst"))
	assert.Error(t, err)

	_, _, err = execute(t, "concat", "-o", filepath.Join(dir, "o.rst"), "_")
	assert.Error(t, err)

	_, _, err = execute(t, "concat", "--compression", "lzma", "-o", filepath.Join(dir, "o.rst"), a)
	assert.ErrorContains(t, err, "unknown compression")
}

func TestConcatCommandConfigFile(t *testing.T) {
	dir := t.TempDir()
	a := writeInput(t, dir, "a.rst", raster.Uint8, 5)
	config := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(config, []byte("compression: bogus\n"), 0o644))

	_, _, err := execute(t, "concat", "--config", config, "-o", filepath.Join(dir, "o.rst"), a)
	assert.ErrorContains(t, err, "unknown compression: bogus")

	_, _, err = execute(t, "concat", "--config", filepath.Join(dir, "nope.yaml"), "-o", filepath.Join(dir, "o.rst"), a)
	assert.ErrorContains(t, err, "failed to read config")
}

func TestConcatCommandPNG(t *testing.T) {
	dir := t.TempDir()
	rgb := writeInput(t, dir, "rgb.rst", raster.Uint8, 10, 20, 30)
	alpha := writeInput(t, dir, "alpha.rst", raster.Uint8, 200)
	out := filepath.Join(dir, "out.png")

	_, _, err := execute(t, "concat", "-o", out, rgb, alpha)
	require.NoError(t, err)

	img, err := imageio.Load(out)
	require.NoError(t, err)
	requireEveryPixel(t, img, []float64{10, 20, 30, 200})
}

func TestInfoCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "a.rst", raster.Int16, -3, 7)

	stdout, _, err := execute(t, "info", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "int16 x2 over [0+12, 0+8]")
	assert.Contains(t, stdout, "component")

	stdout, _, err = execute(t, "info", "--components=false", path)
	require.NoError(t, err)
	assert.NotContains(t, stdout, "component")
}

func TestComponentStats(t *testing.T) {
	img, err := raster.FromSlice(raster.NewExtent2D(0, 0, 4, 1), 2, []float64{1, 10, 2, 10, 3, 10, 4, 10})
	require.NoError(t, err)

	stats := componentStats(img)
	require.Len(t, stats, 2)
	assert.InDelta(t, 2.5, stats[0].Mean, 1e-12)
	assert.InDelta(t, 1.2909944487, stats[0].StdDev, 1e-9)
	assert.Equal(t, 1.0, stats[0].Min)
	assert.Equal(t, 4.0, stats[0].Max)
	assert.Equal(t, 10.0, stats[1].Mean)
	assert.Equal(t, 0.0, stats[1].StdDev)
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "chancat version "+version+"\n", stdout)
}
