package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjoshuak/go-chancat/internal/xdr"
	"github.com/mrjoshuak/go-chancat/raster"
)

func rampImage(t *testing.T, typ raster.ElementType, extent raster.Extent, components int) *raster.Image {
	t.Helper()
	img, err := raster.NewImage(raster.Metadata{Extent: extent, Type: typ, Components: components})
	require.NoError(t, err)
	n := img.Metadata().Len()
	for i := 0; i < n; i++ {
		img.SetFloat64(i, float64(i%97))
	}
	return img
}

func requireSameImage(t *testing.T, want, got *raster.Image) {
	t.Helper()
	require.True(t, want.Metadata().Equal(got.Metadata()), "metadata %+v != %+v", want.Metadata(), got.Metadata())
	assert.Equal(t, want.Data(), got.Data())
}

func TestRasterRoundTrip(t *testing.T) {
	types := []raster.ElementType{
		raster.Int8, raster.Uint8, raster.Int16, raster.Uint16, raster.Half,
		raster.Int32, raster.Uint32, raster.Int64, raster.Uint64, raster.Float32, raster.Float64,
	}
	extents := []raster.Extent{
		raster.NewExtent2D(0, 0, 16, 9),
		raster.NewExtent2D(-4, 7, 3, 5),
		{Min: []int{1, 2, 3}, Size: []int{4, 3, 2}},
	}
	opts := []EncodeOptions{
		{Compression: CompressionNone},
		DefaultEncodeOptions(),
		{Compression: CompressionZlib, Level: 9},
		{Compression: CompressionZlib, Level: -2},
	}

	for _, typ := range types {
		for _, extent := range extents {
			for _, opt := range opts {
				img := rampImage(t, typ, extent, 3)
				var buf bytes.Buffer
				require.NoError(t, Encode(&buf, img, opt))

				got, err := Decode(&buf)
				require.NoError(t, err, "%s %s %s", typ, extent, opt.Compression)
				requireSameImage(t, img, got)
			}
		}
	}
}

func TestRasterCompresses(t *testing.T) {
	img := rampImage(t, raster.Float32, raster.NewExtent2D(0, 0, 128, 128), 1)
	img.Fill(0.5)

	var raw, packed bytes.Buffer
	require.NoError(t, Encode(&raw, img, EncodeOptions{Compression: CompressionNone}))
	require.NoError(t, Encode(&packed, img, DefaultEncodeOptions()))
	assert.Less(t, packed.Len(), raw.Len()/10)
}

// rawFile builds an uncompressed uint8 raster file with one component from
// per-dimension (min, size) pairs, without validating them.
func rawFile(dims [][2]int64, payload []byte) []byte {
	w := xdr.NewWriter(64)
	w.Write([]byte(magic))
	w.Uint8(version)
	w.Uint8(uint8(raster.Uint8))
	w.Uint8(uint8(CompressionNone))
	w.Uint8(0)
	w.Uint32(1)
	w.Uint32(uint32(len(dims)))
	for _, d := range dims {
		w.Int64(d[0])
		w.Int64(d[1])
	}
	w.Uint64(uint64(len(payload)))
	w.Write(payload)
	return w.Bytes()
}

func TestDecodeErrors(t *testing.T) {
	img := rampImage(t, raster.Uint8, raster.NewExtent2D(0, 0, 4, 4), 2)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, DefaultEncodeOptions()))
	valid := buf.Bytes()

	corrupt := func(f func(b []byte) []byte) []byte {
		b := append([]byte(nil), valid...)
		return f(b)
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrInvalidMagic},
		{"bad magic", corrupt(func(b []byte) []byte { b[0] = 'X'; return b }), ErrInvalidMagic},
		{"bad version", corrupt(func(b []byte) []byte { b[4] = 9; return b }), ErrUnsupportedVersion},
		{"bad type", corrupt(func(b []byte) []byte { b[5] = 0; return b }), ErrCorrupted},
		{"bad compression", corrupt(func(b []byte) []byte { b[6] = 7; return b }), ErrCorrupted},
		{"zero components", corrupt(func(b []byte) []byte { b[8], b[9] = 0, 0; return b }), ErrCorrupted},
		{"short header", valid[:10], ErrCorrupted},
		{"truncated payload", valid[:len(valid)-3], ErrCorrupted},
		{"size product overflows", rawFile([][2]int64{{0, 3}, {0, 0x5555555555555556}}, []byte{1, 2}), ErrCorrupted},
		{"size over limit", rawFile([][2]int64{{0, 1 << 20}, {0, 1 << 20}}, nil), ErrCorrupted},
		{"origin out of range", rawFile([][2]int64{{math.MaxInt64 - 1, 2}, {0, 1}}, []byte{1, 2}), ErrCorrupted},
		{"garbage payload", corrupt(func(b []byte) []byte {
			for i := 20 + 2*16 + 8; i < len(b); i++ {
				b[i] = 0xFF
			}
			return b
		}), ErrCorrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	img, err := Decode(bytes.NewReader(rawFile([][2]int64{{-2, 2}, {5, 1}}, []byte{7, 9})))
	require.NoError(t, err)
	assert.Equal(t, raster.NewExtent2D(-2, 5, 2, 1), img.Extent())
	assert.Equal(t, []uint8{7, 9}, img.Data())
}

func TestEncodeUnsupportedType(t *testing.T) {
	type custom uint8
	img, err := raster.FromSlice(raster.NewExtent2D(0, 0, 1, 1), 1, []custom{1})
	require.NoError(t, err)
	assert.Error(t, Encode(&bytes.Buffer{}, img, DefaultEncodeOptions()))
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatRaster, FormatOf("out.rst"))
	assert.Equal(t, FormatJPEG2000, FormatOf("a/b/in.J2K"))
	assert.Equal(t, FormatJPEG2000, FormatOf("in.jp2"))
	assert.Equal(t, FormatPNG, FormatOf("in.png"))
	assert.Equal(t, FormatImage, FormatOf("in.jpeg"))
}

func TestFromImage(t *testing.T) {
	r := image.Rect(1, 2, 4, 4)

	gray := image.NewGray(r)
	gray.SetGray(3, 3, color.Gray{Y: 200})
	img, err := FromImage(gray)
	require.NoError(t, err)
	assert.Equal(t, raster.Uint8, img.Type())
	assert.Equal(t, 1, img.Components())
	assert.Equal(t, []int{1, 2}, img.Extent().Min)
	assert.Equal(t, float64(200), img.At([]int{3, 3}, 0))

	g16 := image.NewGray16(r)
	g16.SetGray16(1, 2, color.Gray16{Y: 60000})
	img, err = FromImage(g16)
	require.NoError(t, err)
	assert.Equal(t, raster.Uint16, img.Type())
	assert.Equal(t, float64(60000), img.At([]int{1, 2}, 0))

	nrgba := image.NewNRGBA(r)
	nrgba.SetNRGBA(2, 3, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	img, err = FromImage(nrgba)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Components())
	for c, want := range []float64{1, 2, 3, 4} {
		assert.Equal(t, want, img.At([]int{2, 3}, c))
	}

	ycc := image.NewYCbCr(r, image.YCbCrSubsampleRatio444)
	img, err = FromImage(ycc)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Components())

	n64 := image.NewNRGBA64(r)
	n64.SetNRGBA64(1, 2, color.NRGBA64{R: 1000, G: 2000, B: 3000, A: 0xffff})
	img, err = FromImage(n64)
	require.NoError(t, err)
	assert.Equal(t, raster.Uint16, img.Type())
	assert.Equal(t, float64(3000), img.At([]int{1, 2}, 2))
}

func TestToImageRoundTrip(t *testing.T) {
	extent := raster.NewExtent2D(0, 0, 5, 3)
	for _, tc := range []struct {
		typ raster.ElementType
		nc  int
	}{
		{raster.Uint8, 1}, {raster.Uint8, 4}, {raster.Uint16, 1}, {raster.Uint16, 4},
	} {
		img := rampImage(t, tc.typ, extent, tc.nc)
		m, err := ToImage(img)
		require.NoError(t, err)
		back, err := FromImage(m)
		require.NoError(t, err)
		requireSameImage(t, img, back)
	}

	rgb := rampImage(t, raster.Uint8, extent, 3)
	m, err := ToImage(rgb)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0, G: 1, B: 2, A: 0xff}, m.At(0, 0))

	_, err = ToImage(rampImage(t, raster.Float32, extent, 1))
	assert.ErrorIs(t, err, ErrUnsupportedLayout)
	_, err = ToImage(rampImage(t, raster.Uint8, extent, 2))
	assert.ErrorIs(t, err, ErrUnsupportedLayout)
	_, err = ToImage(rampImage(t, raster.Uint8, raster.Extent{Min: []int{0}, Size: []int{4}}, 1))
	assert.ErrorIs(t, err, ErrUnsupportedLayout)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	img := rampImage(t, raster.Uint8, raster.NewExtent2D(0, 0, 6, 4), 4)

	for _, name := range []string{"out.rst", "out.png"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, img, DefaultEncodeOptions()))
		got, err := Load(path)
		require.NoError(t, err, name)
		requireSameImage(t, img, got)
	}

	_, err := Load(filepath.Join(dir, "missing.rst"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(dir, "bad.j2k")
	require.NoError(t, os.WriteFile(bad, []byte("not a codestream"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}
