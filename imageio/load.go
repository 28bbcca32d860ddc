package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrjoshuak/go-jpeg2000"

	"github.com/mrjoshuak/go-chancat/raster"
)

// ErrUnsupportedLayout is returned when an image cannot be stored in the
// requested container format.
var ErrUnsupportedLayout = errors.New("imageio: unsupported image layout")

// Format identifies a file format by name.
type Format string

// Supported formats.
const (
	FormatRaster   Format = "raster"
	FormatJPEG2000 Format = "jpeg2000"
	FormatPNG      Format = "png"
	FormatImage    Format = "image" // any decoder registered with package image
)

// FormatOf guesses a file format from its extension.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".rst", ".raster":
		return FormatRaster
	case ".j2k", ".j2c", ".jp2", ".jph":
		return FormatJPEG2000
	case ".png":
		return FormatPNG
	default:
		return FormatImage
	}
}

// Load reads the named file in the format implied by its extension.
func Load(name string) (*raster.Image, error) {
	if FormatOf(name) == FormatRaster {
		return ReadFile(name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var img image.Image
	if FormatOf(name) == FormatJPEG2000 {
		img, err = jpeg2000.Decode(f)
	} else {
		img, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("imageio: decode %s: %w", name, err)
	}
	return FromImage(img)
}

// Save writes img to the named file in the format implied by its extension.
// Formats other than raster files accept the layouts listed for ToImage.
func Save(name string, img *raster.Image, opts EncodeOptions) (err error) {
	format := FormatOf(name)
	if format == FormatRaster {
		return WriteFile(name, img, opts)
	}

	m, err := ToImage(img)
	if err != nil {
		return err
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	switch format {
	case FormatJPEG2000:
		return EncodeJPEG2000(f, m)
	case FormatPNG:
		return png.Encode(f, m)
	default:
		return fmt.Errorf("imageio: no encoder for %s", name)
	}
}

// EncodeJPEG2000 writes m as a lossless JPEG 2000 codestream.
func EncodeJPEG2000(w io.Writer, m image.Image) error {
	return jpeg2000.Encode(w, m, &jpeg2000.Options{
		Format:   jpeg2000.FormatJ2K,
		Lossless: true,
	})
}

// FromImage converts a decoded image into a 2-D raster image. Gray images
// become one component, YCbCr images three (RGB), and everything else four
// (RGBA). 16-bit sources keep uint16 components; others use uint8.
func FromImage(m image.Image) (*raster.Image, error) {
	b := m.Bounds()
	extent := raster.NewExtent2D(b.Min.X, b.Min.Y, b.Dx(), b.Dy())

	switch src := m.(type) {
	case *image.Gray:
		pix := make([]uint8, 0, b.Dx()*b.Dy())
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := src.PixOffset(b.Min.X, y)
			pix = append(pix, src.Pix[off:off+b.Dx()]...)
		}
		return raster.FromSlice(extent, 1, pix)

	case *image.Gray16:
		pix := make([]uint16, 0, b.Dx()*b.Dy())
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				pix = append(pix, src.Gray16At(x, y).Y)
			}
		}
		return raster.FromSlice(extent, 1, pix)

	case *image.YCbCr:
		pix := make([]uint8, 0, 3*b.Dx()*b.Dy())
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.RGBAModel.Convert(src.YCbCrAt(x, y)).(color.RGBA)
				pix = append(pix, c.R, c.G, c.B)
			}
		}
		return raster.FromSlice(extent, 3, pix)

	case *image.NRGBA, *image.RGBA, *image.Paletted:
		pix := make([]uint8, 0, 4*b.Dx()*b.Dy())
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
				pix = append(pix, c.R, c.G, c.B, c.A)
			}
		}
		return raster.FromSlice(extent, 4, pix)

	default:
		pix := make([]uint16, 0, 4*b.Dx()*b.Dy())
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBA64Model.Convert(m.At(x, y)).(color.NRGBA64)
				pix = append(pix, c.R, c.G, c.B, c.A)
			}
		}
		return raster.FromSlice(extent, 4, pix)
	}
}

// ToImage converts a 2-D uint8 or uint16 raster image with 1, 3 or 4
// components into an image.Image. Three components are stored opaque.
func ToImage(img *raster.Image) (image.Image, error) {
	e := img.Extent()
	if e.Dim() != 2 {
		return nil, fmt.Errorf("%w: %d dimensions", ErrUnsupportedLayout, e.Dim())
	}
	r := image.Rect(e.Min[0], e.Min[1], e.Min[0]+e.Size[0], e.Min[1]+e.Size[1])
	nc := img.Components()
	w := e.Size[0]

	switch buf := img.Data().(type) {
	case []uint8:
		switch nc {
		case 1:
			m := image.NewGray(r)
			copy(m.Pix, buf)
			return m, nil
		case 3, 4:
			m := image.NewNRGBA(r)
			for i := 0; i < e.NumPixels(); i++ {
				x, y := e.Min[0]+i%w, e.Min[1]+i/w
				c := color.NRGBA{R: buf[i*nc], G: buf[i*nc+1], B: buf[i*nc+2], A: 0xff}
				if nc == 4 {
					c.A = buf[i*nc+3]
				}
				m.SetNRGBA(x, y, c)
			}
			return m, nil
		}
	case []uint16:
		switch nc {
		case 1:
			m := image.NewGray16(r)
			for i, v := range buf {
				m.SetGray16(e.Min[0]+i%w, e.Min[1]+i/w, color.Gray16{Y: v})
			}
			return m, nil
		case 3, 4:
			m := image.NewNRGBA64(r)
			for i := 0; i < e.NumPixels(); i++ {
				x, y := e.Min[0]+i%w, e.Min[1]+i/w
				c := color.NRGBA64{R: buf[i*nc], G: buf[i*nc+1], B: buf[i*nc+2], A: 0xffff}
				if nc == 4 {
					c.A = buf[i*nc+3]
				}
				m.SetNRGBA64(x, y, c)
			}
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s x%d", ErrUnsupportedLayout, img.Type(), nc)
}
