package raster

import (
	"errors"
	"fmt"

	"github.com/x448/float16"
)

// Image errors
var (
	ErrInvalidMetadata = errors.New("raster: invalid image metadata")
	ErrBufferSize      = errors.New("raster: buffer size does not match metadata")
	ErrTypeMismatch    = errors.New("raster: element type mismatch")
)

// Metadata is the information a pipeline connection declares before any
// pixel data exists.
type Metadata struct {
	Extent     Extent
	Type       ElementType
	Components int
}

// Valid reports whether the metadata declares a positive component count.
func (m *Metadata) Valid() bool {
	return m != nil && m.Components > 0
}

// Allocatable reports whether an image can be allocated for m.
func (m *Metadata) Allocatable() bool {
	return m.shaped() && m.Type.Valid()
}

func (m *Metadata) shaped() bool {
	return m.Valid() && m.Extent.Dim() > 0 &&
		m.Extent.fits(m.Components) && !m.Extent.IsEmpty()
}

// Equal reports whether m and o describe the same image shape.
func (m Metadata) Equal(o Metadata) bool {
	return m.Type == o.Type && m.Components == o.Components && m.Extent.Equal(o.Extent)
}

// Len returns the number of scalar components an image of this shape holds.
func (m Metadata) Len() int {
	return m.Extent.NumPixels() * m.Components
}

// Image is a dense N-dimensional array of pixels. Each pixel holds
// Components scalars of the same element type, stored interleaved.
type Image struct {
	meta Metadata
	data any
}

// NewImage allocates a zeroed image of the given shape.
func NewImage(meta Metadata) (*Image, error) {
	if !meta.Allocatable() {
		return nil, fmt.Errorf("%w: %s x%d over %s", ErrInvalidMetadata, meta.Type, meta.Components, meta.Extent)
	}
	n := meta.Len()
	var data any
	switch meta.Type {
	case Int8:
		data = make([]int8, n)
	case Uint8:
		data = make([]uint8, n)
	case Int16:
		data = make([]int16, n)
	case Uint16:
		data = make([]uint16, n)
	case Half:
		data = make([]float16.Float16, n)
	case Int32:
		data = make([]int32, n)
	case Uint32:
		data = make([]uint32, n)
	case Int64:
		data = make([]int64, n)
	case Uint64:
		data = make([]uint64, n)
	case Float32:
		data = make([]float32, n)
	case Float64:
		data = make([]float64, n)
	}
	meta.Extent = meta.Extent.Clone()
	return &Image{meta: meta, data: data}, nil
}

// FromSlice wraps an existing interleaved buffer. The element type is derived
// from T and len(data) must equal the pixel count times components. Named
// types other than float16.Float16 are accepted but report Unknown, and the
// concatenation kernels do not support them.
func FromSlice[T Element](extent Extent, components int, data []T) (*Image, error) {
	meta := Metadata{Extent: extent.Clone(), Type: TypeOf[T](), Components: components}
	if !meta.shaped() {
		return nil, fmt.Errorf("%w: %s x%d over %s", ErrInvalidMetadata, meta.Type, components, extent)
	}
	if len(data) != meta.Len() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBufferSize, len(data), meta.Len())
	}
	return &Image{meta: meta, data: data}, nil
}

// Metadata returns the image's shape.
func (img *Image) Metadata() Metadata {
	return img.meta
}

// Extent returns the spatial extent of the image.
func (img *Image) Extent() Extent {
	return img.meta.Extent
}

// Type returns the element type of the image.
func (img *Image) Type() ElementType {
	return img.meta.Type
}

// Components returns the number of components per pixel.
func (img *Image) Components() int {
	return img.meta.Components
}

// Data returns the underlying typed buffer ([]int8 ... []float64).
func (img *Image) Data() any {
	return img.data
}

// Pixels returns the image buffer as []T. It fails if T does not match the
// image's element type.
func Pixels[T Element](img *Image) ([]T, error) {
	buf, ok := img.data.([]T)
	if !ok {
		return nil, fmt.Errorf("%w: image holds %s, requested %s", ErrTypeMismatch, img.meta.Type, TypeOf[T]())
	}
	return buf, nil
}

// index returns the buffer index of component c at pos, or -1 if out of range.
func (img *Image) index(pos []int, c int) int {
	e := img.meta.Extent
	if len(pos) != e.Dim() || c < 0 || c >= img.meta.Components {
		return -1
	}
	for d := range pos {
		if pos[d] < e.Min[d] || pos[d] > e.Max(d) {
			return -1
		}
	}
	return e.offset(pos)*img.meta.Components + c
}

// At returns component c of the pixel at pos converted to float64.
// Out-of-range positions return 0.
func (img *Image) At(pos []int, c int) float64 {
	i := img.index(pos, c)
	if i < 0 {
		return 0
	}
	return img.Float64(i)
}

// Set stores v into component c of the pixel at pos, converting from float64.
// Out-of-range positions are ignored.
func (img *Image) Set(pos []int, c int, v float64) {
	i := img.index(pos, c)
	if i < 0 {
		return
	}
	img.SetFloat64(i, v)
}

// Float64 returns buffer element i converted to float64.
func (img *Image) Float64(i int) float64 {
	switch buf := img.data.(type) {
	case []int8:
		return float64(buf[i])
	case []uint8:
		return float64(buf[i])
	case []int16:
		return float64(buf[i])
	case []uint16:
		return float64(buf[i])
	case []float16.Float16:
		return float64(buf[i].Float32())
	case []int32:
		return float64(buf[i])
	case []uint32:
		return float64(buf[i])
	case []int64:
		return float64(buf[i])
	case []uint64:
		return float64(buf[i])
	case []float32:
		return float64(buf[i])
	case []float64:
		return buf[i]
	default:
		return 0
	}
}

// SetFloat64 stores v into buffer element i, converting to the element type.
func (img *Image) SetFloat64(i int, v float64) {
	switch buf := img.data.(type) {
	case []int8:
		buf[i] = int8(v)
	case []uint8:
		buf[i] = uint8(v)
	case []int16:
		buf[i] = int16(v)
	case []uint16:
		buf[i] = uint16(v)
	case []float16.Float16:
		buf[i] = float16.Fromfloat32(float32(v))
	case []int32:
		buf[i] = int32(v)
	case []uint32:
		buf[i] = uint32(v)
	case []int64:
		buf[i] = int64(v)
	case []uint64:
		buf[i] = uint64(v)
	case []float32:
		buf[i] = float32(v)
	case []float64:
		buf[i] = v
	}
}

// Fill sets every component of every pixel to the values in pixel, which
// must hold exactly Components values.
func (img *Image) Fill(pixel ...float64) {
	nc := img.meta.Components
	if len(pixel) != nc {
		return
	}
	n := img.meta.Len()
	for i := 0; i < n; i++ {
		img.SetFloat64(i, pixel[i%nc])
	}
}
