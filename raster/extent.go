package raster

import (
	"fmt"
	"math"
	"strings"
)

// Extent is an N-dimensional index region. Min holds the first index along
// each dimension and Size the number of indices; dimension 0 varies fastest
// in memory.
type Extent struct {
	Min  []int
	Size []int
}

// NewExtent2D returns a two-dimensional extent with its origin at (x, y).
func NewExtent2D(x, y, width, height int) Extent {
	return Extent{Min: []int{x, y}, Size: []int{width, height}}
}

// Dim returns the number of dimensions.
func (e Extent) Dim() int {
	return len(e.Size)
}

// NumPixels returns the number of index positions in the extent.
// A zero-dimensional extent holds no pixels.
func (e Extent) NumPixels() int {
	if len(e.Size) == 0 {
		return 0
	}
	n := 1
	for _, s := range e.Size {
		if s <= 0 {
			return 0
		}
		n *= s
	}
	return n
}

// fits reports whether an image of the extent with the given number of
// components per pixel can be indexed with int: the scalar count and every
// Min+Size bound must not overflow.
func (e Extent) fits(components int) bool {
	if components <= 0 || len(e.Min) != len(e.Size) {
		return false
	}
	n := components
	for d, s := range e.Size {
		if s <= 0 {
			return true
		}
		if n > math.MaxInt/s {
			return false
		}
		n *= s
		if m := e.Min[d]; m > 0 && m > math.MaxInt-s {
			return false
		}
	}
	return true
}

// IsEmpty returns true if the extent has no pixels.
func (e Extent) IsEmpty() bool {
	return e.NumPixels() == 0
}

// Max returns the last index (inclusive) along dimension d.
func (e Extent) Max(d int) int {
	return e.Min[d] + e.Size[d] - 1
}

// Equal reports whether e and o cover the same region.
func (e Extent) Equal(o Extent) bool {
	if len(e.Min) != len(o.Min) || len(e.Size) != len(o.Size) {
		return false
	}
	for d := range e.Size {
		if e.Min[d] != o.Min[d] || e.Size[d] != o.Size[d] {
			return false
		}
	}
	return true
}

// Contains reports whether o lies entirely inside e.
func (e Extent) Contains(o Extent) bool {
	if o.Dim() != e.Dim() || len(o.Min) != len(o.Size) || len(e.Min) != len(e.Size) {
		return false
	}
	for d := range e.Size {
		if o.Size[d] < 0 || o.Min[d] < e.Min[d] || o.Min[d]+o.Size[d] > e.Min[d]+e.Size[d] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of e.
func (e Extent) Clone() Extent {
	return Extent{
		Min:  append([]int(nil), e.Min...),
		Size: append([]int(nil), e.Size...),
	}
}

func (e Extent) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for d := range e.Size {
		if d > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d+%d", e.Min[d], e.Size[d])
	}
	b.WriteByte(']')
	return b.String()
}

// offset returns the linear pixel index of pos within e.
func (e Extent) offset(pos []int) int {
	off := 0
	stride := 1
	for d := range e.Size {
		off += (pos[d] - e.Min[d]) * stride
		stride *= e.Size[d]
	}
	return off
}
