package concat

import (
	"errors"
	"fmt"

	"github.com/x448/float16"

	"github.com/mrjoshuak/go-chancat/raster"
)

// Progress receives per-worker progress from ExecuteTile. It is used for
// observability only and never alters execution.
type Progress interface {
	// Advance records that workerID copied pixels pixels of one input.
	Advance(workerID, pixels int)
}

// ExecuteTile copies every present input's components for tile into out.
//
// Inputs are visited in ascending connection order using the offsets in plan.
// A nil image at a planned index is skipped. An input whose element type
// differs from out's produces a *TypeMismatchError, and one whose type has no
// copy kernel produces an *UnsupportedTypeError; in both cases nothing is
// written for that input and later inputs are still processed. All errors
// are returned joined.
//
// ExecuteTile writes only inside tile, so calls for disjoint tiles of the
// same output may run concurrently.
func ExecuteTile(plan Plan, inputs []*raster.Image, out *raster.Image, tile raster.Extent, workerID int, progress Progress) error {
	if out == nil || out.Components() != plan.Components() {
		return fmt.Errorf("%w: output has %d components, plan has %d", ErrShapeMismatch, componentsOf(out), plan.Components())
	}
	if !out.Extent().Contains(tile) {
		return fmt.Errorf("%w: tile %s outside output extent %s", ErrShapeMismatch, tile, out.Extent())
	}

	var errs []error
	for _, d := range plan.Inputs {
		if d.Index >= len(inputs) || inputs[d.Index] == nil {
			continue
		}
		if err := copyInput(d, inputs[d.Index], out, tile); err != nil {
			errs = append(errs, err)
			continue
		}
		if progress != nil {
			progress.Advance(workerID, tile.NumPixels())
		}
	}
	return errors.Join(errs...)
}

func componentsOf(img *raster.Image) int {
	if img == nil {
		return 0
	}
	return img.Components()
}

// copyInput validates one input against the output and dispatches to the
// kernel for the shared element type.
func copyInput(d InputDescriptor, in, out *raster.Image, tile raster.Extent) error {
	if in.Type() != out.Type() {
		return &TypeMismatchError{Index: d.Index, Input: in.Type(), Output: out.Type()}
	}
	if in.Components() != d.Components || d.Offset+d.Components > out.Components() {
		return fmt.Errorf("%w: input %d has %d components at offset %d, output has %d",
			ErrShapeMismatch, d.Index, in.Components(), d.Offset, out.Components())
	}
	if !in.Extent().Equal(out.Extent()) {
		return fmt.Errorf("%w: input %d extent %s differs from output %s",
			ErrShapeMismatch, d.Index, in.Extent(), out.Extent())
	}

	k := kernel{
		extent: out.Extent(),
		tile:   tile,
		numIn:  d.Components,
		numOut: out.Components(),
		offset: d.Offset,
	}

	var ok bool
	switch dst := out.Data().(type) {
	case []int8:
		ok = run(k, dst, in.Data())
	case []uint8:
		ok = run(k, dst, in.Data())
	case []int16:
		ok = run(k, dst, in.Data())
	case []uint16:
		ok = run(k, dst, in.Data())
	case []float16.Float16:
		ok = run(k, dst, in.Data())
	case []int32:
		ok = run(k, dst, in.Data())
	case []uint32:
		ok = run(k, dst, in.Data())
	case []int64:
		ok = run(k, dst, in.Data())
	case []uint64:
		ok = run(k, dst, in.Data())
	case []float32:
		ok = run(k, dst, in.Data())
	case []float64:
		ok = run(k, dst, in.Data())
	}
	if !ok {
		return &UnsupportedTypeError{Index: d.Index, Type: out.Type()}
	}
	return nil
}

// kernel holds the geometry of one (input, tile) copy pass.
type kernel struct {
	extent raster.Extent
	tile   raster.Extent
	numIn  int
	numOut int
	offset int
}

// run asserts the input buffer to dst's type and copies the tile. It reports
// false when the buffers do not share a type.
func run[T raster.Element](k kernel, dst []T, src any) bool {
	s, ok := src.([]T)
	if !ok {
		return false
	}
	copyTile(k, dst, s)
	return true
}

// copyTile copies k.numIn components per pixel from src into dst starting at
// component k.offset. Components outside that range are not touched.
func copyTile[T raster.Element](k kernel, dst, src []T) {
	numIn, numOut, offset := k.numIn, k.numOut, k.offset

	// The tile was checked against the output extent and every input shares
	// that extent, so iteration cannot fail here.
	_ = raster.ForEachSpan(k.extent, k.tile, func(pixel, n int) {
		if numIn == numOut {
			copy(dst[pixel*numOut:(pixel+n)*numOut], src[pixel*numIn:(pixel+n)*numIn])
			return
		}
		s := src[pixel*numIn : (pixel+n)*numIn]
		d := dst[pixel*numOut : (pixel+n)*numOut]
		for p := 0; p < n; p++ {
			copy(d[p*numOut+offset:p*numOut+offset+numIn], s[p*numIn:(p+1)*numIn])
		}
	})
}
