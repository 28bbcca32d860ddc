package raster

import "errors"

// ErrRegionOutside is returned when an iteration region is not contained in
// the image extent it is walked over.
var ErrRegionOutside = errors.New("raster: region outside image extent")

// ForEachSpan walks region in row-major order over an image laid out on
// extent. For each contiguous run along dimension 0 it calls fn with the
// linear pixel index of the run's first pixel and the run length in pixels.
//
// Runs are visited with the slowest dimension outermost, so successive calls
// see increasing offsets.
func ForEachSpan(extent, region Extent, fn func(offset, n int)) error {
	if !extent.Contains(region) {
		return ErrRegionOutside
	}
	if region.IsEmpty() {
		return nil
	}

	dim := region.Dim()
	width := region.Size[0]
	pos := append([]int(nil), region.Min...)

	for {
		fn(extent.offset(pos), width)

		// Advance the odometer over dimensions 1..dim-1.
		d := 1
		for ; d < dim; d++ {
			pos[d]++
			if pos[d] < region.Min[d]+region.Size[d] {
				break
			}
			pos[d] = region.Min[d]
		}
		if d == dim {
			return nil
		}
	}
}
