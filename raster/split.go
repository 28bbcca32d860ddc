package raster

// Split partitions extent into at most n non-overlapping tiles that together
// cover it exactly. The extent is cut along the slowest-varying dimension
// whose size is greater than one, so each tile stays contiguous in memory.
//
// Split returns a single tile when n <= 1 and no tiles for an empty extent.
// Fewer than n tiles are returned when the split dimension is shorter than n.
func Split(extent Extent, n int) []Extent {
	if extent.IsEmpty() {
		return nil
	}
	if n <= 1 {
		return []Extent{extent.Clone()}
	}

	splitDim := -1
	for d := extent.Dim() - 1; d >= 0; d-- {
		if extent.Size[d] > 1 {
			splitDim = d
			break
		}
	}
	if splitDim < 0 {
		return []Extent{extent.Clone()}
	}

	length := extent.Size[splitDim]
	if n > length {
		n = length
	}
	chunk := (length + n - 1) / n

	tiles := make([]Extent, 0, n)
	for start := 0; start < length; start += chunk {
		size := chunk
		if start+size > length {
			size = length - start
		}
		tile := extent.Clone()
		tile.Min[splitDim] = extent.Min[splitDim] + start
		tile.Size[splitDim] = size
		tiles = append(tiles, tile)
	}
	return tiles
}
