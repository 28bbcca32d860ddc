package concat

import "github.com/mrjoshuak/go-chancat/raster"

// Filter is a concatenation stage with a single, repeatable input port.
// Connections are identified by index; a connection may be left empty.
//
// A Filter is not safe for concurrent mutation. Once a cycle has been
// planned, ExecuteTile may be called concurrently for disjoint tiles.
type Filter struct {
	inputs []*raster.Image
}

// New returns a filter with the given inputs connected in order.
// Nil entries are kept as empty connections.
func New(inputs ...*raster.Image) *Filter {
	return &Filter{inputs: append([]*raster.Image(nil), inputs...)}
}

// SetInput connects img at index, growing the port as needed.
// Passing nil disconnects the index without shifting later connections.
func (f *Filter) SetInput(index int, img *raster.Image) {
	if index < 0 {
		return
	}
	for len(f.inputs) <= index {
		f.inputs = append(f.inputs, nil)
	}
	f.inputs[index] = img
}

// AddInput connects img at the next free index and returns that index.
func (f *Filter) AddInput(img *raster.Image) int {
	f.inputs = append(f.inputs, img)
	return len(f.inputs) - 1
}

// NumInputs returns the number of connection slots, including empty ones.
func (f *Filter) NumInputs() int {
	return len(f.inputs)
}

// Input returns the image connected at index, or nil.
func (f *Filter) Input(index int) *raster.Image {
	if index < 0 || index >= len(f.inputs) {
		return nil
	}
	return f.inputs[index]
}

// Inputs returns the connected images in index order.
func (f *Filter) Inputs() []*raster.Image {
	return f.inputs
}

// Metadata returns the declared metadata of every connection.
// Empty connections yield nil entries.
func (f *Filter) Metadata() []*raster.Metadata {
	metas := make([]*raster.Metadata, len(f.inputs))
	for i, img := range f.inputs {
		if img == nil {
			continue
		}
		m := img.Metadata()
		metas[i] = &m
	}
	return metas
}

// Plan computes the output shape for the current connections.
func (f *Filter) Plan() Plan {
	return PlanOutputShape(f.Metadata())
}

// ExecuteTile copies the filter's inputs into out for one tile.
// See the package-level ExecuteTile.
func (f *Filter) ExecuteTile(plan Plan, out *raster.Image, tile raster.Extent, workerID int, progress Progress) error {
	return ExecuteTile(plan, f.inputs, out, tile, workerID, progress)
}
