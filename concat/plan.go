// Package concat implements an N-input component concatenation stage.
//
// Given images that share a spatial extent and element type, the stage
// produces one image whose pixels hold every input's components in
// connection order. Combining a 1-component luminance image with a
// 3-component color image yields a 4-component image.
//
// Work is split in two phases. PlanOutputShape inspects connection metadata
// only and computes the output shape and each input's component offset.
// ExecuteTile then copies pixel data for one tile of the output; tiles are
// disjoint, so any number of ExecuteTile calls may run concurrently on the
// same output without locking.
package concat

import "github.com/mrjoshuak/go-chancat/raster"

// InputDescriptor places one contributing connection in the output pixel.
type InputDescriptor struct {
	// Index is the connection index on the input port.
	Index int

	// Components is the number of components the input contributes.
	Components int

	// Offset is the first output component the input writes.
	Offset int

	// Type is the declared element type of the input.
	Type raster.ElementType
}

// Plan is the result of shape planning for one pipeline cycle.
type Plan struct {
	// Output is the metadata of the image the executor writes into.
	Output raster.Metadata

	// Inputs lists contributing connections in ascending index order.
	Inputs []InputDescriptor
}

// Components returns the total number of output components.
func (p Plan) Components() int {
	return p.Output.Components
}

// Descriptor returns the descriptor for connection index, if it contributes.
func (p Plan) Descriptor(index int) (InputDescriptor, bool) {
	for _, d := range p.Inputs {
		if d.Index == index {
			return d, true
		}
	}
	return InputDescriptor{}, false
}

// PlanOutputShape computes the output shape from per-connection metadata.
// A nil entry or one without a positive component count contributes nothing.
// The output's element type and extent are those of the first contributing
// connection.
func PlanOutputShape(inputs []*raster.Metadata) Plan {
	var plan Plan
	total := 0
	for i, meta := range inputs {
		if !meta.Valid() {
			continue
		}
		if len(plan.Inputs) == 0 {
			plan.Output.Type = meta.Type
			plan.Output.Extent = meta.Extent.Clone()
		}
		plan.Inputs = append(plan.Inputs, InputDescriptor{
			Index:      i,
			Components: meta.Components,
			Offset:     total,
			Type:       meta.Type,
		})
		total += meta.Components
	}
	plan.Output.Components = total
	return plan
}
