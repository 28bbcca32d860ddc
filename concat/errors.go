package concat

import (
	"errors"
	"fmt"

	"github.com/mrjoshuak/go-chancat/raster"
)

// Concatenation errors
var (
	ErrTypeMismatch    = errors.New("concat: input element type does not match output")
	ErrUnsupportedType = errors.New("concat: unsupported element type")
	ErrShapeMismatch   = errors.New("concat: output image does not match plan")
)

// TypeMismatchError reports an input whose element type differs from the
// output's. No components of that input are written.
type TypeMismatchError struct {
	Index  int
	Input  raster.ElementType
	Output raster.ElementType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("concat: input %d has element type %s, output has %s", e.Index, e.Input, e.Output)
}

// Is reports whether target is ErrTypeMismatch.
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// UnsupportedTypeError reports an element type outside the supported set.
type UnsupportedTypeError struct {
	Index int
	Type  raster.ElementType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("concat: input %d has unsupported element type %s", e.Index, e.Type)
}

// Is reports whether target is ErrUnsupportedType.
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}
