// Package raster provides the image model used by the concatenation stage:
// scalar element types, N-dimensional extents, interleaved multi-component
// images, and the iteration and splitting services the pipeline relies on.
//
// An image stores its pixels interleaved: the components of one pixel are
// adjacent in memory, and pixels are laid out with dimension 0 varying
// fastest.
package raster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/x448/float16"
)

// ErrUnknownElementType is returned when parsing an element type name fails.
var ErrUnknownElementType = errors.New("raster: unknown element type")

// ElementType identifies the scalar type shared by every component of an image.
type ElementType uint8

// Supported element types. The zero value is Unknown and is never valid.
const (
	Unknown ElementType = iota
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Half
	Float32
	Float64

	numElementTypes
)

var elementTypeNames = [numElementTypes]string{
	Unknown: "unknown",
	Int8:    "int8",
	Uint8:   "uint8",
	Int16:   "int16",
	Uint16:  "uint16",
	Int32:   "int32",
	Uint32:  "uint32",
	Int64:   "int64",
	Uint64:  "uint64",
	Half:    "half",
	Float32: "float32",
	Float64: "float64",
}

// Size returns the size in bytes of one component, or 0 for invalid types.
func (t ElementType) Size() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16, Half:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// Valid reports whether t is one of the supported element types.
func (t ElementType) Valid() bool {
	return t > Unknown && t < numElementTypes
}

// IsFloat reports whether t is a floating-point type.
func (t ElementType) IsFloat() bool {
	return t == Half || t == Float32 || t == Float64
}

func (t ElementType) String() string {
	if t < numElementTypes {
		return elementTypeNames[t]
	}
	return fmt.Sprintf("ElementType(%d)", uint8(t))
}

// ParseElementType returns the element type with the given name.
// Matching is case-insensitive; "float16" is accepted as an alias for half.
func ParseElementType(s string) (ElementType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "float16" {
		return Half, nil
	}
	for t := Int8; t < numElementTypes; t++ {
		if elementTypeNames[t] == name {
			return t, nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownElementType, s)
}

// Element is the set of Go types that back the supported element types.
type Element interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 |
		~int64 | ~uint64 | ~float32 | ~float64
}

// TypeOf returns the element type stored by a buffer of T.
// float16.Float16 maps to Half; other named types map by their Go kind.
func TypeOf[T Element]() ElementType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return Int8
	case uint8:
		return Uint8
	case int16:
		return Int16
	case uint16:
		return Uint16
	case float16.Float16:
		return Half
	case int32:
		return Int32
	case uint32:
		return Uint32
	case int64:
		return Int64
	case uint64:
		return Uint64
	case float32:
		return Float32
	case float64:
		return Float64
	default:
		return Unknown
	}
}
