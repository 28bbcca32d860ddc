// Package imageio reads and writes images for the concatenation tools.
//
// The native format is a raster file: a small little-endian header followed
// by the interleaved component payload, optionally zlib compressed. Common
// 8/16-bit formats (PNG, JPEG, GIF, JPEG 2000) can be loaded as inputs.
package imageio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zlib"

	"github.com/mrjoshuak/go-chancat/internal/xdr"
	"github.com/mrjoshuak/go-chancat/raster"
)

// Raster file errors
var (
	ErrInvalidMagic       = errors.New("imageio: not a raster file")
	ErrUnsupportedVersion = errors.New("imageio: unsupported raster file version")
	ErrCorrupted          = errors.New("imageio: corrupted raster file")
)

// Compression selects how the raster payload is stored.
type Compression uint8

const (
	// CompressionNone stores the payload uncompressed.
	CompressionNone Compression = iota
	// CompressionZlib stores the payload as a zlib stream.
	CompressionZlib
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

const (
	magic   = "CHCT"
	version = 1

	// Limits applied while decoding untrusted headers.
	maxDims       = 8
	maxComponents = 1 << 16
	maxPayload    = 1 << 34
	maxCoord      = 1 << 30
)

// EncodeOptions controls raster file encoding.
type EncodeOptions struct {
	Compression Compression

	// Level is the zlib level, -2 (Huffman only) through 9.
	// zlib.DefaultCompression is used when Level is 0 with zlib compression.
	Level int
}

// DefaultEncodeOptions returns zlib compression at the default level.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Compression: CompressionZlib, Level: zlib.DefaultCompression}
}

// Encode writes img to w as a raster file.
func Encode(w io.Writer, img *raster.Image, opts EncodeOptions) error {
	meta := img.Metadata()
	if !meta.Type.Valid() {
		return fmt.Errorf("imageio: cannot encode element type %s", meta.Type)
	}

	var payload bytes.Buffer
	switch opts.Compression {
	case CompressionNone:
		if err := binary.Write(&payload, xdr.ByteOrder, img.Data()); err != nil {
			return err
		}
	case CompressionZlib:
		level := opts.Level
		if level == 0 {
			level = zlib.DefaultCompression
		}
		zw, err := zlib.NewWriterLevel(&payload, level)
		if err != nil {
			return err
		}
		if err := binary.Write(zw, xdr.ByteOrder, img.Data()); err != nil {
			zw.Close()
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("imageio: unknown compression %s", opts.Compression)
	}

	dims := meta.Extent.Dim()
	hw := xdr.NewWriter(20 + dims*16)
	hw.Write([]byte(magic))
	hw.Uint8(version)
	hw.Uint8(uint8(meta.Type))
	hw.Uint8(uint8(opts.Compression))
	hw.Uint8(0)
	hw.Uint32(uint32(meta.Components))
	hw.Uint32(uint32(dims))
	for d := 0; d < dims; d++ {
		hw.Int64(int64(meta.Extent.Min[d]))
		hw.Int64(int64(meta.Extent.Size[d]))
	}
	hw.Uint64(uint64(payload.Len()))

	if _, err := w.Write(hw.Bytes()); err != nil {
		return err
	}
	_, err := w.Write(payload.Bytes())
	return err
}

// Decode reads a raster file from r.
func Decode(r io.Reader) (*raster.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	hr := xdr.NewReader(data)

	if string(hr.Bytes(len(magic))) != magic {
		return nil, ErrInvalidMagic
	}
	if v := hr.Uint8(); v != version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	typ := raster.ElementType(hr.Uint8())
	comp := Compression(hr.Uint8())
	hr.Uint8()
	components := hr.Uint32()
	dims := hr.Uint32()
	if hr.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupted, hr.Err())
	}
	if !typ.Valid() || components == 0 || components > maxComponents || dims == 0 || dims > maxDims {
		return nil, fmt.Errorf("%w: %s x%d in %d dimensions", ErrCorrupted, typ, components, dims)
	}

	extent := raster.Extent{Min: make([]int, dims), Size: make([]int, dims)}
	pixels := int64(1)
	for d := range extent.Size {
		minIndex := hr.Int64()
		size := hr.Int64()
		if size <= 0 || size > maxPayload/pixels {
			return nil, fmt.Errorf("%w: dimension %d has size %d", ErrCorrupted, d, size)
		}
		if minIndex < -maxCoord || minIndex > maxCoord {
			return nil, fmt.Errorf("%w: dimension %d starts at %d", ErrCorrupted, d, minIndex)
		}
		extent.Min[d] = int(minIndex)
		pixels *= size
		extent.Size[d] = int(size)
	}
	if pixels*int64(components)*int64(typ.Size()) > maxPayload {
		return nil, fmt.Errorf("%w: payload too large", ErrCorrupted)
	}

	payloadLen := hr.Uint64()
	if hr.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupted, hr.Err())
	}
	if payloadLen > uint64(hr.Len()) {
		return nil, fmt.Errorf("%w: payload truncated", ErrCorrupted)
	}
	payload := hr.Bytes(int(payloadLen))

	img, err := raster.NewImage(raster.Metadata{Extent: extent, Type: typ, Components: int(components)})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}

	var src io.Reader
	switch comp {
	case CompressionNone:
		src = bytes.NewReader(payload)
	case CompressionZlib:
		zr, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
		}
		defer zr.Close()
		src = zr
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorrupted, comp)
	}

	if err := binary.Read(src, xdr.ByteOrder, img.Data()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}
	// The stream must end exactly here; for zlib this also verifies the checksum.
	var extra [1]byte
	if _, err := io.ReadFull(src, extra[:]); err != io.EOF {
		if err == nil {
			err = errors.New("trailing payload data")
		}
		return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}
	return img, nil
}

// WriteFile encodes img to the named file.
func WriteFile(name string, img *raster.Image, opts EncodeOptions) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(f, img, opts)
}

// ReadFile decodes the named raster file.
func ReadFile(name string) (*raster.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
