package batch

import (
	"encoding/binary"
	"math"
)

// Color is an 8-bit per channel RGBA color.
type Color [4]uint8

// White is the default instance color.
var White = Color{255, 255, 255, 255}

// ColorFromFloats converts normalized channels to a Color. Values are clamped to [0, 1]
// and truncated, so 1.0 maps to 255.
//
// Parameters:
//   - r, g, b, a: normalized channel values
//
// Returns:
//   - Color: the 8-bit color
func ColorFromFloats(r, g, b, a float32) Color {
	conv := func(v float32) uint8 {
		return uint8(min(max(v, 0), 1) * 255)
	}
	return Color{conv(r), conv(g), conv(b), conv(a)}
}

// Floats returns the color as normalized channels.
func (c Color) Floats() (r, g, b, a float32) {
	return float32(c[0]) / 255, float32(c[1]) / 255, float32(c[2]) / 255, float32(c[3]) / 255
}

// Packed reinterprets the four color bytes as one float32 for the trailing slot field.
// The bytes are read little-endian: R is the least significant byte of the float's bit pattern,
// matching the in-memory byte order R, G, B, A of the uploaded buffer on little-endian GPUs.
//
// Returns:
//   - float32: the packed color
func (c Color) Packed() float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(c[:]))
}

// UnpackColor reverses Packed.
//
// Parameters:
//   - f: a float produced by Color.Packed
//
// Returns:
//   - Color: the original color
func UnpackColor(f float32) Color {
	var c Color
	binary.LittleEndian.PutUint32(c[:], math.Float32bits(f))
	return c
}
