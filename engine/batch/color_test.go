package batch_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
)

func TestColor_PackedIsLittleEndian(t *testing.T) {
	c := batch.Color{0x11, 0x22, 0x33, 0x44}
	assert.Equal(t, uint32(0x44332211), math.Float32bits(c.Packed()))
}

func TestColor_PackRoundTrip(t *testing.T) {
	tests := []batch.Color{
		{0, 0, 0, 0},
		{255, 0, 0, 255},
		{12, 200, 7, 128},
		{1, 2, 3, 4},
	}
	for _, c := range tests {
		assert.Equal(t, c, batch.UnpackColor(c.Packed()))
	}
}

func TestColorFromFloats(t *testing.T) {
	tests := []struct {
		name       string
		r, g, b, a float32
		want       batch.Color
	}{
		{name: "white", r: 1, g: 1, b: 1, a: 1, want: batch.White},
		{name: "black", want: batch.Color{}},
		{name: "truncates", r: 0.5, g: 0.999, b: 0.1, a: 1, want: batch.Color{127, 254, 25, 255}},
		{name: "clamps", r: -1, g: 2, b: 0, a: 1.5, want: batch.Color{0, 255, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, batch.ColorFromFloats(tt.r, tt.g, tt.b, tt.a))
		})
	}
}

func TestColor_Floats(t *testing.T) {
	r, g, b, a := batch.Color{255, 0, 51, 255}.Floats()
	assert.InDelta(t, 1.0, r, 1e-6)
	assert.InDelta(t, 0.0, g, 1e-6)
	assert.InDelta(t, 0.2, b, 1e-6)
	assert.InDelta(t, 1.0, a, 1e-6)
}
