package imaging

import "fmt"

// neutralChroma is substituted for any chroma sample that falls outside its
// plane. 128 is the zero point of the U/V axes, so a missing chroma sample
// degrades to grayscale instead of failing the frame.
const neutralChroma = 128

// Converter resamples a planar YUV420 frame into a fixed-size upright RGB
// input tensor.
//
// Algorithm:
//  1. Nearest-neighbor scale from frame dimensions to Size x Size
//  2. Inverse-rotation remap of the source coordinate, so the tensor is
//     upright regardless of sensor orientation
//  3. YUV -> RGB with the standard integer approximation coefficients
//  4. Clamp to [0,255], normalize to [0,1]
//
// The steady-state path performs no allocation: O(Size^2) arithmetic writing
// into a caller-owned buffer.
type Converter struct {
	size int
}

// NewConverter creates a converter for the given model input size.
func NewConverter(size int) *Converter {
	if size <= 0 {
		size = DefaultInputSize
	}
	return &Converter{size: size}
}

// Size returns the output side length in pixels.
func (c *Converter) Size() int { return c.size }

// Convert overwrites out with the normalized RGB rendition of f.
//
// Contract:
//   - f.Width and f.Height must be > 0
//   - out.Data must hold exactly Size*Size*3 floats
//   - f is borrowed only for the duration of the call
func (c *Converter) Convert(f *Frame, out *InputTensor) error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid frame dimensions %dx%d", f.Width, f.Height)
	}
	if !f.Rotation.Valid() {
		return fmt.Errorf("invalid rotation %d", int(f.Rotation))
	}
	if want := c.size * c.size * 3; len(out.Data) != want {
		return fmt.Errorf("input tensor size %d, want %d", len(out.Data), want)
	}

	w, h := f.Width, f.Height
	size := c.size
	data := out.Data

	i := 0
	for oy := 0; oy < size; oy++ {
		// Nearest-neighbor source row for this output row.
		sy := oy * h / size
		if sy >= h {
			sy = h - 1
		}

		for ox := 0; ox < size; ox++ {
			sx := ox * w / size
			if sx >= w {
				sx = w - 1
			}

			// Inverse-rotation remap compensating for sensor orientation.
			col, row := sx, sy
			switch f.Rotation {
			case Rotate90:
				col, row = sy, w-1-sx
			case Rotate180:
				col, row = w-1-sx, h-1-sy
			case Rotate270:
				col, row = h-1-sy, sx
			}
			col = clampInt(col, 0, w-1)
			row = clampInt(row, 0, h-1)

			yv := int(f.Y.Data[row*f.Y.RowStride+col])
			u := chromaAt(&f.U, row, col)
			v := chromaAt(&f.V, row, col)

			r := float32(yv) + 1.370705*float32(v-128)
			g := float32(yv) - 0.337633*float32(u-128) - 0.698001*float32(v-128)
			b := float32(yv) + 1.732446*float32(u-128)

			data[i] = clampUnit(r / 255)
			data[i+1] = clampUnit(g / 255)
			data[i+2] = clampUnit(b / 255)
			i += 3
		}
	}

	return nil
}

// chromaAt samples a possibly 2x-subsampled chroma plane at the given luma
// coordinate. Out-of-bounds reads yield the neutral chroma value.
func chromaAt(p *Plane, row, col int) int {
	idx := (row/2)*p.RowStride + (col/2)*p.PixelStride
	if idx < 0 || idx >= len(p.Data) {
		return neutralChroma
	}
	return int(p.Data[idx])
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampUnit(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
