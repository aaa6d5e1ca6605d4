package imaging

import (
	"math/rand"
	"testing"
	"testing/quick"
)

// newTestFrame builds a YUV420 frame with tightly packed planes:
// luma rowStride = w, chroma planes subsampled by 2 in each dimension.
func newTestFrame(w, h int, rot Rotation) *Frame {
	cw, ch := (w+1)/2, (h+1)/2
	f := &Frame{
		Width:    w,
		Height:   h,
		Rotation: rot,
		Y:        Plane{Data: make([]byte, w*h), RowStride: w, PixelStride: 1},
		U:        Plane{Data: make([]byte, cw*ch), RowStride: cw, PixelStride: 1},
		V:        Plane{Data: make([]byte, cw*ch), RowStride: cw, PixelStride: 1},
	}
	for i := range f.U.Data {
		f.U.Data[i] = 128
		f.V.Data[i] = 128
	}
	return f
}

// TestConvertRotationMapping places a single bright luma pixel and verifies
// it lands at the geometrically rotated destination for each rotation.
func TestConvertRotationMapping(t *testing.T) {
	const size = 8
	const markCol, markRow = 2, 1

	tests := []struct {
		name     string
		rotation Rotation
		wantX    int
		wantY    int
	}{
		{"rotation 0", Rotate0, markCol, markRow},
		{"rotation 90", Rotate90, size - 1 - markRow, markCol},
		{"rotation 180", Rotate180, size - 1 - markCol, size - 1 - markRow},
		{"rotation 270", Rotate270, markRow, size - 1 - markCol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFrame(size, size, tt.rotation)
			f.Y.Data[markRow*size+markCol] = 255

			conv := NewConverter(size)
			out := NewInputTensor(size)
			if err := conv.Convert(f, out); err != nil {
				t.Fatalf("Convert() failed: %v", err)
			}

			// Neutral chroma makes the output grayscale, so the red
			// channel alone identifies the marker.
			for oy := 0; oy < size; oy++ {
				for ox := 0; ox < size; ox++ {
					r := out.Data[(oy*size+ox)*3]
					bright := r > 0.5
					wantBright := ox == tt.wantX && oy == tt.wantY
					if bright != wantBright {
						t.Errorf("pixel (%d,%d): bright=%v, want %v (r=%.3f)",
							ox, oy, bright, wantBright, r)
					}
				}
			}
		})
	}
}

// TestConvertNormalized checks the property that every element of a
// converted tensor lies in [0,1], for arbitrary frame content.
func TestConvertNormalized(t *testing.T) {
	const size = 16
	conv := NewConverter(size)
	out := NewInputTensor(size)

	property := func(seed int64) bool {
		rng := rand.New(rand.NewSource(seed))
		w := 1 + rng.Intn(64)
		h := 1 + rng.Intn(64)
		rotations := []Rotation{Rotate0, Rotate90, Rotate180, Rotate270}

		f := newTestFrame(w, h, rotations[rng.Intn(4)])
		rng.Read(f.Y.Data)
		rng.Read(f.U.Data)
		rng.Read(f.V.Data)

		if err := conv.Convert(f, out); err != nil {
			return false
		}
		for _, v := range out.Data {
			if v < 0 || v > 1 {
				return false
			}
		}
		return true
	}

	if err := quick.Check(property, &quick.Config{MaxCount: 50}); err != nil {
		t.Errorf("normalization property violated: %v", err)
	}
}

// TestConvertIdempotent verifies converting the same frame twice yields
// bit-identical tensor contents (the buffer is fully overwritten).
func TestConvertIdempotent(t *testing.T) {
	const size = 16
	f := newTestFrame(20, 12, Rotate90)
	rng := rand.New(rand.NewSource(42))
	rng.Read(f.Y.Data)
	rng.Read(f.U.Data)
	rng.Read(f.V.Data)

	conv := NewConverter(size)
	out := NewInputTensor(size)
	if err := conv.Convert(f, out); err != nil {
		t.Fatalf("first Convert() failed: %v", err)
	}
	first := make([]float32, len(out.Data))
	copy(first, out.Data)

	// Poison the buffer to prove it is overwritten, not accumulated into.
	for i := range out.Data {
		out.Data[i] = -1
	}
	if err := conv.Convert(f, out); err != nil {
		t.Fatalf("second Convert() failed: %v", err)
	}

	for i := range first {
		if out.Data[i] != first[i] {
			t.Fatalf("tensor differs at %d: %v != %v", i, out.Data[i], first[i])
		}
	}
}

// TestConvertChromaOutOfBounds verifies missing chroma samples degrade to
// the neutral value (grayscale) instead of failing.
func TestConvertChromaOutOfBounds(t *testing.T) {
	const size = 4
	f := newTestFrame(size, size, Rotate0)
	for i := range f.Y.Data {
		f.Y.Data[i] = 100
	}
	// Empty chroma planes: every chroma read is out of bounds.
	f.U = Plane{RowStride: 2, PixelStride: 1}
	f.V = Plane{RowStride: 2, PixelStride: 1}

	conv := NewConverter(size)
	out := NewInputTensor(size)
	if err := conv.Convert(f, out); err != nil {
		t.Fatalf("Convert() failed: %v", err)
	}

	want := float32(100) / 255
	for i, v := range out.Data {
		if v != want {
			t.Fatalf("element %d = %v, want neutral gray %v", i, v, want)
		}
	}
}

func TestConvertRejectsBadInput(t *testing.T) {
	conv := NewConverter(8)
	out := NewInputTensor(8)

	tests := []struct {
		name  string
		frame *Frame
		out   *InputTensor
	}{
		{"zero width", &Frame{Width: 0, Height: 4}, out},
		{"zero height", &Frame{Width: 4, Height: 0}, out},
		{"bad rotation", &Frame{Width: 4, Height: 4, Rotation: 45}, out},
		{"short tensor", newTestFrame(4, 4, Rotate0), NewInputTensor(4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conv.Convert(tt.frame, tt.out); err == nil {
				t.Error("Convert() succeeded, want error")
			}
		})
	}
}
