package imaging

import "time"

// Rotation is the sensor orientation of a frame, in degrees clockwise.
// Only the four cardinal values are valid.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// Valid reports whether r is one of the four supported rotations.
func (r Rotation) Valid() bool {
	switch r {
	case Rotate0, Rotate90, Rotate180, Rotate270:
		return true
	}
	return false
}

// Plane is one component plane of a planar image.
//
// RowStride is the byte distance between vertically adjacent samples,
// PixelStride the byte distance between horizontally adjacent samples.
// Chroma planes of a 4:2:0 frame carry one sample per 2x2 luma block.
type Plane struct {
	Data        []byte
	RowStride   int
	PixelStride int
}

// Frame is a borrowed view over one planar YUV420 camera frame.
//
// IMMUTABILITY CONTRACT (same as the capture side):
//   - Producer: MUST NOT modify plane data after handing the frame over
//   - Pipeline: MUST NOT retain the frame or its planes past one
//     conversion call; the producer may recycle the buffers afterwards
type Frame struct {
	// Width and Height in pixels of the luma plane.
	Width  int
	Height int

	// Rotation of the sensor relative to upright.
	Rotation Rotation

	// Y, U, V are the luma and chroma planes.
	Y, U, V Plane

	// Seq is a monotonic sequence number assigned by the producer.
	Seq uint64

	// Timestamp is when the frame was captured (source time).
	Timestamp time.Time

	// TraceID is a unique identifier for tracing a frame through the pipeline.
	TraceID string
}
