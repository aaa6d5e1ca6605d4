package imaging

// DefaultInputSize is the side length of the model input square, in pixels.
const DefaultInputSize = 640

// InputTensor is the model input buffer: Size x Size x 3 float32 values in
// row-major order, channel order R,G,B, each normalized to [0,1].
//
// The buffer is allocated once at pipeline construction and overwritten on
// every conversion. Only one frame is in flight at a time, so the converter
// owns the buffer exclusively for the duration of a Convert call.
type InputTensor struct {
	Size int
	Data []float32
}

// NewInputTensor allocates an input tensor for the given model input size.
func NewInputTensor(size int) *InputTensor {
	return &InputTensor{
		Size: size,
		Data: make([]float32, size*size*3),
	}
}
