package posture

import "github.com/sajadah/posesensor/internal/engine"

const (
	// scoreChannel holds the per-anchor objectness score.
	scoreChannel = 4
	// keypointBase is the first keypoint channel; each keypoint occupies
	// three channels (x, y, visibility).
	keypointBase = 5

	// earlyAcceptScore short-circuits the best-anchor scan: a detection
	// this confident is taken immediately rather than scanning all
	// anchors for the global maximum. Speed over exactness.
	earlyAcceptScore = 0.6
	// minScore is the detection floor; the best anchor below it means
	// no person in frame.
	minScore = 0.2
)

// Decoder interprets the raw output tensor of the pose model into a
// normalized skeleton.
type Decoder struct {
	shape     engine.OutputShape
	inputSize int
}

// NewDecoder creates a decoder for the given output shape and model input
// size (used to normalize pixel-unit coordinates).
func NewDecoder(shape engine.OutputShape, inputSize int) *Decoder {
	return &Decoder{shape: shape, inputSize: inputSize}
}

// Decode finds the best-scoring anchor and reads its 17 keypoints.
//
// Fails soft: a malformed tensor or the absence of a confident anchor
// yields (nil, false), never an error.
func (d *Decoder) Decode(output []float32) (Skeleton, bool) {
	anchors := d.shape.Anchors
	if d.shape.Channels < keypointBase+1 || anchors <= 0 {
		return nil, false
	}
	if len(output) < (scoreChannel+1)*anchors {
		return nil, false
	}

	bestIdx := -1
	bestScore := float32(0)
	scores := output[scoreChannel*anchors : (scoreChannel+1)*anchors]
	for i, s := range scores {
		if s > bestScore {
			bestScore = s
			bestIdx = i
			if s > earlyAcceptScore {
				break
			}
		}
	}
	if bestIdx < 0 || bestScore < minScore {
		return nil, false
	}

	sk := make(Skeleton, NumKeypoints)
	for k := 0; k < NumKeypoints; k++ {
		sk[k] = Keypoint{
			X: d.coordAt(output, keypointBase+3*k, bestIdx),
			Y: d.coordAt(output, keypointBase+3*k+1, bestIdx),
		}
	}
	return sk, true
}

// coordAt reads one coordinate channel at the winning anchor, normalizing
// pixel-unit values (magnitude > 1) by the model input size and clamping
// into the unit interval. A channel beyond the tensor reads as 0.
func (d *Decoder) coordAt(output []float32, channel, anchor int) float32 {
	idx := channel*d.shape.Anchors + anchor
	if idx >= len(output) {
		return 0
	}
	v := output[idx]
	if v > 1 || v < -1 {
		v /= float32(d.inputSize)
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
