// Package posture decodes raw pose-model output into anatomical keypoints
// and classifies the resulting skeleton into a discrete prayer posture.
package posture

// Keypoint is one anatomical landmark, normalized to the unit square.
//
// (0,0) doubles as "not detected": a low-confidence landmark and a genuine
// top-left corner detection are indistinguishable. This ambiguity is
// inherited from the model's output convention and preserved deliberately;
// the classifier treats an all-zero shoulder as "no person".
type Keypoint struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Zero reports whether the keypoint carries the "not detected" sentinel.
func (k Keypoint) Zero() bool { return k.X == 0 && k.Y == 0 }

// Skeleton is the ordered set of keypoints for one detected person.
// A complete skeleton has exactly NumKeypoints entries.
type Skeleton []Keypoint

// NumKeypoints is the landmark count fixed by the model's training
// convention (COCO order).
const NumKeypoints = 17

// Landmark indices, COCO order.
const (
	Nose = iota
	LeftEye
	RightEye
	LeftEar
	RightEar
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
)
