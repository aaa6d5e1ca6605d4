package posture

import "math"

// Label is the discrete posture classification of one frame.
type Label string

const (
	Prostration Label = "Prostration"
	Sitting     Label = "Sitting"
	Bowing      Label = "Bowing"
	Standing    Label = "Standing"
	Unknown     Label = "Unknown"
	NoPerson    Label = "NoPerson"
	Waiting     Label = "Waiting"
)

// Color is a display color packed as 0xRRGGBB.
type Color uint32

// Display colors, one fixed color per label.
const (
	colorProstration Color = 0x4CAF50 // green
	colorSitting     Color = 0x2196F3 // blue
	colorBowing      Color = 0xFF9800 // orange
	colorStanding    Color = 0x03A9F4 // light blue
	colorUnknown     Color = 0x9E9E9E // gray
	colorNoPerson    Color = 0xF44336 // red
	colorWaiting     Color = 0xFFC107 // amber
)

// DisplayColor returns the fixed display color for a label.
func (l Label) DisplayColor() Color {
	switch l {
	case Prostration:
		return colorProstration
	case Sitting:
		return colorSitting
	case Bowing:
		return colorBowing
	case Standing:
		return colorStanding
	case NoPerson:
		return colorNoPerson
	case Waiting:
		return colorWaiting
	default:
		return colorUnknown
	}
}

// Classification thresholds, in degrees except spineRef (normalized units).
// The rule list is ordered and first-match-wins; Bowing vs Standing overlap
// (spine 35..40 with knee >130) is resolved purely by rule order. Validated
// by table tests, not re-derived.
const (
	spineRefOffset = 0.2

	prostrationKneeMax = 110
	sittingKneeMax     = 90
	bowingSpineMin     = 35
	bowingKneeMin      = 120
	standingSpineMax   = 40
	standingKneeMin    = 130
	headDownSpineMin   = 70
)

// Result is the classification of one skeleton.
type Result struct {
	Label    Label
	Color    Color
	Skeleton Skeleton
}

// Classify maps a skeleton to a posture label. Pure function of the
// keypoints; no hidden state.
//
// A skeleton without exactly 17 points yields Waiting. A zero shoulder
// landmark yields NoPerson regardless of the remaining points.
func Classify(sk Skeleton) Result {
	if len(sk) != NumKeypoints {
		return result(Waiting, sk)
	}

	shoulder := sk[LeftShoulder]
	if shoulder.Zero() {
		return result(NoPerson, sk)
	}

	nose := sk[Nose]
	hip := sk[LeftHip]
	knee := sk[LeftKnee]
	ankle := sk[LeftAnkle]

	kneeAngle := jointAngle(hip, knee, ankle)

	// Deviation of the torso from vertical: the angle at the hip between
	// a synthetic point directly above it and the shoulder.
	above := Keypoint{X: hip.X, Y: hip.Y - spineRefOffset}
	spineAngle := jointAngle(above, hip, shoulder)

	headDown := nose.Y > hip.Y ||
		(nose.Y > shoulder.Y && spineAngle > headDownSpineMin)

	switch {
	case headDown && kneeAngle < prostrationKneeMax:
		return result(Prostration, sk)
	case !headDown && kneeAngle < sittingKneeMax:
		return result(Sitting, sk)
	case spineAngle > bowingSpineMin && kneeAngle > bowingKneeMin:
		return result(Bowing, sk)
	case spineAngle < standingSpineMax && kneeAngle > standingKneeMin:
		return result(Standing, sk)
	default:
		return result(Unknown, sk)
	}
}

// jointAngle is the standard three-point angle at p2, folded into
// [0,180] degrees.
func jointAngle(p1, p2, p3 Keypoint) float64 {
	rad := math.Atan2(float64(p3.Y-p2.Y), float64(p3.X-p2.X)) -
		math.Atan2(float64(p1.Y-p2.Y), float64(p1.X-p2.X))
	deg := rad * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	if deg > 180 {
		deg = 360 - deg
	}
	return deg
}

func result(l Label, sk Skeleton) Result {
	return Result{Label: l, Color: l.DisplayColor(), Skeleton: sk}
}
