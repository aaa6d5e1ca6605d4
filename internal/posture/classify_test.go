package posture

import (
	"math"
	"testing"
)

// testSkeleton builds a complete 17-point skeleton with benign defaults,
// then applies overrides for the landmarks a case cares about.
func testSkeleton(overrides map[int]Keypoint) Skeleton {
	sk := make(Skeleton, NumKeypoints)
	for i := range sk {
		sk[i] = Keypoint{X: 0.4, Y: 0.4}
	}
	for idx, kp := range overrides {
		sk[idx] = kp
	}
	return sk
}

func TestJointAngle(t *testing.T) {
	tests := []struct {
		name       string
		p1, p2, p3 Keypoint
		want       float64
	}{
		{
			name: "straight line",
			p1:   Keypoint{0.5, 0.3}, p2: Keypoint{0.5, 0.5}, p3: Keypoint{0.5, 0.7},
			want: 180,
		},
		{
			name: "right angle",
			p1:   Keypoint{0.5, 0.3}, p2: Keypoint{0.5, 0.5}, p3: Keypoint{0.7, 0.5},
			want: 90,
		},
		{
			name: "folded reflex angle",
			p1:   Keypoint{0.7, 0.5}, p2: Keypoint{0.5, 0.5}, p3: Keypoint{0.5, 0.3},
			want: 90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := jointAngle(tt.p1, tt.p2, tt.p3)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("jointAngle() = %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

func TestClassifyPostures(t *testing.T) {
	// Geometry is constructed per case so the relevant joint angles are
	// known: the knee angle is set by placing the ankle on a circle
	// around the knee, the spine angle by placing the shoulder relative
	// to the vertical through the hip.
	tests := []struct {
		name      string
		overrides map[int]Keypoint
		want      Label
	}{
		{
			name: "standing upright",
			overrides: map[int]Keypoint{
				Nose:         {0.5, 0.1},
				LeftShoulder: {0.5, 0.2},
				LeftHip:      {0.5, 0.5},
				LeftKnee:     {0.5, 0.7},
				LeftAnkle:    {0.5, 0.9},
			},
			want: Standing,
		},
		{
			name: "bowing with straight legs",
			overrides: map[int]Keypoint{
				Nose:         {0.9, 0.45},
				LeftShoulder: {0.8, 0.5},
				LeftHip:      {0.5, 0.5},
				LeftKnee:     {0.5, 0.7},
				LeftAnkle:    {0.5, 0.9},
			},
			want: Bowing,
		},
		{
			// Knee at ~100 degrees, nose below the hip: rule 1.
			name: "prostration head down knee 100",
			overrides: map[int]Keypoint{
				Nose:         {0.5, 0.6},
				LeftShoulder: {0.45, 0.35},
				LeftHip:      {0.5, 0.3},
				LeftKnee:     {0.5, 0.5},
				LeftAnkle:    {0.697, 0.535},
			},
			want: Prostration,
		},
		{
			// Knee at ~80 degrees, head up: rule 2.
			name: "sitting knee 80",
			overrides: map[int]Keypoint{
				Nose:         {0.5, 0.2},
				LeftShoulder: {0.5, 0.25},
				LeftHip:      {0.5, 0.3},
				LeftKnee:     {0.5, 0.5},
				LeftAnkle:    {0.697, 0.465},
			},
			want: Sitting,
		},
		{
			// Knee ~100 with head up satisfies no rule.
			name: "unknown intermediate pose",
			overrides: map[int]Keypoint{
				Nose:         {0.5, 0.2},
				LeftShoulder: {0.45, 0.35},
				LeftHip:      {0.5, 0.3},
				LeftKnee:     {0.5, 0.5},
				LeftAnkle:    {0.697, 0.535},
			},
			want: Unknown,
		},
		{
			// Spine ~37, knee ~140: Bowing and Standing preconditions
			// both hold; rule order resolves to Bowing.
			name: "bowing standing overlap resolved by order",
			overrides: map[int]Keypoint{
				Nose:         {0.7, 0.2},
				LeftShoulder: {0.68, 0.26},
				LeftHip:      {0.5, 0.5},
				LeftKnee:     {0.5, 0.7},
				LeftAnkle:    {0.6286, 0.853},
			},
			want: Bowing,
		},
		{
			name: "zero shoulder means no person",
			overrides: map[int]Keypoint{
				Nose:         {0.5, 0.9},
				LeftShoulder: {0, 0},
				LeftHip:      {0.5, 0.5},
				LeftKnee:     {0.5, 0.7},
				LeftAnkle:    {0.5, 0.9},
			},
			want: NoPerson,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(testSkeleton(tt.overrides))
			if res.Label != tt.want {
				t.Errorf("Classify() = %s, want %s", res.Label, tt.want)
			}
			if res.Color != tt.want.DisplayColor() {
				t.Errorf("color = %#x, want %#x", res.Color, tt.want.DisplayColor())
			}
		})
	}
}

func TestClassifyIncompleteSkeleton(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"sixteen points", 16},
		{"empty", 0},
		{"eighteen points", 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sk := make(Skeleton, tt.n)
			for i := range sk {
				sk[i] = Keypoint{X: 0.5, Y: 0.5}
			}
			if res := Classify(sk); res.Label != Waiting {
				t.Errorf("Classify() = %s, want %s", res.Label, Waiting)
			}
		})
	}
}

// TestClassifyDeterministic verifies the same skeleton always yields the
// same result (pure function, no hidden state).
func TestClassifyDeterministic(t *testing.T) {
	sk := testSkeleton(map[int]Keypoint{
		Nose:         {0.5, 0.6},
		LeftShoulder: {0.45, 0.35},
		LeftHip:      {0.5, 0.3},
		LeftKnee:     {0.5, 0.5},
		LeftAnkle:    {0.697, 0.535},
	})
	first := Classify(sk)
	for i := 0; i < 10; i++ {
		if got := Classify(sk); got.Label != first.Label {
			t.Fatalf("run %d: label %s, want %s", i, got.Label, first.Label)
		}
	}
}
