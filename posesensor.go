package posesensor

import (
	"context"

	"github.com/sajadah/posesensor/internal/engine"
	"github.com/sajadah/posesensor/internal/imaging"
	"github.com/sajadah/posesensor/internal/pipeline"
	"github.com/sajadah/posesensor/internal/posture"
)

// Types are re-exported from internal packages to keep the public surface
// in one place. See the internal packages for full documentation.
type (
	// Frame is a borrowed planar YUV420 camera frame.
	Frame = imaging.Frame
	// Plane is one component plane of a Frame.
	Plane = imaging.Plane
	// Rotation is the sensor orientation of a frame.
	Rotation = imaging.Rotation

	// Keypoint is one anatomical landmark in the unit square.
	Keypoint = posture.Keypoint
	// Skeleton is the ordered 17-keypoint set for one person.
	Skeleton = posture.Skeleton
	// Label is the discrete posture classification.
	Label = posture.Label

	// Engine is the inference runtime contract.
	Engine = engine.Engine
	// Factory binds an inference runtime to a model path.
	Factory = engine.Factory
	// OutputShape is the model output tensor contract.
	OutputShape = engine.OutputShape

	// Options configures a pipeline.
	Options = pipeline.Options
	// Result is one classified frame.
	Result = pipeline.Result
	// Stats is an operational counter snapshot.
	Stats = pipeline.Stats
)

// Rotation values.
const (
	Rotate0   = imaging.Rotate0
	Rotate90  = imaging.Rotate90
	Rotate180 = imaging.Rotate180
	Rotate270 = imaging.Rotate270
)

// Posture labels.
const (
	Prostration = posture.Prostration
	Sitting     = posture.Sitting
	Bowing      = posture.Bowing
	Standing    = posture.Standing
	Unknown     = posture.Unknown
	NoPerson    = posture.NoPerson
	Waiting     = posture.Waiting
)

// Pipeline is the public interface of the posture pipeline.
//
// Lifecycle: New() -> Initialize() -> Analyze()/Results() -> Close().
// All methods are safe for concurrent use.
type Pipeline interface {
	// Initialize loads the model on a background goroutine. Load failure
	// is terminal for this instance; Ready() is signalled either way.
	Initialize(ctx context.Context) error

	// Ready is closed once the load attempt completed, success or not.
	Ready() <-chan struct{}

	// IsReady reports whether frames can be admitted.
	IsReady() bool

	// Analyze offers a frame: admitted for processing or dropped
	// immediately. Non-blocking.
	Analyze(frame *Frame) bool

	// Results delivers classified frames. Closed by Close.
	Results() <-chan Result

	// Stats returns operational counters (non-blocking snapshot).
	Stats() Stats

	// Close stops admission, waits for in-flight work and releases the
	// inference engine exactly once. Idempotent.
	Close() error
}

// New creates a posture pipeline. See pipeline.Options for defaults.
func New(opts Options) (Pipeline, error) {
	return pipeline.New(opts)
}

// StubFactory returns an engine factory producing a deterministic stub
// that yields the given output tensor. For tests and simulation.
func StubFactory(output []float32) Factory {
	return engine.StubFactory(output)
}
