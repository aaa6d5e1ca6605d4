// Package engine defines the narrow contract between the pose pipeline and
// the neural-network runtime that executes the model.
//
// The runtime itself is an external collaborator (an accelerator SDK, an
// ONNX session, a subprocess). This package specifies only what the pipeline
// needs from it: load a model, run a tensor in, get a tensor out, release.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrModelNotFound indicates the model asset is absent at the configured
// path. This is a detectable, non-fatal condition: the pipeline stays
// not-ready and reports it, rather than crashing.
var ErrModelNotFound = errors.New("model file not found")

// OutputShape describes the fixed output tensor layout of the pose model:
// Channels x Anchors float32 values, row-major by channel.
//
// Channel 4 holds the per-anchor confidence score; channels 5..(5+3*17-1)
// hold 17 keypoints as (x, y, visibility) triples.
type OutputShape struct {
	Channels int
	Anchors  int
}

// DefaultOutputShape is the contract of the reference pose model.
var DefaultOutputShape = OutputShape{Channels: 56, Anchors: 8400}

// Len returns the expected element count of an output tensor.
func (s OutputShape) Len() int { return s.Channels * s.Anchors }

// Validate checks the shape is usable by the keypoint decoder.
func (s OutputShape) Validate() error {
	if s.Channels < 6 {
		return fmt.Errorf("output shape needs at least 6 channels, got %d", s.Channels)
	}
	if s.Anchors <= 0 {
		return fmt.Errorf("output shape needs at least 1 anchor, got %d", s.Anchors)
	}
	return nil
}

// Engine is an opaque numeric function: input tensor in, output tensor out.
//
// Implementations must be safe for sequential use from a single goroutine;
// the pipeline never runs two inferences concurrently.
type Engine interface {
	// Infer runs one inference. The input slice is borrowed for the
	// duration of the call only; the returned slice is owned by the
	// engine and valid until the next Infer call.
	Infer(ctx context.Context, input []float32) ([]float32, error)

	// Close releases the engine resource. Called exactly once.
	Close() error
}

// Factory constructs an Engine from a model asset path. Real deployments
// bind their runtime here; tests and the simulator use StubFactory.
type Factory func(modelPath string) (Engine, error)

// CheckModel verifies the model asset exists and is a regular file.
func CheckModel(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return fmt.Errorf("model file unreadable: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrModelNotFound, path)
	}
	return nil
}
