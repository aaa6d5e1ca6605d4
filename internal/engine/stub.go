package engine

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrStubClosed is returned by a stub engine used after Close.
var ErrStubClosed = errors.New("stub engine closed")

// Stub is a deterministic Engine that returns a fixed output tensor on
// every inference. It stands in for the real runtime in tests and in the
// simulator daemon.
type Stub struct {
	output []float32
	calls  atomic.Uint64
	closed atomic.Bool
}

// NewStub creates a stub engine returning the given output tensor.
func NewStub(output []float32) *Stub {
	return &Stub{output: output}
}

// StubFactory returns a Factory producing stubs with the given output.
func StubFactory(output []float32) Factory {
	return func(string) (Engine, error) {
		return NewStub(output), nil
	}
}

// Infer implements Engine. The input tensor is ignored.
func (s *Stub) Infer(ctx context.Context, input []float32) ([]float32, error) {
	if s.closed.Load() {
		return nil, ErrStubClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.calls.Add(1)
	return s.output, nil
}

// Close implements Engine.
func (s *Stub) Close() error {
	s.closed.Store(true)
	return nil
}

// Calls returns how many inferences ran. Used by admission tests.
func (s *Stub) Calls() uint64 {
	return s.calls.Load()
}

// OutputBuilder assembles a synthetic output tensor with known anchor
// scores and keypoint values, for tests and the simulator.
type OutputBuilder struct {
	shape OutputShape
	data  []float32
}

// NewOutputBuilder creates a zeroed output tensor of the given shape.
func NewOutputBuilder(shape OutputShape) *OutputBuilder {
	return &OutputBuilder{
		shape: shape,
		data:  make([]float32, shape.Len()),
	}
}

// SetScore sets the confidence score of one anchor.
func (b *OutputBuilder) SetScore(anchor int, score float32) *OutputBuilder {
	b.data[4*b.shape.Anchors+anchor] = score
	return b
}

// SetKeypoint sets keypoint k of one anchor to (x, y).
func (b *OutputBuilder) SetKeypoint(anchor, k int, x, y float32) *OutputBuilder {
	b.data[(5+3*k)*b.shape.Anchors+anchor] = x
	b.data[(5+3*k+1)*b.shape.Anchors+anchor] = y
	return b
}

// Build returns the assembled tensor.
func (b *OutputBuilder) Build() []float32 {
	return b.data
}
