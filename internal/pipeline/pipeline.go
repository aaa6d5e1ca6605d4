// Package pipeline wires the per-frame pose-inference path: admission
// control, conversion, inference, keypoint decoding, and posture
// classification, executed by a single worker goroutine.
//
// Philosophy, inherited from the capture side: "Drop frames, never queue.
// Latency > Completeness." A frame arriving while the model runs is worth
// less than the next fresh one, so it is dropped at admission.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sajadah/posesensor/internal/engine"
	"github.com/sajadah/posesensor/internal/imaging"
	"github.com/sajadah/posesensor/internal/posture"
)

// ErrAlreadyInitialized is returned by a second Initialize call.
var ErrAlreadyInitialized = errors.New("pipeline already initialized")

// Options configures a pipeline instance.
type Options struct {
	// ModelPath is the pose model asset. Its absence is non-fatal: the
	// pipeline stays NotReady and reports it.
	ModelPath string

	// InputSize is the model input side length (default 640).
	InputSize int

	// OutputShape is the model output contract (default 56x8400).
	OutputShape engine.OutputShape

	// Factory binds the inference runtime. Required.
	Factory engine.Factory

	// ResultBuffer is the capacity of the results channel (default 8).
	// Delivery is non-blocking: a full buffer drops the oldest pending
	// read opportunity, never the worker.
	ResultBuffer int
}

// Result is the outcome of one classified frame. Immutable once delivered.
type Result struct {
	Label     posture.Label    `json:"label"`
	Color     posture.Color    `json:"color"`
	Keypoints posture.Skeleton `json:"keypoints"`

	Seq       uint64    `json:"seq"`
	TraceID   string    `json:"trace_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	LatencyMS float64   `json:"latency_ms"`
}

// Pipeline runs the pose-inference path over camera frames.
//
// Goroutine topology:
//   - 1 transient: model loader (spawned by Initialize)
//   - 1 fixed: worker (spawned after a successful load, joined by Close)
//
// Analyze is non-blocking and safe for concurrent use; at most one frame
// is ever in flight.
type Pipeline struct {
	opts Options

	conv    *imaging.Converter
	input   *imaging.InputTensor
	decoder *posture.Decoder

	sched scheduler

	// Single-slot frame mailbox between Analyze and the worker. The Busy
	// gate guarantees the slot is empty whenever a frame is admitted.
	mu      sync.Mutex
	cond    *sync.Cond
	pending *imaging.Frame
	closed  bool
	eng     engine.Engine

	ctx context.Context

	ready   chan struct{}
	readyOK atomic.Bool

	results chan Result

	startedMu sync.Mutex
	started   bool
	closeOnce sync.Once
	closeErr  error
	wg        sync.WaitGroup

	// Counters, read lock-free by Stats.
	admitted        atomic.Uint64
	droppedBusy     atomic.Uint64
	droppedNotReady atomic.Uint64
	processed       atomic.Uint64
	failed          atomic.Uint64
	resultsDropped  atomic.Uint64
	lastLatencyUS   atomic.Int64
	totalLatencyUS  atomic.Int64
}

// New creates a pipeline. The input tensor arena is allocated here, once,
// and reused for every frame.
func New(opts Options) (*Pipeline, error) {
	if opts.Factory == nil {
		return nil, errors.New("engine factory is required")
	}
	if opts.InputSize <= 0 {
		opts.InputSize = imaging.DefaultInputSize
	}
	if opts.OutputShape == (engine.OutputShape{}) {
		opts.OutputShape = engine.DefaultOutputShape
	}
	if err := opts.OutputShape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid output shape: %w", err)
	}
	if opts.ResultBuffer <= 0 {
		opts.ResultBuffer = 8
	}

	p := &Pipeline{
		opts:    opts,
		conv:    imaging.NewConverter(opts.InputSize),
		input:   imaging.NewInputTensor(opts.InputSize),
		decoder: posture.NewDecoder(opts.OutputShape, opts.InputSize),
		ready:   make(chan struct{}),
		results: make(chan Result, opts.ResultBuffer),
	}
	p.cond = sync.NewCond(&p.mu)
	return p, nil
}

// Initialize loads the model on a background goroutine and, on success,
// starts the worker and flips the scheduler to Ready.
//
// Load failure is terminal for this instance: the pipeline stays NotReady
// until a new instance is constructed. Ready() is signalled either way so
// the caller can react to both outcomes.
func (p *Pipeline) Initialize(ctx context.Context) error {
	p.startedMu.Lock()
	defer p.startedMu.Unlock()
	if p.started {
		return ErrAlreadyInitialized
	}
	p.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	p.ctx = ctx

	p.wg.Add(1)
	go p.load()
	return nil
}

// load runs on a background goroutine so model loading never blocks frame
// delivery.
func (p *Pipeline) load() {
	defer p.wg.Done()
	defer close(p.ready)

	if err := engine.CheckModel(p.opts.ModelPath); err != nil {
		slog.Error("model asset unavailable, pipeline stays not-ready",
			"path", p.opts.ModelPath,
			"error", err,
		)
		return
	}

	eng, err := p.opts.Factory(p.opts.ModelPath)
	if err != nil {
		slog.Error("inference engine construction failed, pipeline stays not-ready",
			"path", p.opts.ModelPath,
			"error", err,
		)
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = eng.Close()
		return
	}
	p.eng = eng
	p.mu.Unlock()

	p.sched.markReady()
	p.readyOK.Store(true)

	p.wg.Add(1)
	go p.worker()

	slog.Info("pose pipeline ready",
		"model", p.opts.ModelPath,
		"input_size", p.opts.InputSize,
	)
}

// Ready is signalled (closed) once the load attempt completes, whether it
// succeeded or not. Check IsReady for the outcome.
func (p *Pipeline) Ready() <-chan struct{} { return p.ready }

// IsReady reports whether the model loaded and frames can be admitted.
func (p *Pipeline) IsReady() bool { return p.readyOK.Load() }

// Analyze offers a frame to the pipeline. Non-blocking: the frame is
// either admitted for processing or dropped immediately, and the return
// value says which.
//
// The frame is borrowed until processing completes; the producer must not
// recycle its planes before the corresponding Result is delivered.
func (p *Pipeline) Analyze(f *imaging.Frame) bool {
	ok, observed := p.sched.admit()
	if !ok {
		if observed == NotReady {
			p.droppedNotReady.Add(1)
		} else {
			p.droppedBusy.Add(1)
		}
		return false
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.sched.complete()
		p.droppedNotReady.Add(1)
		return false
	}
	p.pending = f
	p.cond.Signal()
	p.mu.Unlock()

	p.admitted.Add(1)
	return true
}

// Results returns the delivery channel. Closed by Close after the worker
// has drained.
func (p *Pipeline) Results() <-chan Result { return p.results }

// worker is the single processing goroutine: conversion, inference,
// decoding, and classification run here as one unit of work per frame.
func (p *Pipeline) worker() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for p.pending == nil && !p.closed {
			p.cond.Wait()
		}
		if p.pending == nil {
			p.mu.Unlock()
			return
		}
		frame := p.pending
		p.pending = nil
		eng := p.eng
		p.mu.Unlock()

		p.process(frame, eng)
	}
}

// process handles one admitted frame. The Busy flag is cleared on every
// exit path, including panics, so a failure never wedges admission shut.
func (p *Pipeline) process(frame *imaging.Frame, eng engine.Engine) {
	start := time.Now()
	defer p.sched.complete()
	defer func() {
		if r := recover(); r != nil {
			p.failed.Add(1)
			slog.Error("frame processing panicked, frame dropped",
				"seq", frame.Seq,
				"panic", r,
			)
		}
	}()

	if err := p.conv.Convert(frame, p.input); err != nil {
		p.failed.Add(1)
		slog.Warn("frame conversion failed, frame dropped",
			"seq", frame.Seq,
			"error", err,
		)
		return
	}

	raw, err := eng.Infer(p.ctx, p.input.Data)
	if err != nil {
		p.failed.Add(1)
		slog.Warn("inference failed, frame dropped",
			"seq", frame.Seq,
			"error", err,
		)
		return
	}
	if len(raw) != p.opts.OutputShape.Len() {
		p.failed.Add(1)
		slog.Warn("output tensor shape mismatch, frame dropped",
			"seq", frame.Seq,
			"got", len(raw),
			"want", p.opts.OutputShape.Len(),
		)
		return
	}

	// An empty decode flows into Classify as-is and comes back Waiting;
	// the classifier owns all labelling decisions.
	skeleton, _ := p.decoder.Decode(raw)
	classified := posture.Classify(skeleton)

	latency := time.Since(start)
	p.lastLatencyUS.Store(latency.Microseconds())
	p.totalLatencyUS.Add(latency.Microseconds())
	p.processed.Add(1)

	res := Result{
		Label:     classified.Label,
		Color:     classified.Color,
		Keypoints: classified.Skeleton,
		Seq:       frame.Seq,
		TraceID:   frame.TraceID,
		Timestamp: frame.Timestamp,
		LatencyMS: float64(latency.Microseconds()) / 1000,
	}

	// Non-blocking delivery: a consumer that stopped reading costs us a
	// counter increment, not a stalled worker.
	select {
	case p.results <- res:
	default:
		p.resultsDropped.Add(1)
	}
}

// Close stops admission, waits for in-flight work, then releases the
// engine exactly once. Idempotent.
func (p *Pipeline) Close() error {
	p.closeOnce.Do(func() {
		p.sched.halt()

		p.mu.Lock()
		p.closed = true
		p.cond.Broadcast()
		p.mu.Unlock()

		p.wg.Wait()

		p.mu.Lock()
		eng := p.eng
		p.eng = nil
		p.mu.Unlock()

		if eng != nil {
			p.closeErr = eng.Close()
		}
		close(p.results)

		slog.Info("pose pipeline closed",
			"processed", p.processed.Load(),
			"failed", p.failed.Load(),
			"dropped_busy", p.droppedBusy.Load(),
			"dropped_not_ready", p.droppedNotReady.Load(),
		)
	})
	return p.closeErr
}
