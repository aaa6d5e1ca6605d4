// Package stream provides frame sources for the pose pipeline.
//
// The real camera session lives outside this module; what ships here is a
// synthetic planar-frame generator used by the simulator daemon and by
// integration tests.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sajadah/posesensor/internal/imaging"
)

// Stats contains frame source statistics.
type Stats struct {
	FramesEmitted uint64
	FramesDropped uint64
	FPSTarget     int
	FPSReal       float64
	IsRunning     bool
}

// Simulator generates synthetic YUV420 frames at a target FPS.
//
// Frames carry a bright luma block that wanders across the image, so the
// converter has structure to resample. Emission is non-blocking: if the
// consumer's channel is full the frame is dropped and counted, never
// queued.
type Simulator struct {
	width    int
	height   int
	fps      int
	rotation imaging.Rotation

	framesCh chan *imaging.Frame
	stopCh   chan struct{}
	wg       sync.WaitGroup

	mu            sync.Mutex
	seq           uint64
	framesEmitted uint64
	framesDropped uint64
	isRunning     bool
	startTime     time.Time
}

// NewSimulator creates a frame simulator.
func NewSimulator(width, height, fps int, rotation imaging.Rotation) *Simulator {
	return &Simulator{
		width:    width,
		height:   height,
		fps:      fps,
		rotation: rotation,
		framesCh: make(chan *imaging.Frame, 2),
		stopCh:   make(chan struct{}),
	}
}

// Start begins generating frames.
func (s *Simulator) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("simulator already running")
	}
	s.isRunning = true
	s.startTime = time.Now()
	s.mu.Unlock()

	slog.Info("frame simulator starting",
		"width", s.width,
		"height", s.height,
		"fps", s.fps,
		"rotation", int(s.rotation),
	)

	s.wg.Add(1)
	go s.generate(ctx)

	return nil
}

// Frames returns the frame channel.
func (s *Simulator) Frames() <-chan *imaging.Frame {
	return s.framesCh
}

// Stop stops the simulator. Idempotent.
func (s *Simulator) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	close(s.framesCh)

	slog.Info("frame simulator stopped",
		"frames_emitted", s.framesEmitted,
		"frames_dropped", s.framesDropped,
	)

	return nil
}

// Stats returns source statistics.
func (s *Simulator) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fpsReal float64
	if s.framesEmitted > 0 {
		if elapsed := time.Since(s.startTime).Seconds(); elapsed > 0 {
			fpsReal = float64(s.framesEmitted) / elapsed
		}
	}

	return Stats{
		FramesEmitted: s.framesEmitted,
		FramesDropped: s.framesDropped,
		FPSTarget:     s.fps,
		FPSReal:       fpsReal,
		IsRunning:     s.isRunning,
	}
}

func (s *Simulator) generate(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Second / time.Duration(s.fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			frame := s.createFrame()
			select {
			case s.framesCh <- frame:
				s.mu.Lock()
				s.framesEmitted++
				s.mu.Unlock()
			default:
				// Consumer behind: drop, never queue.
				s.mu.Lock()
				s.framesDropped++
				s.mu.Unlock()
			}
		}
	}
}

// createFrame builds a planar YUV420 frame with a bright block whose
// position advances with the sequence number.
func (s *Simulator) createFrame() *imaging.Frame {
	s.mu.Lock()
	seq := s.seq
	s.seq++
	s.mu.Unlock()

	w, h := s.width, s.height
	cw, ch := (w+1)/2, (h+1)/2

	y := make([]byte, w*h)
	u := make([]byte, cw*ch)
	v := make([]byte, cw*ch)
	for i := range y {
		y[i] = 32 // dim background
	}
	for i := range u {
		u[i] = 128
		v[i] = 128
	}

	// 1/8-sized bright block wandering horizontally.
	bw, bh := w/8, h/8
	bx := int(seq*7) % (w - bw)
	by := h / 3
	for row := by; row < by+bh; row++ {
		for col := bx; col < bx+bw; col++ {
			y[row*w+col] = 235
		}
	}

	return &imaging.Frame{
		Width:     w,
		Height:    h,
		Rotation:  s.rotation,
		Y:         imaging.Plane{Data: y, RowStride: w, PixelStride: 1},
		U:         imaging.Plane{Data: u, RowStride: cw, PixelStride: 1},
		V:         imaging.Plane{Data: v, RowStride: cw, PixelStride: 1},
		Seq:       seq,
		Timestamp: time.Now(),
		TraceID:   uuid.New().String(),
	}
}
