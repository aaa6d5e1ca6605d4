// Package posesensor implements a real-time prayer-posture detection
// pipeline over camera frames.
//
// # Philosophy
//
// "Drop frames, never queue. Latency > Completeness."
//
// A posture classifier is only useful live: a stale frame classified late
// is worth less than a fresh frame classified now. The pipeline therefore
// runs strict single-flight admission: while one frame is being processed,
// arriving frames are dropped immediately, and the next admission window
// opens the moment processing completes.
//
// # Pipeline
//
// One admitted frame flows through four stages as a single unit of work on
// a dedicated goroutine:
//
//	camera frame -> admission -> conversion -> inference -> decode -> classify
//	                (scheduler)  (YUV->RGB     (model)     (best    (angle
//	                              tensor)                  anchor)   rules)
//
//   - Conversion resamples a planar YUV420 frame into a fixed-size upright
//     RGB float tensor, compensating for sensor rotation.
//   - Inference is an opaque numeric function behind a narrow contract
//     (tensor in, tensor out); the runtime binding is supplied by the
//     caller.
//   - Decoding scans the output tensor for the best-scoring anchor and
//     reads 17 normalized anatomical keypoints.
//   - Classification computes knee and spine angles and maps them through
//     an ordered rule list to one of the prayer postures: standing,
//     bowing, sitting, prostration.
//
// # Design Principles
//
//  1. Non-blocking Analyze: frames are admitted or dropped in microseconds
//  2. Single-flight: at most one frame in flight, no queue to go stale
//  3. Zero allocation steady state: the input tensor is an arena reused
//     across frames
//  4. Soft failure: a bad frame, a failed inference, or a malformed output
//     tensor costs one dropped frame, never the pipeline
//  5. Operational stats: drop and latency counters for health monitoring
//
// # Basic Usage
//
//	p, err := posesensor.New(posesensor.Options{
//	    ModelPath: "models/pose.onnx",
//	    Factory:   myRuntimeFactory,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	p.Initialize(ctx)
//	<-p.Ready()
//	if !p.IsReady() {
//	    log.Fatal("model failed to load")
//	}
//
//	go func() {
//	    for res := range p.Results() {
//	        fmt.Println(res.Label, res.Keypoints)
//	    }
//	}()
//
//	for frame := range camera.Frames() {
//	    p.Analyze(frame) // non-blocking; false means dropped
//	}
package posesensor
