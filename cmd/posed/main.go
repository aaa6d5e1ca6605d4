// Command posed runs the posture pipeline against a synthetic frame source
// and publishes results over MQTT.
//
// The inference runtime binding is deployment-specific; posed wires a
// deterministic stub engine so the whole pipeline, emitter and health
// surface can run end to end on any machine. Swap the factory to bind a
// real accelerator.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	posesensor "github.com/sajadah/posesensor"
	"github.com/sajadah/posesensor/internal/config"
	"github.com/sajadah/posesensor/internal/emitter"
	"github.com/sajadah/posesensor/internal/engine"
	"github.com/sajadah/posesensor/internal/posture"
	"github.com/sajadah/posesensor/internal/stream"
)

const defaultConfigPath = "config/posed.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting posed",
		"config", *configPath,
		"debug", *debug,
	)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- run(ctx, cfg)
	}()

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		cancel()
		select {
		case <-errChan:
		case <-time.After(time.Duration(cfg.ShutdownTimeoutS) * time.Second):
			slog.Warn("shutdown timeout exceeded, exiting")
		}
	case err := <-errChan:
		if err != nil {
			slog.Error("service error", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("posed stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	shape := posesensor.OutputShape{
		Channels: cfg.Model.OutChannels,
		Anchors:  cfg.Model.OutAnchors,
	}

	pipe, err := posesensor.New(posesensor.Options{
		ModelPath:   cfg.Model.Path,
		InputSize:   cfg.Model.InputSize,
		OutputShape: shape,
		Factory:     posesensor.StubFactory(demoOutput(shape)),
	})
	if err != nil {
		return err
	}
	defer pipe.Close()

	if err := pipe.Initialize(ctx); err != nil {
		return err
	}

	select {
	case <-pipe.Ready():
	case <-ctx.Done():
		return ctx.Err()
	}
	if !pipe.IsReady() {
		// Asset errors are non-fatal for the pipeline but there is
		// nothing for the daemon to do without a model.
		slog.Error("pipeline not ready, model load failed", "model", cfg.Model.Path)
		return nil
	}

	em := emitter.NewMQTTEmitter(cfg)
	if err := em.Connect(ctx); err != nil {
		return err
	}
	defer em.Close()

	sim := stream.NewSimulator(
		cfg.Stream.Width,
		cfg.Stream.Height,
		cfg.Stream.FPS,
		posesensor.Rotation(cfg.Camera.Rotation),
	)
	if err := sim.Start(ctx); err != nil {
		return err
	}
	defer sim.Stop()

	started := time.Now()
	healthTicker := time.NewTicker(30 * time.Second)
	defer healthTicker.Stop()

	statsInterval := 5 * time.Second
	lastStats := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil

		case frame, ok := <-sim.Frames():
			if !ok {
				return nil
			}
			pipe.Analyze(frame)

			if time.Since(lastStats) >= statsInterval {
				st := pipe.Stats()
				slog.Debug("pipeline stats",
					"state", st.State,
					"admitted", st.FramesAdmitted,
					"dropped_busy", st.FramesDroppedBusy,
					"processed", st.FramesProcessed,
					"avg_latency_ms", st.AvgLatencyMS,
				)
				lastStats = time.Now()
			}

		case res, ok := <-pipe.Results():
			if !ok {
				return nil
			}
			slog.Debug("posture classified",
				"label", string(res.Label),
				"seq", res.Seq,
				"latency_ms", res.LatencyMS,
			)
			if err := em.PublishPosture(res); err != nil {
				slog.Warn("failed to publish posture", "error", err)
			}

		case <-healthTicker.C:
			snap := emitter.HealthSnapshot{
				InstanceID:    cfg.InstanceID,
				UptimeSeconds: int64(time.Since(started).Seconds()),
				Pipeline:      pipe.Stats(),
				MQTTConnected: em.IsConnected(),
				Timestamp:     time.Now(),
			}
			if err := em.PublishHealth(snap); err != nil {
				slog.Warn("failed to publish health", "error", err)
			}
		}
	}
}

// demoOutput builds the stub engine's fixed output: one confident anchor
// with an upright standing skeleton.
func demoOutput(shape posesensor.OutputShape) []float32 {
	return engine.NewOutputBuilder(shape).
		SetScore(0, 0.9).
		SetKeypoint(0, posture.Nose, 0.5, 0.1).
		SetKeypoint(0, posture.LeftEye, 0.48, 0.09).
		SetKeypoint(0, posture.RightEye, 0.52, 0.09).
		SetKeypoint(0, posture.LeftShoulder, 0.45, 0.2).
		SetKeypoint(0, posture.RightShoulder, 0.55, 0.2).
		SetKeypoint(0, posture.LeftHip, 0.46, 0.5).
		SetKeypoint(0, posture.RightHip, 0.54, 0.5).
		SetKeypoint(0, posture.LeftKnee, 0.46, 0.7).
		SetKeypoint(0, posture.RightKnee, 0.54, 0.7).
		SetKeypoint(0, posture.LeftAnkle, 0.46, 0.9).
		SetKeypoint(0, posture.RightAnkle, 0.54, 0.9).
		Build()
}
