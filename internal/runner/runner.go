// Package runner owns the session lifecycle: transport connection, engine
// initialization, the processing loop and clean shutdown on every exit path.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/RichFesler/rpi-offline-voice-control/internal/audio"
	"github.com/RichFesler/rpi-offline-voice-control/internal/broker"
	"github.com/RichFesler/rpi-offline-voice-control/internal/config"
	"github.com/RichFesler/rpi-offline-voice-control/internal/recognizer"
	"github.com/RichFesler/rpi-offline-voice-control/internal/refine"
	"github.com/RichFesler/rpi-offline-voice-control/internal/session"
	"github.com/RichFesler/rpi-offline-voice-control/internal/sink"
)

type State string

const (
	Created    State = "created"
	Connecting State = "connecting"
	Running    State = "running"
	Draining   State = "draining"
	Closed     State = "closed"
)

// EngineFactory creates the speech engine. Replaced in tests.
type EngineFactory func(modelPath string, sampleRate int) (recognizer.Engine, func(), error)

// ConnectFunc establishes the broker connection. Replaced in tests.
type ConnectFunc func(broker.Config) (broker.Connection, error)

// Runner drives exactly one transcription session over one input stream.
type Runner struct {
	EngineFactory EngineFactory
	Connect       ConnectFunc
	ConsoleOut    io.Writer

	cfg    *config.Config
	logger *log.Logger
	state  State
	stats  session.Stats
}

// New wires a runner for cfg. The engine factory is injected so nothing in
// this package links against the speech engine's native code.
func New(cfg *config.Config, engineFactory EngineFactory) *Runner {
	return &Runner{
		EngineFactory: engineFactory,
		Connect:       broker.Connect,
		ConsoleOut:    os.Stdout,
		cfg:           cfg,
		logger:        log.WithPrefix("runner"),
		state:         Created,
	}
}

func (r *Runner) State() State {
	return r.state
}

// Stats returns the finished session's counters. Valid once Run returned.
func (r *Runner) Stats() session.Stats {
	return r.stats
}

// Run processes the input stream to exhaustion or cancellation. Startup
// failures (broker, engine, refiner) and mid-session read errors are
// returned; everything else is absorbed as observability signals.
// Cancellation is cooperative: the in-flight step always completes.
func (r *Runner) Run(ctx context.Context, in io.Reader) error {
	r.state = Connecting

	var sinks []sink.Sink
	if r.cfg.Console.Enabled {
		sinks = append(sinks, sink.NewConsole(r.ConsoleOut))
	}

	var queue *broker.QueuedPublisher
	if r.cfg.Broker.Enabled {
		conn, err := r.Connect(r.cfg.ToBrokerConfig())
		if err != nil {
			r.state = Closed
			return fmt.Errorf("connect broker: %w", err)
		}
		defer conn.Disconnect()

		queue = broker.NewQueuedPublisher(conn, r.cfg.Broker.QueueSize,
			r.cfg.Broker.FinalTopic, r.cfg.Broker.PublishTimeout)
		sinks = append(sinks, sink.NewPublish(queue, r.cfg.Broker.FinalTopic, r.cfg.Broker.PartialTopic))
	}

	engine, release, err := r.EngineFactory(r.cfg.Model.Path, r.cfg.Audio.SampleRate)
	if err != nil {
		r.state = Closed
		return fmt.Errorf("initialize recognizer: %w", err)
	}
	defer release()

	sess := session.New(
		audio.NewChunkReader(in, r.cfg.Audio.ChunkSize),
		recognizer.NewAdapter(engine),
		sinks...,
	)

	if r.cfg.Refine.Enabled {
		refiner, err := refine.NewRefiner(r.cfg.ToRefineConfig())
		if err != nil {
			r.state = Closed
			return fmt.Errorf("initialize refiner: %w", err)
		}
		sess.UseRefiner(refiner)
	}

	if err := sess.Start(); err != nil {
		r.state = Closed
		return err
	}

	r.state = Running
	r.logger.Info("transcribing",
		"sample_rate", r.cfg.Audio.SampleRate,
		"chunk_size", r.cfg.Audio.ChunkSize,
		"model", r.cfg.Model.Path,
	)

	var runErr error
	for {
		if ctx.Err() != nil {
			r.logger.Info("stop requested, draining")
			break
		}
		outcome, err := sess.ProcessOne(ctx)
		if err != nil {
			runErr = fmt.Errorf("session failed: %w", err)
			break
		}
		if outcome == session.Done {
			break
		}
	}

	r.state = Draining
	sess.Finish()
	if queue != nil {
		queue.Close()
		r.logger.Info("publish queue drained",
			"dropped_partials", queue.DroppedPartials(),
			"dropped_finals", queue.DroppedFinals(),
			"delivery_errors", queue.DeliveryErrors(),
		)
	}

	r.stats = sess.Stats()
	r.state = Closed
	return runErr
}
