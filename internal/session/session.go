// Package session implements the streaming transcription loop: it pulls
// audio chunks, drives the recognizer and applies the emission policy that
// decides which results reach the sinks.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/RichFesler/rpi-offline-voice-control/internal/audio"
	"github.com/RichFesler/rpi-offline-voice-control/internal/recognizer"
	"github.com/RichFesler/rpi-offline-voice-control/internal/refine"
	"github.com/RichFesler/rpi-offline-voice-control/internal/sink"
)

type State string

const (
	Idle      State = "idle"
	Active    State = "active"
	Finishing State = "finishing"
	Closed    State = "closed"
)

var ErrAlreadyStarted = errors.New("session already started")

// Outcome reports what one processing step did.
type Outcome int

const (
	// Continue means the step produced nothing worth acting on.
	Continue Outcome = iota
	// Emitted means a result was delivered to the sinks.
	Emitted
	// Suppressed means the emission policy withheld a result.
	Suppressed
	// Done means the input stream is exhausted.
	Done
)

// Stats are the session's observability counters.
type Stats struct {
	ChunksRead      uint64
	BytesRead       uint64
	PartialsEmitted uint64
	FinalsEmitted   uint64
	Suppressed      uint64
	EngineErrors    uint64
	DeliveryErrors  uint64
	RefineFallbacks uint64
}

// Session is a single-run transcription state machine. It is driven by one
// worker: ProcessOne is never called concurrently.
type Session struct {
	reader  *audio.ChunkReader
	adapter *recognizer.Adapter
	sinks   []sink.Sink
	refiner refine.Refiner
	logger  *log.Logger

	state       State
	lastPartial string
	stats       Stats
}

func New(reader *audio.ChunkReader, adapter *recognizer.Adapter, sinks ...sink.Sink) *Session {
	return &Session{
		reader:  reader,
		adapter: adapter,
		sinks:   sinks,
		logger:  log.WithPrefix("session"),
		state:   Idle,
	}
}

// UseRefiner enables LLM cleanup of final results. Must be set before Start.
func (s *Session) UseRefiner(r refine.Refiner) {
	s.refiner = r
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Stats() Stats {
	stats := s.stats
	stats.EngineErrors = s.adapter.ChunkErrors()
	return stats
}

// Start transitions the session to Active. Calling it twice is a bug.
func (s *Session) Start() error {
	if s.state != Idle {
		return fmt.Errorf("%w (state %s)", ErrAlreadyStarted, s.state)
	}
	s.state = Active
	s.logger.Debug("session active")
	return nil
}

// ProcessOne performs one atomic read→recognize→emit step. A returned error
// is fatal to the session; Done means the input is exhausted. All other
// failures (engine chunk errors, sink delivery errors) are absorbed and
// counted.
func (s *Session) ProcessOne(ctx context.Context) (Outcome, error) {
	if s.state != Active {
		return Continue, fmt.Errorf("session not active (state %s)", s.state)
	}

	chunk, err := s.reader.Next()
	if err == io.EOF {
		s.state = Finishing
		return Done, nil
	}
	if err != nil {
		// still Finishing, not Closed: the caller's Finish must run so
		// sinks are released and the stats line is logged
		s.state = Finishing
		return Continue, err
	}

	s.stats.ChunksRead++
	s.stats.BytesRead += uint64(len(chunk))

	return s.applyEmissionPolicy(ctx, s.adapter.Submit(chunk)), nil
}

// Finish closes the session. No flush of a half-formed partial is
// manufactured: whatever the engine last reported stands.
func (s *Session) Finish() {
	if s.state == Closed {
		return
	}
	s.state = Closed

	for _, snk := range s.sinks {
		if err := snk.Close(); err != nil {
			s.logger.Warn("sink close failed", "err", err)
		}
	}

	stats := s.Stats()
	s.logger.Info("session closed",
		"chunks", stats.ChunksRead,
		"bytes", stats.BytesRead,
		"partials", stats.PartialsEmitted,
		"finals", stats.FinalsEmitted,
		"suppressed", stats.Suppressed,
		"engine_errors", stats.EngineErrors,
		"delivery_errors", stats.DeliveryErrors,
	)
}

// applyEmissionPolicy decides what a recognition event becomes:
//   - non-empty finals are always emitted and reset the utterance record
//   - empty finals are suppressed (the record still resets)
//   - non-empty partials are emitted only when they differ from the last
//     emitted partial
//   - empty partials carry no signal at all
func (s *Session) applyEmissionPolicy(ctx context.Context, ev recognizer.Event) Outcome {
	if ev.Kind == recognizer.Final {
		s.lastPartial = ""
		if ev.Text == "" {
			s.stats.Suppressed++
			return Suppressed
		}
		s.deliver(sink.Result{Text: s.refineFinal(ctx, ev.Text), Final: true})
		s.stats.FinalsEmitted++
		return Emitted
	}

	if ev.Text == "" {
		return Continue
	}
	if ev.Text == s.lastPartial {
		s.stats.Suppressed++
		return Suppressed
	}
	s.lastPartial = ev.Text
	s.deliver(sink.Result{Text: ev.Text})
	s.stats.PartialsEmitted++
	return Emitted
}

// deliver calls every sink in order. One sink failing never skips the next.
func (s *Session) deliver(r sink.Result) {
	for _, snk := range s.sinks {
		if err := snk.Deliver(r); err != nil {
			s.stats.DeliveryErrors++
			s.logger.Warn("delivery failed", "final", r.Final, "err", err)
		}
	}
}

// refineFinal runs optional LLM cleanup, falling back to the raw text on
// any failure.
func (s *Session) refineFinal(ctx context.Context, text string) string {
	if s.refiner == nil {
		return text
	}
	refined, err := s.refiner.Refine(ctx, text)
	if err != nil {
		s.stats.RefineFallbacks++
		s.logger.Warn("refine failed, using raw text", "err", err)
		return text
	}
	return refined
}
