package recognizer

import (
	"encoding/json"

	"github.com/charmbracelet/log"
)

// EventKind classifies a recognition event.
type EventKind int

const (
	// Partial is an in-progress hypothesis for the current utterance.
	Partial EventKind = iota
	// Final is the engine's committed result for one complete utterance.
	Final
)

func (k EventKind) String() string {
	if k == Final {
		return "final"
	}
	return "partial"
}

// Event is the normalized output of the engine for one submitted chunk.
// Text may be empty (silence, noise, or a chunk the engine rejected).
type Event struct {
	Kind EventKind
	Text string
}

// Engine is the raw speech engine boundary. AcceptWaveform returns a
// positive value when the submitted audio completed an utterance, zero while
// an utterance is still in progress, and a negative value when the engine
// could not process the chunk. Result and PartialResult return the engine's
// JSON payloads ({"text": ...} and {"partial": ...} respectively).
type Engine interface {
	AcceptWaveform([]byte) int
	PartialResult() []byte
	Result() []byte
}

// Adapter drives an Engine and normalizes its two-query output contract
// into Events. Per-chunk engine failures never surface as errors: the
// adapter logs them, counts them and reports an empty partial so one bad
// chunk cannot abort a long-running session.
type Adapter struct {
	engine      Engine
	logger      *log.Logger
	chunkErrors uint64
}

func NewAdapter(engine Engine) *Adapter {
	return &Adapter{
		engine: engine,
		logger: log.WithPrefix("recognizer"),
	}
}

// Submit feeds one chunk to the engine and returns the classified result.
func (a *Adapter) Submit(chunk []byte) Event {
	accepted := a.engine.AcceptWaveform(chunk)
	if accepted < 0 {
		a.chunkErrors++
		a.logger.Warn("engine rejected chunk", "bytes", len(chunk), "errors", a.chunkErrors)
		return Event{Kind: Partial}
	}

	if accepted > 0 {
		return Event{Kind: Final, Text: a.decodeFinal(a.engine.Result())}
	}
	return Event{Kind: Partial, Text: a.decodePartial(a.engine.PartialResult())}
}

// ChunkErrors reports how many chunks the engine failed to process.
func (a *Adapter) ChunkErrors() uint64 {
	return a.chunkErrors
}

// The engine reports finals as {"text": ...} and partials as
// {"partial": ...}; extra fields (word timings etc.) are ignored.

func (a *Adapter) decodeFinal(payload []byte) string {
	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		a.chunkErrors++
		a.logger.Warn("malformed engine payload", "err", err)
		return ""
	}
	return result.Text
}

func (a *Adapter) decodePartial(payload []byte) string {
	var result struct {
		Partial string `json:"partial"`
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		a.chunkErrors++
		a.logger.Warn("malformed engine payload", "err", err)
		return ""
	}
	return result.Partial
}
