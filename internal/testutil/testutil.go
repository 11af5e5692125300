package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/RichFesler/rpi-offline-voice-control/internal/sink"
)

// ScriptStep describes the engine's reaction to one submitted chunk.
type ScriptStep struct {
	Accept  int    // value returned by AcceptWaveform
	Text    string // text placed in the partial/final JSON payload
	Payload string // raw payload override; wins over Text when set
}

// PartialStep scripts an in-progress hypothesis.
func PartialStep(text string) ScriptStep {
	return ScriptStep{Accept: 0, Text: text}
}

// FinalStep scripts a completed utterance.
func FinalStep(text string) ScriptStep {
	return ScriptStep{Accept: 1, Text: text}
}

// RejectStep scripts a chunk the engine cannot process.
func RejectStep() ScriptStep {
	return ScriptStep{Accept: -1}
}

// FakeEngine replays a fixed script, one step per submitted chunk. Chunks
// submitted past the end of the script produce empty partials.
type FakeEngine struct {
	Script []ScriptStep

	Submitted [][]byte
	step      int
}

func (e *FakeEngine) current() ScriptStep {
	if e.step == 0 || e.step > len(e.Script) {
		return ScriptStep{}
	}
	return e.Script[e.step-1]
}

func (e *FakeEngine) AcceptWaveform(data []byte) int {
	e.Submitted = append(e.Submitted, data)
	e.step++
	return e.current().Accept
}

func (e *FakeEngine) PartialResult() []byte {
	s := e.current()
	if s.Payload != "" {
		return []byte(s.Payload)
	}
	return []byte(fmt.Sprintf(`{"partial": %q}`, s.Text))
}

func (e *FakeEngine) Result() []byte {
	s := e.current()
	if s.Payload != "" {
		return []byte(s.Payload)
	}
	return []byte(fmt.Sprintf(`{"text": %q}`, s.Text))
}

// RecordSink captures delivered results and can be made to fail.
type RecordSink struct {
	DeliverErr error

	mu      sync.Mutex
	results []sink.Result
	closed  bool
}

func (s *RecordSink) Deliver(r sink.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeliverErr != nil {
		return s.DeliverErr
	}
	s.results = append(s.results, r)
	return nil
}

func (s *RecordSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *RecordSink) Results() []sink.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sink.Result, len(s.results))
	copy(out, s.results)
	return out
}

func (s *RecordSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// PublishedMessage is one message captured by FakeConnection.
type PublishedMessage struct {
	Topic   string
	Payload string
}

// FakeConnection records published messages in order and can be made to
// fail every publish.
type FakeConnection struct {
	PublishErr error

	mu           sync.Mutex
	messages     []PublishedMessage
	disconnected bool
}

func (c *FakeConnection) Publish(topic, payload string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.PublishErr != nil {
		return c.PublishErr
	}
	c.messages = append(c.messages, PublishedMessage{Topic: topic, Payload: payload})
	return nil
}

func (c *FakeConnection) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
}

func (c *FakeConnection) Messages() []PublishedMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]PublishedMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *FakeConnection) Disconnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnected
}

// WaitForCondition polls until the condition holds or the timeout expires.
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("condition not met within %v", timeout)
		default:
			if condition() {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}
