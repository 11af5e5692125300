package sink

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestConsole_FinalWritesLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	if err := c.Deliver(Result{Text: "hello world", Final: true}); err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "hello world") {
		t.Errorf("output missing final text: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("final result should be newline-terminated: %q", out)
	}
}

func TestConsole_PartialOverwritesLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	if err := c.Deliver(Result{Text: "hel"}); err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	if err := c.Deliver(Result{Text: "hello"}); err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "\n") {
		t.Errorf("partial results must not emit newlines: %q", out)
	}
	if !strings.Contains(out, "\r") {
		t.Errorf("partial results should rewrite the line in place: %q", out)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("output missing latest partial text: %q", out)
	}
}

func TestConsole_CloseEndsOpenPartialLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	if err := c.Deliver(Result{Text: "hel"}); err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Errorf("Close() should terminate a dangling partial line: %q", buf.String())
	}

	// nothing pending: Close stays quiet
	before := buf.Len()
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
	if buf.Len() != before {
		t.Errorf("second Close() wrote output")
	}
}

type recordPublisher struct {
	topics   []string
	payloads []string
	err      error
}

func (p *recordPublisher) Publish(topic, payload string) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

func TestPublish_RoutesByResultKind(t *testing.T) {
	pub := &recordPublisher{}
	s := NewPublish(pub, "voice/final", "voice/partial")

	if err := s.Deliver(Result{Text: "hel"}); err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	if err := s.Deliver(Result{Text: "hello world", Final: true}); err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}

	wantTopics := []string{"voice/partial", "voice/final"}
	for i, want := range wantTopics {
		if pub.topics[i] != want {
			t.Errorf("topic[%d] = %q, want %q", i, pub.topics[i], want)
		}
	}
	if pub.payloads[1] != "hello world" {
		t.Errorf("final payload = %q, want %q", pub.payloads[1], "hello world")
	}
}

func TestPublish_PropagatesDeliveryError(t *testing.T) {
	wantErr := errors.New("broker down")
	s := NewPublish(&recordPublisher{err: wantErr}, "voice/final", "voice/partial")

	if err := s.Deliver(Result{Text: "x", Final: true}); !errors.Is(err, wantErr) {
		t.Errorf("Deliver() = %v, want %v", err, wantErr)
	}
}
