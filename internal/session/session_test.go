package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/RichFesler/rpi-offline-voice-control/internal/audio"
	"github.com/RichFesler/rpi-offline-voice-control/internal/recognizer"
	"github.com/RichFesler/rpi-offline-voice-control/internal/sink"
	"github.com/RichFesler/rpi-offline-voice-control/internal/testutil"
)

// newTestSession wires a session over len(script) one-byte chunks.
func newTestSession(script []testutil.ScriptStep, sinks ...sink.Sink) *Session {
	input := bytes.Repeat([]byte{0x7F}, len(script))
	reader := audio.NewChunkReader(bytes.NewReader(input), 1)
	adapter := recognizer.NewAdapter(&testutil.FakeEngine{Script: script})
	return New(reader, adapter, sinks...)
}

// runToCompletion drives ProcessOne until Done, failing on fatal errors.
func runToCompletion(t *testing.T, s *Session) {
	t.Helper()
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	for {
		outcome, err := s.ProcessOne(context.Background())
		if err != nil {
			t.Fatalf("ProcessOne() error: %v", err)
		}
		if outcome == Done {
			break
		}
	}
	s.Finish()
}

func TestSession_PartialThenFinalOrdering(t *testing.T) {
	rec := &testutil.RecordSink{}
	s := newTestSession([]testutil.ScriptStep{
		testutil.PartialStep("hel"),
		testutil.PartialStep("hello"),
		testutil.FinalStep("hello world"),
	}, rec)

	runToCompletion(t, s)

	want := []sink.Result{
		{Text: "hel"},
		{Text: "hello"},
		{Text: "hello world", Final: true},
	}
	got := rec.Results()
	if len(got) != len(want) {
		t.Fatalf("got %d results %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	stats := s.Stats()
	if stats.PartialsEmitted != 2 || stats.FinalsEmitted != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSession_SilenceEmitsNothing(t *testing.T) {
	rec := &testutil.RecordSink{}
	s := newTestSession([]testutil.ScriptStep{
		testutil.PartialStep(""),
		testutil.FinalStep(""),
	}, rec)

	runToCompletion(t, s)

	if got := rec.Results(); len(got) != 0 {
		t.Errorf("expected zero emitted events, got %v", got)
	}
}

func TestSession_DuplicatePartialsSuppressed(t *testing.T) {
	rec := &testutil.RecordSink{}
	s := newTestSession([]testutil.ScriptStep{
		testutil.PartialStep("one"),
		testutil.PartialStep("one"),
		testutil.PartialStep("one two"),
		testutil.PartialStep("one two"),
	}, rec)

	runToCompletion(t, s)

	got := rec.Results()
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Text == got[i-1].Text {
			t.Errorf("consecutive identical partials emitted: %q", got[i].Text)
		}
	}
	if s.Stats().Suppressed != 2 {
		t.Errorf("Suppressed = %d, want 2", s.Stats().Suppressed)
	}
}

func TestSession_PartialRepeatsAfterFinalReset(t *testing.T) {
	// the same hypothesis text in a new utterance is not a duplicate
	rec := &testutil.RecordSink{}
	s := newTestSession([]testutil.ScriptStep{
		testutil.PartialStep("yes"),
		testutil.FinalStep("yes"),
		testutil.PartialStep("yes"),
	}, rec)

	runToCompletion(t, s)

	got := rec.Results()
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %v", got)
	}
	if !got[1].Final || got[2].Final {
		t.Errorf("unexpected result kinds: %v", got)
	}
}

func TestSession_EmptyFinalResetsUtteranceRecord(t *testing.T) {
	rec := &testutil.RecordSink{}
	s := newTestSession([]testutil.ScriptStep{
		testutil.PartialStep("hm"),
		testutil.FinalStep(""),
		testutil.PartialStep("hm"),
	}, rec)

	runToCompletion(t, s)

	got := rec.Results()
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %v", got)
	}
	if got[0].Text != "hm" || got[1].Text != "hm" {
		t.Errorf("unexpected results: %v", got)
	}
}

func TestSession_EmptyInputClosesCleanly(t *testing.T) {
	rec := &testutil.RecordSink{}
	reader := audio.NewChunkReader(strings.NewReader(""), 4)
	s := New(reader, recognizer.NewAdapter(&testutil.FakeEngine{}), rec)

	if s.State() != Idle {
		t.Fatalf("initial state = %s", s.State())
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if s.State() != Active {
		t.Fatalf("state after Start = %s", s.State())
	}

	outcome, err := s.ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("ProcessOne() error: %v", err)
	}
	if outcome != Done {
		t.Fatalf("outcome = %v, want Done", outcome)
	}
	if s.State() != Finishing {
		t.Errorf("state after EOF = %s, want %s", s.State(), Finishing)
	}

	s.Finish()
	if s.State() != Closed {
		t.Errorf("state after Finish = %s, want %s", s.State(), Closed)
	}
	if got := rec.Results(); len(got) != 0 {
		t.Errorf("expected zero results, got %v", got)
	}
	if !rec.Closed() {
		t.Error("sink not closed")
	}
}

func TestSession_StartTwiceFails(t *testing.T) {
	s := newTestSession(nil)
	if err := s.Start(); err != nil {
		t.Fatalf("first Start() error: %v", err)
	}
	if err := s.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() = %v, want ErrAlreadyStarted", err)
	}
}

func TestSession_FailingSinkDoesNotStopOthers(t *testing.T) {
	broken := &testutil.RecordSink{DeliverErr: errors.New("broker unreachable")}
	healthy := &testutil.RecordSink{}
	script := []testutil.ScriptStep{
		testutil.PartialStep("hel"),
		testutil.FinalStep("hello"),
	}

	input := bytes.Repeat([]byte{0x7F}, len(script))
	reader := audio.NewChunkReader(bytes.NewReader(input), 1)
	adapter := recognizer.NewAdapter(&testutil.FakeEngine{Script: script})
	s := New(reader, adapter, broken, healthy)

	runToCompletion(t, s)

	got := healthy.Results()
	if len(got) != 2 {
		t.Fatalf("healthy sink got %v, want 2 results", got)
	}
	if s.Stats().DeliveryErrors != 2 {
		t.Errorf("DeliveryErrors = %d, want 2", s.Stats().DeliveryErrors)
	}
}

type failAfterReader struct {
	data []byte
	err  error
	pos  int
}

func (r *failAfterReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, r.err
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

func TestSession_ReadErrorIsFatal(t *testing.T) {
	wantErr := errors.New("pipe broke")
	reader := audio.NewChunkReader(&failAfterReader{data: []byte{1, 2}, err: wantErr}, 2)
	adapter := recognizer.NewAdapter(&testutil.FakeEngine{Script: []testutil.ScriptStep{
		testutil.PartialStep("x"),
	}})
	rec := &testutil.RecordSink{}
	s := New(reader, adapter, rec)

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ProcessOne(context.Background()); err != nil {
		t.Fatalf("first step error: %v", err)
	}

	_, err := s.ProcessOne(context.Background())
	if err == nil {
		t.Fatal("expected fatal error from failed read")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want wrapped %v", err, wantErr)
	}
	if s.State() != Finishing {
		t.Errorf("state = %s, want %s", s.State(), Finishing)
	}

	// the error path still runs teardown
	s.Finish()
	if s.State() != Closed {
		t.Errorf("state after Finish = %s, want %s", s.State(), Closed)
	}
	if !rec.Closed() {
		t.Error("sink not closed after failed session")
	}
}

func TestSession_EngineRejectionIsAbsorbed(t *testing.T) {
	rec := &testutil.RecordSink{}
	s := newTestSession([]testutil.ScriptStep{
		testutil.PartialStep("a"),
		testutil.RejectStep(),
		testutil.FinalStep("a b"),
	}, rec)

	runToCompletion(t, s)

	got := rec.Results()
	if len(got) != 2 {
		t.Fatalf("got %v, want partial + final", got)
	}
	if s.Stats().EngineErrors != 1 {
		t.Errorf("EngineErrors = %d, want 1", s.Stats().EngineErrors)
	}
}

type staticRefiner struct {
	out string
	err error
}

func (r staticRefiner) Refine(_ context.Context, text string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return r.out, nil
}

func TestSession_RefinerAppliesToFinalsOnly(t *testing.T) {
	rec := &testutil.RecordSink{}
	s := newTestSession([]testutil.ScriptStep{
		testutil.PartialStep("hello wor"),
		testutil.FinalStep("hello world"),
	}, rec)
	s.UseRefiner(staticRefiner{out: "Hello, world."})

	runToCompletion(t, s)

	got := rec.Results()
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	if got[0].Text != "hello wor" {
		t.Errorf("partial was refined: %q", got[0].Text)
	}
	if got[1].Text != "Hello, world." {
		t.Errorf("final = %q, want refined text", got[1].Text)
	}
}

func TestSession_RefinerFailureFallsBackToRawText(t *testing.T) {
	rec := &testutil.RecordSink{}
	s := newTestSession([]testutil.ScriptStep{
		testutil.FinalStep("hello world"),
	}, rec)
	s.UseRefiner(staticRefiner{err: errors.New("api quota")})

	runToCompletion(t, s)

	got := rec.Results()
	if len(got) != 1 || got[0].Text != "hello world" {
		t.Fatalf("got %v, want raw final text", got)
	}
	if s.Stats().RefineFallbacks != 1 {
		t.Errorf("RefineFallbacks = %d, want 1", s.Stats().RefineFallbacks)
	}
}

func TestSession_FinalSequenceIsChunkSizeIndependent(t *testing.T) {
	// the same utterance stream split differently must yield the same finals
	finalsFor := func(script []testutil.ScriptStep) []string {
		rec := &testutil.RecordSink{}
		s := newTestSession(script, rec)
		runToCompletion(t, s)
		var finals []string
		for _, r := range rec.Results() {
			if r.Final {
				finals = append(finals, r.Text)
			}
		}
		return finals
	}

	coarse := finalsFor([]testutil.ScriptStep{
		testutil.FinalStep("alpha"),
		testutil.FinalStep("beta"),
	})
	fine := finalsFor([]testutil.ScriptStep{
		testutil.PartialStep("al"),
		testutil.PartialStep("alpha"),
		testutil.FinalStep("alpha"),
		testutil.PartialStep("be"),
		testutil.FinalStep("beta"),
	})

	if len(coarse) != len(fine) {
		t.Fatalf("final counts differ: %v vs %v", coarse, fine)
	}
	for i := range coarse {
		if coarse[i] != fine[i] {
			t.Errorf("finals[%d]: %q vs %q", i, coarse[i], fine[i])
		}
	}
}
