// Package sink delivers classified transcription results to output media.
package sink

// Result is one classified transcription result.
type Result struct {
	Text  string
	Final bool
}

// Sink receives results from the session. Deliver errors are counted by the
// caller and never stop the transcription loop; a failing sink must not
// prevent later sinks from being called.
type Sink interface {
	Deliver(r Result) error
	Close() error
}
