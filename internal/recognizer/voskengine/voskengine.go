// Package voskengine binds the Vosk speech engine. Building it requires cgo
// and the libvosk headers; every other package depends only on the
// recognizer.Engine interface.
package voskengine

import (
	"fmt"
	"os"

	vosk "github.com/alphacep/vosk-api/go"

	"github.com/RichFesler/rpi-offline-voice-control/internal/recognizer"
)

type engine struct {
	model *vosk.VoskModel
	rec   *vosk.VoskRecognizer
}

// New loads the model at modelPath and creates a recognizer for the given
// sample rate. The returned release func frees the native handles and must
// be called exactly once. Failures here are fatal: the session must not
// start without a working engine.
func New(modelPath string, sampleRate int) (recognizer.Engine, func(), error) {
	info, err := os.Stat(modelPath)
	if err != nil {
		return nil, nil, recognizer.NewFatalError(fmt.Errorf("model data not found at %s: %w", modelPath, err))
	}
	if !info.IsDir() {
		return nil, nil, recognizer.NewFatalError(fmt.Errorf("model path %s is not a directory", modelPath))
	}

	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, nil, recognizer.NewFatalError(fmt.Errorf("load model %s: %w", modelPath, err))
	}

	rec, err := vosk.NewRecognizer(model, float64(sampleRate))
	if err != nil {
		model.Free()
		return nil, nil, recognizer.NewFatalError(fmt.Errorf("create recognizer (rate %d): %w", sampleRate, err))
	}

	e := &engine{model: model, rec: rec}
	release := func() {
		e.rec.Free()
		e.model.Free()
	}
	return e, release, nil
}

func (e *engine) AcceptWaveform(data []byte) int {
	return e.rec.AcceptWaveform(data)
}

func (e *engine) PartialResult() []byte {
	return []byte(e.rec.PartialResult())
}

func (e *engine) Result() []byte {
	return []byte(e.rec.Result())
}
