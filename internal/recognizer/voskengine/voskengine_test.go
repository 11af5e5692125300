package voskengine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/RichFesler/rpi-offline-voice-control/internal/recognizer"
)

func TestNew_MissingModel(t *testing.T) {
	_, _, err := New(filepath.Join(t.TempDir(), "no-such-model"), 16000)
	if err == nil {
		t.Fatal("expected error for missing model directory")
	}
	if !recognizer.IsFatalError(err) {
		t.Errorf("missing model should be fatal, got %v", err)
	}
}

func TestNew_ModelPathIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, _, err := New(path, 16000)
	if err == nil {
		t.Fatal("expected error for non-directory model path")
	}
	if !recognizer.IsFatalError(err) {
		t.Errorf("bad model path should be fatal, got %v", err)
	}
}
