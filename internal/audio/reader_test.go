package audio

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestChunkReader_FixedChunks(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 10)
	cr := NewChunkReader(bytes.NewReader(data), 4)

	var chunks [][]byte
	for {
		chunk, err := cr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		chunks = append(chunks, chunk)
	}

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 4 || len(chunks[1]) != 4 {
		t.Errorf("expected full chunks of 4 bytes, got %d and %d", len(chunks[0]), len(chunks[1]))
	}
	if len(chunks[2]) != 2 {
		t.Errorf("expected short final chunk of 2 bytes, got %d", len(chunks[2]))
	}

	var total []byte
	for _, c := range chunks {
		total = append(total, c...)
	}
	if !bytes.Equal(total, data) {
		t.Errorf("concatenated chunks differ from input")
	}
}

func TestChunkReader_EmptyInput(t *testing.T) {
	cr := NewChunkReader(strings.NewReader(""), 4)

	if _, err := cr.Next(); err != io.EOF {
		t.Errorf("expected io.EOF on empty input, got %v", err)
	}
}

func TestChunkReader_EOFIsTerminal(t *testing.T) {
	cr := NewChunkReader(strings.NewReader("abc"), 4)

	if _, err := cr.Next(); err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := cr.Next(); err != io.EOF {
			t.Fatalf("call %d after exhaustion: expected io.EOF, got %v", i, err)
		}
	}
}

type failingReader struct {
	err error
}

func (f failingReader) Read(p []byte) (int, error) {
	return 0, f.err
}

func TestChunkReader_ReadError(t *testing.T) {
	wantErr := errors.New("device gone")
	cr := NewChunkReader(failingReader{err: wantErr}, 4)

	_, err := cr.Next()
	if err == nil || err == io.EOF {
		t.Fatalf("expected read error, got %v", err)
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped %v, got %v", wantErr, err)
	}

	// a failed reader is not retried
	if _, err := cr.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after read failure, got %v", err)
	}
}

func TestChunkReader_DefaultSize(t *testing.T) {
	data := make([]byte, DefaultChunkSize+1)
	cr := NewChunkReader(bytes.NewReader(data), 0)

	chunk, err := cr.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if len(chunk) != DefaultChunkSize {
		t.Errorf("expected default chunk size %d, got %d", DefaultChunkSize, len(chunk))
	}
}
