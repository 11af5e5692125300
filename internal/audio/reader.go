package audio

import (
	"fmt"
	"io"
)

// DefaultChunkSize matches the 4 KiB reads the pipeline was tuned for.
const DefaultChunkSize = 4096

// ChunkReader pulls fixed-size chunks of raw PCM bytes from an input stream.
// A chunk shorter than the configured size is only returned at end of stream.
// After io.EOF has been returned, every further call returns io.EOF.
type ChunkReader struct {
	r    io.Reader
	size int
	eof  bool
}

func NewChunkReader(r io.Reader, size int) *ChunkReader {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &ChunkReader{r: r, size: size}
}

// Next returns the next chunk. The returned slice is freshly allocated and
// owned by the caller. Returns io.EOF once the stream is exhausted; any other
// error means the underlying handle failed and the stream cannot continue.
func (cr *ChunkReader) Next() ([]byte, error) {
	if cr.eof {
		return nil, io.EOF
	}

	buf := make([]byte, cr.size)
	n, err := io.ReadFull(cr.r, buf)
	switch err {
	case nil:
		return buf, nil
	case io.ErrUnexpectedEOF:
		// short final chunk
		cr.eof = true
		return buf[:n], nil
	case io.EOF:
		cr.eof = true
		return nil, io.EOF
	default:
		cr.eof = true
		return nil, fmt.Errorf("read audio stream: %w", err)
	}
}
