package iec104

import (
	"bufio"
	"errors"
	"io"

	"github.com/arloliu/go-iec104/internal/util"
)

// FrameReader extracts whole frames from a byte stream.
//
// Bytes are peeked until a complete frame is buffered and only then consumed, so a frame split
// across several reads is reassembled without loss. A byte that can not start a frame is dropped
// and reported with ErrInvalidStart or ErrInvalidLength; the next call resumes at the following byte.
//
// FrameReader is NOT goroutine-safe. A session owns exactly one reader per connection, used by
// its receive task only.
type FrameReader struct {
	r *bufio.Reader
}

// NewFrameReader creates a FrameReader on r. A Read that returns (0, nil) is treated as end of stream.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReaderSize(&eofReader{r: r}, 4*MaxFrameSize)}
}

// ReadFrame blocks until one whole frame is available and returns a copy of its bytes.
//
// The returned error is ErrInvalidStart or ErrInvalidLength for a dropped byte, io.EOF when the
// stream ended between frames, io.ErrUnexpectedEOF when it ended inside a frame, or the error of
// the underlying reader.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	head, err := fr.r.Peek(2)
	if err != nil {
		if errors.Is(err, io.EOF) && len(head) > 0 {
			return nil, io.ErrUnexpectedEOF
		}

		return nil, err
	}

	size, err := FrameLength(head)
	if err != nil && !errors.Is(err, ErrNeedMoreData) {
		_, _ = fr.r.Discard(1)
		return nil, err
	}

	frame, err := fr.r.Peek(size)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}

		return nil, err
	}

	out := util.CloneSlice(frame, size)
	_, _ = fr.r.Discard(size)

	return out, nil
}

// Buffered returns the number of bytes read from the stream but not yet returned as a frame.
func (fr *FrameReader) Buffered() int {
	return fr.r.Buffered()
}

// eofReader maps a (0, nil) read to io.EOF.
type eofReader struct {
	r io.Reader
}

func (e *eofReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	n, err := e.r.Read(p)
	if n == 0 && err == nil {
		return 0, io.EOF
	}

	return n, err
}
