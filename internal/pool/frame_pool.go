package pool

import (
	"sync"

	"github.com/arloliu/go-iec104/iec104"
)

var framePool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, iec104.MaxFrameSize)
		return &buf
	},
}

// GetFrameBuffer returns an empty buffer large enough to hold one APDU.
//
// Return the buffer with PutFrameBuffer after the frame was written.
func GetFrameBuffer() []byte {
	p, _ := framePool.Get().(*[]byte)
	return (*p)[:0]
}

// PutFrameBuffer returns buf to the pool. Buffers that grew beyond one frame are dropped.
func PutFrameBuffer(buf []byte) {
	if cap(buf) != iec104.MaxFrameSize {
		return
	}

	buf = buf[:0]
	framePool.Put(&buf)
}
