package iec104

import (
	"bytes"
	"io"
	"net"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	startAct = []byte{0x68, 0x04, 0x07, 0x00, 0x00, 0x00}
	testAct  = []byte{0x68, 0x04, 0x43, 0x00, 0x00, 0x00}
	sFrame   = []byte{0x68, 0x04, 0x01, 0x00, 0x0A, 0x00}
)

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func TestFrameReader_ByteAtATime(t *testing.T) {
	require := require.New(t)

	stream := concat(startAct, testAct, sFrame)
	fr := NewFrameReader(iotest.OneByteReader(bytes.NewReader(stream)))

	for _, want := range [][]byte{startAct, testAct, sFrame} {
		frame, err := fr.ReadFrame()
		require.NoError(err)
		require.Equal(want, frame)
	}

	_, err := fr.ReadFrame()
	require.ErrorIs(err, io.EOF)
}

func TestFrameReader_Resync(t *testing.T) {
	require := require.New(t)

	stream := concat([]byte{0x00, 0xFF}, startAct, []byte{0x68, 0x02}, testAct)
	fr := NewFrameReader(bytes.NewReader(stream))

	_, err := fr.ReadFrame()
	require.ErrorIs(err, ErrInvalidStart)
	_, err = fr.ReadFrame()
	require.ErrorIs(err, ErrInvalidStart)

	frame, err := fr.ReadFrame()
	require.NoError(err)
	require.Equal(startAct, frame)

	// 0x68 0x02 declares an impossible length: drop the start byte, then the 0x02
	_, err = fr.ReadFrame()
	require.ErrorIs(err, ErrInvalidLength)
	_, err = fr.ReadFrame()
	require.ErrorIs(err, ErrInvalidStart)

	frame, err = fr.ReadFrame()
	require.NoError(err)
	require.Equal(testAct, frame)
}

func TestFrameReader_TruncatedFrame(t *testing.T) {
	require := require.New(t)

	fr := NewFrameReader(bytes.NewReader(startAct[:4]))

	_, err := fr.ReadFrame()
	require.ErrorIs(err, io.ErrUnexpectedEOF)
}

type zeroReader struct{}

func (zeroReader) Read([]byte) (int, error) { return 0, nil }

func TestFrameReader_ZeroReadIsEOF(t *testing.T) {
	require := require.New(t)

	fr := NewFrameReader(zeroReader{})

	_, err := fr.ReadFrame()
	require.ErrorIs(err, io.EOF)
}

func TestFrameReader_SplitAcrossWrites(t *testing.T) {
	require := require.New(t)

	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()

	go func() {
		_, _ = remote.Write(startAct[:1])
		time.Sleep(10 * time.Millisecond)
		_, _ = remote.Write(startAct[1:3])
		time.Sleep(10 * time.Millisecond)
		_, _ = remote.Write(concat(startAct[3:], testAct[:2]))
		time.Sleep(10 * time.Millisecond)
		_, _ = remote.Write(testAct[2:])
	}()

	fr := NewFrameReader(local)

	frame, err := fr.ReadFrame()
	require.NoError(err)
	require.Equal(startAct, frame)

	frame, err = fr.ReadFrame()
	require.NoError(err)
	require.Equal(testAct, frame)
	require.Equal(0, fr.Buffered())
}
