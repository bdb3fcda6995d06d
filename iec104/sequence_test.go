package iec104

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeqTracker_ReceiveWrap(t *testing.T) {
	require := require.New(t)

	s := NewSeqTracker(true, 0, 0)
	for ns := uint16(0); ns < SeqModulo-1; ns++ {
		require.NoError(s.OnReceiveI(ns))
		s.MarkAcked()
	}
	require.Equal(uint16(32767), s.VR())

	require.NoError(s.OnReceiveI(32767))
	require.Equal(uint16(0), s.VR())

	require.NoError(s.OnReceiveI(0))
	require.Equal(uint16(1), s.VR())
}

func TestSeqTracker_OutOfOrder(t *testing.T) {
	require := require.New(t)

	s := NewSeqTracker(true, 0, 0)
	require.NoError(s.OnReceiveI(0))

	err := s.OnReceiveI(2)
	require.ErrorIs(err, ErrOutOfOrder)
	require.Equal(uint16(1), s.VR())
	require.Equal(1, s.PendingAck())

	s = NewSeqTracker(false, 0, 0)
	require.NoError(s.OnReceiveI(0))
	require.NoError(s.OnReceiveI(5))
	require.Equal(uint16(2), s.VR())
}

func TestSeqTracker_SendWindow(t *testing.T) {
	require := require.New(t)

	s := NewSeqTracker(true, 3, 2)
	for i := range 3 {
		ns, err := s.NextSend()
		require.NoError(err)
		require.Equal(uint16(i), ns) //nolint:gosec
	}
	require.Equal(3, s.Outstanding())

	_, err := s.NextSend()
	require.ErrorIs(err, ErrWindowFull)
	require.Equal(uint16(3), s.VS())

	require.NoError(s.OnReceiveAck(2))
	require.Equal(1, s.Outstanding())

	ns, err := s.NextSend()
	require.NoError(err)
	require.Equal(uint16(3), ns)
}

func TestSeqTracker_AckAhead(t *testing.T) {
	require := require.New(t)

	s := NewSeqTracker(true, 0, 0)
	_, _ = s.NextSend()
	_, _ = s.NextSend()

	require.NoError(s.OnReceiveAck(0))
	require.NoError(s.OnReceiveAck(1))
	require.ErrorIs(s.OnReceiveAck(3), ErrAckAhead)
	require.NoError(s.OnReceiveAck(2))

	// an acknowledgment never moves backwards
	require.ErrorIs(s.OnReceiveAck(1), ErrAckAhead)
}

func TestSeqTracker_AckAcrossWrap(t *testing.T) {
	require := require.New(t)

	s := NewSeqTracker(true, SeqModulo, 0)
	for range SeqModulo - 2 {
		_, err := s.NextSend()
		require.NoError(err)
	}
	require.NoError(s.OnReceiveAck(SeqModulo - 2))

	for range 4 {
		_, err := s.NextSend()
		require.NoError(err)
	}
	require.Equal(uint16(2), s.VS())
	require.Equal(4, s.Outstanding())

	require.NoError(s.OnReceiveAck(0))
	require.Equal(2, s.Outstanding())
	require.ErrorIs(s.OnReceiveAck(3), ErrAckAhead)
	require.NoError(s.OnReceiveAck(2))
	require.Equal(0, s.Outstanding())
}

func TestSeqTracker_AckDue(t *testing.T) {
	require := require.New(t)

	s := NewSeqTracker(true, 12, 2)
	require.NoError(s.OnReceiveI(0))
	require.False(s.AckDue())
	require.NoError(s.OnReceiveI(1))
	require.True(s.AckDue())

	s.MarkAcked()
	require.False(s.AckDue())
	require.Equal(0, s.PendingAck())

	s.Reset()
	require.Equal(uint16(0), s.VR())
	require.Equal(uint16(0), s.VS())
}
