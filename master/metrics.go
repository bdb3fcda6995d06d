package master

import (
	"sync/atomic"

	"github.com/arloliu/go-iec104/iec104"
)

// Metrics contains atomic metrics for a session.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type Metrics struct {
	// IFrameSendCount indicates the number of I-format frames sent.
	IFrameSendCount atomic.Uint64
	// IFrameRecvCount indicates the number of I-format frames received.
	IFrameRecvCount atomic.Uint64
	// SFrameSendCount indicates the number of S-format frames sent.
	SFrameSendCount atomic.Uint64
	// SFrameRecvCount indicates the number of S-format frames received.
	SFrameRecvCount atomic.Uint64
	// UFrameSendCount indicates the number of U-format frames sent.
	UFrameSendCount atomic.Uint64
	// UFrameRecvCount indicates the number of U-format frames received.
	UFrameRecvCount atomic.Uint64

	// TestFrameSendCount indicates the number of TESTFR act frames sent.
	TestFrameSendCount atomic.Uint64
	// TestFrameConfirmCount indicates the number of TESTFR con frames received.
	TestFrameConfirmCount atomic.Uint64

	// DecodeErrCount indicates the number of dropped bytes and frames that could not be decoded.
	DecodeErrCount atomic.Uint64
	// DiagnosticCount indicates the number of diagnostics reported to the sink.
	DiagnosticCount atomic.Uint64

	// BytesSent indicates the number of bytes written to the transport.
	BytesSent atomic.Uint64
	// BytesReceived indicates the number of bytes of whole frames read from the transport.
	BytesReceived atomic.Uint64

	// ConnectCount indicates the number of established connections.
	ConnectCount atomic.Uint32
}

func (m *Metrics) incFrameSend(format iec104.FrameFormat, size int) {
	switch format {
	case iec104.IFormat:
		m.IFrameSendCount.Add(1)
	case iec104.SFormat:
		m.SFrameSendCount.Add(1)
	case iec104.UFormat:
		m.UFrameSendCount.Add(1)
	}
	m.BytesSent.Add(uint64(size)) //nolint:gosec
}

func (m *Metrics) incFrameRecv(format iec104.FrameFormat, size int) {
	switch format {
	case iec104.IFormat:
		m.IFrameRecvCount.Add(1)
	case iec104.SFormat:
		m.SFrameRecvCount.Add(1)
	case iec104.UFormat:
		m.UFrameRecvCount.Add(1)
	}
	m.BytesReceived.Add(uint64(size)) //nolint:gosec
}

func (m *Metrics) incTestFrameSendCount() {
	m.TestFrameSendCount.Add(1)
}

func (m *Metrics) incTestFrameConfirmCount() {
	m.TestFrameConfirmCount.Add(1)
}

func (m *Metrics) incDecodeErrCount() {
	m.DecodeErrCount.Add(1)
}

func (m *Metrics) incDiagnosticCount() {
	m.DiagnosticCount.Add(1)
}

func (m *Metrics) incConnectCount() {
	m.ConnectCount.Add(1)
}
