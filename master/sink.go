package master

import "github.com/arloliu/go-iec104/asdu"

// Sink receives the decoded data points and lifecycle events of a session.
//
// Methods are called from one delivery goroutine per session, in the order the events were decoded.
// The protocol tasks never wait for the sink, so a Sink may call any session method, e.g. Open from
// OnDisconnected or Stop from OnData. A slow Sink delays later events only. A panicking Sink ends the
// connection with ErrSinkPanic.
type Sink interface {
	// OnConnected is called once per connection when STARTDT is confirmed.
	OnConnected()
	// OnDisconnected is called once per connection when it ends. reason is one of the iec104 disconnect
	// reasons, ErrSessionClosed, or a transport error.
	OnDisconnected(reason error)
	// OnData is called for each information object of a monitor direction ASDU. countInBatch is the
	// number of objects in that ASDU.
	OnData(obj asdu.InformationObject, countInBatch int)
	// OnInterrogationAck is called when a general interrogation is confirmed.
	OnInterrogationAck()
	// OnInterrogationTerm is called when a general interrogation is terminated.
	OnInterrogationTerm()
	// OnCounterInterrogationAck is called when a counter interrogation is confirmed.
	OnCounterInterrogationAck()
	// OnCounterInterrogationTerm is called when a counter interrogation is terminated.
	OnCounterInterrogationTerm()
	// OnCommandAck is called with the confirmed command object. A negative confirmation carries
	// asdu.QualityNegative.
	OnCommandAck(obj asdu.InformationObject)
	// OnCommandTerm is called with the terminated command object.
	OnCommandTerm(obj asdu.InformationObject)
	// OnDiagnostic is called for recoverable protocol errors. The session continues.
	OnDiagnostic(err error)
}

// NopSink ignores every event. Embed it to implement a subset of Sink.
type NopSink struct{}

var _ Sink = NopSink{}

func (NopSink) OnConnected() {}
func (NopSink) OnDisconnected(error) {}
func (NopSink) OnData(asdu.InformationObject, int) {}
func (NopSink) OnInterrogationAck() {}
func (NopSink) OnInterrogationTerm() {}
func (NopSink) OnCounterInterrogationAck() {}
func (NopSink) OnCounterInterrogationTerm() {}
func (NopSink) OnCommandAck(asdu.InformationObject) {}
func (NopSink) OnCommandTerm(asdu.InformationObject) {}
func (NopSink) OnDiagnostic(error) {}
