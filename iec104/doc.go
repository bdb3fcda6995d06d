// Package iec104 provides the link layer building blocks of IEC 60870-5-104: the APCI frame codec,
// sequence number bookkeeping, timer supervision and the link state manager.
//
// Frame Formats:
// Every APDU starts with the start byte 0x68, a length octet (4..253) and four control octets.
// The first control octet selects the format:
//   - IFormat:  numbered information transfer, carries an ASDU with send and receive sequence numbers.
//   - SFormat:  numbered supervisory function, acknowledges received I-format frames.
//   - UFormat:  unnumbered control function, one of STARTDT, STOPDT or TESTFR, each as act or con.
//
// Components:
//   - Decode, FrameLength and APDU.MarshalBinary convert between frames and APDU values.
//   - FrameReader reassembles frames from a byte stream and resynchronizes on garbage.
//   - SeqTracker keeps VS/VR modulo 32768 and validates received sequence numbers.
//   - Supervisor counts down t1, t2 and t3 from a single periodic tick.
//   - LinkStateMgr enforces the link state transitions and notifies handlers.
//   - TaskManager runs the receive and tick goroutines of a session.
//
// The master package combines these into a controlling station session.
package iec104
