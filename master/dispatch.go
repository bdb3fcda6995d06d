package master

import (
	"fmt"

	"github.com/arloliu/go-iec104/asdu"
)

// dispatch interprets a received ASDU. The caller holds mu.
func (s *Session) dispatch(a *asdu.ASDU) {
	if a.Cause.IsUnknownMirror() {
		s.endActivation(a)
		s.diagnostic(fmt.Errorf("%w: %s", ErrUnknownActivation, a))

		return
	}

	switch {
	case a.Type == asdu.C_IC_NA_1:
		s.handleInterrogationReply(a, &s.pendingGI,
			func(sink Sink) { sink.OnInterrogationAck() },
			func(sink Sink) { sink.OnInterrogationTerm() },
		)
	case a.Type == asdu.C_CI_NA_1:
		s.handleInterrogationReply(a, &s.pendingCI,
			func(sink Sink) { sink.OnCounterInterrogationAck() },
			func(sink Sink) { sink.OnCounterInterrogationTerm() },
		)
	case a.Type.IsMonitor(), a.Type == asdu.M_EI_NA_1:
		count := len(a.Objects)
		for _, obj := range a.Objects {
			s.notify(func(sink Sink) { sink.OnData(obj, count) })
		}
	default:
		s.handleCommandReply(a)
	}
}

// endActivation clears the pending activation a refers to.
func (s *Session) endActivation(a *asdu.ASDU) {
	switch a.Type {
	case asdu.C_IC_NA_1:
		s.pendingGI = false
	case asdu.C_CI_NA_1:
		s.pendingCI = false
	default:
		for _, obj := range a.Objects {
			s.commands.Delete(commandKey{typeID: a.Type, addr: obj.Address})
		}
	}
}

func (s *Session) handleInterrogationReply(a *asdu.ASDU, pending *bool, onAck func(Sink), onTerm func(Sink)) {
	switch a.Cause {
	case asdu.CauseActivationCon:
		if a.Negative {
			*pending = false
			s.diagnostic(fmt.Errorf("%w: %s", ErrNegativeConfirm, a))

			return
		}
		s.notify(onAck)

	case asdu.CauseActivationTerm:
		*pending = false
		s.notify(onTerm)

	default:
		s.logger.Debug("ignore interrogation reply", "asdu", a.String())
	}
}

func (s *Session) handleCommandReply(a *asdu.ASDU) {
	for _, obj := range a.Objects {
		key := commandKey{typeID: a.Type, addr: obj.Address}

		switch a.Cause {
		case asdu.CauseActivationCon:
			if _, ok := s.commands.Load(key); !ok {
				s.logger.Warn("confirmation of an unknown command", "object", obj.String())
			}

			// a negative confirmation ends the activation; system commands are never terminated
			if a.Negative {
				obj.Quality |= asdu.QualityNegative
				s.commands.Delete(key)
			} else if a.Type.IsSystem() {
				s.commands.Delete(key)
			}

			s.notify(func(sink Sink) { sink.OnCommandAck(obj) })

		case asdu.CauseActivationTerm:
			if _, ok := s.commands.LoadAndDelete(key); !ok {
				s.logger.Warn("termination of an unknown command", "object", obj.String())
			}

			s.notify(func(sink Sink) { sink.OnCommandTerm(obj) })

		case asdu.CauseDeactivationCon:
			s.commands.Delete(key)
			s.logger.Debug("command deactivated", "object", obj.String())

		default:
			s.logger.Debug("ignore command reply", "asdu", a.String())
		}
	}
}
