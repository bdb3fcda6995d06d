package asdu

import "strconv"

// Cause is the 6-bit cause of transmission (COT) of an ASDU.
type Cause uint8

// Cause of transmission values.
const (
	CausePeriodic          Cause = 1  // periodic, cyclic
	CauseBackground        Cause = 2  // background scan
	CauseSpontaneous       Cause = 3  // spontaneous
	CauseInitialized       Cause = 4  // initialized
	CauseRequest           Cause = 5  // request or requested
	CauseActivation        Cause = 6  // activation
	CauseActivationCon     Cause = 7  // activation confirmation
	CauseDeactivation      Cause = 8  // deactivation
	CauseDeactivationCon   Cause = 9  // deactivation confirmation
	CauseActivationTerm    Cause = 10 // activation termination
	CauseReturnRemote      Cause = 11 // return information caused by a remote command
	CauseReturnLocal       Cause = 12 // return information caused by a local command
	CauseFileTransfer      Cause = 13 // file transfer
	CauseInterrogated      Cause = 20 // interrogated by station interrogation
	CauseInterrogatedGroup Cause = 21 // interrogated by group 1 interrogation, groups 2..16 follow
	CauseCounterRequest    Cause = 37 // requested by general counter request
	CauseCounterGroup      Cause = 38 // requested by group 1 counter request, groups 2..4 follow
	CauseUnknownType       Cause = 44 // unknown type identification
	CauseUnknownCause      Cause = 45 // unknown cause of transmission
	CauseUnknownCommonAddr Cause = 46 // unknown common address of ASDU
	CauseUnknownObjectAddr Cause = 47 // unknown information object address
)

const maxCause = 0x3F

var causeNames = map[Cause]string{
	CausePeriodic:          "periodic",
	CauseBackground:        "background",
	CauseSpontaneous:       "spontaneous",
	CauseInitialized:       "initialized",
	CauseRequest:           "request",
	CauseActivation:        "activation",
	CauseActivationCon:     "activation-con",
	CauseDeactivation:      "deactivation",
	CauseDeactivationCon:   "deactivation-con",
	CauseActivationTerm:    "activation-term",
	CauseReturnRemote:      "return-remote",
	CauseReturnLocal:       "return-local",
	CauseFileTransfer:      "file-transfer",
	CauseInterrogated:      "interrogated",
	CauseCounterRequest:    "counter-request",
	CauseUnknownType:       "unknown-type",
	CauseUnknownCause:      "unknown-cause",
	CauseUnknownCommonAddr: "unknown-common-address",
	CauseUnknownObjectAddr: "unknown-object-address",
}

// String returns a readable name of the cause.
func (c Cause) String() string {
	if name, ok := causeNames[c]; ok {
		return name
	}

	switch {
	case c >= CauseInterrogatedGroup && c < CauseInterrogatedGroup+16:
		return "interrogated-group-" + strconv.Itoa(int(c-CauseInterrogatedGroup)+1)
	case c >= CauseCounterGroup && c < CauseCounterGroup+4:
		return "counter-group-" + strconv.Itoa(int(c-CauseCounterGroup)+1)
	}

	return "Cause(" + strconv.Itoa(int(c)) + ")"
}

// IsInterrogated reports whether the cause answers a station or group interrogation.
func (c Cause) IsInterrogated() bool {
	return c >= CauseInterrogated && c < CauseInterrogatedGroup+16
}

// IsCounterRequested reports whether the cause answers a general or group counter interrogation.
func (c Cause) IsCounterRequested() bool {
	return c >= CauseCounterRequest && c < CauseCounterGroup+4
}

// IsUnknownMirror reports whether the cause is one of the negative mirrors 44..47
// returned by a station that could not process an activation.
func (c Cause) IsUnknownMirror() bool {
	return c >= CauseUnknownType && c <= CauseUnknownObjectAddr
}
