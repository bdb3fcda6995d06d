// Package asdu provides data structures and codecs for IEC 60870-5-104 Application Service Data Units.
//
// An ASDU is the application payload carried by an I-format APDU. It consists of a fixed six byte
// data unit identifier followed by one or more information objects of the same type:
//
//	| Type identification                  |
//	| SQ | Number of objects               |
//	| T  | P/N | Cause of transmission     |
//	| Originator address                   |
//	| Common address (2 bytes, LE)         |
//	| Information object address (3 bytes) |
//	| Information element(s) [+ CP56Time2a]|
//	| ...                                  |
//
// Key Features:
//   - Type identification: TypeID constants for monitor, control and system direction types,
//     together with their fixed element layouts.
//   - Cause of transmission: Cause constants, including the interrogation group causes and
//     the negative mirror causes (unknown type, cause, common address, object address).
//   - Information objects: InformationObject carries the address, the numeric value, the quality
//     flags, the qualifier octet and the optional CP56Time2a time tag of one element.
//   - Binary codec: ASDU.MarshalBinary and Decode produce and parse the exact wire layout,
//     little-endian for every multi-byte field.
//
// Usage Example:
//
//	// Build a general interrogation activation
//	a := asdu.NewASDU(asdu.C_IC_NA_1, asdu.CauseActivation, 1,
//	    asdu.InterrogationCommand(asdu.QOIStation),
//	)
//
//	data, err := a.MarshalBinary()
//	if err != nil {
//	    return err
//	}
//
//	// ... wrap data into an I-format APDU and send it.
//
//	decoded, err := asdu.Decode(data)
package asdu
