package transport

// Control markers are single-byte messages sent on the same subject as data
// payloads. MarkerStart announces a producer warming up its connection;
// MarkerEnd terminates a stream for receivers that asked for one.
//
// Known limitation, kept for wire compatibility:
// a receiver classifies a message by its first byte only, so a data payload
// that happens to begin with 0xFE or 0xFF is indistinguishable from a
// marker. Length-prefixed frames on disk are unaffected; only the transport
// path carries markers.
const (
	MarkerStart byte = 0xFE
	MarkerEnd   byte = 0xFF
)

type msgKind int

const (
	kindData msgKind = iota
	kindStart
	kindEnd
)

// classify decides how the receive loop treats one inbound message. END is
// only honored when the receiver expects a terminated stream; otherwise a
// leading 0xFF byte is data like any other.
func classify(payload []byte, expectEnd bool) msgKind {
	if len(payload) >= 1 && payload[0] == MarkerStart {
		return kindStart
	}
	if expectEnd && len(payload) >= 1 && payload[0] == MarkerEnd {
		return kindEnd
	}
	return kindData
}
