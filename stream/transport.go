package stream

// Sink accepts bytes.
type Sink interface {
	// Send offers p and returns how many bytes were accepted.
	Send(p []byte) int
	// EOF reports whether the last Send stopped short.
	EOF() bool
}

// Source produces bytes.
type Source interface {
	// Receive fills p and returns how many bytes were produced.
	Receive(p []byte) int
	// EOF reports whether the last Receive stopped short.
	EOF() bool
}

// Transport is both a Sink and a Source.
type Transport interface {
	Sink
	Source
}

// TransferType tells the direction of the last transfer.
type TransferType int

const (
	TypeNone TransferType = iota
	// TypeIn is data going into the stream, towards the device.
	TypeIn
	// TypeOut is data coming out of the stream, from the device.
	TypeOut
)

func (t TransferType) String() string {
	switch t {
	case TypeIn:
		return "in"
	case TypeOut:
		return "out"
	default:
		return "none"
	}
}

// TransferStatus is the outcome of the last transfer.
type TransferStatus int

const (
	StatusOK TransferStatus = iota
	// StatusStopped is a graceful partial completion requested by the device.
	StatusStopped
	StatusTimedout
	// StatusNoAck means the addressed peer did not answer.
	StatusNoAck
	StatusBusError
	StatusTargetNoAck
	StatusArbitrationLost
	StatusUnknownError
)

func (s TransferStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusStopped:
		return "stopped"
	case StatusTimedout:
		return "timed out"
	case StatusNoAck:
		return "no acknowledge"
	case StatusBusError:
		return "bus error"
	case StatusTargetNoAck:
		return "target no acknowledge"
	case StatusArbitrationLost:
		return "arbitration lost"
	default:
		return "unknown error"
	}
}
