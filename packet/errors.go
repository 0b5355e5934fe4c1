package packet

import "fmt"

// ErrorCode is the outcome of the last transfer.
type ErrorCode int

const (
	ErrNone ErrorCode = iota
	ErrUnknown
	// ErrUnsupportedInterface means the driver lacks the requested operation.
	ErrUnsupportedInterface
	// ErrNoPacketSize means no incoming packet was announced before Recv.
	ErrNoPacketSize
	ErrTimedout
	// ErrNoAck means the addressed peer did not answer.
	ErrNoAck
	ErrBus
	ErrTargetNoAck
	ErrArbitrationLost
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNone:
		return "none"
	case ErrUnknown:
		return "unknown"
	case ErrUnsupportedInterface:
		return "unsupported interface"
	case ErrNoPacketSize:
		return "no packet size"
	case ErrTimedout:
		return "timed out"
	case ErrNoAck:
		return "no acknowledge"
	case ErrBus:
		return "bus error"
	case ErrTargetNoAck:
		return "target no acknowledge"
	case ErrArbitrationLost:
		return "arbitration lost"
	default:
		return fmt.Sprintf("error code %d", int(c))
	}
}

// TransferError is returned by Packet.Err after a failed transfer.
type TransferError struct {
	Device  string
	Address uint32
	Code    ErrorCode
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("packet %s: address %Xh: %s", e.Device, e.Address, e.Code)
}

// Is matches another *TransferError with the same code, so callers can test
// errors.Is(err, &TransferError{Code: ErrNoAck}).
func (e *TransferError) Is(target error) bool {
	t, ok := target.(*TransferError)
	return ok && t.Code == e.Code
}
