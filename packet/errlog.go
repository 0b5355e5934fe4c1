package packet

import (
	"go.uber.org/zap"

	"github.com/timzifer/halcore/internal/contract"
	"github.com/timzifer/halcore/stream"
)

// Class groups error codes by how they are reported.
type Class int

const (
	// ClassOK is a transfer without error.
	ClassOK Class = iota
	// ClassNoAcknowledge is an absent peer, common while probing a bus.
	ClassNoAcknowledge
	// ClassGeneric is any other failure.
	ClassGeneric
)

func (c Class) String() string {
	switch c {
	case ClassOK:
		return "ok"
	case ClassNoAcknowledge:
		return "no_acknowledge"
	default:
		return "generic"
	}
}

// Classify maps an error code to its class.
func Classify(code ErrorCode) Class {
	switch code {
	case ErrNone:
		return ClassOK
	case ErrNoAck:
		return ClassNoAcknowledge
	default:
		return ClassGeneric
	}
}

// ClassifyAndLogNAck logs the last transfer error of p, if any. A missing
// acknowledge is logged at info level as a device not found; anything else
// as a communication error. It reports whether there was an error.
func ClassifyAndLogNAck(p *Packet) bool {
	contract.AssertParams(p.IsValid(), "packet: invalid packet")

	switch Classify(p.code) {
	case ClassOK:
		return false
	case ClassNoAcknowledge:
		p.logger.Info("device not found",
			zap.String("device_address", stream.HexUpper(p.sendTo)),
		)
	default:
		logGenericError(p)
	}
	return true
}

// ClassifyAndLogGeneric logs any error of the last transfer of p as a
// communication error. It reports whether there was an error.
func ClassifyAndLogGeneric(p *Packet) bool {
	contract.AssertParams(p.IsValid(), "packet: invalid packet")

	if Classify(p.code) == ClassOK {
		return false
	}
	logGenericError(p)
	return true
}

func logGenericError(p *Packet) {
	p.logger.Warn("communication error",
		zap.String("device_address", stream.HexUpper(p.sendTo)),
		zap.String("error_code", stream.HexUpper(uint32(p.code))),
		zap.Stringer("error", p.code),
	)
}
