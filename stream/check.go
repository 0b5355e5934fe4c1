package stream

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/timzifer/halcore/internal/contract"
)

// HexUpper formats v the way device logs show addresses and codes: upper
// case hexadecimal with an h suffix.
func HexUpper(v uint32) string {
	return fmt.Sprintf("%Xh", v)
}

// CheckTransferStatus classifies the last transfer of s. OK and Stopped are
// successful; a missing acknowledge is logged as a device not found; any
// other status is logged as a communication error. It reports whether the
// transfer succeeded.
func CheckTransferStatus(s *Stream) bool {
	contract.AssertParams(s != nil && s.driver != nil, "stream: invalid stream")

	switch s.Status() {
	case StatusOK, StatusStopped:
		return true
	case StatusNoAck:
		s.logger.Info("device not found", s.statusFields()...)
	default:
		s.logger.Warn("communication error", s.statusFields()...)
	}
	return false
}

func (s *Stream) statusFields() []zap.Field {
	return []zap.Field{
		zap.Stringer("type", s.typ),
		zap.String("address", HexUpper(s.address)),
		zap.Uint64("timeout", uint64(s.timeout)),
		zap.Int("octets", s.count),
		zap.String("error_code", HexUpper(uint32(s.status))),
		zap.Stringer("status", s.status),
	}
}
