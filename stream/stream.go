package stream

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/timzifer/halcore/internal/contract"
	"github.com/timzifer/halcore/ticks"
)

// Driver is the device side of a Stream. A driver must also implement
// DataInDriver, DataOutDriver or both.
type Driver interface {
	Description() string
}

// DataInDriver moves bytes from the stream into the device. It returns how
// many bytes of p were taken, possibly zero while the device is busy.
type DataInDriver interface {
	Driver
	DataIn(s *Stream, p []byte) int
}

// DataOutDriver moves bytes from the device into p.
type DataOutDriver interface {
	Driver
	DataOut(s *Stream, p []byte) int
}

// HardwareInitializer is implemented by drivers that need setup once the
// Stream is bound.
type HardwareInitializer interface {
	HardwareInit(s *Stream)
}

// Option configures a Stream.
type Option func(*Stream)

// WithClock sets the clock used for timeouts. The default is ticks.Default().
func WithClock(c ticks.Clock) Option {
	return func(s *Stream) {
		s.clock = c
	}
}

// WithTimeout sets how many ticks a transfer may keep retrying the driver.
func WithTimeout(t ticks.Ticks) Option {
	return func(s *Stream) {
		s.timeout = t
	}
}

// WithAddress sets the peer address used by addressed buses.
func WithAddress(addr uint32) Option {
	return func(s *Stream) {
		s.address = addr
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Stream) {
		s.logger = l
	}
}

// Stream is a Transport backed by a device driver. Each Send or Receive
// retries the driver until the whole chunk moved, the driver reported a
// non-OK status, or the timeout expired.
type Stream struct {
	id      uuid.UUID
	driver  Driver
	in      DataInDriver
	out     DataOutDriver
	clock   ticks.Clock
	timeout ticks.Ticks
	address uint32
	logger  *zap.Logger

	typ       TransferType
	status    TransferStatus
	count     int
	iteration int
	eof       bool
}

// New binds driver to a new Stream and runs its hardware initialisation.
func New(driver Driver, opts ...Option) *Stream {
	contract.AssertParams(driver != nil, "stream: nil driver")
	contract.AssertInterface(driver.Description() != "", "stream: driver without description")

	s := &Stream{
		id:     uuid.New(),
		driver: driver,
	}
	s.in, _ = driver.(DataInDriver)
	s.out, _ = driver.(DataOutDriver)
	contract.AssertInterface(s.in != nil || s.out != nil, "stream: driver moves no data")

	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = ticks.Default()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.With(
		zap.String("component", "stream"),
		zap.String("device", driver.Description()),
		zap.Stringer("stream_id", s.id),
	)

	if hw, ok := driver.(HardwareInitializer); ok {
		hw.HardwareInit(s)
	}
	s.logger.Debug("stream initialised",
		zap.Bool("data_in", s.in != nil),
		zap.Bool("data_out", s.out != nil),
	)
	return s
}

// Send moves p into the device.
func (s *Stream) Send(p []byte) int {
	contract.AssertInterface(s.in != nil, "stream: driver does not accept data")
	return s.transfer(TypeIn, p, s.in.DataIn)
}

// Receive fills p with data from the device.
func (s *Stream) Receive(p []byte) int {
	contract.AssertInterface(s.out != nil, "stream: driver does not produce data")
	return s.transfer(TypeOut, p, s.out.DataOut)
}

func (s *Stream) transfer(typ TransferType, p []byte, move func(*Stream, []byte) int) int {
	s.typ = typ
	s.status = StatusOK
	s.count = 0
	s.iteration = 0
	s.eof = false

	if len(p) == 0 {
		return 0
	}

	deadline := s.clock.Now() + s.timeout
	for {
		n := move(s, p[s.count:])
		contract.AssertState(n >= 0 && n <= len(p)-s.count, "stream: driver moved more than offered")
		s.count += n
		s.iteration++

		if s.count == len(p) || s.status != StatusOK {
			break
		}
		if s.clock.Now() >= deadline {
			s.status = StatusTimedout
			break
		}
	}

	s.eof = s.count < len(p)
	return s.count
}

// EOF reports whether the last Send or Receive stopped short.
func (s *Stream) EOF() bool {
	return s.eof
}

// SetStatus is called by drivers to report a transfer outcome. A non-OK
// status ends the current transfer after the driver call returns.
func (s *Stream) SetStatus(status TransferStatus) {
	s.status = status
}

// Status returns the outcome of the last transfer.
func (s *Stream) Status() TransferStatus {
	return s.status
}

// Type returns the direction of the last transfer.
func (s *Stream) Type() TransferType {
	return s.typ
}

// Count returns the bytes moved by the last transfer.
func (s *Stream) Count() int {
	return s.count
}

// Iteration returns how many driver calls the last transfer made.
func (s *Stream) Iteration() int {
	return s.iteration
}

// Address returns the peer address.
func (s *Stream) Address() uint32 {
	return s.address
}

// SetAddress changes the peer address for following transfers.
func (s *Stream) SetAddress(addr uint32) {
	s.address = addr
}

// Timeout returns the transfer timeout in ticks.
func (s *Stream) Timeout() ticks.Ticks {
	return s.timeout
}

// SetTimeout changes the transfer timeout.
func (s *Stream) SetTimeout(t ticks.Ticks) {
	s.timeout = t
}

// Description returns the driver description.
func (s *Stream) Description() string {
	return s.driver.Description()
}

// ID identifies this stream instance in logs.
func (s *Stream) ID() uuid.UUID {
	return s.id
}
