package packet

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/timzifer/halcore/internal/contract"
	"github.com/timzifer/halcore/ticks"
)

// Driver is the device side of a Packet. A usable driver implements
// Transmitter, Receiver or both; Exchanger and HardwareInitializer are
// optional.
type Driver interface {
	Description() string
}

// Transmitter hands message bytes to the device and returns how many it
// took, possibly zero while the device is busy.
type Transmitter interface {
	Transmit(p *Packet, data []byte) int
}

// Receiver fetches incoming messages. RecvSize returns the size of the next
// message, or zero if none is pending yet.
type Receiver interface {
	RecvSize(p *Packet, max int) int
	Receive(p *Packet, buf []byte) int
}

// Exchanger sends and receives in the same transaction, as full-duplex buses
// do.
type Exchanger interface {
	Exchange(p *Packet, send, recv []byte) (sent, received int)
}

// HardwareInitializer is implemented by drivers that need setup once bound.
type HardwareInitializer interface {
	HardwareInit(p *Packet)
}

// Option configures a Packet.
type Option func(*Packet)

// WithClock sets the clock used for timeouts. The default is ticks.Default().
func WithClock(c ticks.Clock) Option {
	return func(p *Packet) {
		p.clock = c
	}
}

// WithLogger sets the logger used by the classifiers.
func WithLogger(l *zap.Logger) Option {
	return func(p *Packet) {
		p.logger = l
	}
}

// WithSendTimeout sets the initial send timeout.
func WithSendTimeout(t ticks.Ticks) Option {
	return func(p *Packet) {
		p.sendTimeout = t
	}
}

// WithRecvTimeout sets the initial receive timeout.
func WithRecvTimeout(t ticks.Ticks) Option {
	return func(p *Packet) {
		p.recvTimeout = t
	}
}

// Packet is a message-oriented device handle.
type Packet struct {
	id     uuid.UUID
	driver Driver
	tx     Transmitter
	rx     Receiver
	bx     Exchanger
	clock  ticks.Clock
	logger *zap.Logger

	sendTimeout ticks.Ticks
	recvTimeout ticks.Ticks
	sendTo      uint32
	recvFrom    uint32

	code      ErrorCode
	iteration int
	recvSize  int
	sent      int
	received  int
}

// New binds driver to a new Packet and runs its hardware initialisation.
func New(driver Driver, opts ...Option) *Packet {
	contract.AssertParams(driver != nil, "packet: nil driver")

	p := &Packet{
		id:     uuid.New(),
		driver: driver,
	}
	p.tx, _ = driver.(Transmitter)
	p.rx, _ = driver.(Receiver)
	p.bx, _ = driver.(Exchanger)
	contract.AssertInterface(p.IsValid(), "packet: driver without description or data operations")

	for _, opt := range opts {
		opt(p)
	}
	if p.clock == nil {
		p.clock = ticks.Default()
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	p.logger = p.logger.With(
		zap.String("component", "packet"),
		zap.String("device", driver.Description()),
		zap.Stringer("packet_id", p.id),
	)

	if hw, ok := driver.(HardwareInitializer); ok {
		hw.HardwareInit(p)
	}
	contract.AssertState(p.IsValid(), "packet: driver invalid after hardware init")
	return p
}

// IsValid reports whether p is bound to a driver that can move data.
func (p *Packet) IsValid() bool {
	return p != nil && p.driver != nil && p.driver.Description() != "" &&
		(p.tx != nil || p.rx != nil)
}

// Send hands data to the device as one message and returns how many bytes
// it took. A partial send leaves a non-zero error code.
func (p *Packet) Send(data []byte) int {
	p.assertValid()
	p.code = ErrNone
	p.iteration = 0
	p.sent = 0

	if p.tx == nil {
		p.code = ErrUnsupportedInterface
		return 0
	}
	if len(data) == 0 {
		return 0
	}

	deadline := p.clock.Now() + p.sendTimeout
	for {
		n := p.tx.Transmit(p, data[p.sent:])
		contract.AssertState(n >= 0 && n <= len(data)-p.sent, "packet: driver sent more than offered")
		p.sent += n
		if p.sent == len(data) {
			break
		}
		p.expire(deadline)
		p.iteration++
		if p.code != ErrNone {
			break
		}
	}
	return p.sent
}

// SentCount returns the bytes taken by the last Send or Bidir.
func (p *Packet) SentCount() int {
	p.assertValid()
	return p.sent
}

// PeekRecvSize waits for the next incoming message and returns its size
// without consuming it. The size is cached until Recv or ClearRecvSize.
func (p *Packet) PeekRecvSize(max int) int {
	p.assertValid()
	p.code = ErrNone
	p.iteration = 0

	if p.rx == nil {
		p.code = ErrUnsupportedInterface
		return 0
	}
	if p.recvSize > 0 {
		return p.recvSize
	}

	deadline := p.clock.Now() + p.recvTimeout
	for {
		if n := p.rx.RecvSize(p, max); n > 0 {
			p.recvSize = n
			break
		}
		p.expire(deadline)
		p.iteration++
		if p.code != ErrNone {
			break
		}
	}
	return p.recvSize
}

// ClearRecvSize forgets a size obtained by PeekRecvSize.
func (p *Packet) ClearRecvSize() {
	p.assertValid()
	p.recvSize = 0
}

// Recv reads the next message into buf and returns its length. buf must be
// large enough for the whole message.
func (p *Packet) Recv(buf []byte) int {
	p.assertValid()
	contract.AssertParams(len(buf) > 0, "packet: empty receive buffer")
	p.code = ErrNone
	p.iteration = 0
	p.received = 0

	if p.rx == nil {
		p.code = ErrUnsupportedInterface
		return 0
	}
	if p.recvSize == 0 && p.PeekRecvSize(len(buf)) == 0 {
		p.code = ErrNoPacketSize
		return 0
	}
	if len(buf) < p.recvSize {
		p.logger.Error("buffer size smaller than packet",
			zap.Int("buffer_size", len(buf)),
			zap.Int("packet", p.recvSize),
		)
		contract.AssertParams(false, "packet: receive buffer smaller than packet")
	}

	size := p.recvSize
	deadline := p.clock.Now() + p.recvTimeout
	for {
		n := p.rx.Receive(p, buf[p.received:size])
		contract.AssertState(n >= 0 && n <= size-p.received, "packet: driver received more than announced")
		p.received += n
		if p.received == size {
			break
		}
		p.expire(deadline)
		p.iteration++
		if p.code != ErrNone {
			break
		}
	}

	p.recvSize = 0
	return p.received
}

// RecvCount returns the bytes read by the last Recv or Bidir.
func (p *Packet) RecvCount() int {
	p.assertValid()
	return p.received
}

// Bidir sends and receives in one exchange, using the send timeout.
func (p *Packet) Bidir(send, recv []byte) (sent, received int) {
	p.assertValid()
	contract.AssertParams(len(send) > 0 && len(recv) > 0, "packet: empty exchange buffer")
	p.code = ErrNone
	p.iteration = 0
	p.sent = 0
	p.received = 0
	p.recvSize = 0

	if p.bx == nil {
		p.code = ErrUnsupportedInterface
		return 0, 0
	}

	deadline := p.clock.Now() + p.sendTimeout
	for {
		s, r := p.bx.Exchange(p, send[p.sent:], recv[p.received:])
		contract.AssertState(s >= 0 && s <= len(send)-p.sent && r >= 0 && r <= len(recv)-p.received,
			"packet: driver exchanged more than offered")
		p.sent += s
		p.received += r
		if p.sent == len(send) && p.received == len(recv) {
			break
		}
		p.expire(deadline)
		p.iteration++
		if p.code != ErrNone {
			break
		}
	}
	return p.sent, p.received
}

func (p *Packet) expire(deadline ticks.Ticks) {
	if p.code == ErrNone && p.clock.Now() >= deadline {
		p.code = ErrTimedout
	}
}

// SendTo sets the destination address of following sends.
func (p *Packet) SendTo(addr uint32) {
	p.assertValid()
	p.sendTo = addr
}

// Destination returns the address set by SendTo.
func (p *Packet) Destination() uint32 {
	return p.sendTo
}

// RecvFrom returns the source address of the last received message.
func (p *Packet) RecvFrom() uint32 {
	p.assertValid()
	return p.recvFrom
}

// SetRecvFrom is called by drivers to record the source of a message.
func (p *Packet) SetRecvFrom(addr uint32) {
	p.recvFrom = addr
}

// SetSendTimeout sets the send timeout in ticks.
func (p *Packet) SetSendTimeout(t ticks.Ticks) {
	p.assertValid()
	p.sendTimeout = t
}

// SetRecvTimeout sets the receive timeout in ticks.
func (p *Packet) SetRecvTimeout(t ticks.Ticks) {
	p.assertValid()
	p.recvTimeout = t
}

// Code returns the error code of the last transfer.
func (p *Packet) Code() ErrorCode {
	p.assertValid()
	return p.code
}

// Err returns the last transfer error, or nil if it succeeded.
func (p *Packet) Err() error {
	p.assertValid()
	if p.code == ErrNone {
		return nil
	}
	return &TransferError{Device: p.driver.Description(), Address: p.sendTo, Code: p.code}
}

// SetError is called by drivers to report a failure. It ends the current
// transfer once the driver call returns.
func (p *Packet) SetError(code ErrorCode) {
	p.code = code
}

// Iteration returns how many extra driver calls the last transfer needed.
func (p *Packet) Iteration() int {
	return p.iteration
}

// Description returns the driver description.
func (p *Packet) Description() string {
	p.assertValid()
	return p.driver.Description()
}

// ID identifies this packet instance in logs.
func (p *Packet) ID() uuid.UUID {
	return p.id
}

func (p *Packet) assertValid() {
	contract.AssertParams(p.IsValid(), "packet: invalid packet")
}
