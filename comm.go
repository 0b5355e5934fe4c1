package halcore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/timzifer/halcore/cyclic"
	"github.com/timzifer/halcore/internal/contract"
	"github.com/timzifer/halcore/internal/core"
	"github.com/timzifer/halcore/packet"
	"github.com/timzifer/halcore/pump"
	"github.com/timzifer/halcore/stream"
)

var (
	// ErrIncomplete is wrapped by Flush errors of devices whose buffer could
	// not be drained within the retry budget.
	ErrIncomplete = errors.New("halcore: flush incomplete")
	// ErrNoDevice is returned when no device is set for a role.
	ErrNoDevice = errors.New("halcore: no device for role")
)

// Role is the purpose a device serves on the board.
type Role int

const (
	RoleLog Role = iota
	RoleP2PSerialLocal
	RoleP2PSerialExpansion
	RoleSerialNetwork
	RoleHighSpeedDeviceLocal
	RoleHighSpeedDeviceExpansion
	RoleLowSpeedLocalBus
	RoleLowSpeedExpansionBus
	RolePeripheralBus
	RoleIPNetwork
	RoleIPNetworkSerialConfig

	roleCount
)

var roleDescriptions = [roleCount]string{
	RoleLog:                      "Log messages",
	RoleP2PSerialLocal:           "P2P serial local",
	RoleP2PSerialExpansion:       "P2P serial expansion",
	RoleSerialNetwork:            "Serial network",
	RoleHighSpeedDeviceLocal:     "High speed local",
	RoleHighSpeedDeviceExpansion: "High speed expansion",
	RoleLowSpeedLocalBus:         "Low speed local bus",
	RoleLowSpeedExpansionBus:     "Low speed expansion bus",
	RolePeripheralBus:            "Peripheral bus",
	RoleIPNetwork:                "IP network",
	RoleIPNetworkSerialConfig:    "IP net. serial config",
}

// Roles returns every role in order.
func Roles() []Role {
	roles := make([]Role, roleCount)
	for i := range roles {
		roles[i] = Role(i)
	}
	return roles
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r >= 0 && r < roleCount
}

// String returns the role description.
func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleDescriptions[r]
}

// Key returns a short lower-case name for labels and channel names.
func (r Role) Key() string {
	s := strings.ToLower(r.String())
	s = strings.NewReplacer(". ", "_", " ", "_", ".", "").Replace(s)
	return s
}

// Recorder receives channel activity, typically to export it as metrics.
type Recorder interface {
	pump.Recorder
	packet.ErrorRecorder
	RecordWrite(channel string, accepted bool)
	RecordFlush(err error)
}

// errorReporter is a sink that classifies its own transfer errors.
type errorReporter interface {
	SetErrorRecorder(r packet.ErrorRecorder)
}

// Device is the buffer and sink serving one role.
type Device struct {
	mu     sync.Mutex
	role   Role
	sink   stream.Sink
	buffer *cyclic.Buffer
	pumper *pump.Pumper
}

// Role returns the role the device serves.
func (d *Device) Role() Role {
	return d.role
}

// Sink returns the device sink.
func (d *Device) Sink() stream.Sink {
	return d.sink
}

// Buffer returns the device buffer. Callers must not use it concurrently
// with Write or Flush.
func (d *Device) Buffer() *cyclic.Buffer {
	return d.buffer
}

// Name returns the channel name used in logs and errors.
func (d *Device) Name() string {
	return d.role.Key()
}

// Elements returns how many elements wait to be flushed.
func (d *Device) Elements() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buffer.Elements()
}

// Flush drains the device buffer into its sink.
func (d *Device) Flush(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	res := d.pumper.Drain(ctx, d.buffer, d.sink)
	if !res.Ok() {
		return fmt.Errorf("%w: %d elements left after %d attempts", ErrIncomplete, res.Remaining, res.Attempts)
	}
	return nil
}

func (d *Device) write(elem []byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buffer.Push(elem)
}

// Option configures a Comm.
type Option func(*Comm)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Comm) {
		c.logger = l
	}
}

// WithRetries sets the retry budget of every device flush.
func WithRetries(n int) Option {
	return func(c *Comm) {
		c.retries = n
	}
}

// WithRecorder attaches a Recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Comm) {
		c.recorder = r
	}
}

// Comm manages the devices of a board by role. It is safe for concurrent
// use; writes to one device are serialised with its flushes.
type Comm struct {
	mu           sync.RWMutex
	devices      [roleCount]*Device
	orchestrator *core.FlushOrchestrator
	logger       *zap.Logger
	retries      int
	recorder     Recorder
}

// NewComm returns a Comm without devices.
func NewComm(opts ...Option) *Comm {
	c := &Comm{
		orchestrator: core.NewFlushOrchestrator(nil),
		retries:      pump.DefaultRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	contract.AssertParams(c.retries >= 0, "halcore: negative retry budget")
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.With(zap.String("component", "comm"))
	c.logger.Info("comm initialised", zap.Int("max_devices", int(roleCount)))
	return c
}

// SetDevice assigns sink and buffer to role, replacing any previous device.
// A sink that classifies its transfer errors, such as packet.Sink, reports
// them to the Comm recorder.
func (c *Comm) SetDevice(role Role, sink stream.Sink, buffer *cyclic.Buffer) *Device {
	contract.AssertParams(role.Valid(), "halcore: invalid role")
	contract.AssertParams(sink != nil && buffer != nil, "halcore: nil sink or buffer")

	opts := []pump.Option{pump.WithRetries(c.retries), pump.WithLogger(c.logger)}
	if c.recorder != nil {
		opts = append(opts, pump.WithRecorder(c.recorder))
		if r, ok := sink.(errorReporter); ok {
			r.SetErrorRecorder(c.recorder)
		}
	}
	d := &Device{
		role:   role,
		sink:   sink,
		buffer: buffer,
		pumper: pump.NewPumper(role.Key(), opts...),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev := c.devices[role]; prev != nil {
		c.logger.Warn("manager driver overwrite",
			zap.Stringer("role", role),
			zap.String("set", describe(prev.sink)),
			zap.String("new", describe(sink)),
		)
	}
	c.devices[role] = d
	_ = c.orchestrator.ReplaceChannel(d)
	return d
}

// HasDevice reports whether a device serves role.
func (c *Comm) HasDevice(role Role) bool {
	if !role.Valid() {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.devices[role] != nil
}

// Device returns the device serving role, or an error wrapping ErrNoDevice.
func (c *Comm) Device(role Role) (*Device, error) {
	contract.AssertParams(role.Valid(), "halcore: invalid role")
	c.mu.RLock()
	defer c.mu.RUnlock()
	if d := c.devices[role]; d != nil {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoDevice, role)
}

// Write stores elem in the buffer of the device serving role. It returns
// false when the buffer refused the element. Writing to a role without a
// device is a contract violation.
func (c *Comm) Write(role Role, elem []byte) bool {
	d, err := c.Device(role)
	contract.AssertState(err == nil, "halcore: write to a role without device")

	ok := d.write(elem)
	if c.recorder != nil {
		c.recorder.RecordWrite(d.Name(), ok)
	}
	return ok
}

// Flush drains every device in the order its role was first set. Devices
// that could not be drained are reported in the joined error, each
// wrapping ErrIncomplete.
func (c *Comm) Flush(ctx context.Context) error {
	if c.recorder != nil {
		ctx = core.WithFlushObserver(ctx, c.recorder.RecordFlush)
	}
	err := c.orchestrator.FlushAll(ctx)
	if err != nil {
		c.logger.Debug("flush incomplete", zap.Error(err))
	}
	return err
}

// Rounds returns how many flush rounds have completed.
func (c *Comm) Rounds() uint64 {
	return c.orchestrator.Rounds()
}

// CleanRounds returns how many flush rounds drained every device.
func (c *Comm) CleanRounds() uint64 {
	return c.orchestrator.CleanRounds()
}

func describe(sink stream.Sink) string {
	if d, ok := sink.(interface{ Description() string }); ok {
		return d.Description()
	}
	return fmt.Sprintf("%T", sink)
}
