// Package stream defines the byte transport consumed by cyclic buffers and
// pumps, and a driver-backed Stream implementing it.
//
// EOF on a transport is transient. It means the last call could not move the
// whole chunk it was offered, typically because a rate-limited device is
// saturated, and it clears on the next call that completes. A transport that
// is closed or broken reports that through its own status or error, never
// through EOF.
//
// Transports must honour one more rule that pumps depend on: a call that
// returns without EOF has moved every byte it was offered.
package stream
