// Package halcore routes application output to devices by role.
//
// A Comm holds at most one device per Role. Each device pairs a cyclic
// buffer with a stream sink: Write stores one element in the buffer and
// Flush pumps every buffer into its sink with a bounded retry budget. The
// building blocks live in their own packages: queue, cyclic, stream,
// packet, pump and ticks.
package halcore
