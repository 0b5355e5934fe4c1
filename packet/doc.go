// Package packet implements message-oriented device I/O.
//
// A Packet wraps a driver that moves whole messages: Send hands one message
// to the device, Recv fetches the next one after learning its size through
// PeekRecvSize. Every transfer records an error code that the classifiers in
// this package turn into log entries. Transfers keep calling the driver
// until they complete, the driver reports an error, or the transfer timeout
// in ticks expires.
package packet
