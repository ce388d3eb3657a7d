// SPDX-FileCopyrightText: 2026 The streamkafka Authors
// SPDX-License-Identifier: Apache-2.0

package streamkafka

// ConnectionState represents the lifecycle state of the producer's broker
// connection. Transitions are driven only by Connect and Disconnect; the
// dispatch operations read it without ever changing it.
type ConnectionState int

const (
	// Disconnected indicates no broker handle exists. Initial state, and
	// the state reached after teardown completes or a handshake fails.
	Disconnected ConnectionState = iota

	// Connecting indicates the connect handshake is in flight. A broker
	// handle exists but has not yet been confirmed ready.
	Connecting

	// Ready indicates the handshake completed and production is permitted.
	Ready

	// Closing indicates Disconnect has been invoked and teardown is in
	// progress. Production is no longer permitted even though the broker
	// handle has not been released yet.
	Closing
)

// String returns the string representation of the ConnectionState.
func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Ready:
		return "Ready"
	case Closing:
		return "Closing"
	default:
		return "Unknown"
	}
}
