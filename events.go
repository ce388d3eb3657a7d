// SPDX-FileCopyrightText: 2026 The streamkafka Authors
// SPDX-License-Identifier: Apache-2.0

package streamkafka

import (
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// ConnectionEventKind identifies the connection-level condition being
// re-broadcast from the broker transport.
type ConnectionEventKind int

const (
	// EventReady indicates the connect handshake completed and production
	// is now permitted.
	EventReady ConnectionEventKind = iota

	// EventError indicates an asynchronous broker error. Non-fatal to the
	// process; the connection may still be usable unless followed by
	// EventDisconnected.
	EventError

	// EventDisconnected indicates the broker handle was released. Terminal
	// for this connection.
	EventDisconnected
)

// String returns the string representation of the ConnectionEventKind.
func (k ConnectionEventKind) String() string {
	switch k {
	case EventReady:
		return "Ready"
	case EventError:
		return "Error"
	case EventDisconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// ConnectionEvent is a broker-level condition re-emitted on the producer's
// own event surface, so observers never need a reference to the underlying
// transport client.
type ConnectionEvent struct {
	// Kind is the condition being reported.
	Kind ConnectionEventKind

	// Error is set for EventError.
	Error error

	// Metrics is the final counter snapshot, set for EventDisconnected.
	Metrics ProducerMetrics
}

// DeliveryEvent is the asynchronous delivery report for a single dispatched
// record. It fires once the broker acknowledges or rejects the record.
type DeliveryEvent struct {
	// Topic the record was produced to.
	Topic string

	// Partition the record landed on (or was attempted against).
	Partition int32

	// Offset assigned by the broker. Only meaningful when Error is nil.
	Offset int64

	// Key is the record key.
	Key string

	// Token is the opaque correlation token supplied at dispatch time.
	Token any

	// Error is nil for a successful delivery.
	Error error

	// ErrorType is the error classification (empty for success).
	ErrorType string

	// Duration is the time from the dispatch call to the delivery report.
	Duration time.Duration
}

// AddConnectionEventListener adds a listener for ready, error and
// disconnected conditions. Ready and disconnected are delivered in
// transition order.
//
// Listeners are called from internal goroutines and must be thread-safe.
// A listener must not call Connect or Disconnect synchronously; spawn a
// goroutine for that. The returned function removes the listener.
func (p *Producer) AddConnectionEventListener(fn func(*ConnectionEvent)) func() {
	return p.connectionEventListeners.Add(fn)
}

// AddDeliveryEventListener adds a listener for per-record delivery reports.
// This is the only channel through which per-message durability is
// confirmed; the dispatch operations themselves return before the broker
// acknowledges.
//
// Listeners are called from internal goroutines and must be thread-safe.
// The returned function removes the listener.
func (p *Producer) AddDeliveryEventListener(fn func(*DeliveryEvent)) func() {
	return p.deliveryEventListeners.Add(fn)
}

// dispatchConnectionEvent re-broadcasts a connection condition to all
// registered listeners. Emission is serialized on eventMu; Connect and
// Disconnect take eventMu themselves before releasing the state lock, which
// pins lifecycle events to transition order.
func (p *Producer) dispatchConnectionEvent(event *ConnectionEvent) {
	p.eventMu.Lock()
	defer p.eventMu.Unlock()
	p.emitConnectionEvent(event)
}

// emitConnectionEvent logs and delivers a connection event. Callers must
// hold eventMu.
func (p *Producer) emitConnectionEvent(event *ConnectionEvent) {
	if event.Error != nil {
		p.activeLogger().Log(kgo.LogLevelWarn, "connection event",
			"kind", event.Kind.String(), "error", event.Error.Error())
	} else {
		p.activeLogger().Log(kgo.LogLevelDebug, "connection event",
			"kind", event.Kind.String())
	}

	p.connectionEventListeners.Visit(func(listener func(*ConnectionEvent)) {
		listener(event)
	})
}

// dispatchDeliveryEvent re-broadcasts a delivery report to all registered
// listeners.
func (p *Producer) dispatchDeliveryEvent(event *DeliveryEvent) {
	if event.Error != nil {
		p.activeLogger().Log(kgo.LogLevelWarn, "delivery failed",
			"topic", event.Topic, "key", event.Key, "error", event.Error.Error())
	}

	p.deliveryEventListeners.Visit(func(listener func(*DeliveryEvent)) {
		listener(event)
	})
}
