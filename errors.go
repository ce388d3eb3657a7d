// SPDX-FileCopyrightText: 2026 The streamkafka Authors
// SPDX-License-Identifier: Apache-2.0

package streamkafka

import "errors"

var (
	// ErrConfig indicates the producer configuration is missing or invalid.
	ErrConfig = &metricError{
		metric:  "config_error",
		message: "invalid configuration",
	}

	// ErrAlreadyConnected indicates Connect was called while a broker
	// handle already exists.
	ErrAlreadyConnected = &metricError{
		metric:  "already_connected",
		message: "producer already connected",
	}

	// ErrNotConnected indicates a send was attempted without a live
	// broker handle. Callers must Connect before producing.
	ErrNotConnected = &metricError{
		metric:  "not_connected",
		message: "producer not connected",
	}

	// ErrConnect indicates the broker rejected the connect handshake.
	ErrConnect = &metricError{
		metric:  "connect_error",
		message: "connect handshake failed",
	}

	// ErrTimeout indicates a broker operation exceeded its deadline.
	ErrTimeout = &metricError{
		metric:  "timeout",
		message: "timeout",
	}

	// ErrInvalidEnvelope indicates required envelope routing fields are
	// missing or empty.
	ErrInvalidEnvelope = &metricError{
		metric:  "invalid_envelope",
		message: "invalid envelope",
	}

	// ErrSerialization indicates the envelope payload could not be
	// serialized to bytes.
	ErrSerialization = &metricError{
		metric:  "serialization_error",
		message: "serialization failed",
	}

	// ErrBroker indicates an asynchronous broker-side failure, reported
	// via the delivery or connection event channel.
	ErrBroker = &metricError{
		metric:  "broker_error",
		message: "broker error",
	}
)

// metricError is an internal error type that wraps errors with a type
// classification for metrics and observability. The metric field provides a
// string label for grouping errors in metrics systems.
type metricError struct {
	metric  string // Type classification for metrics (e.g., "config_error", "broker_error")
	message string // Human-readable message
}

// Error implements the error interface.
func (e *metricError) Error() string {
	return e.message
}

func (e *metricError) Metric() string {
	return e.metric
}

func (e *metricError) Is(target error) bool {
	if t, ok := target.(*metricError); ok {
		return e.message == t.message
	}
	return false
}

// errorType extracts the error type string for metrics classification.
// Walks the error chain to find metricError types.
func errorType(err error) string {
	if err == nil {
		return ""
	}

	var me *metricError
	if errors.As(err, &me) {
		return me.Metric()
	}

	return "unknown"
}
