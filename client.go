// SPDX-FileCopyrightText: 2026 The streamkafka Authors
// SPDX-License-Identifier: Apache-2.0

package streamkafka

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"
)

// kafkaClient is an interface for the franz-go Kafka client methods we need.
// This allows us to mock the client for testing while using the real
// kgo.Client in production.
type kafkaClient interface {
	// Ping forces a round trip to the cluster and returns once the brokers
	// respond. This is the connect handshake: a nil return is the
	// authoritative readiness signal.
	Ping(ctx context.Context) error

	// Produce enqueues a record asynchronously. The promise fires with the
	// delivery report once the broker acknowledges or rejects the record.
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))

	// Flush forces all buffered records out to the brokers and waits for
	// them to be sent. The poll loop uses this as its drain primitive.
	Flush(ctx context.Context) error

	// Close closes the Kafka client and releases resources.
	Close()

	// BufferedProduceRecords returns the current number of buffered records.
	BufferedProduceRecords() int64

	// BufferedProduceBytes returns the current number of buffered bytes.
	BufferedProduceBytes() int64
}

// Verify that *kgo.Client implements kafkaClient interface at compile time.
var _ kafkaClient = (*kgo.Client)(nil)
