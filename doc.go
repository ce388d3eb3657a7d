// SPDX-FileCopyrightText: 2026 The streamkafka Authors
// SPDX-License-Identifier: Apache-2.0

// Package streamkafka provides a message-production client that sits between
// application code and Kafka. It accepts semantically-typed domain events,
// serializes them into a canonical JSON envelope, and hands them to the
// broker with configurable durability and batching guarantees.
//
// # Overview
//
// A Producer owns one logical broker connection and its full lifecycle:
// the connect handshake, the delivery-report drain loop, and teardown. The
// dispatch surface (SendMessage, SendNotify, SendCommand) builds the
// envelope for each message family, serializes it, and enqueues it into the
// transport without waiting for the broker; durability is confirmed later
// through delivery events.
//
// # Quick Start
//
// Create a Producer by setting fields directly:
//
//	producer := &streamkafka.Producer{
//	    Config: streamkafka.Config{
//	        Brokers:      []string{"localhost:9092"},
//	        ClientID:     "transfers-service",
//	        RequiredAcks: streamkafka.AcksAll,
//	    },
//	}
//
//	if err := producer.Connect(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	defer producer.Disconnect(context.Background())
//
//	result, err := producer.SendMessage(context.Background(),
//	    "transfers",                     // topic
//	    map[string]any{"amount": 10},    // payload
//	    "k1",                            // key
//	    "fsp1", "fsp2",                  // from, to
//	    nil,                             // metadata
//	)
//	if err != nil {
//	    log.Printf("dispatch failed: %v", err)
//	}
//
// # Connection Lifecycle
//
// The connection moves through four states:
//
//	Disconnected --Connect()--> Connecting --handshake ok--> Ready
//	Ready --Disconnect()--> Closing --handle released--> Disconnected
//	Connecting --handshake error--> Disconnected (Connect returns the error)
//
// Connect returns only once the cluster has responded to the handshake;
// no message is produced before that. A failed Connect leaves the producer
// Disconnected and safe to retry. Disconnect cancels the drain loop before
// releasing the broker handle, never fails, and is idempotent.
//
// # Message Families
//
// Three envelope families share the same canonical record:
//
//   - SendMessage: plain domain message (payload, key, routing identities)
//   - SendNotify: adds an event name and an optional failure reason
//   - SendCommand: adds an HTTP-style method token and a processing status
//
// Every envelope requires non-empty from and to routing identities and a
// payload that is representable as bytes after serialization.
//
// # Delivery Guarantees
//
// The dispatch operations never block on the broker: they enqueue into the
// transport's buffer and return a SendResult immediately. No per-message
// durability guarantee is returned synchronously — only the DeliveryEvent
// does that:
//
//	producer.AddDeliveryEventListener(func(e *streamkafka.DeliveryEvent) {
//	    if e.Error != nil {
//	        log.Printf("delivery failed: topic=%s key=%s %v", e.Topic, e.Key, e.Error)
//	    }
//	})
//
// Connection health is observed the same way, without holding a reference
// to the underlying transport client:
//
//	producer.AddConnectionEventListener(func(e *streamkafka.ConnectionEvent) {
//	    log.Printf("connection: %s", e.Kind)
//	})
//
// # Thread Safety
//
// The Producer type is safe for concurrent use by multiple goroutines. All
// methods (Connect, Disconnect, the Send operations, State, Metrics,
// BufferedRecords) can be called concurrently without external
// synchronization. Configuration is read-only after Connect.
package streamkafka
