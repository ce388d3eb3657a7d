// SPDX-FileCopyrightText: 2026 The streamkafka Authors
// SPDX-License-Identifier: Apache-2.0

//go:build integration

package streamkafka_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/mdebarros/streamkafka"
)

const (
	messageConsumeWait = 10 * time.Second
)

// setupKafka starts Kafka using testcontainers and returns the broker
// address. Automatically registers cleanup to stop Kafka when the test
// completes.
func setupKafka(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.8.0",
		kafka.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "Failed to start Kafka container")

	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate Kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "Failed to get Kafka brokers")
	require.NotEmpty(t, brokers, "No Kafka brokers available")

	broker := brokers[0]
	t.Logf("Kafka broker available at: %s", broker)

	require.NoError(t, waitForKafka(ctx, broker))

	return broker
}

// waitForKafka attempts to connect to the Kafka broker until it responds or
// the deadline passes.
func waitForKafka(ctx context.Context, broker string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var lastErr error
	for {
		client, err := kgo.NewClient(kgo.SeedBrokers(broker))
		if err == nil {
			err = client.Ping(ctx)
			client.Close()
			if err == nil {
				return nil
			}
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// newIntegrationProducer builds a producer pointed at the container broker
// with fast flush settings so tests don't wait on batching.
func newIntegrationProducer(broker string) *streamkafka.Producer {
	return &streamkafka.Producer{
		Config: streamkafka.Config{
			Brokers:           []string{broker},
			ClientID:          "streamkafka-integration",
			RequiredAcks:      streamkafka.AcksAll,
			MaxBufferingDelay: 5 * time.Millisecond,
			PollInterval:      20 * time.Millisecond,
			CleanupTimeout:    10 * time.Second,
		},
	}
}

// consumeEnvelopes reads up to want envelopes from the topic, decoding each
// record value through the canonical envelope codec.
func consumeEnvelopes(t *testing.T, broker, topic string, want int, wait time.Duration) []*streamkafka.Envelope {
	t.Helper()

	client, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer client.Close()

	deadline := time.Now().Add(wait)
	var envelopes []*streamkafka.Envelope

	for len(envelopes) < want && time.Now().Before(deadline) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		fetches := client.PollFetches(ctx)
		cancel()

		fetches.EachRecord(func(r *kgo.Record) {
			env, err := streamkafka.DecodeEnvelope(r.Value)
			require.NoError(t, err, "record value must decode as an envelope")
			envelopes = append(envelopes, env)
		})
	}

	return envelopes
}
