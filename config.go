// SPDX-FileCopyrightText: 2026 The streamkafka Authors
// SPDX-License-Identifier: Apache-2.0

package streamkafka

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Default values applied by withDefaults for fields left at their zero value.
const (
	DefaultClientID            = "streamkafka-producer"
	DefaultRetryBackoff        = 100 * time.Millisecond
	DefaultMaxBufferedMessages = 100000
	DefaultMaxBufferingDelay   = 50 * time.Millisecond
	DefaultPollInterval        = 100 * time.Millisecond
)

// Config holds the producer configuration. It is resolved once when the
// producer connects: a withDefaults pass fills zero values, a validate pass
// rejects bad input, and the result is translated to transport options.
// Once a producer is connected its configuration never changes; create a new
// producer to change it.
type Config struct {
	// Brokers is the list of Kafka broker bootstrap addresses.
	// Required. Each address must be in "host:port" format.
	Brokers []string

	// ClientID is the identity reported to the broker.
	// Default: "streamkafka-producer".
	ClientID string

	// RequiredAcks controls the durability level: "none" (0), "leader" (1)
	// or "all" (-1, full in-sync-replica quorum).
	// Default: AcksAll.
	RequiredAcks Acks

	// Compression specifies the per-message compression codec.
	// Default: CompressionNone.
	Compression Compression

	// RetryBackoff is the delay between transport-level send retries.
	// Default: 100ms.
	RetryBackoff time.Duration

	// MaxRetries caps transport-level send retries.
	// <=0 leaves the transport's default retry limit in effect.
	MaxRetries int

	// DisableKeepalive turns off TCP keepalive on broker sockets.
	// Default: false (keepalive on).
	DisableKeepalive bool

	// MaxBufferedMessages is the local queue threshold: the maximum number
	// of records buffered before produce calls block awaiting a flush.
	// Default: 100000.
	MaxBufferedMessages int

	// MaxBufferingDelay is how long a record may linger in the local buffer
	// waiting for a batch to fill before it is force-flushed.
	// Default: 50ms.
	MaxBufferingDelay time.Duration

	// BatchMaxBytes caps the size of a produced batch. The transport
	// expresses the batch ceiling in bytes.
	// Zero uses the transport default.
	BatchMaxBytes int32

	// RequestTimeout sets the maximum time to wait for broker responses.
	// Zero or negative values mean no timeout.
	RequestTimeout time.Duration

	// CleanupTimeout bounds how long Disconnect waits for buffered messages
	// to flush during teardown. Zero or negative values mean no timeout.
	CleanupTimeout time.Duration

	// PollInterval is the cadence of the delivery-report drain loop. Each
	// tick force-flushes the transport buffer, so an interval shorter than
	// MaxBufferingDelay caps the effective batching delay at the interval;
	// keep PollInterval >= MaxBufferingDelay to preserve batching.
	// Default: 100ms.
	PollInterval time.Duration
}

// withDefaults returns a copy of the config with zero-valued fields replaced
// by their defaults. Pure merge; the receiver is not modified.
func (c Config) withDefaults() Config {
	if c.ClientID == "" {
		c.ClientID = DefaultClientID
	}
	if c.RequiredAcks == "" {
		c.RequiredAcks = AcksAll
	}
	if c.Compression == "" {
		c.Compression = CompressionNone
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	if c.MaxBufferedMessages <= 0 {
		c.MaxBufferedMessages = DefaultMaxBufferedMessages
	}
	if c.MaxBufferingDelay <= 0 {
		c.MaxBufferingDelay = DefaultMaxBufferingDelay
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	return c
}

// validate checks a resolved config. Called during Connect before any
// network activity so that bad configuration fails fast.
func (c Config) validate() error {
	if len(c.Brokers) == 0 {
		return errors.Join(ErrConfig, fmt.Errorf("brokers list is required"))
	}

	for i, broker := range c.Brokers {
		if broker == "" {
			return errors.Join(ErrConfig, fmt.Errorf("broker %d is empty", i))
		}
	}

	if err := validateAcks(c.RequiredAcks); err != nil {
		return err
	}

	if err := validateCompression(c.Compression); err != nil {
		return err
	}

	if c.BatchMaxBytes < 0 {
		return errors.Join(ErrConfig, fmt.Errorf("batch max bytes must not be negative"))
	}

	return nil
}

// toKgoOpts converts a resolved config to franz-go client options.
// Returns a slice of kgo.Opt that can be passed to kgo.NewClient().
func (c Config) toKgoOpts(logger kgo.Logger) []kgo.Opt {
	opts := []kgo.Opt{
		kgo.SeedBrokers(c.Brokers...),
		kgo.ClientID(c.ClientID),
		// The dispatch contract carries an explicit partition, so the
		// partition stamped on each record is honored as-is.
		kgo.RecordPartitioner(kgo.ManualPartitioner()),
	}

	if logger != nil {
		opts = append(opts, kgo.WithLogger(logger))
	}

	switch c.RequiredAcks {
	case AcksAll:
		opts = append(opts, kgo.RequiredAcks(kgo.AllISRAcks()))
	case AcksLeader:
		opts = append(opts, kgo.RequiredAcks(kgo.LeaderAck()), kgo.DisableIdempotentWrite())
	case AcksNone:
		opts = append(opts, kgo.RequiredAcks(kgo.NoAck()), kgo.DisableIdempotentWrite())
	}

	switch c.Compression {
	case CompressionSnappy:
		opts = append(opts, kgo.ProducerBatchCompression(kgo.SnappyCompression()))
	case CompressionGzip:
		opts = append(opts, kgo.ProducerBatchCompression(kgo.GzipCompression()))
	case CompressionLz4:
		opts = append(opts, kgo.ProducerBatchCompression(kgo.Lz4Compression()))
	case CompressionZstd:
		opts = append(opts, kgo.ProducerBatchCompression(kgo.ZstdCompression()))
	case CompressionNone:
		opts = append(opts, kgo.ProducerBatchCompression(kgo.NoCompression()))
	}

	backoff := c.RetryBackoff
	opts = append(opts, kgo.RetryBackoffFn(func(int) time.Duration { return backoff }))

	// <=0 leaves the transport's default retry limit in effect
	if c.MaxRetries > 0 {
		opts = append(opts, kgo.RequestRetries(c.MaxRetries))
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	if c.DisableKeepalive {
		dialer.KeepAlive = -1
	}
	opts = append(opts, kgo.Dialer(dialer.DialContext))

	opts = append(opts,
		kgo.MaxBufferedRecords(c.MaxBufferedMessages),
		kgo.ProducerLinger(c.MaxBufferingDelay),
	)

	if c.BatchMaxBytes > 0 {
		opts = append(opts, kgo.ProducerBatchMaxBytes(c.BatchMaxBytes))
	}

	if c.RequestTimeout > 0 {
		opts = append(opts, kgo.RequestTimeoutOverhead(c.RequestTimeout))
	}

	return opts
}
