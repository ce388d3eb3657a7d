// SPDX-FileCopyrightText: 2026 The streamkafka Authors
// SPDX-License-Identifier: Apache-2.0

package streamkafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/xmidt-org/eventor"
)

// clientFactory is a function that creates a Kafka client from options.
// This allows dependency injection for testing.
type clientFactory func(opts ...kgo.Opt) (kafkaClient, error)

// defaultClientFactory is the production client factory that uses franz-go.
func defaultClientFactory(opts ...kgo.Opt) (kafkaClient, error) {
	return kgo.NewClient(opts...)
}

// ProducerMetrics is a snapshot of the producer's delivery counters.
// Counters reset when the producer disconnects.
type ProducerMetrics struct {
	// Produced is the number of records handed to the transport.
	Produced uint64

	// Delivered is the number of records the broker acknowledged.
	Delivered uint64

	// Failed is the number of records the broker rejected.
	Failed uint64

	// ConnectedAt is when the current connection became ready.
	// Zero when disconnected.
	ConnectedAt time.Time
}

// Producer sends domain messages to Kafka through a single logical broker
// connection. It owns the connection lifecycle (Connect/Disconnect), the
// delivery-report drain loop, and the dispatch surface (SendMessage,
// SendNotify, SendCommand).
//
// Thread Safety: All methods are safe for concurrent use by multiple
// goroutines.
type Producer struct {
	// --- STATIC CONFIGURATION (set before Connect, immutable after) ---

	// Config is the connection configuration. Zero-valued fields are
	// resolved to defaults when Connect runs; changing configuration
	// afterwards requires a new Producer.
	Config Config

	// Logger is the logger instance (same interface as franz-go).
	// Optional. If nil, a no-op logger will be used.
	Logger kgo.Logger

	// InitialConnectionEventListeners are registered when Connect() is
	// first called. For dynamic listener management use
	// AddConnectionEventListener().
	// Optional.
	InitialConnectionEventListeners []func(*ConnectionEvent)

	// InitialDeliveryEventListeners are registered when Connect() is first
	// called. For dynamic listener management use AddDeliveryEventListener().
	// Optional.
	InitialDeliveryEventListeners []func(*DeliveryEvent)

	// --- INTERNAL FIELDS (not for user configuration) ---

	// logger is for internal use only.
	// The actively used logger instance (never nil once Connect has run).
	logger atomic.Pointer[kgo.Logger]

	// clientFactory is for internal use only (testing hook).
	clientFactory clientFactory

	// mu is for internal use only.
	// Guards client, state, resolved, connectedAt and the poll loop
	// channels during Connect/Disconnect. Never held across a network
	// round trip.
	mu sync.Mutex

	// eventMu is for internal use only.
	// Serializes lifecycle event emission so listeners observe Ready and
	// Disconnected in transition order.
	eventMu sync.Mutex

	// abortConnect is for internal use only.
	// Set by Disconnect while a handshake is in flight; Connect tears the
	// handle down instead of finalizing when it completes.
	abortConnect bool

	// client is for internal use only.
	// The broker handle. Non-nil exactly while state is Connecting, Ready
	// or Closing.
	client kafkaClient

	// state is for internal use only. Driven only by Connect/Disconnect.
	state ConnectionState

	// resolved is for internal use only.
	// The configuration after default resolution, fixed at Connect time.
	resolved Config

	// connectedAt is for internal use only.
	connectedAt time.Time

	// pollStop and pollDone are for internal use only.
	// pollStop is closed to cancel the drain loop; pollDone is closed by
	// the loop when it exits.
	pollStop chan struct{}
	pollDone chan struct{}

	// produced, delivered and failed are for internal use only.
	produced  atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64

	// connectionEventListeners and deliveryEventListeners are for internal
	// use only.
	connectionEventListeners eventor.Eventor[func(*ConnectionEvent)]
	deliveryEventListeners   eventor.Eventor[func(*DeliveryEvent)]

	// registerInitialListenersOnce is for internal use only.
	registerInitialListenersOnce sync.Once
}

// SendResult is returned synchronously by the dispatch operations. Message
// is the envelope handed to the transport; durability confirmation arrives
// later as a DeliveryEvent.
type SendResult struct {
	Key     string
	Message *Envelope
}

// SendOption customizes a single dispatch call.
type SendOption func(*sendOptions)

type sendOptions struct {
	partition   int32
	token       any
	contentType string
	id          string
}

// WithPartition targets an explicit partition. Default: 0.
func WithPartition(partition int32) SendOption {
	return func(o *sendOptions) {
		o.partition = partition
	}
}

// WithToken attaches an opaque correlation token. The token is not sent to
// the broker; it is echoed back on the DeliveryEvent for this record.
func WithToken(token any) SendOption {
	return func(o *sendOptions) {
		o.token = token
	}
}

// WithContentType overrides the envelope content type.
// Default: application/json.
func WithContentType(contentType string) SendOption {
	return func(o *sendOptions) {
		o.contentType = contentType
	}
}

// WithID overrides the generated envelope ID.
func WithID(id string) SendOption {
	return func(o *sendOptions) {
		o.id = id
	}
}

func resolveSendOptions(opts []SendOption) sendOptions {
	var o sendOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Connect performs the one-shot connect handshake. It creates the broker
// handle from the resolved configuration, pings the cluster, and returns
// only once the brokers respond; a successful return means the producer is
// Ready and the drain loop is running.
//
// There is no internal retry and no built-in timeout: a failed Connect
// leaves the producer Disconnected and safe to call again, and callers
// wanting a timeout pass a deadline on ctx.
//
// Returns an error if:
//   - Configuration is invalid (ErrConfig)
//   - A connect handshake already ran or is in flight (ErrAlreadyConnected)
//   - The cluster rejects the handshake (ErrConnect, broker error attached)
//
// The handshake does not hold the producer's lock: dispatch calls made
// while it is in flight fail fast with ErrNotConnected, State reports
// Connecting, and Disconnect abandons the handshake instead of waiting
// for it.
func (p *Producer) Connect(ctx context.Context) error {
	p.mu.Lock()
	client, cfg, err := p.beginConnectLocked()
	p.mu.Unlock()
	if err != nil {
		return err
	}

	// The client is lazy and has not touched the network yet. Ping forces
	// a round trip and its return is the authoritative readiness signal;
	// nothing is produced before it succeeds. The lock is released for the
	// round trip so dispatch, state reads and Disconnect stay responsive
	// while the handshake is in flight.
	pingErr := client.Ping(ctx)

	p.mu.Lock()
	aborted := p.abortConnect
	p.abortConnect = false
	if pingErr != nil || aborted {
		p.state = Disconnected
		p.mu.Unlock()
		client.Close()
		if pingErr == nil {
			return errors.Join(ErrConnect, fmt.Errorf("disconnected during handshake"))
		}
		if errors.Is(pingErr, context.DeadlineExceeded) {
			return errors.Join(ErrConnect, ErrTimeout, pingErr)
		}
		return errors.Join(ErrConnect, pingErr)
	}

	p.client = client
	p.state = Ready
	p.connectedAt = time.Now()

	p.pollStop = make(chan struct{})
	p.pollDone = make(chan struct{})
	go p.pollLoop(client, cfg.PollInterval, p.pollStop, p.pollDone)

	// Take the event lock before releasing mu so a racing Disconnect
	// cannot deliver its event ahead of this one.
	p.eventMu.Lock()
	p.mu.Unlock()

	p.activeLogger().Log(kgo.LogLevelInfo, "producer connected",
		"brokers", cfg.Brokers, "client_id", cfg.ClientID)
	p.emitConnectionEvent(&ConnectionEvent{Kind: EventReady})
	p.eventMu.Unlock()

	return nil
}

// beginConnectLocked validates configuration, creates the broker handle and
// moves the state to Connecting. Called with mu held; the network round
// trip happens after the lock is released.
func (p *Producer) beginConnectLocked() (kafkaClient, Config, error) {
	if p.state != Disconnected {
		return nil, Config{}, ErrAlreadyConnected
	}

	if p.clientFactory == nil {
		p.clientFactory = defaultClientFactory
	}

	logger := p.Logger
	if logger == nil {
		logger = &nopLogger{}
	}
	p.logger.Store(&logger)

	// Register initial event listeners (only once, even if Connect() is
	// called multiple times)
	p.registerInitialListenersOnce.Do(func() {
		for _, listener := range p.InitialConnectionEventListeners {
			p.connectionEventListeners.Add(listener)
		}
		for _, listener := range p.InitialDeliveryEventListeners {
			p.deliveryEventListeners.Add(listener)
		}
	})

	// Two-step resolution: pure default merge, then validation. Both run
	// before any network activity.
	cfg := p.Config.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, Config{}, err
	}
	p.resolved = cfg

	client, err := p.clientFactory(cfg.toKgoOpts(logger)...)
	if err != nil {
		return nil, Config{}, errors.Join(ErrConnect, err)
	}

	p.state = Connecting
	return client, cfg, nil
}

// pollLoop periodically drains the transport. franz-go fires delivery
// promises on its own, so the drain primitive here is a tick-bounded Flush:
// it forces lingering records out without ever blocking dispatch.
//
// The loop is the sole owner of the drain cadence. Disconnect cancels it
// before releasing the client so a tick can never run against a released
// handle.
func (p *Producer) pollLoop(client kafkaClient, interval time.Duration, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			err := client.Flush(ctx)
			cancel()

			// An expired tick only means records are still in flight;
			// the next tick picks them up.
			if err != nil && !errors.Is(err, context.DeadlineExceeded) {
				p.dispatchConnectionEvent(&ConnectionEvent{
					Kind:  EventError,
					Error: errors.Join(ErrBroker, err),
				})
			}
		}
	}
}

// Disconnect tears the connection down: it cancels the drain loop, flushes
// buffered records (bounded by Config.CleanupTimeout when ctx carries no
// deadline), releases the broker handle and resets the delivery counters.
//
// Disconnect is best-effort and never fails; flush errors during teardown
// are logged and the close proceeds. Safe to call multiple times and safe
// to call on a producer that never connected (no-op then). No dispatch call
// succeeds once Disconnect has been invoked, even while teardown is still
// in flight. Called during a connect handshake it returns immediately and
// the handshake tears the handle down on completion.
func (p *Producer) Disconnect(ctx context.Context) {
	p.mu.Lock()

	if p.state == Connecting {
		// The in-flight Connect owns the handle; it closes the client and
		// resets the state when the ping returns.
		p.abortConnect = true
		p.mu.Unlock()
		return
	}

	if p.client == nil {
		p.mu.Unlock()
		return // Already disconnected or never connected
	}

	logger := p.activeLogger()
	logger.Log(kgo.LogLevelInfo, "disconnecting producer, flushing buffered messages")

	p.state = Closing

	// Cancel the drain loop before touching the client.
	close(p.pollStop)
	<-p.pollDone

	// Apply CleanupTimeout only if the context doesn't already have a
	// deadline. This respects caller-provided timeouts while providing a
	// sensible default.
	if p.resolved.CleanupTimeout > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.resolved.CleanupTimeout)
			defer cancel()
		}
	}

	if err := p.client.Flush(ctx); err != nil {
		logger.Log(kgo.LogLevelWarn, "flush incomplete during teardown", "error", err.Error())
	}

	p.client.Close()
	p.client = nil

	final := ProducerMetrics{
		Produced:    p.produced.Load(),
		Delivered:   p.delivered.Load(),
		Failed:      p.failed.Load(),
		ConnectedAt: p.connectedAt,
	}

	p.produced.Store(0)
	p.delivered.Store(0)
	p.failed.Store(0)
	p.connectedAt = time.Time{}
	p.state = Disconnected

	p.eventMu.Lock()
	p.mu.Unlock()

	logger.Log(kgo.LogLevelInfo, "producer disconnected")
	p.emitConnectionEvent(&ConnectionEvent{Kind: EventDisconnected, Metrics: final})
	p.eventMu.Unlock()
}

// SendMessage builds a plain message envelope and hands it to the broker.
// It returns as soon as the record is enqueued; the delivery report arrives
// later as a DeliveryEvent. Key groups records onto the same partition
// stream; from and to are the required routing identities.
//
// Fails with ErrNotConnected before Connect, and with ErrInvalidEnvelope or
// ErrSerialization on bad input — in every failure case the transport is
// never called.
func (p *Producer) SendMessage(ctx context.Context, topic string, payload any, key, from, to string, metadata map[string]any, opts ...SendOption) (*SendResult, error) {
	o := resolveSendOptions(opts)

	client, err := p.readyClient()
	if err != nil {
		return nil, err
	}

	env, err := NewMessageEnvelope(from, to, payload, metadata, o.contentType)
	if err != nil {
		p.activeLogger().Log(kgo.LogLevelDebug, "message envelope rejected", "error", err.Error())
		return nil, err
	}

	return p.dispatch(ctx, client, topic, key, env, o)
}

// SendNotify builds a notification envelope and hands it to the broker.
// Event names the notification; reason carries the failure reason for
// rejection notifications and may be empty. See SendMessage for the
// dispatch contract.
func (p *Producer) SendNotify(ctx context.Context, topic string, payload any, key, from, to string, metadata map[string]any, event, reason string, opts ...SendOption) (*SendResult, error) {
	o := resolveSendOptions(opts)

	client, err := p.readyClient()
	if err != nil {
		return nil, err
	}

	env, err := NewNotifyEnvelope(from, to, payload, metadata, o.contentType, event, reason)
	if err != nil {
		p.activeLogger().Log(kgo.LogLevelDebug, "notification envelope rejected", "error", err.Error())
		return nil, err
	}

	return p.dispatch(ctx, client, topic, key, env, o)
}

// SendCommand builds a command envelope and hands it to the broker. Method
// is the HTTP-style method token and status the processing status; both are
// required. See SendMessage for the dispatch contract.
func (p *Producer) SendCommand(ctx context.Context, topic string, payload any, key, from, to string, metadata map[string]any, method, status string, opts ...SendOption) (*SendResult, error) {
	o := resolveSendOptions(opts)

	client, err := p.readyClient()
	if err != nil {
		return nil, err
	}

	env, err := NewCommandEnvelope(from, to, payload, metadata, o.contentType, method, status)
	if err != nil {
		p.activeLogger().Log(kgo.LogLevelDebug, "command envelope rejected", "error", err.Error())
		return nil, err
	}

	return p.dispatch(ctx, client, topic, key, env, o)
}

// readyClient returns the broker handle if production is currently
// permitted. Dispatch checks the state itself rather than relying on the
// transport to reject calls during teardown.
func (p *Producer) readyClient() (kafkaClient, error) {
	p.mu.Lock()
	client := p.client
	state := p.state
	p.mu.Unlock()

	if client == nil || state != Ready {
		return nil, ErrNotConnected
	}
	return client, nil
}

// dispatch serializes the envelope, stamps the production timestamp and
// enqueues the record. The timestamp is taken immediately before the
// transport call, not at envelope-build time; it feeds producer-side
// latency measurement.
func (p *Producer) dispatch(ctx context.Context, client kafkaClient, topic, key string, env *Envelope, o sendOptions) (*SendResult, error) {
	if o.id != "" {
		env.ID = o.id
	}

	value, err := env.Encode()
	if err != nil {
		p.activeLogger().Log(kgo.LogLevelDebug, "envelope encode failed",
			"topic", topic, "error", err.Error())
		return nil, err
	}

	start := time.Now()
	record := &kgo.Record{
		Topic:     topic,
		Partition: o.partition,
		Value:     value,
		Timestamp: start,
	}
	if key != "" {
		record.Key = []byte(key)
	}

	p.produced.Add(1)

	event := DeliveryEvent{
		Topic:     topic,
		Partition: o.partition,
		Key:       key,
		Token:     o.token,
	}

	client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			p.failed.Add(1)
			event.Error = errors.Join(ErrBroker, err)
			event.ErrorType = errorType(event.Error)
		} else {
			p.delivered.Add(1)
			event.Partition = r.Partition
			event.Offset = r.Offset
		}
		event.Duration = time.Since(start)
		p.dispatchDeliveryEvent(&event)
	})

	return &SendResult{Key: key, Message: env}, nil
}

// State returns the current connection state.
func (p *Producer) State() ConnectionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Metrics returns a snapshot of the delivery counters for the current
// connection. All zeros when disconnected.
func (p *Producer) Metrics() ProducerMetrics {
	p.mu.Lock()
	connectedAt := p.connectedAt
	p.mu.Unlock()

	return ProducerMetrics{
		Produced:    p.produced.Load(),
		Delivered:   p.delivered.Load(),
		Failed:      p.failed.Load(),
		ConnectedAt: connectedAt,
	}
}

// BufferedRecords returns the transport's current buffered record and byte
// counts. Returns zeros when disconnected.
func (p *Producer) BufferedRecords() (records, bytes int64) {
	p.mu.Lock()
	client := p.client
	p.mu.Unlock()

	if client == nil {
		return 0, 0
	}

	return client.BufferedProduceRecords(), client.BufferedProduceBytes()
}

// activeLogger returns the logger in use, falling back to the configured
// or no-op logger before Connect has run.
func (p *Producer) activeLogger() kgo.Logger {
	if l := p.logger.Load(); l != nil {
		return *l
	}
	if p.Logger != nil {
		return p.Logger
	}
	return &nopLogger{}
}
