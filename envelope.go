// SPDX-FileCopyrightText: 2026 The streamkafka Authors
// SPDX-License-Identifier: Apache-2.0

package streamkafka

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// DefaultContentType is stamped on envelopes whose content type is not
// specified by the caller.
const DefaultContentType = "application/json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope is the canonical message record built before serialization.
// From and To are the routing identities of the sending and receiving
// parties; Type is the content type of Content. The Event, Reason, Method
// and Status fields are only populated by the notification and command
// families.
type Envelope struct {
	ID         string            `json:"id"`
	From       string            `json:"from"`
	To         string            `json:"to"`
	Type       string            `json:"type"`
	Content    any               `json:"content"`
	Metadata   map[string]any    `json:"metadata,omitempty"`
	PathParams map[string]string `json:"pathParams,omitempty"`

	// Notification family.
	Event  string `json:"event,omitempty"`
	Reason string `json:"reason,omitempty"`

	// Command family.
	Method string `json:"method,omitempty"`
	Status string `json:"status,omitempty"`
}

// NewMessageEnvelope builds a plain message envelope. From and to are
// required; payload must be representable as bytes after serialization.
// An empty contentType defaults to application/json.
func NewMessageEnvelope(from, to string, payload any, metadata map[string]any, contentType string) (*Envelope, error) {
	return newEnvelope(from, to, payload, metadata, contentType)
}

// NewNotifyEnvelope builds a notification envelope. In addition to the plain
// message fields it requires an event name; reason carries the failure
// reason for rejection notifications and may be empty.
func NewNotifyEnvelope(from, to string, payload any, metadata map[string]any, contentType, event, reason string) (*Envelope, error) {
	if event == "" {
		return nil, errors.Join(ErrInvalidEnvelope, fmt.Errorf("notification requires an event name"))
	}

	env, err := newEnvelope(from, to, payload, metadata, contentType)
	if err != nil {
		return nil, err
	}

	env.Event = event
	env.Reason = reason
	return env, nil
}

// NewCommandEnvelope builds a command envelope. In addition to the plain
// message fields it requires an HTTP-style method token and a processing
// status.
func NewCommandEnvelope(from, to string, payload any, metadata map[string]any, contentType, method, status string) (*Envelope, error) {
	if method == "" {
		return nil, errors.Join(ErrInvalidEnvelope, fmt.Errorf("command requires a method token"))
	}
	if status == "" {
		return nil, errors.Join(ErrInvalidEnvelope, fmt.Errorf("command requires a processing status"))
	}

	env, err := newEnvelope(from, to, payload, metadata, contentType)
	if err != nil {
		return nil, err
	}

	env.Method = method
	env.Status = status
	return env, nil
}

func newEnvelope(from, to string, payload any, metadata map[string]any, contentType string) (*Envelope, error) {
	if from == "" {
		return nil, errors.Join(ErrInvalidEnvelope, fmt.Errorf("sender identity 'from' is required"))
	}
	if to == "" {
		return nil, errors.Join(ErrInvalidEnvelope, fmt.Errorf("receiver identity 'to' is required"))
	}

	content, err := normalizeContent(payload)
	if err != nil {
		return nil, err
	}

	if contentType == "" {
		contentType = DefaultContentType
	}

	return &Envelope{
		ID:       uuid.NewString(),
		From:     from,
		To:       to,
		Type:     contentType,
		Content:  content,
		Metadata: metadata,
	}, nil
}

// normalizeContent verifies the payload is representable as bytes and
// returns the value stored in the envelope. Byte payloads carrying valid
// JSON pass through unchanged; other byte payloads are carried as binary.
func normalizeContent(payload any) (any, error) {
	switch v := payload.(type) {
	case nil:
		return nil, nil
	case jsoniter.RawMessage:
		return v, nil
	case []byte:
		if json.Valid(v) {
			return jsoniter.RawMessage(v), nil
		}
		return v, nil
	case string:
		return v, nil
	default:
		if _, err := json.Marshal(v); err != nil {
			return nil, errors.Join(ErrSerialization,
				fmt.Errorf("payload of type %T is not serializable", payload), err)
		}
		return v, nil
	}
}

// Encode serializes the envelope to UTF-8 JSON.
func (e *Envelope) Encode() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Join(ErrSerialization, err)
	}
	return b, nil
}

// DecodeEnvelope parses a serialized envelope. Consumers use this to
// recover the canonical record from the wire bytes.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, errors.Join(ErrSerialization, err)
	}
	return &e, nil
}
