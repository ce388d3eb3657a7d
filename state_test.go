// SPDX-FileCopyrightText: 2026 The streamkafka Authors
// SPDX-License-Identifier: Apache-2.0

package streamkafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestConnectionStateString tests the string representation.
func TestConnectionStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state ConnectionState
		want  string
	}{
		{Disconnected, "Disconnected"},
		{Connecting, "Connecting"},
		{Ready, "Ready"},
		{Closing, "Closing"},
		{ConnectionState(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}

// TestConnectionEventKindString tests the string representation.
func TestConnectionEventKindString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind ConnectionEventKind
		want string
	}{
		{EventReady, "Ready"},
		{EventError, "Error"},
		{EventDisconnected, "Disconnected"},
		{ConnectionEventKind(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}
